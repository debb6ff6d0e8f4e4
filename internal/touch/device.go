package touch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/holoplot/go-evdev"
)

// retryDelay bounds how fast a failing device is polled.
const retryDelay = 10 * time.Millisecond

// Device is an exclusively grabbed evdev touch screen.
type Device struct {
	dev       *evdev.InputDevice
	path      string
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// Open opens the device node at path and grabs it so that no other client
// sees its events.
func Open(path string, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("touch: open %s: %w", path, err)
	}
	if err := dev.Grab(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("touch: grab %s: %w", path, err)
	}
	if name, err := dev.Name(); err == nil {
		logger.Info("touch device opened", "path", path, "name", name)
	}
	return &Device{dev: dev, path: path, logger: logger}, nil
}

// Events returns the device's raw events. Reads block; the sequence ends
// when ctx is cancelled or the device is closed. Other read errors are
// logged and the read is retried.
func (d *Device) Events(ctx context.Context) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		stop := context.AfterFunc(ctx, func() { d.Close() })
		defer stop()
		for {
			ev, err := d.dev.ReadOne()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, os.ErrClosed) {
					return
				}
				d.logger.Error("touch: read failed", "path", d.path, "err", err)
				time.Sleep(retryDelay)
				continue
			}
			if !yield(Event{Type: uint16(ev.Type), Code: uint16(ev.Code), Value: ev.Value}) {
				return
			}
		}
	}
}

// Size returns the extent of the device's multitouch position axes.
func (d *Device) Size() (width, height int32, err error) {
	infos, err := d.dev.AbsInfos()
	if err != nil {
		return 0, 0, fmt.Errorf("touch: abs info %s: %w", d.path, err)
	}
	x, okX := infos[evdev.ABS_MT_POSITION_X]
	y, okY := infos[evdev.ABS_MT_POSITION_Y]
	if !okX || !okY {
		return 0, 0, fmt.Errorf("touch: %s reports no multitouch axes", d.path)
	}
	return x.Maximum - x.Minimum, y.Maximum - y.Minimum, nil
}

// Close releases the grab and closes the device. It is safe to call more
// than once.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.dev.Ungrab()
		d.closeErr = d.dev.Close()
	})
	return d.closeErr
}

// Idle is an event source that never yields. It stands in for a touch
// screen when running without one and ends when ctx is cancelled.
func Idle(ctx context.Context) iter.Seq[Event] {
	return func(func(Event) bool) {
		<-ctx.Done()
	}
}
