package midiin

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Listener forwards control changes from one MIDI input port to an Inbox.
type Listener struct {
	drv    *rtmididrv.Driver
	port   drivers.In
	stop   func()
	logger *slog.Logger
}

// Listen opens the first input port whose name contains pattern (case
// insensitive), or the first port if pattern is empty, and posts every
// control change it receives to inbox.
func Listen(inbox *Inbox, pattern string, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiin: list inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	idx := SelectPort(names, pattern)
	if idx < 0 {
		drv.Close()
		return nil, fmt.Errorf("midiin: no input matching %q in %v", pattern, names)
	}
	found := ins[idx]
	if err := found.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiin: open %q: %w", found.String(), err)
	}
	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		if raw, ok := ControlChange(msg); ok {
			inbox.Post(raw)
		}
	}, midi.HandleError(func(listenErr error) {
		logger.Warn("midiin: listener error", "device", found.String(), "err", listenErr)
	}))
	if err != nil {
		_ = found.Close()
		drv.Close()
		return nil, fmt.Errorf("midiin: listen %q: %w", found.String(), err)
	}
	logger.Info("midi controller connected", "device", found.String())
	return &Listener{drv: drv, port: found, stop: stop, logger: logger}, nil
}

// Close stops listening and releases the port and driver.
func (l *Listener) Close() error {
	l.stop()
	err := l.port.Close()
	l.drv.Close()
	if err != nil {
		return fmt.Errorf("midiin: close: %w", err)
	}
	l.logger.Info("midi controller disconnected")
	return nil
}

// SelectPort returns the index of the first name containing pattern, ignoring
// case, or -1. An empty pattern selects the first port.
func SelectPort(names []string, pattern string) int {
	if len(names) == 0 {
		return -1
	}
	if pattern == "" {
		return 0
	}
	p := strings.ToLower(pattern)
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), p) {
			return i
		}
	}
	return -1
}

// ControlChange returns msg as a raw triplet if it is a control change.
func ControlChange(msg midi.Message) ([3]byte, bool) {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		return [3]byte{}, false
	}
	return [3]byte{0xB0 | ch, cc, val}, true
}
