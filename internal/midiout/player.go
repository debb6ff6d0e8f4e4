package midiout

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/rakyll/portmidi"

	"github.com/cbegin/touchsynth-go/internal/note"
)

// Sink receives raw MIDI messages.
type Sink interface {
	Send(raw [3]byte) error
}

// Player writes to a portmidi output device.
type Player struct {
	stream *portmidi.Stream
}

// Open initializes portmidi and opens the default output device.
func Open(logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("portmidi: %w", err)
	}
	id := portmidi.DefaultOutputDeviceID()
	if id < 0 {
		portmidi.Terminate()
		return nil, fmt.Errorf("portmidi: no output device")
	}
	stream, err := portmidi.NewOutputStream(id, 1024, 0)
	if err != nil {
		portmidi.Terminate()
		return nil, fmt.Errorf("portmidi: open output %d: %w", id, err)
	}
	if info := portmidi.Info(id); info != nil {
		logger.Info("midi output opened", "device", info.Name, "interface", info.Interface)
	}
	return &Player{stream: stream}, nil
}

// Send writes one short message.
func (p *Player) Send(raw [3]byte) error {
	return p.stream.WriteShort(int64(raw[0]), int64(raw[1]), int64(raw[2]))
}

// Close closes the stream and shuts portmidi down.
func (p *Player) Close() error {
	err := p.stream.Close()
	portmidi.Terminate()
	return err
}

// Printer logs note messages instead of playing them.
type Printer struct {
	logger *slog.Logger
}

// NewPrinter returns a sink that logs at info level.
func NewPrinter(logger *slog.Logger) *Printer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Printer{logger: logger}
}

// Send logs raw as a note event.
func (p *Printer) Send(raw [3]byte) error {
	switch raw[0] & 0xF0 {
	case statusNoteOn:
		p.logger.Info("note on", "pitch", raw[1], "frequency", note.Frequency(int(raw[1])))
	case statusNoteOff:
		p.logger.Info("note off", "pitch", raw[1])
	default:
		p.logger.Info("midi", "bytes", fmt.Sprintf("% x", raw[:]))
	}
	return nil
}

// Consume converts every snapshot from voices and sends the result to sink
// until voices ends or ctx is cancelled. Sounding notes are released before
// it returns. Send errors are logged and do not stop playback.
func Consume(ctx context.Context, voices iter.Seq[note.Voices], sink Sink, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	conv := NewConverter()
	emit := func(raw [3]byte) {
		if err := sink.Send(raw); err != nil {
			logger.Error("midiout: send failed", "err", err)
		}
	}
	defer conv.Release(emit)
	for v := range voices {
		if ctx.Err() != nil {
			return
		}
		conv.Convert(v, emit)
	}
}
