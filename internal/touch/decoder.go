// Package touch decodes the Linux multitouch (type B) event protocol into
// per-contact state transitions.
package touch

import (
	"iter"
	"log/slog"

	"github.com/holoplot/go-evdev"
)

// MaxSlots is the number of simultaneous contacts tracked.
const MaxSlots = 10

// Event is a raw input event as read from the device.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// Position is a point in device coordinates.
type Position struct {
	X, Y int32
}

// TouchState is the state of one slot at the end of a frame. When Touching
// is false the contact has been lifted and TrackingID is the id it had.
type TouchState struct {
	Slot       int
	TrackingID int32
	Touching   bool
	Position   Position
}

// Touch returns the state of a contact that is down at pos.
func Touch(slot int, trackingID int32, pos Position) TouchState {
	return TouchState{Slot: slot, TrackingID: trackingID, Touching: true, Position: pos}
}

// NoTouch returns the state of a contact that has just been lifted.
func NoTouch(slot int, trackingID int32) TouchState {
	return TouchState{Slot: slot, TrackingID: trackingID}
}

type slotState struct {
	trackingID int32
	position   Position
	active     bool
	reported   bool // last emitted state was a Touch
}

// Decoder turns a stream of raw events into TouchStates. It is not safe for
// concurrent use.
type Decoder struct {
	logger  *slog.Logger
	slots   [MaxSlots]slotState
	changed [MaxSlots]bool
	cursor  int // -1 until a valid slot is selected
	out     []TouchState
}

// NewDecoder creates a decoder with no slot selected.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		logger: logger,
		cursor: -1,
		out:    make([]TouchState, 0, MaxSlots),
	}
}

// Push feeds one event. When ev ends a frame, Push returns the state of
// every slot touched during that frame in increasing slot order; otherwise
// it returns nil. The returned slice is reused by the next frame.
//
// A slot that is down emits a Touch. A slot emits NoTouch only when its
// previous state was a Touch, so updates to an idle slot never release a
// voice.
func (d *Decoder) Push(ev Event) []TouchState {
	switch evdev.EvType(ev.Type) {
	case evdev.EV_SYN:
		switch evdev.EvCode(ev.Code) {
		case evdev.SYN_REPORT:
			return d.flush()
		case evdev.SYN_DROPPED:
			d.logger.Warn("touch: device dropped events")
		}
	case evdev.EV_ABS:
		d.update(evdev.EvCode(ev.Code), ev.Value)
	}
	return nil
}

func (d *Decoder) update(code evdev.EvCode, value int32) {
	if code == evdev.ABS_MT_SLOT {
		if value < 0 || value >= MaxSlots {
			d.logger.Debug("touch: slot out of range", "slot", value)
			d.cursor = -1
			return
		}
		d.cursor = int(value)
		return
	}
	if d.cursor < 0 {
		return
	}
	s := &d.slots[d.cursor]
	switch code {
	case evdev.ABS_MT_POSITION_X:
		s.position.X = value
	case evdev.ABS_MT_POSITION_Y:
		s.position.Y = value
	case evdev.ABS_MT_TRACKING_ID:
		if value == -1 {
			s.active = false
		} else {
			s.trackingID = value
			s.active = true
		}
	default:
		return
	}
	d.changed[d.cursor] = true
}

func (d *Decoder) flush() []TouchState {
	d.out = d.out[:0]
	for i, c := range d.changed {
		if !c {
			continue
		}
		d.changed[i] = false
		s := &d.slots[i]
		switch {
		case s.active:
			d.out = append(d.out, Touch(i, s.trackingID, s.position))
			s.reported = true
		case s.reported:
			d.out = append(d.out, NoTouch(i, s.trackingID))
			s.reported = false
		}
	}
	return d.out
}

// Flush ends the current frame as if a frame terminator had arrived. Decode
// calls it when its input ends so that a trailing partial frame is not lost.
func (d *Decoder) Flush() []TouchState {
	return d.flush()
}

// Decode lazily decodes events. The sequence ends when events ends, after
// emitting any updates still pending from an unterminated last frame.
func (d *Decoder) Decode(events iter.Seq[Event]) iter.Seq[TouchState] {
	return func(yield func(TouchState) bool) {
		for ev := range events {
			for _, ts := range d.Push(ev) {
				if !yield(ts) {
					return
				}
			}
		}
		for _, ts := range d.Flush() {
			if !yield(ts) {
				return
			}
		}
	}
}
