// Package midiin receives control changes from a MIDI controller and hands
// them to the audio goroutine.
package midiin

import "github.com/cbegin/touchsynth-go/internal/mailbox"

// Inbox keeps the latest message per controller number. Fader sweeps
// collapse to their final position while moves on different controllers
// all survive until the next Drain.
type Inbox struct {
	controllers [128]mailbox.Mailbox[[3]byte]
}

// NewInbox returns an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Post stores a control change. It never blocks or allocates. Post must not
// be called from more than one goroutine at a time. Messages that are not
// control changes are dropped.
func (in *Inbox) Post(raw [3]byte) {
	if raw[0]&0xF0 != 0xB0 {
		return
	}
	in.controllers[raw[1]&0x7F].Send(raw)
}

// Drain calls fn for every controller that changed since the last Drain, in
// controller order. It never blocks.
func (in *Inbox) Drain(fn func(raw [3]byte)) {
	for i := range in.controllers {
		if raw, ok := in.controllers[i].Recv(); ok {
			fn(raw)
		}
	}
}
