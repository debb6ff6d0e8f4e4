// Package midiout plays voice snapshots on an external MIDI instrument
// instead of the built-in synthesizer.
package midiout

import "github.com/cbegin/touchsynth-go/internal/note"

const (
	statusNoteOff = 0x80
	statusNoteOn  = 0x90
	// Velocity is the fixed note-on velocity; touches carry no pressure.
	Velocity = 127
)

// Converter turns successive voice snapshots into note messages. Each voice
// maps to at most one sounding MIDI note.
type Converter struct {
	active [note.Polyphony]int // sounding pitch per voice, -1 when silent
}

// NewConverter returns a converter with every voice silent.
func NewConverter() *Converter {
	c := &Converter{}
	for i := range c.active {
		c.active[i] = -1
	}
	return c
}

// Convert emits the messages needed to move from the previous snapshot to
// voices: note-on for new notes, note-off for released ones and an off/on
// pair when a held voice changes pitch.
func (c *Converter) Convert(voices note.Voices, emit func(raw [3]byte)) {
	for i, ev := range voices {
		old := c.active[i]
		switch {
		case ev.On:
			p := note.Pitch(ev.Frequency)
			if p == old {
				continue
			}
			if old >= 0 {
				emit(noteOff(old))
			}
			emit(noteOn(p))
			c.active[i] = p
		case old >= 0:
			emit(noteOff(old))
			c.active[i] = -1
		}
	}
}

// Release emits note-off for every sounding voice.
func (c *Converter) Release(emit func(raw [3]byte)) {
	c.Convert(note.Voices{}, emit)
}

func noteOn(p int) [3]byte  { return [3]byte{statusNoteOn, byte(p & 0x7F), Velocity} }
func noteOff(p int) [3]byte { return [3]byte{statusNoteOff, byte(p & 0x7F), 0} }
