// Package tracker assigns touches to voices.
package tracker

import (
	"iter"

	"github.com/cbegin/touchsynth-go/internal/areas"
	"github.com/cbegin/touchsynth-go/internal/note"
	"github.com/cbegin/touchsynth-go/internal/touch"
)

// Tracker keeps the desired state of every voice. Touches are assigned to
// voice trackingID mod note.Polyphony; two touches that collide share the
// voice and the latest update wins.
type Tracker struct {
	areas  *areas.Map
	voices note.Voices
}

// New creates a tracker with every voice off.
func New(m *areas.Map) *Tracker {
	return &Tracker{areas: m}
}

// Update applies one touch state and returns the full voice snapshot.
func (t *Tracker) Update(ts touch.TouchState) note.Voices {
	i := note.VoiceIndex(ts.TrackingID)
	if ts.Touching {
		t.voices[i] = t.areas.NoteEvent(ts.Position)
	} else {
		t.voices[i] = note.Off
	}
	return t.voices
}

// Voices yields a snapshot after every touch state. Iterating again
// restarts touches but keeps the tracker's current voices.
func (t *Tracker) Voices(touches iter.Seq[touch.TouchState]) iter.Seq[note.Voices] {
	return func(yield func(note.Voices) bool) {
		for ts := range touches {
			if !yield(t.Update(ts)) {
				return
			}
		}
	}
}
