package generator

import (
	"github.com/cbegin/touchsynth-go/internal/note"
	"github.com/cbegin/touchsynth-go/internal/wavetable"
)

// Envelope holds the ADSR settings received from the controller. Only
// Release shapes the sound here; the other stages are kept so that they can
// be forwarded to a fuller envelope stage.
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// DefaultEnvelope is the envelope a Bank starts with.
var DefaultEnvelope = Envelope{Attack: 0.005, Decay: 0.12, Sustain: 1, Release: 0.2}

// Bank is the full set of voices plus the parameters they share.
type Bank struct {
	voices   [note.Polyphony]*Generator
	wave     *wavetable.Table
	envelope Envelope
	volume   float64
	gain     float64
}

// NewBank creates note.Polyphony muted voices playing wave. volume is split
// evenly across the voices.
func NewBank(volume float64, wave *wavetable.Table, env Envelope) *Bank {
	b := &Bank{wave: wave, envelope: env, volume: volume, gain: 1}
	for i := range b.voices {
		b.voices[i] = New(volume/note.Polyphony, env.Release)
	}
	return b
}

// HandleNoteEvents applies a voice snapshot: each On retunes or triggers its
// voice, each Off releases it.
func (b *Bank) HandleNoteEvents(events note.Voices) {
	for i, ev := range events {
		if ev.On {
			b.voices[i].NoteOn(ev.Frequency)
		} else {
			b.voices[i].NoteOff()
		}
	}
}

// Generate adds every voice's output to buf.
func (b *Bank) Generate(buf []float32, sampleRate int) {
	for _, v := range b.voices {
		v.Generate(buf, sampleRate, b.wave, b.gain)
	}
}

// Voice returns generator i.
func (b *Bank) Voice(i int) *Generator { return b.voices[i] }

// Wave returns the active wavetable.
func (b *Bank) Wave() *wavetable.Table { return b.wave }

// SetWave swaps the wavetable used by all voices from the next sample on.
func (b *Bank) SetWave(t *wavetable.Table) {
	if t != nil {
		b.wave = t
	}
}

// Volume returns the controller volume multiplier.
func (b *Bank) Volume() float64 { return b.gain }

// SetVolume sets the controller volume multiplier in [0, 1].
func (b *Bank) SetVolume(v float64) { b.gain = v }

// Envelope returns the current envelope settings.
func (b *Bank) Envelope() Envelope { return b.envelope }

// SetEnvelope stores env and applies its release time to every voice.
func (b *Bank) SetEnvelope(env Envelope) {
	b.envelope = env
	for _, v := range b.voices {
		v.SetRelease(env.Release)
	}
}
