// Package generator renders voices: each Generator is a phase accumulator
// driving a wavetable through a Muted/Playing/Releasing state machine.
package generator

import (
	"math"

	"github.com/cbegin/touchsynth-go/internal/wavetable"
)

const twoPi = math.Pi * 2

// State is the lifecycle stage of a voice.
type State int

const (
	Muted State = iota
	Playing
	Releasing
)

func (s State) String() string {
	switch s {
	case Muted:
		return "muted"
	case Playing:
		return "playing"
	case Releasing:
		return "releasing"
	}
	return "unknown"
}

// Generator is a single voice. It is owned by the audio goroutine and must
// not be shared.
type Generator struct {
	amplitude        float64
	releaseSeconds   float64
	state            State
	frequency        float64
	phase            float64 // radians, [0, 2π)
	releaseAmplitude float64
}

// New creates a muted generator. amplitude is usually divided by the number
// of voices so that a full chord cannot clip.
func New(amplitude, releaseSeconds float64) *Generator {
	return &Generator{amplitude: amplitude, releaseSeconds: releaseSeconds}
}

// State reports the current lifecycle stage.
func (g *Generator) State() State { return g.state }

// Frequency reports the frequency of a sounding or releasing voice.
func (g *Generator) Frequency() float64 { return g.frequency }

// Phase reports the current oscillator phase in radians.
func (g *Generator) Phase() float64 { return g.phase }

// SetRelease changes the release time used by subsequent samples.
func (g *Generator) SetRelease(seconds float64) { g.releaseSeconds = seconds }

// NoteOn starts or retunes the voice. A playing voice keeps its phase so a
// frequency change is click-free; a muted or releasing voice restarts at 0.
func (g *Generator) NoteOn(freq float64) {
	if g.state != Playing {
		g.phase = 0
	}
	g.state = Playing
	g.frequency = freq
	g.releaseAmplitude = 0
}

// NoteOff moves a playing voice into its release ramp.
func (g *Generator) NoteOff() {
	if g.state != Playing {
		return
	}
	g.state = Releasing
	g.releaseAmplitude = 1
}

// Step advances the generator by one sample.
func (g *Generator) Step(sampleRate int) {
	if g.state == Muted {
		return
	}
	sr := float64(sampleRate)
	g.phase = math.Mod(g.phase+g.frequency*twoPi/sr, twoPi)
	if g.state != Releasing {
		return
	}
	if g.releaseSeconds <= 0 {
		g.mute()
		return
	}
	g.releaseAmplitude -= 1 / (sr * g.releaseSeconds)
	if g.releaseAmplitude <= 0 {
		g.mute()
	}
}

func (g *Generator) mute() {
	g.state = Muted
	g.frequency = 0
	g.phase = 0
	g.releaseAmplitude = 0
}

// Generate steps once per sample and adds the voice's output to buf. A
// muted voice leaves buf untouched, so several voices can be summed into
// one buffer. gain scales the output on top of the voice amplitude.
func (g *Generator) Generate(buf []float32, sampleRate int, wave wavetable.Wave, gain float64) {
	if g.state == Muted {
		return
	}
	for i := range buf {
		g.Step(sampleRate)
		switch g.state {
		case Playing:
			buf[i] += float32(wave.Run(g.phase) * g.amplitude * gain)
		case Releasing:
			buf[i] += float32(wave.Run(g.phase) * g.amplitude * gain * g.releaseAmplitude)
		default:
			// the rest of the buffer stays silent once the release ends
			return
		}
	}
}
