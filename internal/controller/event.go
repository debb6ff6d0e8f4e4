// Package controller decodes MIDI control changes from a hardware
// controller and applies them to the voice bank.
package controller

import "math"

// Envelope ranges for the CC 14-17 faders.
const (
	MinAttack  = 0.005
	MaxAttack  = 0.3
	MinDecay   = 0.005
	MaxDecay   = 1.0
	MinSustain = 0.0
	MaxSustain = 1.0
	MinRelease = 0.005
	MaxRelease = 1.0
)

// Controller numbers.
const (
	CCModulation   = 1
	CCFirstDrawbar = 3
	CCLastDrawbar  = 10
	CCExpression   = 11
	CCAttack       = 14
	CCDecay        = 15
	CCSustain      = 16
	CCRelease      = 17
)

// Kind identifies what a control change adjusts.
type Kind int

const (
	Volume Kind = iota + 1
	Attack
	Decay
	Sustain
	Release
	HarmonicVolume
)

func (k Kind) String() string {
	switch k {
	case Volume:
		return "volume"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	case HarmonicVolume:
		return "harmonic"
	}
	return "unknown"
}

// Event is a decoded control change. Index is only meaningful for
// HarmonicVolume, where it selects the harmonic (0 is the fundamental).
type Event struct {
	Kind  Kind
	Index int
	Value float64
}

// Decode maps a raw three-byte MIDI message to an Event. Only control
// changes for known controllers decode; the channel is ignored. Data bytes
// above 127 behave like 127.
func Decode(raw [3]byte) (Event, bool) {
	if raw[0]&0xF0 != 0xB0 {
		return Event{}, false
	}
	cc, v := raw[1], raw[2]
	switch {
	case cc == CCExpression || cc == CCModulation:
		return Event{Kind: Volume, Value: VolumeCurve(v)}, true
	case cc == CCAttack:
		return Event{Kind: Attack, Value: Linear(v, MinAttack, MaxAttack)}, true
	case cc == CCDecay:
		return Event{Kind: Decay, Value: Linear(v, MinDecay, MaxDecay)}, true
	case cc == CCSustain:
		return Event{Kind: Sustain, Value: Linear(v, MinSustain, MaxSustain)}, true
	case cc == CCRelease:
		return Event{Kind: Release, Value: Linear(v, MinRelease, MaxRelease)}, true
	case cc >= CCFirstDrawbar && cc <= CCLastDrawbar:
		return Event{Kind: HarmonicVolume, Index: int(cc - CCFirstDrawbar), Value: VolumeCurve(v)}, true
	}
	return Event{}, false
}

func unit(b byte) float64 {
	return math.Min(1, float64(b)/127)
}

// curveBase controls how steep the exponential fader curve is.
const curveBase = 4.0

// VolumeCurve maps a fader position to a gain. It is exponential so that
// loudness feels linear, with a linear fade to silence over the bottom
// tenth of the travel.
func VolumeCurve(b byte) float64 {
	v := unit(b)
	rollOff := 1.0
	if v < 0.1 {
		rollOff = v / 0.1
	}
	return math.Min(1, math.Exp(-curveBase)*math.Exp(v*curveBase)*rollOff)
}

// Linear maps a fader position onto [lo, hi].
func Linear(b byte, lo, hi float64) float64 {
	return lo + unit(b)*(hi-lo)
}
