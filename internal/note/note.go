package note

import "math"

// Polyphony is the number of voices that can sound at the same time.
const Polyphony = 10

// Event is the desired state of one voice: silent, or sounding at Frequency.
type Event struct {
	On        bool
	Frequency float64
}

// Off is the event for a silent voice.
var Off = Event{}

// On returns an event that sounds at freq Hz.
func On(freq float64) Event {
	return Event{On: true, Frequency: freq}
}

// Voices is a snapshot of every voice at one instant. Index i drives voice i.
type Voices [Polyphony]Event

// VoiceIndex maps a touch tracking id onto a voice. Ids that collide modulo
// Polyphony share a voice.
func VoiceIndex(trackingID int32) int {
	i := int(trackingID) % Polyphony
	if i < 0 {
		i += Polyphony
	}
	return i
}

// Frequency converts a MIDI pitch to Hz in twelve-tone equal temperament.
func Frequency(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

// Pitch returns the MIDI pitch nearest to freq.
func Pitch(freq float64) int {
	return int(math.Round(12*math.Log2(freq/440))) + 69
}
