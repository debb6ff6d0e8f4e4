package touchsynth

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/cbegin/touchsynth-go/internal/note"
)

// renderBlock is the callback size used for offline rendering.
const renderBlock = 512

// Cue is a voice snapshot that takes effect At into an offline render.
type Cue struct {
	At     time.Duration
	Voices note.Voices
}

// Render plays cues through s for the given duration without an audio
// device and returns interleaved stereo samples. Cues are applied at the
// start of the block in which they fall.
func (s *Synth) Render(cues []Cue, d time.Duration) []float32 {
	cues = slices.Clone(cues)
	slices.SortStableFunc(cues, func(a, b Cue) int { return cmp.Compare(a.At, b.At) })
	frames := int(d.Seconds() * float64(s.sampleRate))
	out := make([]float32, frames*2)
	for pos := 0; pos < frames; {
		for len(cues) > 0 && s.frameAt(cues[0].At) <= pos {
			s.SendNotes(cues[0].Voices)
			cues = cues[1:]
		}
		n := min(renderBlock, frames-pos)
		if len(cues) > 0 {
			if next := s.frameAt(cues[0].At); next > pos {
				n = min(n, next-pos)
			}
		}
		s.Process(out[pos*2 : (pos+n)*2])
		pos += n
	}
	return out
}

func (s *Synth) frameAt(d time.Duration) int {
	return int(d.Seconds() * float64(s.sampleRate))
}

// RenderSamples renders cues with a fresh synth.
func RenderSamples(sampleRate int, seconds float64, cues []Cue, opts ...Option) ([]float32, error) {
	s, err := NewSynth(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Render(cues, time.Duration(seconds*float64(time.Second))), nil
}

// EncodeWAV writes interleaved stereo samples as a 16-bit PCM WAV file.
func EncodeWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	pos := 0
	stream := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if (pos+1)*2 > len(samples) {
			return 0, false
		}
		n := 0
		for n < len(buf) && (pos+1)*2 <= len(samples) {
			buf[n][0] = float64(samples[pos*2])
			buf[n][1] = float64(samples[pos*2+1])
			n++
			pos++
		}
		return n, true
	})
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, stream, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}
