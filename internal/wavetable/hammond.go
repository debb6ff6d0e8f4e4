package wavetable

import (
	"math"
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
)

// MaxHarmonics is the number of drawbars a Hammond timbre supports.
const MaxHarmonics = 8

// Hammond builds an additive organ timbre: harmonic k (1-based) is a sine at
// k times the fundamental scaled by harmonics[k-1].
func Hammond(harmonics []float64, size int) *Table {
	volumes := append([]float64(nil), harmonics...)
	return FromFunction(func(phase float64) float64 {
		var sum float64
		for i, vol := range volumes {
			if vol == 0 {
				continue
			}
			sum += math.Sin(phase*float64(i+1)) * vol
		}
		return sum
	}, size)
}

// Harmonics estimates the amplitude of the first n harmonics contained in t.
// Index 0 is the fundamental.
func Harmonics(t *Table, n int) []float64 {
	spectrum := fft.FFTReal(t.samples)
	size := float64(len(t.samples))
	out := make([]float64, n)
	for k := 1; k <= n && k < len(spectrum); k++ {
		out[k-1] = cmplx.Abs(spectrum[k]) * 2 / size
	}
	return out
}
