package wavetable

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
)

const twoPi = math.Pi * 2

// DefaultSize is the table length used for synthesized timbres.
const DefaultSize = 44100

// Wave evaluates one period of a periodic function; phase is in radians.
type Wave interface {
	Run(phase float64) float64
}

// Func adapts a plain function to Wave. It is evaluated on every call, so it
// should only be used off the audio path or as input to FromFunction.
type Func func(phase float64) float64

func (f Func) Run(phase float64) float64 { return f(phase) }

// Table is a memoized period of a waveform. Lookups round to the nearest
// stored sample.
type Table struct {
	samples []float64
}

// FromFunction samples f at size equally spaced phases over [0, 2π).
func FromFunction(f func(phase float64) float64, size int) *Table {
	if size <= 0 {
		size = 1
	}
	samples := make([]float64, size)
	for i := range samples {
		samples[i] = f(float64(i) * twoPi / float64(size))
	}
	return &Table{samples: samples}
}

// Run returns the stored sample nearest to phase. Phases outside [0, 2π)
// wrap around.
func (t *Table) Run(phase float64) float64 {
	n := len(t.samples)
	i := int(math.Round(phase/twoPi*float64(n))) % n
	if i < 0 {
		i += n
	}
	return t.samples[i]
}

// Len returns the number of stored samples.
func (t *Table) Len() int { return len(t.samples) }

// Equal reports whether both tables hold identical samples.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.samples) != len(o.samples) {
		return false
	}
	for i, s := range t.samples {
		if s != o.samples[i] {
			return false
		}
	}
	return true
}

func (t *Table) String() string { return "wavetable.Table(<table>)" }

// Sine is a plain sine wave.
func Sine(size int) *Table {
	return FromFunction(math.Sin, size)
}

// Rectangle is a square wave that starts low for the first half period.
func Rectangle(size int) *Table {
	return FromFunction(func(phase float64) float64 {
		if phase < math.Pi {
			return -1
		}
		return 1
	}, size)
}

// FromSamples stretches a single-cycle waveform (e.g. 32-256 values) over a
// table of the given size using linear interpolation between neighbours.
func FromSamples(cycle []float64, size int) *Table {
	if len(cycle) == 0 {
		return FromFunction(func(float64) float64 { return 0 }, size)
	}
	n := float64(len(cycle))
	return FromFunction(func(phase float64) float64 {
		pos := phase / twoPi * n
		idx := math.Floor(pos)
		frac := pos - idx
		i0 := int(idx) % len(cycle)
		i1 := (i0 + 1) % len(cycle)
		return cycle[i0]*(1-frac) + cycle[i1]*frac
	}, size)
}

// ParseCycle decodes a single cycle written as hex bytes, each a signed
// 8-bit sample, e.g. "7f0081" for 1, 0, -1.
func ParseCycle(h string) ([]float64, error) {
	data, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, fmt.Errorf("wavetable: parse cycle: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("wavetable: parse cycle: no samples")
	}
	cycle := make([]float64, len(data))
	for i, b := range data {
		cycle[i] = max(-1, float64(int8(b))/127)
	}
	return cycle, nil
}
