// Package effects is a small mono effects rack applied to the mixed voice
// output before it reaches the audio device.
package effects

import (
	"fmt"
	"strconv"
	"strings"
)

// Effect processes one mono sample at a time.
type Effect interface {
	Process(x float32) float32
	Reset()
}

// Chain applies effects in order.
type Chain struct {
	effects []Effect
}

func NewChain(effects ...Effect) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Add(e Effect) {
	c.effects = append(c.effects, e)
}

// Len returns the number of effects in the chain.
func (c *Chain) Len() int { return len(c.effects) }

func (c *Chain) Process(x float32) float32 {
	for _, e := range c.effects {
		x = e.Process(x)
	}
	return x
}

// ProcessBuffer runs the chain over buf in place.
func (c *Chain) ProcessBuffer(buf []float32) {
	if len(c.effects) == 0 {
		return
	}
	for i, x := range buf {
		buf[i] = c.Process(x)
	}
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

// Parse builds a chain from a comma separated list such as
// "dist:4:0.5,reverb:0.5:0.7:0.25". Each entry is an effect name followed by
// optional colon separated parameters; missing parameters use defaults.
func Parse(s string, sampleRate int) (*Chain, error) {
	c := NewChain()
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ":")
		params := make([]float64, 0, len(fields)-1)
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("effects: %s: bad parameter %q: %w", fields[0], f, err)
			}
			params = append(params, v)
		}
		e, err := create(strings.ToLower(fields[0]), params, sampleRate)
		if err != nil {
			return nil, err
		}
		c.Add(e)
	}
	return c, nil
}

func create(name string, params []float64, sampleRate int) (Effect, error) {
	param := func(i int, def float64) float32 {
		if i < len(params) {
			return float32(params[i])
		}
		return float32(def)
	}
	switch name {
	case "reverb":
		return NewReverb(sampleRate, param(0, 0.5), param(1, 0.7), param(2, 0.25)), nil
	case "delay":
		return NewDelay(sampleRate, float64(param(0, 250)), param(1, 0.4), param(2, 0.3)), nil
	case "dist", "distortion":
		return NewDistortion(sampleRate, param(0, 4), param(1, 0.5), param(2, 8000)), nil
	case "trem", "tremolo":
		return NewTremolo(sampleRate, param(0, 5), param(1, 0.5), int(param(2, WaveTriangle))), nil
	case "comp", "compressor":
		return NewCompressor(sampleRate, param(0, -20), param(1, 4), param(2, 5), param(3, 100), param(4, 6)), nil
	}
	return nil, fmt.Errorf("effects: unknown effect %q", name)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
