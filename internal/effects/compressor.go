package effects

import "math"

// Compressor reduces the level of loud passages.
type Compressor struct {
	threshold float32 // linear
	ratio     float32
	attack    float32 // smoothing coefficients
	release   float32
	makeup    float32
	env       float32
}

// NewCompressor creates a compressor. thresholdDB and makeupDB are in
// decibels, attackMs and releaseMs in milliseconds.
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Compressor {
	return &Compressor{
		threshold: dbToGain(thresholdDB),
		ratio:     max(ratio, 1),
		attack:    smoothing(attackMs, sampleRate),
		release:   smoothing(releaseMs, sampleRate),
		makeup:    dbToGain(makeupDB),
	}
}

func dbToGain(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

func smoothing(ms float32, sampleRate int) float32 {
	return float32(1 - math.Exp(-1/(float64(ms)*float64(sampleRate)/1000)))
}

func (c *Compressor) Process(x float32) float32 {
	level := float32(math.Abs(float64(x)))
	if level > c.env {
		c.env += c.attack * (level - c.env)
	} else {
		c.env += c.release * (level - c.env)
	}
	return x * c.gain() * c.makeup
}

func (c *Compressor) gain() float32 {
	if c.env <= c.threshold {
		return 1
	}
	over := c.env / c.threshold
	return float32(math.Pow(float64(over), float64(1/c.ratio-1)))
}

func (c *Compressor) Reset() {
	c.env = 0
}
