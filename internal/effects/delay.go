package effects

// Delay is a feedback echo.
type Delay struct {
	line delayLine
	wet  float32
}

// NewDelay creates an echo delayMs long. feedback (0..0.95) sets how many
// repeats are heard and wet is the dry/wet mix.
func NewDelay(sampleRate int, delayMs float64, feedback, wet float32) *Delay {
	return &Delay{
		line: newDelayLine(int(delayMs*float64(sampleRate)/1000), clamp(feedback, 0, 0.95)),
		wet:  clamp(wet, 0, 1),
	}
}

func (d *Delay) Process(x float32) float32 {
	echo := d.line.comb(x)
	return x*(1-d.wet) + echo*d.wet
}

func (d *Delay) Reset() {
	d.line.reset()
}
