package effects

// Reverb is a Schroeder reverb: four parallel comb filters followed by two
// allpass filters.
type Reverb struct {
	combs   [4]delayLine
	allpass [2]delayLine
	wet     float32
}

// delayLine is a circular buffer with feedback, used by both filter kinds.
type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

func newDelayLine(n int, fb float32) delayLine {
	return delayLine{buf: make([]float32, max(n, 1)), fb: fb}
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) allpass(in float32) float32 {
	delayed := d.buf[d.pos]
	d.buf[d.pos] = in + delayed*d.fb
	d.advance()
	return delayed - in
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}

// NewReverb creates a reverb. roomSize (0..1) scales the delay lengths,
// feedback (0..1) the decay time and wet is the dry/wet mix.
func NewReverb(sampleRate int, roomSize, feedback, wet float32) *Reverb {
	base := max(int(float32(sampleRate)*roomSize*0.05), 10)
	fb := clamp(feedback, 0, 0.95)
	r := &Reverb{wet: clamp(wet, 0, 1)}
	// mutually prime-ish lengths keep the combs from resonating together
	for i, n := range [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000} {
		r.combs[i] = newDelayLine(n, fb)
	}
	for i, n := range [2]int{base * 347 / 1000, base * 213 / 1000} {
		r.allpass[i] = newDelayLine(n, 0.5)
	}
	return r
}

func (r *Reverb) Process(x float32) float32 {
	var out float32
	for i := range r.combs {
		out += r.combs[i].comb(x)
	}
	out *= 0.25
	for i := range r.allpass {
		out = r.allpass[i].allpass(out)
	}
	return x*(1-r.wet) + out*r.wet
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].reset()
	}
	for i := range r.allpass {
		r.allpass[i].reset()
	}
}
