package effects

// LFO waveforms.
const (
	WaveTriangle = iota
	WaveSquare
	WaveSaw
)

// lfo is a low-frequency oscillator returning values in [-1, 1].
type lfo struct {
	rate  float32 // cycles per sample
	wave  int
	phase float32 // [0, 1)
}

func (l *lfo) next() float32 {
	var v float32
	switch l.wave {
	case WaveSquare:
		v = 1
		if l.phase >= 0.5 {
			v = -1
		}
	case WaveSaw:
		v = 1 - 2*l.phase
	default:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	}
	l.phase += l.rate
	for l.phase >= 1 {
		l.phase--
	}
	return v
}

// Tremolo modulates the amplitude with an LFO. At depth 1 the gain swings
// between 0 and 1; at depth 0 the signal passes unchanged.
type Tremolo struct {
	osc   lfo
	depth float32
}

// NewTremolo creates a tremolo running at rateHz. Unknown waveforms fall back
// to a triangle.
func NewTremolo(sampleRate int, rateHz, depth float32, wave int) *Tremolo {
	if wave < WaveTriangle || wave > WaveSaw {
		wave = WaveTriangle
	}
	return &Tremolo{
		osc:   lfo{rate: rateHz / float32(sampleRate), wave: wave},
		depth: clamp(depth, 0, 1),
	}
}

func (t *Tremolo) Process(x float32) float32 {
	m := (t.osc.next() + 1) / 2
	return x * (1 - t.depth*m)
}

func (t *Tremolo) Reset() {
	t.osc.phase = 0
}
