package effects

import "math"

// Distortion is a tanh waveshaper followed by a one-pole lowpass that tames
// the added harmonics.
type Distortion struct {
	preGain  float32
	postGain float32
	lpfAlpha float32 // 0 disables the filter
	lpf      float32
}

// NewDistortion creates a distortion. Higher preGain drives the shaper
// harder; lpfCutoff is in Hz, 0 for no filter.
func NewDistortion(sampleRate int, preGain, postGain, lpfCutoff float32) *Distortion {
	d := &Distortion{preGain: preGain, postGain: postGain}
	if lpfCutoff > 0 && lpfCutoff < float32(sampleRate)/2 {
		rc := 1 / (2 * math.Pi * float64(lpfCutoff))
		dt := 1 / float64(sampleRate)
		d.lpfAlpha = float32(dt / (rc + dt))
	}
	return d
}

func (d *Distortion) Process(x float32) float32 {
	y := float32(math.Tanh(float64(x*d.preGain))) * d.postGain
	if d.lpfAlpha > 0 {
		d.lpf += d.lpfAlpha * (y - d.lpf)
		y = d.lpf
	}
	return y
}

func (d *Distortion) Reset() {
	d.lpf = 0
}
