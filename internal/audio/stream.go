// Package audio drives a SampleSource from the ebiten audio backend.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource renders interleaved stereo float32 frames into dst.
// Process is called from the audio goroutine and must not block.
type SampleSource interface {
	Process(dst []float32)
}

// XrunReporter is told about every buffer that took longer to render than
// it takes to play.
type XrunReporter interface {
	Xrun()
}

type StreamReader struct {
	mu         sync.Mutex
	source     SampleSource
	sampleRate int
	xruns      XrunReporter
	buf        []float32
}

// NewStreamReader adapts source to the 32-bit float little-endian stereo
// stream ebiten expects. xruns may be nil.
func NewStreamReader(source SampleSource, sampleRate int, xruns XrunReporter) *StreamReader {
	return &StreamReader{source: source, sampleRate: sampleRate, xruns: xruns}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	start := time.Now()
	r.source.Process(r.buf)
	if r.xruns != nil && r.sampleRate > 0 {
		budget := time.Duration(frames) * time.Second / time.Duration(r.sampleRate)
		if time.Since(start) > budget {
			r.xruns.Xrun()
		}
	}
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// Player plays a SampleSource until stopped.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// ebiten allows a single audio context per process.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

type config struct {
	xruns      XrunReporter
	bufferSize time.Duration
}

// Option configures a Player.
type Option func(*config)

// WithXrunReporter reports late buffers to x.
func WithXrunReporter(x XrunReporter) Option {
	return func(cfg *config) {
		cfg.xruns = x
	}
}

// WithBufferSize sets the device buffer length. Shorter buffers lower the
// latency between a touch and the sound.
func WithBufferSize(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.bufferSize = d
		}
	}
}

// NewPlayer creates a paused player for source.
func NewPlayer(sampleRate int, source SampleSource, opts ...Option) (*Player, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, sampleRate, cfg.xruns)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("audio: new player: %w", err)
	}
	if cfg.bufferSize > 0 {
		pl.SetBufferSize(cfg.bufferSize)
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
