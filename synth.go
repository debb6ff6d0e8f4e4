// Package touchsynth is a polyphonic synthesizer played from a multitouch
// screen and shaped live from a MIDI controller.
package touchsynth

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	intaudio "github.com/cbegin/touchsynth-go/internal/audio"
	"github.com/cbegin/touchsynth-go/internal/controller"
	"github.com/cbegin/touchsynth-go/internal/diag"
	intfx "github.com/cbegin/touchsynth-go/internal/effects"
	"github.com/cbegin/touchsynth-go/internal/generator"
	"github.com/cbegin/touchsynth-go/internal/mailbox"
	"github.com/cbegin/touchsynth-go/internal/midiin"
	"github.com/cbegin/touchsynth-go/internal/note"
	"github.com/cbegin/touchsynth-go/internal/wavetable"
	"github.com/cbegin/touchsynth-go/internal/worker"
)

// mixFrames is the smallest mono mix buffer a Synth starts with. Device
// buffers beyond it, and beyond the configured buffer size, cost one
// allocation in the callback.
const mixFrames = 8192

type Option func(*config)

type config struct {
	volume     float64
	wave       *wavetable.Table
	envelope   generator.Envelope
	effects    *intfx.Chain
	logger     *slog.Logger
	monitor    *diag.Monitor
	tableSize  int
	idle       time.Duration
	bufferSize time.Duration
	sampleTap  func([]float32)
}

func defaultConfig() config {
	return config{
		volume:    1,
		envelope:  generator.DefaultEnvelope,
		logger:    slog.Default(),
		tableSize: wavetable.DefaultSize,
	}
}

// WithVolume sets the overall output level. Each voice gets volume divided
// by the number of voices.
func WithVolume(v float64) Option {
	return func(cfg *config) {
		if v >= 0 {
			cfg.volume = v
		}
	}
}

// WithWave sets the initial timbre. The default is a sine.
func WithWave(t *wavetable.Table) Option {
	return func(cfg *config) {
		cfg.wave = t
	}
}

// WithEnvelope sets the initial envelope.
func WithEnvelope(env generator.Envelope) Option {
	return func(cfg *config) {
		cfg.envelope = env
	}
}

// WithEffects runs the mixed output through chain.
func WithEffects(chain *intfx.Chain) Option {
	return func(cfg *config) {
		cfg.effects = chain
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithMonitor records xruns and clipping in m.
func WithMonitor(m *diag.Monitor) Option {
	return func(cfg *config) {
		cfg.monitor = m
	}
}

// WithTableSize sets the length of synthesized wavetables.
func WithTableSize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.tableSize = n
		}
	}
}

// WithWorkerIdle sets how often the wavetable worker checks for new
// drawbar settings.
func WithWorkerIdle(d time.Duration) Option {
	return func(cfg *config) {
		cfg.idle = d
	}
}

// WithBufferSize sets the audio device buffer length used by Start.
func WithBufferSize(d time.Duration) Option {
	return func(cfg *config) {
		cfg.bufferSize = d
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *config) {
		cfg.sampleTap = tap
	}
}

// Synth renders voices into stereo audio. Voice snapshots and MIDI control
// changes reach it through mailboxes, so producers never wait on the audio
// goroutine and the audio goroutine never waits on them.
type Synth struct {
	sampleRate int
	bank       *generator.Bank
	handler    *controller.Handler
	notes      *mailbox.Mailbox[note.Voices]
	inbox      *midiin.Inbox
	monitor    *diag.Monitor
	effects    *intfx.Chain
	sampleTap  func([]float32)
	logger     *slog.Logger
	bufferSize time.Duration

	// audio goroutine only
	mix    []float32
	onMIDI func(raw [3]byte)

	mu     sync.Mutex
	audio  *intaudio.Player
	closed bool
}

// NewSynth creates a silent synth. Start connects it to the audio device;
// Process can also be driven directly.
func NewSynth(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.wave == nil {
		cfg.wave = wavetable.Sine(cfg.tableSize)
	}
	if cfg.monitor == nil {
		cfg.monitor = diag.NewMonitor()
	}
	hopts := []controller.Option{
		controller.WithTableSize(cfg.tableSize),
		controller.WithLogger(cfg.logger),
	}
	if cfg.idle > 0 {
		hopts = append(hopts, controller.WithWorkerOptions(worker.WithIdle(cfg.idle)))
	}
	s := &Synth{
		sampleRate: sampleRate,
		bank:       generator.NewBank(cfg.volume, cfg.wave, cfg.envelope),
		handler:    controller.NewHandler(hopts...),
		notes:      mailbox.New[note.Voices](),
		inbox:      midiin.NewInbox(),
		monitor:    cfg.monitor,
		effects:    cfg.effects,
		sampleTap:  cfg.sampleTap,
		logger:     cfg.logger,
		bufferSize: cfg.bufferSize,
	}
	s.mix = make([]float32, max(mixFrames, int(cfg.bufferSize.Seconds()*float64(sampleRate))))
	s.onMIDI = func(raw [3]byte) { s.handler.Handle(s.bank, raw) }
	return s, nil
}

// SampleRate returns the output sample rate in Hz.
func (s *Synth) SampleRate() int { return s.sampleRate }

// Inbox is where MIDI control changes are posted.
func (s *Synth) Inbox() *midiin.Inbox { return s.inbox }

// Monitor returns the glitch counters fed by the audio path.
func (s *Synth) Monitor() *diag.Monitor { return s.monitor }

// SendNotes replaces the voice snapshot the next audio buffer will play. It
// must not be called from more than one goroutine at a time.
func (s *Synth) SendNotes(v note.Voices) { s.notes.Send(v) }

// Consume forwards snapshots from voices until it ends or ctx is cancelled.
// All voices are released before it returns.
func (s *Synth) Consume(ctx context.Context, voices iter.Seq[note.Voices]) {
	defer s.SendNotes(note.Voices{})
	for v := range voices {
		if ctx.Err() != nil {
			return
		}
		s.SendNotes(v)
	}
}

// Process renders len(dst)/2 interleaved stereo frames. It is the audio
// callback: it never blocks and never panics.
func (s *Synth) Process(dst []float32) {
	defer func() {
		if r := recover(); r != nil {
			clear(dst)
			s.logger.Error("audio callback panicked", "panic", r)
		}
	}()
	if v, ok := s.notes.Recv(); ok {
		s.bank.HandleNoteEvents(v)
	}
	s.inbox.Drain(s.onMIDI)
	s.handler.Poll(s.bank)

	frames := len(dst) / 2
	if cap(s.mix) < frames {
		s.mix = make([]float32, frames)
	}
	mix := s.mix[:frames]
	clear(mix)
	s.bank.Generate(mix, s.sampleRate)
	if s.effects != nil {
		s.effects.ProcessBuffer(mix)
	}
	s.monitor.CheckClipping(mix)
	for i, x := range mix {
		dst[2*i] = x
		dst[2*i+1] = x
	}
	clear(dst[2*frames:])
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

// Start opens the audio device and begins playback.
func (s *Synth) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("synth is closed")
	}
	if s.audio != nil {
		return nil
	}
	opts := []intaudio.Option{intaudio.WithXrunReporter(s.monitor)}
	if s.bufferSize > 0 {
		opts = append(opts, intaudio.WithBufferSize(s.bufferSize))
	}
	p, err := intaudio.NewPlayer(s.sampleRate, s, opts...)
	if err != nil {
		return fmt.Errorf("start audio: %w", err)
	}
	p.Play()
	s.audio = p
	s.logger.Info("audio started", "sample_rate", s.sampleRate)
	return nil
}

// Close stops playback and the wavetable worker. It is safe to call more
// than once.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	if s.audio != nil {
		errs = append(errs, s.audio.Stop())
		s.audio = nil
	}
	errs = append(errs, s.handler.Close())
	return errors.Join(errs...)
}
