package controller

import (
	"log/slog"

	"github.com/cbegin/touchsynth-go/internal/generator"
	"github.com/cbegin/touchsynth-go/internal/wavetable"
	"github.com/cbegin/touchsynth-go/internal/worker"
)

// Harmonics holds one volume per drawbar.
type Harmonics [wavetable.MaxHarmonics]float64

// Table synthesizes the organ timbre for h.
func (h Harmonics) Table(size int) *wavetable.Table {
	return wavetable.Hammond(h[:], size)
}

type config struct {
	tableSize int
	logger    *slog.Logger
	workerOpt []worker.Option
}

// Option configures a Handler.
type Option func(*config)

// WithTableSize sets the length of synthesized wavetables.
func WithTableSize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.tableSize = n
		}
	}
}

// WithLogger sets the logger used by the resynthesis worker.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithWorkerOptions passes options through to the resynthesis worker.
func WithWorkerOptions(opts ...worker.Option) Option {
	return func(cfg *config) {
		cfg.workerOpt = append(cfg.workerOpt, opts...)
	}
}

// Handler applies controller events to a voice bank. Volume and envelope
// changes take effect immediately. Drawbar changes are accumulated here and
// the full set is handed to a background worker, because synthesizing a new
// table is too slow for the audio callback.
//
// Handle and Poll must be called from the audio goroutine.
type Handler struct {
	harmonics Harmonics
	hammond   *worker.Worker[Harmonics, *wavetable.Table]
}

// NewHandler starts the resynthesis worker. Close stops it.
func NewHandler(opts ...Option) *Handler {
	cfg := config{tableSize: wavetable.DefaultSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	size := cfg.tableSize
	wopts := append([]worker.Option{worker.WithLogger(cfg.logger)}, cfg.workerOpt...)
	return &Handler{
		hammond: worker.Start(func(h Harmonics) *wavetable.Table {
			return h.Table(size)
		}, wopts...),
	}
}

// Harmonics returns the accumulated drawbar volumes.
func (h *Handler) Harmonics() Harmonics { return h.harmonics }

// Handle decodes raw and applies it to bank. Messages that do not decode
// are ignored.
func (h *Handler) Handle(bank *generator.Bank, raw [3]byte) {
	ev, ok := Decode(raw)
	if !ok {
		return
	}
	h.Apply(bank, ev)
}

// Apply applies a decoded event to bank.
func (h *Handler) Apply(bank *generator.Bank, ev Event) {
	env := bank.Envelope()
	switch ev.Kind {
	case Volume:
		bank.SetVolume(ev.Value)
		return
	case Attack:
		env.Attack = ev.Value
	case Decay:
		env.Decay = ev.Value
	case Sustain:
		env.Sustain = ev.Value
	case Release:
		env.Release = ev.Value
	case HarmonicVolume:
		if ev.Index < 0 || ev.Index >= len(h.harmonics) {
			return
		}
		h.harmonics[ev.Index] = ev.Value
		h.hammond.Enqueue(h.harmonics)
		return
	default:
		return
	}
	bank.SetEnvelope(env)
}

// Poll swaps a freshly synthesized table into bank if one is ready.
func (h *Handler) Poll(bank *generator.Bank) {
	if t, ok := h.hammond.Poll(); ok {
		bank.SetWave(t)
	}
}

// Close stops the resynthesis worker and waits for it to exit.
func (h *Handler) Close() error {
	return h.hammond.Close()
}
