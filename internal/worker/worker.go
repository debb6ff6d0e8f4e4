// Package worker runs a slow computation on a dedicated goroutine that is fed
// and read through mailboxes, so real-time callers never wait on it.
package worker

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cbegin/touchsynth-go/internal/mailbox"
)

// DefaultIdle is how long the worker sleeps between mailbox checks.
const DefaultIdle = 50 * time.Millisecond

type message[In any] struct {
	stop  bool
	input In
}

type config struct {
	idle   time.Duration
	logger *slog.Logger
}

// Option configures a Worker.
type Option func(*config)

// WithIdle sets the pause between mailbox checks.
func WithIdle(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.idle = d
		}
	}
}

// WithLogger sets the logger used to report a crashed computation.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Worker owns one goroutine and two mailboxes. Inputs sent faster than the
// computation runs are collapsed to the latest one, and so are results that
// are not polled in time. The goroutine checks its input once per idle
// period, starting one idle period after Start.
type Worker[In, Out any] struct {
	in     *mailbox.Mailbox[message[In]]
	out    *mailbox.Mailbox[Out]
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
	panicErr  error
}

// Start launches the worker goroutine. Close must be called to stop it.
func Start[In, Out any](compute func(In) Out, opts ...Option) *Worker[In, Out] {
	cfg := config{idle: DefaultIdle, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	w := &Worker[In, Out]{
		in:     mailbox.New[message[In]](),
		out:    mailbox.New[Out](),
		done:   make(chan struct{}),
		logger: cfg.logger,
	}
	go w.run(compute, cfg.idle)
	return w
}

func (w *Worker[In, Out]) run(compute func(In) Out, idle time.Duration) {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.panicErr = fmt.Errorf("worker: computation panicked: %v", r)
		}
	}()
	for {
		time.Sleep(idle)
		msg, ok := w.in.Recv()
		if !ok {
			continue
		}
		if msg.stop {
			return
		}
		w.out.Send(compute(msg.input))
	}
}

// Enqueue hands input to the worker, replacing any input it has not picked up.
// It does not allocate. Enqueue and Close share the input mailbox and must not
// be called concurrently.
func (w *Worker[In, Out]) Enqueue(input In) {
	w.in.Send(message[In]{input: input})
}

// Poll returns the latest finished result, if one arrived since the last Poll.
// It never blocks.
func (w *Worker[In, Out]) Poll() (Out, bool) {
	return w.out.Recv()
}

// Close asks the worker to stop and waits for its goroutine to exit. If the
// computation panicked, the panic is logged and returned as an error.
func (w *Worker[In, Out]) Close() error {
	w.closeOnce.Do(func() {
		w.in.Send(message[In]{stop: true})
		<-w.done
		if w.panicErr != nil {
			w.logger.Error("worker: join failed", "err", w.panicErr)
			w.closeErr = w.panicErr
		}
	})
	return w.closeErr
}
