// Package diag counts audio glitches on the real-time path and reports them
// from elsewhere.
package diag

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultInterval is how often Run reports.
const DefaultInterval = time.Second

// Monitor records xruns and clipping. Recording is lock-free and safe from
// the audio goroutine; Report resets what it returns.
type Monitor struct {
	xruns    atomic.Int64
	clipping atomic.Bool
}

// NewMonitor returns a monitor with nothing recorded.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Xrun records one buffer that was not delivered in time.
func (m *Monitor) Xrun() {
	m.xruns.Add(1)
}

// CheckClipping records clipping if any sample lies outside [-1, 1].
func (m *Monitor) CheckClipping(buf []float32) {
	for _, s := range buf {
		if s > 1 || s < -1 {
			m.clipping.Store(true)
			return
		}
	}
}

// Snapshot is what was recorded since the previous report.
type Snapshot struct {
	Xruns   int64
	Clipped bool
}

func (s Snapshot) String() string {
	var parts []string
	if s.Xruns > 0 {
		parts = append(parts, "xruns: "+strconv.FormatInt(s.Xruns, 10))
	}
	if s.Clipped {
		parts = append(parts, "output was clipped")
	}
	return strings.Join(parts, ", ")
}

// Report returns and clears everything recorded so far. ok is false when
// nothing happened.
func (m *Monitor) Report() (s Snapshot, ok bool) {
	s = Snapshot{
		Xruns:   m.xruns.Swap(0),
		Clipped: m.clipping.Swap(false),
	}
	return s, s.Xruns > 0 || s.Clipped
}

// Run logs a warning every interval in which something was recorded, until
// ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, logger *slog.Logger, interval time.Duration) {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s, ok := m.Report(); ok {
				logger.Warn(s.String(), "xruns", s.Xruns, "clipped", s.Clipped)
			}
		}
	}
}
