package touchsynth

import (
	"context"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/cbegin/touchsynth-go/internal/controller"
	"github.com/cbegin/touchsynth-go/internal/effects"
	"github.com/cbegin/touchsynth-go/internal/generator"
	"github.com/cbegin/touchsynth-go/internal/note"
	"github.com/cbegin/touchsynth-go/internal/wavetable"
)

const testRate = 48000

func newTestSynth(t testing.TB, opts ...Option) *Synth {
	t.Helper()
	opts = append([]Option{WithTableSize(256), WithWorkerIdle(time.Millisecond)}, opts...)
	s, err := NewSynth(testRate, opts...)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func oneVoice(freq float64) note.Voices {
	var v note.Voices
	v[0] = note.On(freq)
	return v
}

func peak(buf []float32) float64 {
	var p float64
	for _, x := range buf {
		p = math.Max(p, math.Abs(float64(x)))
	}
	return p
}

func TestNewSynthRejectsBadSampleRate(t *testing.T) {
	if _, err := NewSynth(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestProcessIsSilentWithoutNotes(t *testing.T) {
	s := newTestSynth(t)
	buf := make([]float32, 1024)
	for i := range buf {
		buf[i] = 1
	}
	s.Process(buf)
	if p := peak(buf); p != 0 {
		t.Fatalf("peak = %v, want silence", p)
	}
}

func TestProcessPlaysNotesOnBothChannels(t *testing.T) {
	s := newTestSynth(t)
	s.SendNotes(oneVoice(440))
	buf := make([]float32, 1024)
	s.Process(buf)
	if p := peak(buf); p == 0 {
		t.Fatal("expected sound after note on")
	}
	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d differs between channels: %v %v", i/2, buf[i], buf[i+1])
		}
	}
}

func TestVoiceAmplitudeIsSplitAcrossPolyphony(t *testing.T) {
	one := wavetable.FromFunction(func(float64) float64 { return 1 }, 16)
	s := newTestSynth(t, WithWave(one), WithVolume(1))
	s.SendNotes(oneVoice(440))
	buf := make([]float32, 8)
	s.Process(buf)
	if got := float64(buf[0]); math.Abs(got-1.0/note.Polyphony) > 1e-6 {
		t.Fatalf("sample = %v, want %v", got, 1.0/note.Polyphony)
	}
}

func TestMIDIVolumeAppliesInCallback(t *testing.T) {
	s := newTestSynth(t)
	s.SendNotes(oneVoice(440))
	s.Inbox().Post([3]byte{0xB0, controller.CCExpression, 0})
	buf := make([]float32, 1024)
	s.Process(buf)
	if p := peak(buf); p != 0 {
		t.Fatalf("peak = %v, want silence at volume 0", p)
	}
}

func TestMIDIDrawbarsSwapWave(t *testing.T) {
	s := newTestSynth(t)
	s.Inbox().Post([3]byte{0xB0, controller.CCFirstDrawbar + 1, 127})
	var h controller.Harmonics
	h[1] = controller.VolumeCurve(127)
	want := h.Table(256)
	buf := make([]float32, 64)
	deadline := time.Now().Add(time.Second)
	for !s.bank.Wave().Equal(want) {
		if time.Now().After(deadline) {
			t.Fatal("wave was not replaced in time")
		}
		s.Process(buf)
		time.Sleep(time.Millisecond)
	}
}

func TestClippingIsRecorded(t *testing.T) {
	one := wavetable.FromFunction(func(float64) float64 { return 1 }, 16)
	s := newTestSynth(t, WithWave(one), WithVolume(20))
	s.SendNotes(oneVoice(440))
	s.Process(make([]float32, 64))
	snap, ok := s.Monitor().Report()
	if !ok || !snap.Clipped {
		t.Fatalf("Report = %+v, %v; want clipping", snap, ok)
	}
}

func TestEffectsAreApplied(t *testing.T) {
	one := wavetable.FromFunction(func(float64) float64 { return 1 }, 16)
	s := newTestSynth(t, WithWave(one), WithEffects(effects.NewChain(effects.NewDistortion(testRate, 1, 0, 0))))
	s.SendNotes(oneVoice(440))
	buf := make([]float32, 64)
	s.Process(buf)
	if p := peak(buf); p != 0 {
		t.Fatalf("peak = %v, want silence through a zero-gain effect", p)
	}
}

func TestSampleTapPanicIsContained(t *testing.T) {
	s := newTestSynth(t, WithSampleTap(func([]float32) { panic("boom") }))
	s.SendNotes(oneVoice(440))
	buf := make([]float32, 64)
	s.Process(buf)
	if p := peak(buf); p != 0 {
		t.Fatalf("peak = %v, want a silenced buffer after a panic", p)
	}
}

func TestConsumeForwardsAndReleases(t *testing.T) {
	s := newTestSynth(t)
	s.Consume(context.Background(), slices.Values([]note.Voices{oneVoice(440)}))
	buf := make([]float32, 64)
	s.Process(buf)
	if s.bank.Voice(0).State() == generator.Playing {
		t.Fatal("voice should have been released when the sequence ended")
	}
}

func TestConsumeStopsOnCancel(t *testing.T) {
	s := newTestSynth(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var pulled int
	seq := func(yield func(note.Voices) bool) {
		for {
			pulled++
			if !yield(oneVoice(440)) {
				return
			}
		}
	}
	s.Consume(ctx, seq)
	if pulled != 1 {
		t.Fatalf("pulled %d snapshots after cancel, want 1", pulled)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := NewSynth(testRate, WithTableSize(16))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("Start after Close should fail")
	}
}

func BenchmarkSynthProcess(b *testing.B) {
	s := newTestSynth(b, WithTableSize(wavetable.DefaultSize))
	var v note.Voices
	for i := range v {
		v[i] = note.On(note.Frequency(48 + i))
	}
	s.SendNotes(v)
	buf := make([]float32, 512*2)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Process(buf)
	}
}

func TestProcessClearsTrailingHalfFrame(t *testing.T) {
	s := newTestSynth(t)
	s.SendNotes(oneVoice(440))
	buf := make([]float32, 65)
	buf[64] = 0.75
	s.Process(buf)
	if buf[64] != 0 {
		t.Fatalf("trailing sample = %v, want 0", buf[64])
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	s, err := NewSynth(testRate, WithTableSize(256), WithWorkerIdle(500*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	buf := make([]float32, 2*mixFrames)
	var cc byte
	allocs := testing.AllocsPerRun(50, func() {
		cc++
		s.SendNotes(oneVoice(220 + float64(cc)))
		s.Inbox().Post([3]byte{0xB0, controller.CCFirstDrawbar + cc%8, cc & 0x7F})
		s.Inbox().Post([3]byte{0xB0, controller.CCExpression, cc & 0x7F})
		s.Process(buf)
	})
	if allocs != 0 {
		t.Fatalf("allocs per Process = %v, want 0", allocs)
	}
}
