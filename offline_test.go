package touchsynth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/wav"
)

func TestRenderSamplesLength(t *testing.T) {
	out, err := RenderSamples(testRate, 0.25, nil, WithTableSize(64))
	if err != nil {
		t.Fatalf("RenderSamples: %v", err)
	}
	if want := testRate / 4 * 2; len(out) != want {
		t.Fatalf("len = %d, want %d", len(out), want)
	}
	if p := peak(out); p != 0 {
		t.Fatalf("peak = %v, want silence without cues", p)
	}
}

func TestRenderAppliesCuesInOrder(t *testing.T) {
	s := newTestSynth(t)
	cues := []Cue{
		{At: 200 * time.Millisecond, Voices: oneVoice(440)},
		{At: 100 * time.Millisecond, Voices: oneVoice(220)},
	}
	out := s.Render(cues, 300*time.Millisecond)
	frame := func(d time.Duration) int { return int(d.Seconds() * testRate) }
	if p := peak(out[:frame(100*time.Millisecond)*2]); p != 0 {
		t.Fatalf("peak before first cue = %v, want silence", p)
	}
	if p := peak(out[frame(100*time.Millisecond)*2 : frame(200*time.Millisecond)*2]); p == 0 {
		t.Fatal("expected sound after the first cue")
	}
	if got := s.bank.Voice(0).Frequency(); got != 440 {
		t.Fatalf("final frequency = %v, want 440", got)
	}
}

func TestEncodeWAV(t *testing.T) {
	samples := make([]float32, 2*1000)
	for i := range samples {
		samples[i] = 0.5
	}
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := EncodeWAV(f, samples, testRate); err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	stream, format, err := wav.Decode(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer stream.Close()
	if int(format.SampleRate) != testRate || format.NumChannels != 2 {
		t.Fatalf("format = %+v", format)
	}
	if stream.Len() != 1000 {
		t.Fatalf("decoded %d frames, want 1000", stream.Len())
	}
}

func TestEncodeWAVIgnoresTrailingHalfFrame(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "odd.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := EncodeWAV(f, []float32{0.1, 0.2, 0.3}, testRate); err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
}
