package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cbegin/touchsynth-go"
	"github.com/cbegin/touchsynth-go/internal/areas"
	"github.com/cbegin/touchsynth-go/internal/diag"
	"github.com/cbegin/touchsynth-go/internal/effects"
	"github.com/cbegin/touchsynth-go/internal/midiin"
	"github.com/cbegin/touchsynth-go/internal/midiout"
	"github.com/cbegin/touchsynth-go/internal/note"
	"github.com/cbegin/touchsynth-go/internal/touch"
	"github.com/cbegin/touchsynth-go/internal/tracker"
	"github.com/cbegin/touchsynth-go/internal/wavetable"
)

const (
	defaultDevice = "/dev/input/event0"
	// surface used when no device is opened
	defaultWidth  = 1920
	defaultHeight = 1080
)

// drawbars used by -sound hammond
var organDrawbars = []float64{1, 0.8, 0.6, 0.4, 0.2, 0.1, 0.05, 0.02}

type options struct {
	sampleRate int
	volume     float64
	layout     string
	pitch      int
	device     string
	width      int
	height     int
	midiIn     string
	midiOut    bool
	printNotes bool
	devMode    bool
	sound      string
	fx         string
	render     string
	seconds    float64
	debug      bool
}

func main() {
	var o options
	flag.IntVar(&o.sampleRate, "sample-rate", 48000, "output sample rate")
	flag.Float64Var(&o.volume, "volume", 1.0, "master volume, split across all voices")
	flag.StringVar(&o.layout, "layout", string(areas.ParallelogramsLayout), fmt.Sprintf("note layout: %v", areas.LayoutTypes))
	flag.IntVar(&o.pitch, "pitch", 36, "MIDI pitch of the first area")
	flag.StringVar(&o.device, "device", defaultDevice, "evdev touch screen device")
	flag.IntVar(&o.width, "width", 0, "touch surface width (0 = ask the device)")
	flag.IntVar(&o.height, "height", 0, "touch surface height (0 = ask the device)")
	flag.StringVar(&o.midiIn, "midi-in", "", "substring of the MIDI controller port name (empty = no controller)")
	flag.BoolVar(&o.midiOut, "midi-out", false, "send notes to a MIDI output instead of synthesizing")
	flag.BoolVar(&o.printNotes, "print-notes", false, "log notes instead of synthesizing")
	flag.BoolVar(&o.devMode, "dev-mode", false, "run without a touch screen")
	flag.StringVar(&o.sound, "sound", "sine", "oscillator wave: sine|rectangle|hammond, or wave:<hex> for a cycle of signed 8-bit samples")
	flag.StringVar(&o.fx, "fx", "", `master effects, e.g. "comp,reverb:0.5:0.7:0.25"`)
	flag.StringVar(&o.fx, "reverb", "", "alias for -fx")
	flag.StringVar(&o.render, "render", "", "render a demo gesture to this WAV file and exit")
	flag.Float64Var(&o.seconds, "seconds", 4, "length of -render output")
	flag.BoolVar(&o.debug, "debug", false, "debug logging")
	flag.Parse()

	logger := newLogger(o.debug)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("touchsynth failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
	slog.SetDefault(logger)
	return logger
}

func run(ctx context.Context, o options, logger *slog.Logger) error {
	lt, err := areas.ParseLayoutType(o.layout)
	if err != nil {
		return err
	}
	wave, err := parseSound(o.sound)
	if err != nil {
		return err
	}
	chain, err := effects.Parse(o.fx, o.sampleRate)
	if err != nil {
		return err
	}
	synthOpts := []touchsynth.Option{
		touchsynth.WithVolume(o.volume),
		touchsynth.WithWave(wave),
		touchsynth.WithLogger(logger),
	}
	if chain.Len() > 0 {
		synthOpts = append(synthOpts, touchsynth.WithEffects(chain))
	}

	if o.render != "" {
		m, err := areas.New(lt, surface(o.width, defaultWidth), surface(o.height, defaultHeight), o.pitch)
		if err != nil {
			return err
		}
		return render(o, m, synthOpts, logger)
	}

	events, width, height, closeDevice, err := openInput(ctx, o, logger)
	if err != nil {
		return err
	}
	defer closeDevice()
	m, err := areas.New(lt, width, height, o.pitch)
	if err != nil {
		return err
	}
	logger.Info("layout ready", "layout", lt, "areas", len(m.Areas()), "width", width, "height", height)
	voices := tracker.New(m).Voices(touch.NewDecoder(logger).Decode(events))

	if o.midiOut || o.printNotes {
		var sink midiout.Sink
		if o.printNotes {
			sink = midiout.NewPrinter(logger)
		} else {
			p, err := midiout.Open(logger)
			if err != nil {
				return err
			}
			defer p.Close()
			sink = p
		}
		midiout.Consume(ctx, voices, sink, logger)
		return nil
	}

	synth, err := touchsynth.NewSynth(o.sampleRate, synthOpts...)
	if err != nil {
		return err
	}
	defer synth.Close()

	if o.midiIn != "" {
		l, err := midiin.Listen(synth.Inbox(), o.midiIn, logger)
		if err != nil {
			return err
		}
		defer l.Close()
	}
	if err := synth.Start(); err != nil {
		return err
	}
	go synth.Monitor().Run(ctx, logger, diag.DefaultInterval)

	synth.Consume(ctx, voices)
	logger.Info("shutting down")
	return nil
}

// openInput returns the touch event source and the surface size.
func openInput(ctx context.Context, o options, logger *slog.Logger) (events iter.Seq[touch.Event], width, height int32, closeFn func(), err error) {
	if o.devMode {
		logger.Info("dev mode: no touch screen")
		return touch.Idle(ctx), surface(o.width, defaultWidth), surface(o.height, defaultHeight), func() {}, nil
	}
	dev, err := touch.Open(o.device, logger)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	width, height = int32(o.width), int32(o.height)
	if width <= 0 || height <= 0 {
		w, h, err := dev.Size()
		if err != nil {
			dev.Close()
			return nil, 0, 0, nil, err
		}
		width, height = w, h
	}
	return dev.Events(ctx), width, height, func() { dev.Close() }, nil
}

func surface(v, def int) int32 {
	if v > 0 {
		return int32(v)
	}
	return int32(def)
}

func parseSound(name string) (*wavetable.Table, error) {
	if kind, hexCycle, ok := strings.Cut(name, ":"); ok && strings.EqualFold(kind, "wave") {
		cycle, err := wavetable.ParseCycle(hexCycle)
		if err != nil {
			return nil, fmt.Errorf("invalid -sound %q: %w", name, err)
		}
		return wavetable.FromSamples(cycle, wavetable.DefaultSize), nil
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine":
		return wavetable.Sine(wavetable.DefaultSize), nil
	case "rectangle", "square":
		return wavetable.Rectangle(wavetable.DefaultSize), nil
	case "hammond", "organ":
		return wavetable.Hammond(organDrawbars, wavetable.DefaultSize), nil
	default:
		return nil, fmt.Errorf("invalid -sound %q (expected sine|rectangle|hammond|wave:<hex>)", name)
	}
}

// render plays a scripted gesture through the tracker and writes a WAV file.
func render(o options, m *areas.Map, synthOpts []touchsynth.Option, logger *slog.Logger) error {
	if o.seconds <= 0 {
		return errors.New("-seconds must be positive")
	}
	d := time.Duration(o.seconds * float64(time.Second))
	samples, err := touchsynth.RenderSamples(o.sampleRate, o.seconds, gesture(m, d), synthOpts...)
	if err != nil {
		return err
	}
	f, err := os.Create(o.render)
	if err != nil {
		return fmt.Errorf("create %s: %w", o.render, err)
	}
	if err := touchsynth.EncodeWAV(f, samples, o.sampleRate); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", o.render, err)
	}
	logger.Info("rendered", "path", o.render, "seconds", o.seconds)
	return nil
}

// gesture taps eight fingers one after another across the middle of the
// surface, then lifts them all.
func gesture(m *areas.Map, d time.Duration) []touchsynth.Cue {
	const taps = 8
	w, h := m.Size()
	tr := tracker.New(m)
	step := d / (taps + 2)
	cues := make([]touchsynth.Cue, 0, taps*2)
	for i := range taps {
		pos := touch.Position{X: w * int32(2*i+1) / (2 * taps), Y: h / 2}
		v := tr.Update(touch.Touch(i, int32(i), pos))
		cues = append(cues, touchsynth.Cue{At: step * time.Duration(i), Voices: v})
	}
	var last note.Voices
	for i := range taps {
		last = tr.Update(touch.NoTouch(i, int32(i)))
	}
	cues = append(cues, touchsynth.Cue{At: step * taps, Voices: last})
	return cues
}
