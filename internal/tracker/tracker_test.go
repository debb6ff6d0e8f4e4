package tracker

import (
	"slices"
	"testing"

	"github.com/holoplot/go-evdev"

	"github.com/cbegin/touchsynth-go/internal/areas"
	"github.com/cbegin/touchsynth-go/internal/note"
	"github.com/cbegin/touchsynth-go/internal/touch"
)

func testMap() *areas.Map {
	return areas.NewMap(areas.Stripes(10, 48), 300, 100)
}

func at(x int32) touch.Position { return touch.Position{X: x, Y: 5} }

func TestUpdateAssignsVoiceByTrackingID(t *testing.T) {
	tr := New(testMap())
	got := tr.Update(touch.Touch(0, 23, at(5)))
	var want note.Voices
	want[3] = note.On(note.Frequency(48))
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestUpdateKeepsOtherVoices(t *testing.T) {
	tr := New(testMap())
	tr.Update(touch.Touch(0, 1, at(5)))
	got := tr.Update(touch.Touch(1, 2, at(15)))
	if got[1] != note.On(note.Frequency(48)) || got[2] != note.On(note.Frequency(49)) {
		t.Fatalf("got %+v", got)
	}
}

func TestLiftTurnsVoiceOff(t *testing.T) {
	tr := New(testMap())
	tr.Update(touch.Touch(0, 4, at(5)))
	if got := tr.Update(touch.NoTouch(0, 4)); got[4] != note.Off {
		t.Fatalf("voice 4 = %+v, want Off", got[4])
	}
}

func TestTouchOutsideAreasIsOff(t *testing.T) {
	tr := New(testMap())
	tr.Update(touch.Touch(0, 4, at(5)))
	if got := tr.Update(touch.Touch(0, 4, at(-50))); got[4] != note.Off {
		t.Fatalf("voice 4 = %+v, want Off", got[4])
	}
}

func TestCollidingTrackingIDsShareVoice(t *testing.T) {
	tr := New(testMap())
	tr.Update(touch.Touch(0, 10, at(5)))
	got := tr.Update(touch.Touch(1, 20, at(15)))
	if got[0] != note.On(note.Frequency(49)) {
		t.Fatalf("voice 0 = %+v, want the later touch", got[0])
	}
	if got := tr.Update(touch.NoTouch(0, 10)); got[0] != note.Off {
		t.Fatalf("lifting either touch turns the shared voice off, got %+v", got[0])
	}
}

func TestVoicesYieldsSnapshotPerTouch(t *testing.T) {
	touches := []touch.TouchState{
		touch.Touch(0, 1, at(5)),
		touch.Touch(0, 1, at(15)),
		touch.NoTouch(0, 1),
	}
	got := slices.Collect(New(testMap()).Voices(slices.Values(touches)))
	if len(got) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(got))
	}
	if got[0][1] != note.On(note.Frequency(48)) || got[1][1] != note.On(note.Frequency(49)) || got[2][1] != note.Off {
		t.Fatalf("unexpected snapshots %+v", got)
	}
}

func TestVoicesIsRestartable(t *testing.T) {
	touches := []touch.TouchState{touch.Touch(0, 1, at(5))}
	seq := New(testMap()).Voices(slices.Values(touches))
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("first %+v, second %+v", first, second)
	}
}

func TestIdleSlotUpdateKeepsHeldVoice(t *testing.T) {
	abs := func(code evdev.EvCode, v int32) touch.Event {
		return touch.Event{Type: uint16(evdev.EV_ABS), Code: uint16(code), Value: v}
	}
	syn := touch.Event{Type: uint16(evdev.EV_SYN), Code: uint16(evdev.SYN_REPORT)}
	events := []touch.Event{
		abs(evdev.ABS_MT_SLOT, 0), abs(evdev.ABS_MT_TRACKING_ID, 10), abs(evdev.ABS_MT_POSITION_X, 5), syn,
		abs(evdev.ABS_MT_SLOT, 3), abs(evdev.ABS_MT_POSITION_X, 7), syn,
	}
	var last note.Voices
	for v := range New(testMap()).Voices(touch.NewDecoder(nil).Decode(slices.Values(events))) {
		last = v
	}
	if last[0] != note.On(note.Frequency(48)) {
		t.Fatalf("voice 0 = %+v, want the held note", last[0])
	}
}
