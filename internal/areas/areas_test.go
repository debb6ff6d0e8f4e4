package areas

import (
	"testing"

	"github.com/cbegin/touchsynth-go/internal/note"
)

func TestGridSize(t *testing.T) {
	if n := len(Build(Grid(800, 600, 80, 60, 0))); n != 80*60 {
		t.Fatalf("len = %d, want %d", n, 80*60)
	}
	if n := len(Build(Grid(800, 600, 10, 6, 0))); n != 10*6 {
		t.Fatalf("len = %d, want %d", n, 10*6)
	}
}

func TestGridPitches(t *testing.T) {
	areas := Build(Grid(800, 600, 80, 60, 36))
	if areas[0].Pitch != 36 {
		t.Fatalf("area 0 pitch = %d, want 36", areas[0].Pitch)
	}
	if areas[1].Pitch != 37 {
		t.Fatalf("area 1 pitch = %d, want 37", areas[1].Pitch)
	}
	if areas[80].Pitch != 36+DefaultRowInterval {
		t.Fatalf("area 80 pitch = %d, want %d", areas[80].Pitch, 36+DefaultRowInterval)
	}
}

func TestGridAnchorsBottomLeft(t *testing.T) {
	for _, tc := range []struct {
		w, h int32
		want Shape
	}{
		{800, 600, Shape{pos(0, 600), pos(10, 0), pos(0, -10)}},
		{8000, 1200, Shape{pos(0, 1200), pos(100, 0), pos(0, -20)}},
	} {
		if got := Build(Grid(tc.w, tc.h, 80, 60, 0))[0].Shape; got != tc.want {
			t.Errorf("grid(%d, %d) area 0 = %+v, want %+v", tc.w, tc.h, got, tc.want)
		}
	}
}

func TestGridRows(t *testing.T) {
	areas := Build(Grid(800, 600, 80, 60, 0))
	for i := int32(0); i < 80; i++ {
		for _, tc := range []struct {
			row   int32
			baseY int32
		}{
			{0, 600},
			{1, 590},
			{59, 10},
		} {
			got := areas[tc.row*80+i]
			want := Area{
				Shape: Shape{pos(10*i, tc.baseY), pos(10, 0), pos(0, -10)},
				Pitch: int(i + 5*tc.row),
			}
			if got != want {
				t.Fatalf("row %d column %d = %+v, want %+v", tc.row, i, got, want)
			}
		}
	}
}

func TestPortraitAnchorsBottomRight(t *testing.T) {
	areas := Build(Parallelograms(1000, 2000, 24))
	if len(areas) != 11*17 {
		t.Fatalf("len = %d, want %d", len(areas), 11*17)
	}
	// column -3 of row 0 is the first area
	want := Shape{pos(1000, 2000+3*1300), pos(0, -1300), pos(-1000, -200)}
	if areas[0].Shape != want || areas[0].Pitch != 21 {
		t.Fatalf("area 0 = %+v, want %+v with pitch 21", areas[0], want)
	}
}

func TestLookup(t *testing.T) {
	areas := Build(Grid(800, 600, 80, 60, 36))
	for _, tc := range []struct {
		name  string
		x, y  int32
		pitch int
	}{
		{"bottom-left", 5, 595, 36},
		{"next column", 15, 595, 37},
		{"second row", 5, 585, 41},
		{"boundary belongs to upper cell", 10, 590, 42},
	} {
		got, ok := Lookup(areas, pos(tc.x, tc.y))
		if !ok || got != note.Frequency(tc.pitch) {
			t.Errorf("%s: Lookup = %v, %v; want %v", tc.name, got, ok, note.Frequency(tc.pitch))
		}
	}
	if _, ok := Lookup(areas, pos(-1, 300)); ok {
		t.Error("position left of the surface should not match")
	}
}

func TestLookupFirstMatchWins(t *testing.T) {
	areas := []Area{
		{Shape: Rect(0, 0, 10, 10), Pitch: 60},
		{Shape: Rect(0, 0, 20, 20), Pitch: 72},
	}
	if got, _ := Lookup(areas, pos(5, 5)); got != note.Frequency(60) {
		t.Fatalf("Lookup = %v, want the first area's frequency", got)
	}
	if got, _ := Lookup(areas, pos(15, 15)); got != note.Frequency(72) {
		t.Fatalf("Lookup = %v, want the second area's frequency", got)
	}
}

func TestStripes(t *testing.T) {
	for _, tc := range []struct {
		size  int32
		x     int32
		pitch int
	}{
		{10, 5, 48},
		{10, 15, 49},
		{10, 9, 48},
		{10, 10, 49},
		{12, 11, 48},
		{12, 12, 49},
	} {
		m := NewMap(Stripes(tc.size, 48), 800, 600)
		if got := m.NoteEvent(pos(tc.x, 5)); got != note.On(note.Frequency(tc.pitch)) {
			t.Errorf("size %d x %d: got %+v, want pitch %d", tc.size, tc.x, got, tc.pitch)
		}
	}
}

func TestPeasLowestRow(t *testing.T) {
	areas := Peas(600, 10, 36)
	for i, want := range []Shape{Rect(0, 590, 10, 10), Rect(5, 580, 10, 10), Rect(10, 590, 10, 10)} {
		if areas[i].Shape != want {
			t.Errorf("area %d = %+v, want %+v", i, areas[i].Shape, want)
		}
	}
	if areas[36].Pitch != 48 {
		t.Errorf("second row starts at %d, want 48", areas[36].Pitch)
	}
}

func TestMapNoteEventOutside(t *testing.T) {
	m := NewMap(Build(Grid(800, 600, 8, 6, 36)), 800, 600)
	if got := m.NoteEvent(pos(900, 100)); got != note.Off {
		t.Fatalf("NoteEvent outside = %+v, want Off", got)
	}
}

func TestParseLayoutType(t *testing.T) {
	for _, name := range []string{"grid", "Grid", "PARALLELOGRAMS", "stripes", "Peas"} {
		if _, err := ParseLayoutType(name); err != nil {
			t.Errorf("ParseLayoutType(%q): %v", name, err)
		}
	}
	if _, err := ParseLayoutType("triangles"); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestNewBuildsEveryLayout(t *testing.T) {
	for _, lt := range LayoutTypes {
		m, err := New(lt, 1200, 800, 36)
		if err != nil {
			t.Fatalf("New(%s): %v", lt, err)
		}
		if len(m.Areas()) == 0 {
			t.Fatalf("New(%s) produced no areas", lt)
		}
	}
}
