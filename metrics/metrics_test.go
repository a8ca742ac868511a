package metrics

import (
	"math"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/detdraw"
)

const eps = 1e-9

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func rectNear(a, b Rect) bool {
	return near(a.MinX, b.MinX, eps) && near(a.MinY, b.MinY, eps) &&
		near(a.MaxX, b.MaxX, eps) && near(a.MaxY, b.MaxY, eps)
}

func TestBoundsShapes(t *testing.T) {
	m := Default()
	tests := []struct {
		name string
		cmd  detdraw.DrawCommand
		want Rect
	}{
		{"rect fill", detdraw.RectFill{X: 10, Y: 20, W: 30, H: 40}, Rect{10, 20, 40, 60}},
		{"rect stroke", detdraw.RectStroke{X: 10, Y: 20, W: 30, H: 40, Thickness: 2}, Rect{9, 19, 41, 61}},
		{"line reversed", detdraw.Line{X1: 50, Y1: 5, X2: 10, Y2: 25, Thickness: 4}, Rect{8, 3, 52, 27}},
		{"sprite", detdraw.Sprite{X: 1, Y: 2, W: 3, H: 4}, Rect{1, 2, 4, 6}},
		{"circle fill", detdraw.CircleFill{CX: 50, CY: 50, R: 10}, Rect{40, 40, 60, 60}},
		{"circle stroke", detdraw.CircleStroke{CX: 50, CY: 50, R: 10, Thickness: 2}, Rect{39, 39, 61, 61}},
		{"full arc", detdraw.ArcStroke{CX: 0, CY: 0, R: 5, Sweep: -1.5}, Rect{-5, -5, 5, 5}},
		{"cubic hull", detdraw.CubicStroke{X0: 0, Y0: 0, X1: 10, Y1: -10, X2: 20, Y2: 30, X3: 5, Y3: 5}, Rect{0, -10, 20, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Bounds(tt.cmd); !rectNear(got, tt.want) {
				t.Errorf("Bounds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArcBounds(t *testing.T) {
	m := Default()

	// Quarter turn from angle 0 stays in one quadrant.
	got := m.Bounds(detdraw.ArcStroke{CX: 100, CY: 100, R: 10, Start: 0, Sweep: 0.25})
	want := Rect{100, 100, 110, 110}
	if !rectNear(got, want) {
		t.Errorf("quarter arc = %v, want %v", got, want)
	}

	// Half turn from 1/8 passes the extreme at 1/4 and 1/2.
	got = m.Bounds(detdraw.ArcStroke{CX: 0, CY: 0, R: 10, Start: 0.125, Sweep: 0.5})
	if !near(got.MaxY, 10, eps) || !near(got.MinX, -10, eps) {
		t.Errorf("half arc = %v, want MaxY=10 MinX=-10", got)
	}
	if got.MaxX > 10*math.Cos(math.Pi/4)+eps {
		t.Errorf("half arc MaxX = %v exceeds start point", got.MaxX)
	}
}

func TestAdvance(t *testing.T) {
	m := Default()
	if got := m.Advance("", 12); got != 0 {
		t.Errorf("Advance(\"\") = %v, want 0", got)
	}
	a := m.Advance("i", 12)
	w := m.Advance("W", 12)
	if a <= 0 || w <= a {
		t.Errorf("Advance(i)=%v Advance(W)=%v; want 0 < i < W", a, w)
	}
	one := m.Advance("hello", 12)
	two := m.Advance("hello", 24)
	if !near(two, 2*one, 1) {
		t.Errorf("Advance at 24 = %v, want about %v", two, 2*one)
	}
	if m.Advance("hellohello", 12) <= one {
		t.Error("longer text should advance further")
	}
}

func TestTextBounds(t *testing.T) {
	m := Default()
	txt := detdraw.Text{X: 4, Y: 4, Size: 12, Text: "draw list truncated"}
	b := m.Bounds(txt)
	if b.MinX != 4 || b.MinY != 4 {
		t.Errorf("origin = (%v,%v), want (4,4)", b.MinX, b.MinY)
	}
	if !near(b.Width(), m.Advance(txt.Text, 12), eps) {
		t.Errorf("Width = %v, want advance", b.Width())
	}
	fm := m.Metrics(12)
	if fm.Ascent <= 0 || fm.Descent <= 0 || fm.Height < fm.Ascent {
		t.Errorf("Metrics = %+v", fm)
	}
	if !near(b.Height(), fm.Ascent+fm.Descent, eps) {
		t.Errorf("Height = %v, want ascent+descent", b.Height())
	}
}

func TestListBoundsAndOffscreen(t *testing.T) {
	m := Default()
	list := &detdraw.DrawList{Width: 100, Height: 100, Cmds: []detdraw.DrawCommand{
		detdraw.Clear{},
		detdraw.RectFill{X: 10, Y: 10, W: 10, H: 10},
		detdraw.RectFill{X: 200, Y: 200, W: 5, H: 5},
		detdraw.Line{X1: 0, Y1: 50, X2: 100, Y2: 50},
	}}
	got := m.ListBounds(list)
	if !rectNear(got, Rect{0, 10, 205, 205}) {
		t.Errorf("ListBounds = %v", got)
	}
	off := m.Offscreen(list)
	if len(off) != 1 || off[0] != 2 {
		t.Errorf("Offscreen = %v, want [2]", off)
	}

	empty := &detdraw.DrawList{Cmds: []detdraw.DrawCommand{detdraw.Clear{}}}
	if b := m.ListBounds(empty); !b.IsEmpty() || b.Width() != 0 {
		t.Errorf("ListBounds of Clear-only list = %v, want empty", b)
	}
}

func TestNewMeasurerInvalid(t *testing.T) {
	if _, err := NewMeasurer([]byte("not a font")); err == nil {
		t.Error("NewMeasurer should reject garbage")
	}
}

func TestAdvanceCached(t *testing.T) {
	m, err := NewMeasurer(goregular.TTF)
	if err != nil {
		t.Fatalf("NewMeasurer failed: %v", err)
	}
	first := m.Advance("cached", 16)
	second := m.Advance("cached", 16)
	if first != second {
		t.Errorf("cached advance %v differs from %v", second, first)
	}
	st := m.advances.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Len != 1 {
		t.Errorf("cache stats = %+v, want 1 hit, 1 miss, 1 entry", st)
	}
	m.Advance("cached", 17)
	if m.advances.Len() != 2 {
		t.Errorf("a new size should add a cache entry")
	}
}
