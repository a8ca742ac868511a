// Package metrics computes the screen-space bounds of draw commands.
//
// Text extents come from real font metrics (Go Regular by default) so that
// tooling can inspect overlap and clipping of a compiled draw list without
// rasterizing it. The renderer may use a different face; bounds here are an
// estimate for inspection, never an input to encoding.
package metrics

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/internal/lru"
)

// Rect is an axis-aligned box. A Rect with MinX > MaxX or MinY > MaxY is empty.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty is the identity for Union.
var Empty = Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}

// IsEmpty reports whether r contains no points.
func (r Rect) IsEmpty() bool { return r.MinX > r.MaxX || r.MinY > r.MaxY }

// Width returns the horizontal extent, or 0 for an empty rect.
func (r Rect) Width() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the vertical extent, or 0 for an empty rect.
func (r Rect) Height() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// Union returns the smallest rect containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Intersects reports whether r and o share at least one point.
func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %g,%g]", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// box returns the rect spanning the given points.
func box(pts ...float64) Rect {
	r := Empty
	for i := 0; i+1 < len(pts); i += 2 {
		r = r.Union(Rect{MinX: pts[i], MinY: pts[i+1], MaxX: pts[i], MaxY: pts[i+1]})
	}
	return r
}

// outset grows r by d on every side.
func (r Rect) outset(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// FontMetrics holds vertical metrics at a given size, in pixels.
type FontMetrics struct {
	Ascent  float64
	Descent float64
	Height  float64
}

// Measurer measures text with one font. It is safe for concurrent use.
type Measurer struct {
	font     *opentype.Font
	advances *lru.Cache[advanceKey, fixed.Int26_6]
}

type advanceKey struct {
	text string
	ppem fixed.Int26_6
}

// NewMeasurer parses a TrueType or OpenType font.
func NewMeasurer(data []byte) (*Measurer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to parse font: %w", err)
	}
	return &Measurer{font: f, advances: lru.New[advanceKey, fixed.Int26_6](0)}, nil
}

var (
	defaultOnce     sync.Once
	defaultMeasurer *Measurer
)

// Default returns a Measurer for the embedded Go Regular font.
func Default() *Measurer {
	defaultOnce.Do(func() {
		m, err := NewMeasurer(goregular.TTF)
		if err != nil {
			panic(err) // embedded font is known good
		}
		defaultMeasurer = m
	})
	return defaultMeasurer
}

func toPPEM(size float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(size * 64))
}

func fixedToFloat64(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}

// Metrics returns the vertical metrics at size pixels per em.
func (m *Measurer) Metrics(size float64) FontMetrics {
	var buf sfnt.Buffer
	fm, err := m.font.Metrics(&buf, toPPEM(size), font.HintingNone)
	if err != nil {
		return FontMetrics{}
	}
	return FontMetrics{
		Ascent:  fixedToFloat64(fm.Ascent),
		Descent: fixedToFloat64(fm.Descent),
		Height:  fixedToFloat64(fm.Height),
	}
}

// Advance returns the horizontal advance of s at size, including kerning.
// Runes missing from the font advance by the notdef glyph.
func (m *Measurer) Advance(s string, size float64) float64 {
	ppem := toPPEM(size)
	adv := m.advances.GetOrCreate(advanceKey{s, ppem}, func() fixed.Int26_6 {
		return m.advance(s, ppem)
	})
	return fixedToFloat64(adv)
}

func (m *Measurer) advance(s string, ppem fixed.Int26_6) fixed.Int26_6 {
	var (
		buf   sfnt.Buffer
		total fixed.Int26_6
		prev  sfnt.GlyphIndex
		first = true
	)
	for _, r := range s {
		idx, err := m.font.GlyphIndex(&buf, r)
		if err != nil {
			idx = 0
		}
		if !first {
			if k, err := m.font.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				total += k
			}
		}
		adv, err := m.font.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err == nil {
			total += adv
		}
		prev, first = idx, false
	}
	return total
}

// Bounds returns the area cmd may touch. Clear covers the whole surface and
// so has no finite bounds of its own; callers use SurfaceBounds for it.
// Strokes are outset by half their thickness. Text is laid out with (X, Y)
// as the top-left corner of its line box.
func (m *Measurer) Bounds(cmd detdraw.DrawCommand) Rect {
	switch c := cmd.(type) {
	case detdraw.RectFill:
		return box(c.X, c.Y, c.X+c.W, c.Y+c.H)
	case detdraw.RectStroke:
		return box(c.X, c.Y, c.X+c.W, c.Y+c.H).outset(c.Thickness / 2)
	case detdraw.Line:
		return box(c.X1, c.Y1, c.X2, c.Y2).outset(c.Thickness / 2)
	case detdraw.Text:
		fm := m.Metrics(c.Size)
		return Rect{MinX: c.X, MinY: c.Y, MaxX: c.X + m.Advance(c.Text, c.Size), MaxY: c.Y + fm.Ascent + fm.Descent}
	case detdraw.Sprite:
		return box(c.X, c.Y, c.X+c.W, c.Y+c.H)
	case detdraw.CircleFill:
		return box(c.CX-c.R, c.CY-c.R, c.CX+c.R, c.CY+c.R)
	case detdraw.CircleStroke:
		return box(c.CX-c.R, c.CY-c.R, c.CX+c.R, c.CY+c.R).outset(c.Thickness / 2)
	case detdraw.ArcStroke:
		return arcBounds(c).outset(c.Thickness / 2)
	case detdraw.CubicStroke:
		// The curve lies inside the hull of its control points.
		return box(c.X0, c.Y0, c.X1, c.Y1, c.X2, c.Y2, c.X3, c.Y3).outset(c.Thickness / 2)
	}
	return Empty
}

// arcBounds spans the arc end points plus every axis extreme it sweeps past.
func arcBounds(c detdraw.ArcStroke) Rect {
	point := func(turns float64) (float64, float64) {
		a := 2 * math.Pi * turns
		return c.CX + c.R*math.Cos(a), c.CY + c.R*math.Sin(a)
	}
	if math.Abs(c.Sweep) >= 1 {
		return box(c.CX-c.R, c.CY-c.R, c.CX+c.R, c.CY+c.R)
	}
	lo, hi := c.Start, c.Start+c.Sweep
	if lo > hi {
		lo, hi = hi, lo
	}
	x0, y0 := point(lo)
	x1, y1 := point(hi)
	r := box(x0, y0, x1, y1)
	for q := math.Ceil(lo * 4); q <= hi*4; q++ {
		x, y := point(q / 4)
		r = r.Union(box(x, y))
	}
	return r
}

// SurfaceBounds returns the rect covered by a list's surface.
func SurfaceBounds(list *detdraw.DrawList) Rect {
	return Rect{MaxX: float64(list.Width), MaxY: float64(list.Height)}
}

// ListBounds returns the union of the bounds of every non-Clear command.
func (m *Measurer) ListBounds(list *detdraw.DrawList) Rect {
	r := Empty
	for _, cmd := range list.Cmds {
		if _, ok := cmd.(detdraw.Clear); ok {
			continue
		}
		r = r.Union(m.Bounds(cmd))
	}
	return r
}

// Offscreen returns the indexes of commands lying entirely outside the
// list's surface.
func (m *Measurer) Offscreen(list *detdraw.DrawList) []int {
	surface := SurfaceBounds(list)
	var out []int
	for i, cmd := range list.Cmds {
		if _, ok := cmd.(detdraw.Clear); ok {
			continue
		}
		if b := m.Bounds(cmd); !b.IsEmpty() && !b.Intersects(surface) {
			out = append(out, i)
		}
	}
	return out
}
