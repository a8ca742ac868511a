package collect

import (
	"bytes"
	"cmp"
	"slices"
	"strings"

	"github.com/gogpu/detdraw"
)

// ShapeKind is the kind of shape an entry renders as. The numeric value is
// part of the sort key.
type ShapeKind uint8

const (
	ShapeRect   ShapeKind = 1
	ShapeText   ShapeKind = 2
	ShapeSprite ShapeKind = 3
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "rect"
	case ShapeText:
		return "text"
	case ShapeSprite:
		return "sprite"
	}
	return "unknown"
}

// Shape kind literals: canonical first, then the legacy alias.
var shapeLiterals = map[string]ShapeKind{
	"rect":   ShapeRect,
	"사각형":    ShapeRect,
	"text":   ShapeText,
	"글":      ShapeText,
	"sprite": ShapeSprite,
	"그림":     ShapeSprite,
}

// ParseShapeKind recognizes a shape kind literal, ignoring case and
// surrounding whitespace.
func ParseShapeKind(s string) (ShapeKind, bool) {
	k, ok := shapeLiterals[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// Entry is a draw candidate before ordering. Geometry fields duplicate the
// command's values as integers so the sort key is exact.
type Entry struct {
	EntityID   string
	Shape      ShapeKind
	Z          int32
	X, Y, W, H int32

	// Tiebreak payload: TextSize and Text for text, URI for sprites.
	TextSize int32
	Text     string
	URI      string

	Cmd detdraw.DrawCommand
}

// Compare orders entries by (EntityID, Shape, Z, X, Y, W, H, tiebreak),
// then by command content so the order never depends on input order.
func Compare(a, b Entry) int {
	if c := strings.Compare(a.EntityID, b.EntityID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Shape, b.Shape); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Z, b.Z); c != 0 {
		return c
	}
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	if c := cmp.Compare(a.W, b.W); c != 0 {
		return c
	}
	if c := cmp.Compare(a.H, b.H); c != 0 {
		return c
	}
	switch a.Shape {
	case ShapeText:
		if c := cmp.Compare(a.TextSize, b.TextSize); c != 0 {
			return c
		}
		if c := strings.Compare(a.Text, b.Text); c != 0 {
			return c
		}
	case ShapeSprite:
		if c := strings.Compare(a.URI, b.URI); c != 0 {
			return c
		}
	}
	return compareContent(a.Cmd, b.Cmd)
}

// compareContent breaks ties between entries whose keys match but whose
// commands differ: color or tint first, then the sprite asset digest.
func compareContent(a, b detdraw.DrawCommand) int {
	ca, aa := paint(a)
	cb, ab := paint(b)
	if c := compareRgba(ca, cb); c != 0 {
		return c
	}
	if c := cmp.Compare(aa.HashKind, ab.HashKind); c != 0 {
		return c
	}
	return bytes.Compare(aa.Hash[:], ab.Hash[:])
}

func paint(cmd detdraw.DrawCommand) (detdraw.Rgba, detdraw.AssetRef) {
	switch c := cmd.(type) {
	case detdraw.RectFill:
		return c.Color, detdraw.AssetRef{}
	case detdraw.Text:
		return c.Color, detdraw.AssetRef{}
	case detdraw.Sprite:
		return c.Tint, c.Asset
	}
	return detdraw.Rgba{}, detdraw.AssetRef{}
}

func compareRgba(a, b detdraw.Rgba) int {
	if c := cmp.Compare(a.R, b.R); c != 0 {
		return c
	}
	if c := cmp.Compare(a.G, b.G); c != 0 {
		return c
	}
	if c := cmp.Compare(a.B, b.B); c != 0 {
		return c
	}
	return cmp.Compare(a.A, b.A)
}

// Sort orders entries in place. Entries comparing equal produce identical
// commands, so the stable sort's treatment of them is unobservable.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, Compare)
}

// Merge concatenates the collectors' outputs into a new slice and sorts it.
func Merge(groups ...[]Entry) []Entry {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]Entry, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	Sort(out)
	return out
}

// Commands returns the entries' draw commands in order.
func Commands(entries []Entry) []detdraw.DrawCommand {
	cmds := make([]detdraw.DrawCommand, len(entries))
	for i, e := range entries {
		cmds[i] = e.Cmd
	}
	return cmds
}
