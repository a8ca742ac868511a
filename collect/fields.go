package collect

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/colorpack"
	"github.com/gogpu/detdraw/state"
)

// fields resolves a record's named fields. at is the record's path in error
// messages.
type fields interface {
	field(name string) (v state.Value, path string, ok bool, err error)
}

// packFields reads fields straight from a pack.
type packFields struct {
	p  *state.Pack
	at string
}

func (f packFields) field(name string) (state.Value, string, bool, error) {
	v, ok := f.p.Get(name)
	return v, f.at + "." + name, ok, nil
}

// ruleFields reads fields from a rule record, substituting "$name" strings
// with the named field of the matched tag record. Substitution is one level:
// the substituted value is used as is.
type ruleFields struct {
	rule packFields
	tag  packFields
}

func (f ruleFields) field(name string) (state.Value, string, bool, error) {
	v, path, ok, _ := f.rule.field(name)
	if !ok {
		return v, path, false, nil
	}
	s, isStr := v.Str()
	if !isStr || !strings.HasPrefix(s, "$") {
		return v, path, true, nil
	}
	ref := s[1:]
	tv, tpath, ok, _ := f.tag.field(ref)
	if !ok {
		return state.Value{}, tpath, false, detdraw.NewError(detdraw.KindMissingField, tpath, "referenced by "+path)
	}
	return tv, tpath, true, nil
}

// lookup returns the first present field among names. path names the first
// candidate when none is present.
func lookup(f fields, names ...string) (state.Value, string, bool, error) {
	var firstPath string
	for i, name := range names {
		v, path, ok, err := f.field(name)
		if err != nil {
			return state.Value{}, path, false, err
		}
		if ok {
			return v, path, true, nil
		}
		if i == 0 {
			firstPath = path
		}
	}
	return state.Value{}, firstPath, false, nil
}

func required(f fields, names ...string) (state.Value, string, error) {
	v, path, ok, err := lookup(f, names...)
	if err != nil {
		return v, path, err
	}
	if !ok {
		return v, path, detdraw.NewError(detdraw.KindMissingField, path, "")
	}
	return v, path, nil
}

// pixel reads a geometry field: an integral number in [0, MaxInt32].
func pixel(f fields, names ...string) (int32, error) {
	v, path, err := required(f, names...)
	if err != nil {
		return 0, err
	}
	return toPixel(v, path)
}

func toPixel(v state.Value, path string) (int32, error) {
	n, ok := v.Num()
	if !ok {
		return 0, detdraw.NewError(detdraw.KindBadFieldType, path, "want number, got "+v.Kind().String())
	}
	if !state.IsIntegral(n) {
		return 0, detdraw.NewError(detdraw.KindNonIntPixel, path, fmt.Sprintf("value %v has a fractional part", state.ToFloat(n)))
	}
	i := state.IntPart(n)
	if i < 0 || i > math.MaxInt32 {
		return 0, detdraw.NewError(detdraw.KindNonIntPixel, path, fmt.Sprintf("value %d out of pixel range", i))
	}
	return int32(i), nil
}

// integer reads an optional signed integer field (z order, rule id).
func integer(v state.Value, path string) (int64, error) {
	n, ok := v.Num()
	if !ok || !state.IsIntegral(n) {
		return 0, detdraw.NewError(detdraw.KindBadFieldType, path, "want integer")
	}
	return state.IntPart(n), nil
}

func zOrder(f fields) (int32, error) {
	v, path, ok, err := lookup(f, "z")
	if err != nil || !ok {
		return 0, err
	}
	z, err := integer(v, path)
	if err != nil {
		return 0, err
	}
	if z < math.MinInt32 || z > math.MaxInt32 {
		return 0, detdraw.NewError(detdraw.KindBadFieldType, path, "z out of int32 range")
	}
	return int32(z), nil
}

func str(v state.Value, path string) (string, error) {
	s, ok := v.Str()
	if !ok {
		return "", detdraw.NewError(detdraw.KindBadFieldType, path, "want string, got "+v.Kind().String())
	}
	return s, nil
}

func requiredStr(f fields, names ...string) (string, error) {
	v, path, err := required(f, names...)
	if err != nil {
		return "", err
	}
	return str(v, path)
}

// color reads "fill" then "color". def is used when neither is present;
// a nil def makes the color required.
func color(f fields, colors *colorpack.Pack, def *detdraw.Rgba) (detdraw.Rgba, error) {
	v, path, ok, err := lookup(f, "fill", "color")
	if err != nil {
		return detdraw.Rgba{}, err
	}
	if !ok {
		if def != nil {
			return *def, nil
		}
		return detdraw.Rgba{}, detdraw.NewError(detdraw.KindMissingField, path, "")
	}
	s, err := str(v, path)
	if err != nil {
		return detdraw.Rgba{}, err
	}
	return colorpack.Resolve(s, colors)
}

func assetHash(f fields) (uint8, [32]byte, error) {
	var sum [32]byte
	v, path, ok, err := lookup(f, "hash")
	if err != nil || !ok {
		return detdraw.HashNone, sum, err
	}
	s, err := str(v, path)
	if err != nil {
		return 0, sum, err
	}
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(b) != len(sum) {
		return 0, sum, detdraw.NewError(detdraw.KindBadFieldType, path, "want 64 hex digits")
	}
	copy(sum[:], b)
	return detdraw.HashDigest, sum, nil
}

var opaqueWhite = detdraw.White

// build reads the kind-specific fields of a record and returns its entry.
func build(kind ShapeKind, f fields, entity string, colors *colorpack.Pack) (Entry, error) {
	e := Entry{EntityID: entity, Shape: kind}
	var err error
	if e.Z, err = zOrder(f); err != nil {
		return Entry{}, err
	}
	if e.X, err = pixel(f, "x"); err != nil {
		return Entry{}, err
	}
	if e.Y, err = pixel(f, "y"); err != nil {
		return Entry{}, err
	}

	switch kind {
	case ShapeRect:
		if e.W, err = pixel(f, "w"); err != nil {
			return Entry{}, err
		}
		if e.H, err = pixel(f, "h"); err != nil {
			return Entry{}, err
		}
		c, err := color(f, colors, nil)
		if err != nil {
			return Entry{}, err
		}
		e.Cmd = detdraw.RectFill{
			X: float64(e.X), Y: float64(e.Y), W: float64(e.W), H: float64(e.H),
			Color: c,
		}

	case ShapeText:
		if e.TextSize, err = pixel(f, "size", "size_px"); err != nil {
			return Entry{}, err
		}
		if e.Text, err = requiredStr(f, "text"); err != nil {
			return Entry{}, err
		}
		c, err := color(f, colors, nil)
		if err != nil {
			return Entry{}, err
		}
		e.Cmd = detdraw.Text{
			X: float64(e.X), Y: float64(e.Y), Size: float64(e.TextSize),
			Color: c, Text: e.Text,
		}

	case ShapeSprite:
		if e.W, err = pixel(f, "w"); err != nil {
			return Entry{}, err
		}
		if e.H, err = pixel(f, "h"); err != nil {
			return Entry{}, err
		}
		if e.URI, err = requiredStr(f, "uri"); err != nil {
			return Entry{}, err
		}
		tint, err := color(f, colors, &opaqueWhite)
		if err != nil {
			return Entry{}, err
		}
		hashKind, sum, err := assetHash(f)
		if err != nil {
			return Entry{}, err
		}
		e.Cmd = detdraw.Sprite{
			X: float64(e.X), Y: float64(e.Y), W: float64(e.W), H: float64(e.H),
			Tint:  tint,
			Asset: detdraw.AssetRef{URI: e.URI, HashKind: hashKind, Hash: sum},
		}

	default:
		return Entry{}, detdraw.NewError(detdraw.KindBadFieldType, entity, "unknown shape kind")
	}
	return e, nil
}
