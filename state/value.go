package state

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Kind identifies the shape of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindPack
	KindList
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindString:  "string",
	KindNumber:  "number",
	KindPack:    "pack",
	KindList:    "list",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// FracBits is the number of fractional bits of a state number.
const FracBits = 12

const fracMask = 1<<FracBits - 1

// Value is an immutable state value. The zero Value is invalid.
type Value struct {
	kind Kind
	str  string
	num  fixed.Int52_12
	pack *Pack
	list []Value
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a number value from its raw fixed-point representation.
func Number(n fixed.Int52_12) Value { return Value{kind: KindNumber, num: n} }

// Int returns the number value i.
func Int(i int64) Value { return Number(fixed.Int52_12(i << FracBits)) }

// Float returns the number nearest to f.
func Float(f float64) Value {
	return Number(fixed.Int52_12(math.Round(f * (1 << FracBits))))
}

// PackValue wraps p as a value.
func PackValue(p *Pack) Value { return Value{kind: KindPack, pack: p} }

// List returns a list value holding vs.
func List(vs ...Value) Value {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	return Value{kind: KindList, list: cp}
}

// Kind returns the shape of v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string held by v.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the number held by v.
func (v Value) Num() (fixed.Int52_12, bool) { return v.num, v.kind == KindNumber }

// Pack returns the pack held by v.
func (v Value) Pack() (*Pack, bool) { return v.pack, v.kind == KindPack }

// List returns the elements of a list value. The slice must not be modified.
func (v Value) List() ([]Value, bool) { return v.list, v.kind == KindList }

// IsIntegral reports whether n has no fractional part.
func IsIntegral(n fixed.Int52_12) bool { return n&fracMask == 0 }

// IntPart returns n truncated toward negative infinity.
func IntPart(n fixed.Int52_12) int64 { return int64(n) >> FracBits }

// ToFloat converts n to float64.
func ToFloat(n fixed.Int52_12) float64 { return float64(n) / (1 << FracBits) }

// Field is one named entry of a Pack.
type Field struct {
	Name  string
	Value Value
}

// Pack is a record of named fields. Field order is preserved.
type Pack struct {
	names  []string
	fields map[string]Value
}

// NewPack builds a pack. A repeated name keeps its first position and the
// last value.
func NewPack(fields ...Field) *Pack {
	p := &Pack{fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		if _, dup := p.fields[f.Name]; !dup {
			p.names = append(p.names, f.Name)
		}
		p.fields[f.Name] = f.Value
	}
	return p
}

// Get returns the named field.
func (p *Pack) Get(name string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.fields[name]
	return v, ok
}

// Names returns the field names in insertion order.
func (p *Pack) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of fields.
func (p *Pack) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}
