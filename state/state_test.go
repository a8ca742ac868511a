package state

import (
	"strings"
	"testing"
)

func TestNumberIntegral(t *testing.T) {
	n, _ := Int(42).Num()
	if !IsIntegral(n) || IntPart(n) != 42 {
		t.Errorf("Int(42): integral=%v int=%d", IsIntegral(n), IntPart(n))
	}
	f, _ := Float(10.5).Num()
	if IsIntegral(f) {
		t.Error("Float(10.5) reported integral")
	}
	if ToFloat(f) != 10.5 {
		t.Errorf("ToFloat = %v", ToFloat(f))
	}
	neg, _ := Int(-3).Num()
	if !IsIntegral(neg) || IntPart(neg) != -3 {
		t.Errorf("Int(-3): int=%d", IntPart(neg))
	}
}

func TestValueAccessorsRejectOtherKinds(t *testing.T) {
	v := String("x")
	if _, ok := v.Num(); ok {
		t.Error("string value returned a number")
	}
	if _, ok := v.Pack(); ok {
		t.Error("string value returned a pack")
	}
	if (Value{}).Kind() != KindInvalid {
		t.Error("zero value should be invalid")
	}
}

func TestPackOrder(t *testing.T) {
	p := NewPack(
		Field{"b", Int(1)},
		Field{"a", Int(2)},
		Field{"b", Int(3)},
	)
	if got := strings.Join(p.Names(), ","); got != "b,a" {
		t.Errorf("Names = %s", got)
	}
	v, _ := p.Get("b")
	if n, _ := v.Num(); IntPart(n) != 3 {
		t.Errorf("b = %d, want 3", IntPart(n))
	}
}

func TestMapKeysSorted(t *testing.T) {
	var m Map
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	m.Set("m", Int(3))
	if got := strings.Join(m.Keys(), ","); got != "a,m,z" {
		t.Errorf("Keys = %s", got)
	}
}

func TestDecode(t *testing.T) {
	doc := `{
		"scene": {"width": 320, "height": 240, "bg": "#101010"},
		"hero.shape.kind": "rect",
		"half": 0.5,
		"exp": 2.25e1,
		"draw.list": [{"kind": "text", "text": "hi"}, 7]
	}`
	m, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Len() != 5 {
		t.Errorf("Len = %d", m.Len())
	}

	scene, _ := m.Get("scene")
	p, ok := scene.Pack()
	if !ok {
		t.Fatalf("scene kind = %v", scene.Kind())
	}
	if got := strings.Join(p.Names(), ","); got != "width,height,bg" {
		t.Errorf("scene fields = %s", got)
	}

	half, _ := m.Get("half")
	n, _ := half.Num()
	if int64(n) != 1<<(FracBits-1) {
		t.Errorf("half raw = %d", int64(n))
	}

	exp, _ := m.Get("exp")
	if n, _ := exp.Num(); int64(n) != 90<<FracBits/4 {
		t.Errorf("exp raw = %d", int64(n))
	}

	list, _ := m.Get("draw.list")
	items, ok := list.List()
	if !ok || len(items) != 2 || items[0].Kind() != KindPack || items[1].Kind() != KindNumber {
		t.Errorf("draw.list = %+v", items)
	}
}

func TestDecodeRejects(t *testing.T) {
	for _, doc := range []string{
		`[]`,
		`{"a": true}`,
		`{"a": null}`,
		`{"a": 1e300}`,
		`{"a": 10.0001}`,
		`{"a": 0.1}`,
		`{"hero.rect": {"x": 10.0001, "y": 0, "w": 4, "h": 4}}`,
		`{"a": `,
	} {
		if _, err := DecodeBytes([]byte(doc)); err == nil {
			t.Errorf("Decode(%s) succeeded", doc)
		}
	}
}
