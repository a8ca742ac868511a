package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/codec"
	"github.com/gogpu/detdraw/colorpack"
	"github.com/gogpu/detdraw/digest"
	"github.com/gogpu/detdraw/policy"
	"github.com/gogpu/detdraw/state"
)

func field(name string, v state.Value) state.Field { return state.Field{Name: name, Value: v} }

func rectPack(x, y, w, h int64, fill string) state.Value {
	return state.PackValue(state.NewPack(
		field("x", state.Int(x)),
		field("y", state.Int(y)),
		field("w", state.Int(w)),
		field("h", state.Int(h)),
		field("fill", state.String(fill)),
	))
}

func scenario() *state.Map {
	st := state.NewMap()
	st.Set(SceneKey, state.PackValue(state.NewPack(field(BgField, state.String("#101010")))))
	st.Set("box.shape.kind", state.String("rect"))
	st.Set("box.rect", rectPack(10, 10, 20, 20, "#ff0000"))
	return st
}

func TestCompileScenario(t *testing.T) {
	res, err := Compile(scenario(), Options{Format: codec.Bdl1})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := []detdraw.DrawCommand{
		detdraw.Clear{Color: detdraw.Rgba{R: 0x10, G: 0x10, B: 0x10, A: 0xff}},
		detdraw.RectFill{X: 10, Y: 10, W: 20, H: 20, Color: detdraw.Rgba{R: 0xff, A: 0xff}},
	}
	if len(res.List.Cmds) != len(want) {
		t.Fatalf("got %d commands, want %d: %+v", len(res.List.Cmds), len(want), res.List.Cmds)
	}
	for i := range want {
		if res.List.Cmds[i] != want[i] {
			t.Errorf("cmd %d = %+v, want %+v", i, res.List.Cmds[i], want[i])
		}
	}
	if res.List.Width != DefaultWidth || res.List.Height != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", res.List.Width, res.List.Height, DefaultWidth, DefaultHeight)
	}
	if !bytes.HasPrefix(res.Bytes, []byte{'B', 'D', 'L', '1', 0x01, 0x00, 0x00, 0x00}) {
		t.Errorf("encoding starts with % x", res.Bytes[:8])
	}
	if res.Hash != digest.Sum(res.Bytes) {
		t.Errorf("Hash = %s, want digest of Bytes", res.Hash)
	}
	if res.Overflow != nil {
		t.Errorf("unexpected overflow event %+v", res.Overflow)
	}
}

func TestCompileDecodesBack(t *testing.T) {
	for _, format := range []codec.Tag{codec.Bdl1, codec.Bdl2} {
		t.Run(format.String(), func(t *testing.T) {
			res, err := Compile(scenario(), Options{Format: format})
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			got, tag, err := codec.Decode(res.Bytes)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if tag != format {
				t.Errorf("sniffed %v, want %v", tag, format)
			}
			if !got.Equal(res.List) {
				t.Errorf("decoded %+v, want %+v", got.Cmds, res.List.Cmds)
			}
		})
	}
}

func TestCompileDeterministic(t *testing.T) {
	build := func(reverse bool) *state.Map {
		type kv struct {
			k string
			v state.Value
		}
		items := []kv{
			{"a.shape.kind", state.String("rect")},
			{"a.rect", rectPack(1, 2, 3, 4, "blue")},
			{"b.shape.kind", state.String("rect")},
			{"b.rect", rectPack(5, 6, 7, 8, "#00ff00")},
			{"draw.list", state.List(
				state.PackValue(state.NewPack(
					field("kind", state.String("text")),
					field("x", state.Int(0)), field("y", state.Int(0)),
					field("size", state.Int(10)), field("text", state.String("t")),
					field("color", state.String("white")),
				)),
			)},
		}
		st := state.NewMap()
		for i := range items {
			it := items[i]
			if reverse {
				it = items[len(items)-1-i]
			}
			st.Set(it.k, it.v)
		}
		return st
	}

	opts := DefaultOptions()
	r1, err := Compile(build(false), opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	r2, err := Compile(build(true), opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !bytes.Equal(r1.Bytes, r2.Bytes) || r1.Hash != r2.Hash {
		t.Error("insertion order changed the output")
	}
}

func TestCompileHashSensitive(t *testing.T) {
	base, err := Compile(scenario(), Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	st := scenario()
	st.Set("box.rect", rectPack(10, 10, 20, 21, "#ff0000"))
	changed, err := Compile(st, Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if base.Hash == changed.Hash {
		t.Error("changing a rect height did not change the hash")
	}
	other, err := Compile(scenario(), Options{Format: codec.Bdl2})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if base.Hash == other.Hash {
		t.Error("BDL1 and BDL2 encodings share a hash")
	}
}

func manyRects(n int) *state.Map {
	st := state.NewMap()
	for i := range n {
		id := fmt.Sprintf("e%02d", i)
		st.Set(id+".shape.kind", state.String("rect"))
		st.Set(id+".rect", rectPack(int64(i), 0, 1, 1, "#ffffff"))
	}
	return st
}

func TestCompilePolicy(t *testing.T) {
	st := manyRects(5) // 6 commands with Clear

	t.Run("cap ok", func(t *testing.T) {
		res, err := Compile(st, Options{Policy: policy.Config{Mode: policy.ModeCap, Cap: 6}})
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if res.List.Len() != 6 {
			t.Errorf("Len = %d, want 6", res.List.Len())
		}
	})

	t.Run("cap exceeded", func(t *testing.T) {
		_, err := Compile(st, Options{Policy: policy.Config{Mode: policy.ModeCap, Cap: 5}})
		if !errors.Is(err, detdraw.ErrCmdCap) {
			t.Fatalf("error = %v, want ErrCmdCap", err)
		}
		var capErr *policy.CmdCapError
		if !errors.As(err, &capErr) || capErr.Count != 6 || capErr.Cap != 5 {
			t.Errorf("error = %#v", err)
		}
	})

	t.Run("summary", func(t *testing.T) {
		res, err := Compile(st, Options{Policy: policy.Config{Mode: policy.ModeSummary, Cap: 4}})
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if res.List.Len() != 4 {
			t.Fatalf("Len = %d, want 4", res.List.Len())
		}
		if _, ok := res.List.Cmds[0].(detdraw.Clear); !ok {
			t.Errorf("first command = %T, want Clear", res.List.Cmds[0])
		}
		if res.List.Cmds[3] != policy.WarningText(6, 4) {
			t.Errorf("last command = %+v", res.List.Cmds[3])
		}
		want := policy.Event{Mode: policy.ModeSummary, Cap: 4, Count: 6}
		if res.Overflow == nil || *res.Overflow != want {
			t.Errorf("Overflow = %+v, want %+v", res.Overflow, want)
		}
	})

	t.Run("zero cap rejected", func(t *testing.T) {
		if _, err := Compile(st, Options{Policy: policy.Config{Mode: policy.ModeSummary}}); err == nil {
			t.Error("Compile with cap 0 should fail")
		}
	})
}

func TestCompileScenePack(t *testing.T) {
	st := state.NewMap()
	st.Set(SceneKey, state.PackValue(state.NewPack(
		field(WidthField, state.Int(320)),
		field(HeightField, state.Int(200)),
		field(BgField, state.String("Navy")),
	)))
	res, err := Compile(st, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if res.List.Width != 320 || res.List.Height != 200 {
		t.Errorf("size = %dx%d, want 320x200", res.List.Width, res.List.Height)
	}
	if got := res.List.Cmds[0]; got != (detdraw.Clear{Color: detdraw.RGB(0, 0, 0x80)}) {
		t.Errorf("background = %+v", got)
	}
}

func TestCompileSceneErrors(t *testing.T) {
	tests := []struct {
		name  string
		scene state.Value
		opts  Options
		want  error
	}{
		{"not a pack", state.String("x"), Options{}, detdraw.ErrBadFieldType},
		{"fractional width", state.PackValue(state.NewPack(field(WidthField, state.Float(1.5)))), Options{}, detdraw.ErrNonIntPixel},
		{"zero height", state.PackValue(state.NewPack(field(HeightField, state.Int(0)))), Options{}, detdraw.ErrNonIntPixel},
		{"string width", state.PackValue(state.NewPack(field(WidthField, state.String("wide")))), Options{}, detdraw.ErrBadFieldType},
		{"numeric bg", state.PackValue(state.NewPack(field(BgField, state.Int(1)))), Options{}, detdraw.ErrBadFieldType},
		{"bad hex", state.PackValue(state.NewPack(field(BgField, state.String("#12")))), Options{}, detdraw.ErrInvalidColorHex},
		{"name without pack", state.PackValue(state.NewPack(field(BgField, state.String("red")))), Options{}, detdraw.ErrColorPackNotFound},
		{"unknown name", state.PackValue(state.NewPack(field(BgField, state.String("mauve-ish")))), Options{Colors: colorpack.Builtin()}, detdraw.ErrUnknownColorName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := state.NewMap()
			st.Set(SceneKey, tt.scene)
			_, err := Compile(st, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompileSnapshotFractions(t *testing.T) {
	tests := []struct {
		name    string
		x       string
		loadErr bool
		want    error
	}{
		{"inexact fraction", "10.0001", true, nil},
		{"exact fraction", "10.5", false, detdraw.ErrNonIntPixel},
		{"integral decimal", "10.0", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"hero.shape.kind": "rect", "hero.rect": {"x": ` + tt.x + `, "y": 0, "w": 4, "h": 4, "fill": "#ff0000"}}`
			st, err := state.DecodeBytes([]byte(doc))
			if tt.loadErr {
				if err == nil {
					t.Fatal("snapshot loaded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBytes: %v", err)
			}
			_, err = Compile(st, Options{})
			if tt.want == nil {
				if err != nil {
					t.Errorf("Compile: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompileCollectorErrorAborts(t *testing.T) {
	st := scenario()
	st.Set("box.rect", rectPack(10, 10, 20, 20, "#ff0000"))
	st.Set("draw.list", state.String("not a list"))
	if _, err := Compile(st, Options{}); !errors.Is(err, detdraw.ErrBadFieldType) {
		t.Errorf("error = %v, want ErrBadFieldType", err)
	}
}

func TestCompileLogsOverflow(t *testing.T) {
	var buf bytes.Buffer
	detdraw.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer detdraw.SetLogger(nil)

	if _, err := Compile(manyRects(3), Options{Policy: policy.Config{Mode: policy.ModeSummary, Cap: 2}}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"level=WARN", "draw list truncated", "count=4", "level=DEBUG", "collected entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
