package bdl2

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/codec"
	"github.com/gogpu/detdraw/internal/wire"
)

var (
	red  = detdraw.RGB(0xff, 0, 0)
	blue = detdraw.Rgba{R: 0, G: 0, B: 0xff, A: 0x80}
)

func allKinds() *detdraw.DrawList {
	var h [32]byte
	for i := range h {
		h[i] = byte(0xa0 + i)
	}
	return &detdraw.DrawList{Width: 1920, Height: 1080, Cmds: []detdraw.DrawCommand{
		detdraw.Clear{Color: detdraw.Black},
		detdraw.RectFill{X: 10.5, Y: -3.25, W: 20, H: 0.00390625, Color: red, AA: true},
		detdraw.RectStroke{X: 1, Y: 2, W: 3, H: 4, Thickness: 1.5, Color: blue},
		detdraw.Line{X1: 0, Y1: 0, X2: 640.125, Y2: 480.875, Thickness: 0.5, Color: red, AA: true},
		detdraw.Text{X: 4, Y: 4, Size: 12, Color: detdraw.Warning, Text: "점수: 100"},
		detdraw.Sprite{X: 8, Y: 8, W: 64, H: 64, Tint: detdraw.White, Asset: detdraw.AssetRef{URI: "res://hero.png"}},
		detdraw.Sprite{X: 0, Y: 0, W: 16, H: 16, Tint: blue, AA: true,
			Asset: detdraw.AssetRef{URI: "res://tile.png", HashKind: detdraw.HashDigest, Hash: h}},
		detdraw.CircleFill{CX: 100, CY: 100, R: 25.75, Color: red, AA: true},
		detdraw.CircleStroke{CX: 50, CY: 60, R: 10, Thickness: 2, Color: blue},
		detdraw.ArcStroke{CX: 200, CY: 200, R: 40, Start: 0.25, Sweep: -0.5, Thickness: 3, Color: red, AA: true},
		detdraw.CubicStroke{X0: 0, Y0: 0, X1: 10, Y1: 20, X2: 30, Y2: 40, X3: 50.5, Y3: 60.5, Thickness: 1, Color: blue},
	}}
}

func TestRoundTripExact(t *testing.T) {
	list := allKinds()
	data, err := Encode(list)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !got.Equal(list) {
		for i := range list.Cmds {
			if i < len(got.Cmds) && got.Cmds[i] != list.Cmds[i] {
				t.Errorf("cmd %d: got %+v, want %+v", i, got.Cmds[i], list.Cmds[i])
			}
		}
		t.Fatalf("round trip mismatch")
	}

	again, err := Encode(got)
	if err != nil {
		t.Fatalf("re-Encode failed: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Error("re-encoding decoded list changed the bytes")
	}
}

func TestHeader(t *testing.T) {
	data, err := Encode(&detdraw.DrawList{Width: 2, Height: 3})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{
		'B', 'D', 'L', '2', 0x02, 0, 0, 0,
		0x02, 0, 0, 0,
		0x03, 0, 0, 0,
		0x08, 0x00, 0x00, 0x00,
		0, 0, 0, 0,
	}
	if !bytes.Equal(data, want) {
		t.Errorf("header =\n% x\nwant\n% x", data, want)
	}
}

func TestRecordLayout(t *testing.T) {
	data, err := Encode(&detdraw.DrawList{Cmds: []detdraw.DrawCommand{
		detdraw.CircleFill{CX: 1.5, CY: -1, R: 2, Color: red, AA: true},
	}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{
		0x07, FlagAA,
		0x80, 0x01, 0x00, 0x00, // 1.5 * 256 = 384
		0x00, 0xff, 0xff, 0xff, // -256
		0x00, 0x02, 0x00, 0x00, // 512
		0xff, 0x00, 0x00, 0xff,
	}
	if got := data[headerSize:]; !bytes.Equal(got, want) {
		t.Errorf("record =\n% x\nwant\n% x", got, want)
	}
}

func TestPrecision(t *testing.T) {
	values := []float64{0.1, -0.1, 1.0 / 3, 123.456, -999.999, 0.001953125, 65535.5, 1e-9}
	for _, v := range values {
		list := &detdraw.DrawList{Cmds: []detdraw.DrawCommand{
			detdraw.Line{X1: v, Y1: -v, X2: v * 2, Y2: 0, Thickness: v, Color: red},
		}}
		data, err := Encode(list)
		if err != nil {
			t.Fatalf("Encode(%v) failed: %v", v, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%v) failed: %v", v, err)
		}
		l := got.Cmds[0].(detdraw.Line)
		for _, pair := range [][2]float64{{l.X1, v}, {l.Y1, -v}, {l.X2, v * 2}, {l.Thickness, v}} {
			if d := math.Abs(pair[0] - pair[1]); d > 1.0/256 {
				t.Errorf("value %v decoded as %v (error %v > 1/256)", pair[1], pair[0], d)
			}
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  detdraw.DrawCommand
	}{
		{"overflow", detdraw.CircleFill{CX: 1e7, Color: red}},
		{"inf", detdraw.ArcStroke{Sweep: math.Inf(1), Color: red}},
		{"invalid utf8", detdraw.Text{Text: "ok\xc3", Color: red}},
		{"invalid uri", detdraw.Sprite{Asset: detdraw.AssetRef{URI: "\xff"}}},
		{"bad hash kind", detdraw.Sprite{Asset: detdraw.AssetRef{HashKind: 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(&detdraw.DrawList{Cmds: []detdraw.DrawCommand{tt.cmd}})
			if !errors.Is(err, detdraw.ErrDetbinEncode) {
				t.Errorf("Encode error = %v, want DetbinEncode", err)
			}
		})
	}
}

type headerFields struct {
	version  uint32
	fixedQ   uint8
	flags    uint8
	reserved uint16
	count    uint32
}

func header(h headerFields) *wire.Writer {
	w := wire.NewWriter(64)
	w.Raw(Magic[:])
	w.U32(h.version)
	w.U32(4)
	w.U32(4)
	w.U8(h.fixedQ)
	w.U8(h.flags)
	w.U16(h.reserved)
	w.U32(h.count)
	return w
}

var good = headerFields{version: Version, fixedQ: FixedQ, count: 1}

func withHeader(h headerFields, body func(w *wire.Writer)) func() []byte {
	return func() []byte {
		w := header(h)
		if body != nil {
			body(w)
		}
		return w.Bytes()
	}
}

func clearRecord(flags uint8) func(w *wire.Writer) {
	return func(w *wire.Writer) {
		w.U8(uint8(detdraw.CmdClear))
		w.U8(flags)
		w.Color(red)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   func() []byte
		want   error
		offset int
	}{
		{"bad magic", func() []byte { return append([]byte("BDL1"), make([]byte, 20)...) }, codec.ErrBadMagic, 0},
		{"bad version", withHeader(headerFields{version: 1, fixedQ: 8}, nil), codec.ErrBadVersion, 4},
		{"bad fixed_q", withHeader(headerFields{version: 2, fixedQ: 16}, nil), codec.ErrBadFixedQ, 16},
		{"bad header flags", withHeader(headerFields{version: 2, fixedQ: 8, flags: 1}, nil), codec.ErrBadHeaderFlags, 17},
		{"bad reserved", withHeader(headerFields{version: 2, fixedQ: 8, reserved: 0x100}, nil), codec.ErrBadReserved, 18},
		{"truncated header", func() []byte { return header(good).Bytes()[:21] }, codec.ErrTruncated, 20},
		{"truncated record", withHeader(good, func(w *wire.Writer) {
			w.U8(uint8(detdraw.CmdRectFill))
			w.U8(0)
			w.I32(0)
		}), codec.ErrTruncated, 30},
		{"unknown opcode", withHeader(good, func(w *wire.Writer) {
			w.U8(0x0B)
			w.U8(0)
		}), codec.ErrUnknownOpcode, 24},
		{"zero opcode", withHeader(good, func(w *wire.Writer) {
			w.U8(0x00)
			w.U8(0)
		}), codec.ErrUnknownOpcode, 24},
		{"clear reserved flag", withHeader(good, clearRecord(0x04)), codec.ErrBadCmdFlags, 25},
		{"reserved cmd flag", withHeader(good, func(w *wire.Writer) {
			w.U8(uint8(detdraw.CmdCircleFill))
			w.U8(0x02)
		}), codec.ErrBadCmdFlags, 25},
		{"invalid utf8", withHeader(good, func(w *wire.Writer) {
			w.U8(uint8(detdraw.CmdText))
			w.U8(0)
			w.I32(0)
			w.I32(0)
			w.I32(12 << 8)
			w.Color(red)
			w.U32(1)
			w.U8(0x80)
		}), codec.ErrInvalidUTF8, 46},
		{"bad hash kind", withHeader(good, func(w *wire.Writer) {
			w.U8(uint8(detdraw.CmdSprite))
			w.U8(0)
			for range 4 {
				w.I32(0)
			}
			w.Color(red)
			w.String("")
			w.U8(2)
		}), codec.ErrBadHashKind, 50},
		{"trailing bytes", func() []byte { return append(withHeader(good, clearRecord(0))(), 1, 2) }, codec.ErrTrailingBytes, 30},
	}

	seen := make(map[codec.ParseCode]bool)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, detdraw.ErrBdl2Parse) {
				t.Errorf("error %v should match ErrBdl2Parse", err)
			}
			var pe *codec.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not *codec.ParseError", err)
			}
			if pe.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", pe.Offset, tt.offset)
			}
			seen[pe.Code] = true
		})
	}
	if len(seen) != 11 {
		t.Errorf("covered %d distinct parse codes, want 11", len(seen))
	}
}

func TestDecodeClearIgnoresAA(t *testing.T) {
	data := withHeader(good, clearRecord(FlagAA))()
	dl, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(dl.Cmds) != 1 {
		t.Fatalf("decoded %d commands, want 1", len(dl.Cmds))
	}
	if got, want := dl.Cmds[0], detdraw.DrawCommand(detdraw.Clear{Color: red}); got != want {
		t.Errorf("command = %+v, want %+v", got, want)
	}

	out, err := Encode(dl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if out[headerSize+1] != 0 {
		t.Errorf("re-encoded Clear flags = 0x%02x, want 0", out[headerSize+1])
	}
}

func TestSniffDispatch(t *testing.T) {
	data, err := codec.Encode(codec.Bdl2, allKinds())
	if err != nil {
		t.Fatalf("codec.Encode failed: %v", err)
	}
	list, tag, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("codec.Decode failed: %v", err)
	}
	if tag != codec.Bdl2 {
		t.Errorf("tag = %v, want bdl2", tag)
	}
	if list.Len() != allKinds().Len() {
		t.Errorf("decoded %d commands, want %d", list.Len(), allKinds().Len())
	}
}
