// Package bdl1 implements the BDL1 draw-list format.
//
// Layout (little-endian):
//
//	magic "BDL1" | version u32 (1) | width u32 | height u32 | cmd_count u32
//	cmd_count records: opcode u8, then the opcode's fields
//
// Geometry is i32 whole pixels, rounded half away from zero. Strings are a
// u32 byte length followed by UTF-8 bytes. Opcodes:
//
//	0x01 Clear      color
//	0x02 RectFill   x y w h color
//	0x03 RectStroke x y w h thickness color
//	0x04 Line       x1 y1 x2 y2 thickness color
//	0x05 Text       x y size color string
//	0x06 Sprite     x y w h tint uri hash_kind u8 [hash 32 bytes if hash_kind=1]
//
// BDL1 has no circle, arc or curve opcodes and no anti-alias flag. Those
// commands are projected: circles onto their bounding box, arcs onto the
// chord between their end points, cubic curves onto the segment P0→P3.
// The projection is part of the format and must not change.
//
// Importing this package registers the format with package codec.
package bdl1

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/codec"
	"github.com/gogpu/detdraw/internal/wire"
)

// Magic starts every BDL1 encoding.
var Magic = [4]byte{'B', 'D', 'L', '1'}

// Version is the only supported format version.
const Version = 1

// Opcodes.
const (
	OpClear      = 0x01
	OpRectFill   = 0x02
	OpRectStroke = 0x03
	OpLine       = 0x04
	OpText       = 0x05
	OpSprite     = 0x06
)

const (
	headerSize    = 20
	minRecordSize = 5 // opcode + color
)

// Codec is the BDL1 codec registered with package codec.
type Codec struct{}

func init() {
	codec.Register(Codec{})
}

func (Codec) Tag() codec.Tag                                { return codec.Bdl1 }
func (Codec) Magic() [4]byte                                { return Magic }
func (Codec) Encode(list *detdraw.DrawList) ([]byte, error) { return Encode(list) }
func (Codec) Decode(data []byte) (*detdraw.DrawList, error) { return Decode(data) }

// Project maps a command onto the BDL1 opcode set. Commands BDL1 can
// express are returned unchanged.
func Project(cmd detdraw.DrawCommand) detdraw.DrawCommand {
	switch c := cmd.(type) {
	case detdraw.CircleFill:
		return detdraw.RectFill{X: c.CX - c.R, Y: c.CY - c.R, W: 2 * c.R, H: 2 * c.R, Color: c.Color, AA: c.AA}
	case detdraw.CircleStroke:
		return detdraw.RectStroke{X: c.CX - c.R, Y: c.CY - c.R, W: 2 * c.R, H: 2 * c.R, Thickness: c.Thickness, Color: c.Color, AA: c.AA}
	case detdraw.ArcStroke:
		x1, y1 := arcPoint(c.CX, c.CY, c.R, c.Start)
		x2, y2 := arcPoint(c.CX, c.CY, c.R, c.Start+c.Sweep)
		return detdraw.Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Thickness: c.Thickness, Color: c.Color, AA: c.AA}
	case detdraw.CubicStroke:
		return detdraw.Line{X1: c.X0, Y1: c.Y0, X2: c.X3, Y2: c.Y3, Thickness: c.Thickness, Color: c.Color, AA: c.AA}
	}
	return cmd
}

// arcPoint returns the point at angle turns on the circle.
func arcPoint(cx, cy, r, turns float64) (float64, float64) {
	a := 2 * math.Pi * turns
	return cx + r*math.Cos(a), cy + r*math.Sin(a)
}

// encoder writes records and remembers the first unrepresentable value.
type encoder struct {
	w   *wire.Writer
	at  int
	err error
}

func (e *encoder) px(field string, v float64) {
	if e.err != nil {
		return
	}
	p, ok := detdraw.RoundPixel(v)
	if !ok {
		e.err = detdraw.NewError(detdraw.KindDetbinEncode, fmt.Sprintf("cmds[%d].%s", e.at, field),
			fmt.Sprintf("value %v does not fit in i32", v))
		return
	}
	e.w.I32(p)
}

func (e *encoder) str(field, s string) {
	if e.err != nil {
		return
	}
	if !utf8.ValidString(s) {
		e.err = detdraw.NewError(detdraw.KindDetbinEncode, fmt.Sprintf("cmds[%d].%s", e.at, field), "string is not valid UTF-8")
		return
	}
	e.w.String(s)
}

// Encode serializes list as BDL1.
func Encode(list *detdraw.DrawList) ([]byte, error) {
	if uint64(len(list.Cmds)) > math.MaxUint32 {
		return nil, detdraw.NewError(detdraw.KindDetbinEncode, "cmds", "too many commands")
	}
	e := &encoder{w: wire.NewWriter(headerSize + 32*len(list.Cmds))}
	e.w.Raw(Magic[:])
	e.w.U32(Version)
	e.w.U32(list.Width)
	e.w.U32(list.Height)
	e.w.U32(uint32(len(list.Cmds)))

	for i, cmd := range list.Cmds {
		e.at = i
		e.encode(Project(cmd))
		if e.err != nil {
			return nil, e.err
		}
	}
	return e.w.Bytes(), nil
}

func (e *encoder) encode(cmd detdraw.DrawCommand) {
	w := e.w
	switch c := cmd.(type) {
	case detdraw.Clear:
		w.U8(OpClear)
		w.Color(c.Color)
	case detdraw.RectFill:
		w.U8(OpRectFill)
		e.px("x", c.X)
		e.px("y", c.Y)
		e.px("w", c.W)
		e.px("h", c.H)
		w.Color(c.Color)
	case detdraw.RectStroke:
		w.U8(OpRectStroke)
		e.px("x", c.X)
		e.px("y", c.Y)
		e.px("w", c.W)
		e.px("h", c.H)
		e.px("thickness", c.Thickness)
		w.Color(c.Color)
	case detdraw.Line:
		w.U8(OpLine)
		e.px("x1", c.X1)
		e.px("y1", c.Y1)
		e.px("x2", c.X2)
		e.px("y2", c.Y2)
		e.px("thickness", c.Thickness)
		w.Color(c.Color)
	case detdraw.Text:
		w.U8(OpText)
		e.px("x", c.X)
		e.px("y", c.Y)
		e.px("size", c.Size)
		w.Color(c.Color)
		e.str("text", c.Text)
	case detdraw.Sprite:
		w.U8(OpSprite)
		e.px("x", c.X)
		e.px("y", c.Y)
		e.px("w", c.W)
		e.px("h", c.H)
		w.Color(c.Tint)
		e.str("uri", c.Asset.URI)
		switch c.Asset.HashKind {
		case detdraw.HashNone:
			w.U8(detdraw.HashNone)
		case detdraw.HashDigest:
			w.U8(detdraw.HashDigest)
			w.Raw(c.Asset.Hash[:])
		default:
			if e.err == nil {
				e.err = detdraw.NewError(detdraw.KindDetbinEncode, fmt.Sprintf("cmds[%d].hash_kind", e.at),
					fmt.Sprintf("unsupported hash kind %d", c.Asset.HashKind))
			}
		}
	default:
		e.err = detdraw.NewError(detdraw.KindDetbinEncode, fmt.Sprintf("cmds[%d]", e.at),
			fmt.Sprintf("unsupported command %T", cmd))
	}
}

// Decode parses a BDL1 encoding. The input must hold exactly one encoding.
func Decode(data []byte) (*detdraw.DrawList, error) {
	r := wire.NewReader(data)
	magic := r.Raw(4)
	if r.Err() != nil {
		return nil, codec.ReadFailure(codec.Bdl1, r.Err(), r.FailOffset())
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, codec.NewParseError(codec.Bdl1, codec.CodeBadMagic, 0, fmt.Sprintf("got %q", magic))
	}
	version := r.U32()
	width := r.U32()
	height := r.U32()
	count := r.U32()
	if r.Err() != nil {
		return nil, codec.ReadFailure(codec.Bdl1, r.Err(), r.FailOffset())
	}
	if version != Version {
		return nil, codec.NewParseError(codec.Bdl1, codec.CodeBadVersion, 4, fmt.Sprintf("got %d", version))
	}

	cmds := make([]detdraw.DrawCommand, 0, min(int(count), r.Remaining()/minRecordSize))
	px := func() float64 { return float64(r.I32()) }
	for i := uint32(0); i < count; i++ {
		start := r.Offset()
		var cmd detdraw.DrawCommand
		switch op := r.U8(); op {
		case OpClear:
			cmd = detdraw.Clear{Color: r.Color()}
		case OpRectFill:
			c := detdraw.RectFill{X: px(), Y: px(), W: px(), H: px()}
			c.Color = r.Color()
			cmd = c
		case OpRectStroke:
			c := detdraw.RectStroke{X: px(), Y: px(), W: px(), H: px(), Thickness: px()}
			c.Color = r.Color()
			cmd = c
		case OpLine:
			c := detdraw.Line{X1: px(), Y1: px(), X2: px(), Y2: px(), Thickness: px()}
			c.Color = r.Color()
			cmd = c
		case OpText:
			c := detdraw.Text{X: px(), Y: px(), Size: px()}
			c.Color = r.Color()
			c.Text = r.String()
			cmd = c
		case OpSprite:
			c := detdraw.Sprite{X: px(), Y: px(), W: px(), H: px()}
			c.Tint = r.Color()
			c.Asset.URI = r.String()
			kindOff := r.Offset()
			c.Asset.HashKind = r.U8()
			if r.Err() == nil {
				switch c.Asset.HashKind {
				case detdraw.HashNone:
				case detdraw.HashDigest:
					copy(c.Asset.Hash[:], r.Raw(32))
				default:
					return nil, codec.NewParseError(codec.Bdl1, codec.CodeBadHashKind, kindOff,
						fmt.Sprintf("hash kind %d", c.Asset.HashKind))
				}
			}
			cmd = c
		default:
			if r.Err() == nil {
				return nil, codec.NewParseError(codec.Bdl1, codec.CodeUnknownOpcode, start, fmt.Sprintf("opcode 0x%02x", op))
			}
		}
		if r.Err() != nil {
			return nil, codec.ReadFailure(codec.Bdl1, r.Err(), r.FailOffset())
		}
		cmds = append(cmds, cmd)
	}
	if r.Remaining() != 0 {
		return nil, codec.NewParseError(codec.Bdl1, codec.CodeTrailingBytes, r.Offset(),
			fmt.Sprintf("%d bytes after command %d", r.Remaining(), count))
	}
	return &detdraw.DrawList{Width: width, Height: height, Cmds: cmds}, nil
}
