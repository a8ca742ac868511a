// Package bdl2 implements the BDL2 draw-list format.
//
// Layout (little-endian):
//
//	magic "BDL2" | version u32 (2) | width u32 | height u32
//	fixed_q u8 (8) | flags u8 (0) | reserved u16 (0) | cmd_count u32
//	cmd_count records: kind u8, flags u8, then the kind's fields
//
// Geometry, thickness, text size and arc angles are Q24.8 i32 values
// (v*256 rounded half away from zero). Arc angles are in turns. Record flag
// bit 0 is anti-aliasing; the other bits are reserved and Clear carries no
// flags at all. Kinds:
//
//	0x01 Clear        color
//	0x02 RectFill     x y w h color
//	0x03 RectStroke   x y w h thickness color
//	0x04 Line         x1 y1 x2 y2 thickness color
//	0x05 Text         x y size color string
//	0x06 Sprite       x y w h tint uri hash_kind u8 [hash 32 bytes if hash_kind=1]
//	0x07 CircleFill   cx cy r color
//	0x08 CircleStroke cx cy r thickness color
//	0x09 ArcStroke    cx cy r start sweep thickness color
//	0x0A CubicStroke  x0 y0 x1 y1 x2 y2 x3 y3 thickness color
//
// Every command round-trips; geometry is exact to 1/256 pixel.
//
// Importing this package registers the format with package codec.
package bdl2

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/codec"
	"github.com/gogpu/detdraw/internal/wire"
)

// Magic starts every BDL2 encoding.
var Magic = [4]byte{'B', 'D', 'L', '2'}

const (
	// Version is the only supported format version.
	Version = 2
	// FixedQ is the number of fractional bits written in the header.
	FixedQ = detdraw.FixedQ
)

// FlagAA marks an anti-aliased command.
const FlagAA = 0x01

const (
	headerSize    = 24
	minRecordSize = 6 // kind + flags + color
)

// Codec is the BDL2 codec registered with package codec.
type Codec struct{}

func init() {
	codec.Register(Codec{})
}

func (Codec) Tag() codec.Tag                                { return codec.Bdl2 }
func (Codec) Magic() [4]byte                                { return Magic }
func (Codec) Encode(list *detdraw.DrawList) ([]byte, error) { return Encode(list) }
func (Codec) Decode(data []byte) (*detdraw.DrawList, error) { return Decode(data) }

type encoder struct {
	w   *wire.Writer
	at  int
	err error
}

func (e *encoder) fail(field, detail string) {
	if e.err == nil {
		e.err = detdraw.NewError(detdraw.KindDetbinEncode, fmt.Sprintf("cmds[%d]%s", e.at, field), detail)
	}
}

func (e *encoder) q(field string, v float64) {
	if e.err != nil {
		return
	}
	raw, ok := detdraw.ToQ24_8(v)
	if !ok {
		e.fail("."+field, fmt.Sprintf("value %v does not fit in Q24.8", v))
		return
	}
	e.w.I32(raw)
}

func (e *encoder) head(kind detdraw.CommandKind, aa bool) {
	e.w.U8(uint8(kind))
	var flags uint8
	if aa {
		flags |= FlagAA
	}
	e.w.U8(flags)
}

func (e *encoder) str(field, s string) {
	if !utf8.ValidString(s) {
		e.fail("."+field, "string is not valid UTF-8")
		return
	}
	e.w.String(s)
}

// Encode serializes list as BDL2.
func Encode(list *detdraw.DrawList) ([]byte, error) {
	if uint64(len(list.Cmds)) > math.MaxUint32 {
		return nil, detdraw.NewError(detdraw.KindDetbinEncode, "cmds", "too many commands")
	}
	e := &encoder{w: wire.NewWriter(headerSize + 40*len(list.Cmds))}
	e.w.Raw(Magic[:])
	e.w.U32(Version)
	e.w.U32(list.Width)
	e.w.U32(list.Height)
	e.w.U8(FixedQ)
	e.w.U8(0)
	e.w.U16(0)
	e.w.U32(uint32(len(list.Cmds)))

	for i, cmd := range list.Cmds {
		e.at = i
		e.encode(cmd)
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
		e.head(c.Kind(), false)
		w.Color(c.Color)
	case detdraw.RectFill:
		e.head(c.Kind(), c.AA)
		e.q("x", c.X)
		e.q("y", c.Y)
		e.q("w", c.W)
		e.q("h", c.H)
		w.Color(c.Color)
	case detdraw.RectStroke:
		e.head(c.Kind(), c.AA)
		e.q("x", c.X)
		e.q("y", c.Y)
		e.q("w", c.W)
		e.q("h", c.H)
		e.q("thickness", c.Thickness)
		w.Color(c.Color)
	case detdraw.Line:
		e.head(c.Kind(), c.AA)
		e.q("x1", c.X1)
		e.q("y1", c.Y1)
		e.q("x2", c.X2)
		e.q("y2", c.Y2)
		e.q("thickness", c.Thickness)
		w.Color(c.Color)
	case detdraw.Text:
		e.head(c.Kind(), c.AA)
		e.q("x", c.X)
		e.q("y", c.Y)
		e.q("size", c.Size)
		w.Color(c.Color)
		e.str("text", c.Text)
	case detdraw.Sprite:
		e.head(c.Kind(), c.AA)
		e.q("x", c.X)
		e.q("y", c.Y)
		e.q("w", c.W)
		e.q("h", c.H)
		w.Color(c.Tint)
		e.str("uri", c.Asset.URI)
		switch c.Asset.HashKind {
		case detdraw.HashNone:
			w.U8(detdraw.HashNone)
		case detdraw.HashDigest:
			w.U8(detdraw.HashDigest)
			w.Raw(c.Asset.Hash[:])
		default:
			e.fail(".hash_kind", fmt.Sprintf("unsupported hash kind %d", c.Asset.HashKind))
		}
	case detdraw.CircleFill:
		e.head(c.Kind(), c.AA)
		e.q("cx", c.CX)
		e.q("cy", c.CY)
		e.q("r", c.R)
		w.Color(c.Color)
	case detdraw.CircleStroke:
		e.head(c.Kind(), c.AA)
		e.q("cx", c.CX)
		e.q("cy", c.CY)
		e.q("r", c.R)
		e.q("thickness", c.Thickness)
		w.Color(c.Color)
	case detdraw.ArcStroke:
		e.head(c.Kind(), c.AA)
		e.q("cx", c.CX)
		e.q("cy", c.CY)
		e.q("r", c.R)
		e.q("start", c.Start)
		e.q("sweep", c.Sweep)
		e.q("thickness", c.Thickness)
		w.Color(c.Color)
	case detdraw.CubicStroke:
		e.head(c.Kind(), c.AA)
		e.q("x0", c.X0)
		e.q("y0", c.Y0)
		e.q("x1", c.X1)
		e.q("y1", c.Y1)
		e.q("x2", c.X2)
		e.q("y2", c.Y2)
		e.q("x3", c.X3)
		e.q("y3", c.Y3)
		e.q("thickness", c.Thickness)
		w.Color(c.Color)
	default:
		e.fail("", fmt.Sprintf("unsupported command %T", cmd))
	}
}

func parseErr(code codec.ParseCode, offset int, detail string) error {
	return codec.NewParseError(codec.Bdl2, code, offset, detail)
}

// Decode parses a BDL2 encoding. The input must hold exactly one encoding.
func Decode(data []byte) (*detdraw.DrawList, error) {
	r := wire.NewReader(data)
	readErr := func() error { return codec.ReadFailure(codec.Bdl2, r.Err(), r.FailOffset()) }

	magic := r.Raw(4)
	if r.Err() != nil {
		return nil, readErr()
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, parseErr(codec.CodeBadMagic, 0, fmt.Sprintf("got %q", magic))
	}
	version := r.U32()
	width := r.U32()
	height := r.U32()
	fixedQ := r.U8()
	flags := r.U8()
	reserved := r.U16()
	count := r.U32()
	switch {
	case r.Err() != nil:
		return nil, readErr()
	case version != Version:
		return nil, parseErr(codec.CodeBadVersion, 4, fmt.Sprintf("got %d", version))
	case fixedQ != FixedQ:
		return nil, parseErr(codec.CodeBadFixedQ, 16, fmt.Sprintf("got %d", fixedQ))
	case flags != 0:
		return nil, parseErr(codec.CodeBadHeaderFlags, 17, fmt.Sprintf("got 0x%02x", flags))
	case reserved != 0:
		return nil, parseErr(codec.CodeBadReserved, 18, fmt.Sprintf("got 0x%04x", reserved))
	}

	cmds := make([]detdraw.DrawCommand, 0, min(int(count), r.Remaining()/minRecordSize))
	q := func() float64 { return detdraw.FromQ24_8(r.I32()) }
	for i := uint32(0); i < count; i++ {
		start := r.Offset()
		kind := detdraw.CommandKind(r.U8())
		cmdFlags := r.U8()
		if r.Err() != nil {
			return nil, readErr()
		}
		if kind < detdraw.CmdClear || kind > detdraw.CmdCubicStroke {
			return nil, parseErr(codec.CodeUnknownOpcode, start, fmt.Sprintf("kind 0x%02x", uint8(kind)))
		}
		// Clear has no anti-aliased form; its AA bit is accepted and ignored.
		if cmdFlags&^FlagAA != 0 {
			return nil, parseErr(codec.CodeBadCmdFlags, start+1, fmt.Sprintf("%s flags 0x%02x", kind, cmdFlags))
		}
		aa := cmdFlags&FlagAA != 0

		var cmd detdraw.DrawCommand
		switch kind {
		case detdraw.CmdClear:
			cmd = detdraw.Clear{Color: r.Color()}
		case detdraw.CmdRectFill:
			c := detdraw.RectFill{X: q(), Y: q(), W: q(), H: q(), AA: aa}
			c.Color = r.Color()
			cmd = c
		case detdraw.CmdRectStroke:
			c := detdraw.RectStroke{X: q(), Y: q(), W: q(), H: q(), Thickness: q(), AA: aa}
			c.Color = r.Color()
			cmd = c
		case detdraw.CmdLine:
			c := detdraw.Line{X1: q(), Y1: q(), X2: q(), Y2: q(), Thickness: q(), AA: aa}
			c.Color = r.Color()
			cmd = c
		case detdraw.CmdText:
			c := detdraw.Text{X: q(), Y: q(), Size: q(), AA: aa}
			c.Color = r.Color()
			c.Text = r.String()
			cmd = c
		case detdraw.CmdSprite:
			c := detdraw.Sprite{X: q(), Y: q(), W: q(), H: q(), AA: aa}
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
					return nil, parseErr(codec.CodeBadHashKind, kindOff, fmt.Sprintf("hash kind %d", c.Asset.HashKind))
				}
			}
			cmd = c
		case detdraw.CmdCircleFill:
			c := detdraw.CircleFill{CX: q(), CY: q(), R: q(), AA: aa}
			c.Color = r.Color()
			cmd = c
		case detdraw.CmdCircleStroke:
			c := detdraw.CircleStroke{CX: q(), CY: q(), R: q(), Thickness: q(), AA: aa}
			c.Color = r.Color()
			cmd = c
		case detdraw.CmdArcStroke:
			c := detdraw.ArcStroke{CX: q(), CY: q(), R: q(), Start: q(), Sweep: q(), Thickness: q(), AA: aa}
			c.Color = r.Color()
			cmd = c
		case detdraw.CmdCubicStroke:
			c := detdraw.CubicStroke{
				X0: q(), Y0: q(), X1: q(), Y1: q(), X2: q(), Y2: q(), X3: q(), Y3: q(),
				Thickness: q(), AA: aa,
			}
			c.Color = r.Color()
			cmd = c
		}
		if r.Err() != nil {
			return nil, readErr()
		}
		cmds = append(cmds, cmd)
	}
	if r.Remaining() != 0 {
		return nil, parseErr(codec.CodeTrailingBytes, r.Offset(),
			fmt.Sprintf("%d bytes after command %d", r.Remaining(), count))
	}
	return &detdraw.DrawList{Width: width, Height: height, Cmds: cmds}, nil
}
