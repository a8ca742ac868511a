package detdraw

// CommandKind identifies the variant of a DrawCommand.
// The values equal the BDL2 opcodes.
type CommandKind uint8

const (
	CmdClear        CommandKind = 0x01 // Fill the whole surface
	CmdRectFill     CommandKind = 0x02 // Filled axis-aligned rectangle
	CmdRectStroke   CommandKind = 0x03 // Outlined axis-aligned rectangle
	CmdLine         CommandKind = 0x04 // Straight line segment
	CmdText         CommandKind = 0x05 // Text run at a baseline origin
	CmdSprite       CommandKind = 0x06 // Image asset scaled into a box
	CmdCircleFill   CommandKind = 0x07 // Filled circle
	CmdCircleStroke CommandKind = 0x08 // Outlined circle
	CmdArcStroke    CommandKind = 0x09 // Circular arc, angles in turns
	CmdCubicStroke  CommandKind = 0x0A // Cubic Bezier curve
)

// commandKindNames maps CommandKind values to their string representation.
var commandKindNames = [...]string{
	CmdClear:        "Clear",
	CmdRectFill:     "RectFill",
	CmdRectStroke:   "RectStroke",
	CmdLine:         "Line",
	CmdText:         "Text",
	CmdSprite:       "Sprite",
	CmdCircleFill:   "CircleFill",
	CmdCircleStroke: "CircleStroke",
	CmdArcStroke:    "ArcStroke",
	CmdCubicStroke:  "CubicCurveStroke",
}

// String returns the string representation of a CommandKind.
func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) && commandKindNames[k] != "" {
		return commandKindNames[k]
	}
	return "Unknown"
}

// DrawCommand is one drawing instruction. The set of implementations is
// closed: Clear, RectFill, RectStroke, Line, Text, Sprite, CircleFill,
// CircleStroke, ArcStroke and CubicStroke. Consumers switch on the concrete
// type.
type DrawCommand interface {
	// Kind returns the variant of the command.
	Kind() CommandKind
	isDrawCommand()
}

// Clear fills the whole surface with a color. A compiled draw list opens
// with exactly one Clear.
type Clear struct {
	Color Rgba
}

// RectFill fills the rectangle (X, Y, W, H).
type RectFill struct {
	X, Y, W, H float64
	Color      Rgba
	AA         bool
}

// RectStroke outlines the rectangle (X, Y, W, H).
type RectStroke struct {
	X, Y, W, H float64
	Thickness  float64
	Color      Rgba
	AA         bool
}

// Line draws a segment from (X1, Y1) to (X2, Y2).
type Line struct {
	X1, Y1, X2, Y2 float64
	Thickness      float64
	Color          Rgba
	AA             bool
}

// Text draws Text with its origin at (X, Y).
type Text struct {
	X, Y  float64
	Size  float64
	Color Rgba
	Text  string
	AA    bool
}

// Sprite draws the asset Asset scaled into (X, Y, W, H), multiplied by Tint.
type Sprite struct {
	X, Y, W, H float64
	Tint       Rgba
	Asset      AssetRef
	AA         bool
}

// CircleFill fills the circle centered at (CX, CY).
type CircleFill struct {
	CX, CY, R float64
	Color     Rgba
	AA        bool
}

// CircleStroke outlines the circle centered at (CX, CY).
type CircleStroke struct {
	CX, CY, R float64
	Thickness float64
	Color     Rgba
	AA        bool
}

// ArcStroke outlines a circular arc. Start and Sweep are in turns:
// 1 is a full revolution, positive sweep runs from +X towards +Y.
type ArcStroke struct {
	CX, CY, R    float64
	Start, Sweep float64
	Thickness    float64
	Color        Rgba
	AA           bool
}

// CubicStroke outlines the cubic Bezier curve with control points P0..P3.
type CubicStroke struct {
	X0, Y0, X1, Y1 float64
	X2, Y2, X3, Y3 float64
	Thickness      float64
	Color          Rgba
	AA             bool
}

func (Clear) Kind() CommandKind        { return CmdClear }
func (RectFill) Kind() CommandKind     { return CmdRectFill }
func (RectStroke) Kind() CommandKind   { return CmdRectStroke }
func (Line) Kind() CommandKind         { return CmdLine }
func (Text) Kind() CommandKind         { return CmdText }
func (Sprite) Kind() CommandKind       { return CmdSprite }
func (CircleFill) Kind() CommandKind   { return CmdCircleFill }
func (CircleStroke) Kind() CommandKind { return CmdCircleStroke }
func (ArcStroke) Kind() CommandKind    { return CmdArcStroke }
func (CubicStroke) Kind() CommandKind  { return CmdCubicStroke }

func (Clear) isDrawCommand()        {}
func (RectFill) isDrawCommand()     {}
func (RectStroke) isDrawCommand()   {}
func (Line) isDrawCommand()         {}
func (Text) isDrawCommand()         {}
func (Sprite) isDrawCommand()       {}
func (CircleFill) isDrawCommand()   {}
func (CircleStroke) isDrawCommand() {}
func (ArcStroke) isDrawCommand()    {}
func (CubicStroke) isDrawCommand()  {}

// Asset hash kinds.
const (
	HashNone   uint8 = 0 // no digest
	HashDigest uint8 = 1 // 32-byte digest present
)

// AssetRef references a sprite image.
// Hash is meaningful only when HashKind is HashDigest.
type AssetRef struct {
	URI      string
	HashKind uint8
	Hash     [32]byte
}
