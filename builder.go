package detdraw

// Builder appends draw commands to a fresh DrawList. It mirrors the shape
// helpers of a drawing context but produces commands instead of pixels.
// Use Finish to obtain the list.
//
// Example:
//
//	b := detdraw.NewBuilder(800, 600)
//	b.Clear(detdraw.Black)
//	b.SetLineWidth(2)
//	b.SetAA(true)
//	b.StrokeCircle(400, 300, 50, detdraw.White)
//	list := b.Finish()
//
// The Builder is not safe for concurrent use.
type Builder struct {
	width, height uint32
	cmds          []DrawCommand

	// Current state
	aa        bool
	lineWidth float64

	// State stack
	stack []builderState
}

// builderState stores the builder state for Push/Pop.
type builderState struct {
	aa        bool
	lineWidth float64
}

// NewBuilder creates a Builder for a width×height surface.
// The Builder starts with anti-aliasing off and 1px stroke width.
func NewBuilder(width, height uint32) *Builder {
	return &Builder{
		width:     width,
		height:    height,
		cmds:      make([]DrawCommand, 0, 64),
		lineWidth: 1,
	}
}

// Finish returns a DrawList holding a copy of the commands appended so far.
// The Builder may continue to be used afterwards.
func (b *Builder) Finish() *DrawList {
	cmds := make([]DrawCommand, len(b.cmds))
	copy(cmds, b.cmds)
	return &DrawList{Width: b.width, Height: b.height, Cmds: cmds}
}

// Len returns the number of commands appended so far.
func (b *Builder) Len() int { return len(b.cmds) }

// Push saves the current anti-alias and line width state.
func (b *Builder) Push() {
	b.stack = append(b.stack, builderState{aa: b.aa, lineWidth: b.lineWidth})
}

// Pop restores the state saved by the matching Push. Pop on an empty stack
// is a no-op.
func (b *Builder) Pop() {
	if len(b.stack) == 0 {
		return
	}
	s := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.aa = s.aa
	b.lineWidth = s.lineWidth
}

// SetAA sets the anti-alias flag for subsequent shape commands.
func (b *Builder) SetAA(aa bool) { b.aa = aa }

// SetLineWidth sets the stroke thickness for subsequent stroke commands.
func (b *Builder) SetLineWidth(w float64) { b.lineWidth = w }

// Add appends an arbitrary command.
func (b *Builder) Add(cmd DrawCommand) { b.cmds = append(b.cmds, cmd) }

// Clear appends a background fill.
func (b *Builder) Clear(c Rgba) { b.Add(Clear{Color: c}) }

// FillRect appends a filled rectangle.
func (b *Builder) FillRect(x, y, w, h float64, c Rgba) {
	b.Add(RectFill{X: x, Y: y, W: w, H: h, Color: c, AA: b.aa})
}

// StrokeRect appends an outlined rectangle.
func (b *Builder) StrokeRect(x, y, w, h float64, c Rgba) {
	b.Add(RectStroke{X: x, Y: y, W: w, H: h, Thickness: b.lineWidth, Color: c, AA: b.aa})
}

// Line appends a line segment.
func (b *Builder) Line(x1, y1, x2, y2 float64, c Rgba) {
	b.Add(Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Thickness: b.lineWidth, Color: c, AA: b.aa})
}

// Text appends a text run.
func (b *Builder) Text(x, y, size float64, s string, c Rgba) {
	b.Add(Text{X: x, Y: y, Size: size, Color: c, Text: s, AA: b.aa})
}

// Sprite appends an image draw.
func (b *Builder) Sprite(x, y, w, h float64, asset AssetRef, tint Rgba) {
	b.Add(Sprite{X: x, Y: y, W: w, H: h, Tint: tint, Asset: asset, AA: b.aa})
}

// FillCircle appends a filled circle.
func (b *Builder) FillCircle(cx, cy, r float64, c Rgba) {
	b.Add(CircleFill{CX: cx, CY: cy, R: r, Color: c, AA: b.aa})
}

// StrokeCircle appends an outlined circle.
func (b *Builder) StrokeCircle(cx, cy, r float64, c Rgba) {
	b.Add(CircleStroke{CX: cx, CY: cy, R: r, Thickness: b.lineWidth, Color: c, AA: b.aa})
}

// StrokeArc appends an arc; start and sweep are in turns.
func (b *Builder) StrokeArc(cx, cy, r, start, sweep float64, c Rgba) {
	b.Add(ArcStroke{CX: cx, CY: cy, R: r, Start: start, Sweep: sweep, Thickness: b.lineWidth, Color: c, AA: b.aa})
}

// StrokeCubic appends a cubic Bezier curve.
func (b *Builder) StrokeCubic(x0, y0, x1, y1, x2, y2, x3, y3 float64, c Rgba) {
	b.Add(CubicStroke{
		X0: x0, Y0: y0, X1: x1, Y1: y1,
		X2: x2, Y2: y2, X3: x3, Y3: y3,
		Thickness: b.lineWidth, Color: c, AA: b.aa,
	})
}
