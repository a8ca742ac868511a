package detdraw

// DrawList is a compiled scene: surface dimensions and an ordered command
// sequence. Lists produced by the compiler open with one Clear.
//
// A DrawList is a value: the pipeline never mutates a list in place, stages
// that rewrite commands return a new list.
type DrawList struct {
	Width, Height uint32
	Cmds          []DrawCommand
}

// Len returns the number of commands.
func (l *DrawList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Cmds)
}

// Clone returns a copy of l that shares no command storage with it.
func (l *DrawList) Clone() *DrawList {
	if l == nil {
		return nil
	}
	cmds := make([]DrawCommand, len(l.Cmds))
	copy(cmds, l.Cmds)
	return &DrawList{Width: l.Width, Height: l.Height, Cmds: cmds}
}

// Equal reports whether l and other have the same dimensions and
// field-for-field identical commands.
func (l *DrawList) Equal(other *DrawList) bool {
	if l == nil || other == nil {
		return l == other
	}
	if l.Width != other.Width || l.Height != other.Height || len(l.Cmds) != len(other.Cmds) {
		return false
	}
	for i := range l.Cmds {
		if l.Cmds[i] != other.Cmds[i] {
			return false
		}
	}
	return true
}

// KindCounts returns how many commands of each kind l contains.
func (l *DrawList) KindCounts() map[CommandKind]int {
	counts := make(map[CommandKind]int)
	if l == nil {
		return counts
	}
	for _, c := range l.Cmds {
		counts[c.Kind()]++
	}
	return counts
}
