// Package policy enforces a limit on the number of commands in a draw list.
//
// Three modes are supported:
//
//   - None: the command sequence passes through unchanged.
//   - Cap: more than Cap commands is an error (*CmdCapError).
//   - Summary: more than Cap commands is truncated; when Cap > 1 the last
//     kept slot is replaced by a warning Text naming the original count.
//
// Apply never mutates its input. When it alters the sequence it returns an
// Event so callers can log or audit the degradation.
package policy

import (
	"fmt"
	"strings"

	"github.com/gogpu/detdraw"
)

// Mode selects the overflow behavior.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeCap
	ModeSummary
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeCap:
		return "cap"
	case ModeSummary:
		return "summary"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode parses "none", "cap" or "summary", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "cap":
		return ModeCap, nil
	case "summary":
		return ModeSummary, nil
	}
	return ModeNone, fmt.Errorf("policy: unknown mode %q", s)
}

// Config is the overflow policy of a compile.
type Config struct {
	Mode Mode
	Cap  uint32
}

// Validate checks the caller contract: Cap and Summary need Cap >= 1.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeNone:
		return nil
	case ModeCap, ModeSummary:
		if c.Cap == 0 {
			return fmt.Errorf("policy: %s mode requires cap >= 1", c.Mode)
		}
		return nil
	}
	return fmt.Errorf("policy: unknown mode %d", uint8(c.Mode))
}

// Event reports that Apply altered a command sequence.
type Event struct {
	Mode  Mode
	Cap   uint32
	Count int // original command count
}

// CmdCapError is returned in Cap mode when the sequence is too long.
type CmdCapError struct {
	Cap   uint32
	Count int
}

func (e *CmdCapError) Error() string {
	return fmt.Sprintf("detdraw: CmdCap: %d commands exceeds cap %d", e.Count, e.Cap)
}

// Is matches detdraw.ErrCmdCap.
func (e *CmdCapError) Is(target error) bool { return target == detdraw.ErrCmdCap }

// ErrorKind reports detdraw.KindCmdCap.
func (e *CmdCapError) ErrorKind() detdraw.Kind { return detdraw.KindCmdCap }

// Warning text appearance.
const (
	WarningX    = 4
	WarningY    = 4
	WarningSize = 12
)

// WarningText returns the synthetic command appended in Summary mode.
func WarningText(count int, limit uint32) detdraw.Text {
	return detdraw.Text{
		X:     WarningX,
		Y:     WarningY,
		Size:  WarningSize,
		Color: detdraw.Warning,
		Text:  fmt.Sprintf("draw list truncated: %d commands exceeds cap %d", count, limit),
	}
}

// Apply enforces cfg on cmds. The returned slice is cmds itself when
// nothing changed and a new slice otherwise. cfg must satisfy Validate.
func Apply(cfg Config, cmds []detdraw.DrawCommand) ([]detdraw.DrawCommand, *Event, error) {
	n := len(cmds)
	switch cfg.Mode {
	case ModeNone:
		return cmds, nil, nil

	case ModeCap:
		if n > int(cfg.Cap) {
			return nil, nil, &CmdCapError{Cap: cfg.Cap, Count: n}
		}
		return cmds, nil, nil

	case ModeSummary:
		if n <= int(cfg.Cap) {
			return cmds, nil, nil
		}
		limit := int(cfg.Cap)
		keep := limit
		if limit > 1 {
			keep = limit - 1
		}
		out := make([]detdraw.DrawCommand, keep, limit)
		copy(out, cmds[:keep])
		if limit > 1 {
			out = append(out, WarningText(n, cfg.Cap))
		}
		return out, &Event{Mode: cfg.Mode, Cap: cfg.Cap, Count: n}, nil
	}
	return nil, nil, fmt.Errorf("policy: unknown mode %d", uint8(cfg.Mode))
}

// ApplyList enforces cfg on a draw list and returns a new list when the
// commands changed.
func ApplyList(cfg Config, list *detdraw.DrawList) (*detdraw.DrawList, *Event, error) {
	cmds, ev, err := Apply(cfg, list.Cmds)
	if err != nil {
		return nil, nil, err
	}
	if ev == nil {
		return list, nil, nil
	}
	return &detdraw.DrawList{Width: list.Width, Height: list.Height, Cmds: cmds}, ev, nil
}
