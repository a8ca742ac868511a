package detdraw

import (
	"fmt"
	"image/color"
	"strings"
)

// Rgba is an 8-bit per channel, non-premultiplied color.
type Rgba struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Black   = Rgba{0, 0, 0, 0xff}
	White   = Rgba{0xff, 0xff, 0xff, 0xff}
	Warning = Rgba{0xff, 0xcc, 0x00, 0xff}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Rgba {
	return Rgba{R: r, G: g, B: b, A: 0xff}
}

// Color converts c to the standard color.Color interface.
func (c Rgba) Color() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// String renders c as #rrggbbaa.
func (c Rgba) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseHex parses a "#RRGGBB" or "#RRGGBBAA" literal. Surrounding
// whitespace is ignored; the six digit form is opaque. Any other length
// or a non-hex digit fails with ErrInvalidColorHex.
func ParseHex(s string) (Rgba, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Rgba{}, NewError(KindInvalidColorHex, s, "missing '#' prefix")
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return Rgba{}, NewError(KindInvalidColorHex, s, fmt.Sprintf("want 6 or 8 hex digits, got %d", len(hex)))
	}

	var ch [4]uint8
	ch[3] = 0xff
	for i := 0; i < len(hex)/2; i++ {
		hi, ok1 := hexDigit(hex[2*i])
		lo, ok2 := hexDigit(hex[2*i+1])
		if !ok1 || !ok2 {
			return Rgba{}, NewError(KindInvalidColorHex, s, "non-hex digit")
		}
		ch[i] = hi<<4 | lo
	}
	return Rgba{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
