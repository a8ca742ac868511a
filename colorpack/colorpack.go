// Package colorpack resolves color strings to detdraw.Rgba values.
//
// A color is either a hex literal ("#RRGGBB" or "#RRGGBBAA") or a name
// looked up in a Pack. Names are matched case- and whitespace-insensitively
// in any locale the pack was loaded with.
package colorpack

import (
	"sort"
	"strings"

	tslang "github.com/go-text/typesetting/language"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/detdraw"
)

// Pack is a read-only name → color dictionary. Names keep the order in
// which they were registered.
type Pack struct {
	names   []string
	colors  map[string]detdraw.Rgba
	locales []string
}

// Entry is one color of a pack with its names grouped by locale.
type Entry struct {
	Color detdraw.Rgba
	Names map[string][]string
}

// New builds a pack from entries. Names are normalized with Normalize;
// when a name is registered twice the first registration wins. Locales are
// visited in ascending order within an entry.
func New(entries []Entry) *Pack {
	p := &Pack{colors: make(map[string]detdraw.Rgba)}
	seen := make(map[string]bool)
	for _, e := range entries {
		locales := make([]string, 0, len(e.Names))
		for loc := range e.Names {
			locales = append(locales, loc)
		}
		sort.Strings(locales)
		for _, loc := range locales {
			canon := string(tslang.NewLanguage(loc))
			if !seen[canon] {
				seen[canon] = true
				p.locales = append(p.locales, canon)
			}
			for _, name := range e.Names[loc] {
				p.add(name, e.Color)
			}
		}
	}
	sort.Strings(p.locales)
	return p
}

func (p *Pack) add(name string, c detdraw.Rgba) {
	key := Normalize(name)
	if key == "" {
		return
	}
	if _, dup := p.colors[key]; dup {
		return
	}
	p.names = append(p.names, key)
	p.colors[key] = c
}

// Normalize returns the lookup key for a color name: trimmed, NFC
// normalized and lower-cased.
func Normalize(name string) string {
	s := norm.NFC.String(strings.TrimSpace(name))
	return cases.Lower(language.Und).String(s)
}

// Lookup returns the color registered under name.
func (p *Pack) Lookup(name string) (detdraw.Rgba, bool) {
	if p == nil {
		return detdraw.Rgba{}, false
	}
	c, ok := p.colors[Normalize(name)]
	return c, ok
}

// Names returns the normalized names in registration order.
func (p *Pack) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of registered names.
func (p *Pack) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Locales returns the canonical locale tags the pack was built from.
func (p *Pack) Locales() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.locales))
	copy(out, p.locales)
	return out
}

// Resolve turns s into a color. A leading '#' selects hex parsing;
// anything else is looked up in p.
//
// Errors: ErrInvalidColorHex for a malformed literal, ErrColorPackNotFound
// when a name is given but p is nil, ErrUnknownColorName when p has no such
// name.
func Resolve(s string, p *Pack) (detdraw.Rgba, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return detdraw.ParseHex(s)
	}
	if p == nil {
		return detdraw.Rgba{}, detdraw.NewError(detdraw.KindColorPackNotFound, s, "no color pack loaded")
	}
	c, ok := p.Lookup(s)
	if !ok {
		return detdraw.Rgba{}, detdraw.NewError(detdraw.KindUnknownColorName, s, "")
	}
	return c, nil
}
