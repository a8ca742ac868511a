package colorpack

import (
	"sort"
	"sync"

	"golang.org/x/image/colornames"

	"github.com/gogpu/detdraw"
)

var (
	builtinOnce sync.Once
	builtin     *Pack
)

// Builtin returns a pack of the SVG 1.1 color keywords under the "en"
// locale. The pack is built once and shared.
func Builtin() *Pack {
	builtinOnce.Do(func() {
		names := make([]string, 0, len(colornames.Map))
		for name := range colornames.Map {
			names = append(names, name)
		}
		sort.Strings(names)

		entries := make([]Entry, 0, len(names))
		for _, name := range names {
			c := colornames.Map[name]
			entries = append(entries, Entry{
				Color: detdraw.Rgba{R: c.R, G: c.G, B: c.B, A: c.A},
				Names: map[string][]string{"en": {name}},
			})
		}
		builtin = New(entries)
	})
	return builtin
}
