package colorpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/detdraw"
)

// file is the on-disk layout:
//
//	{"entries": [{"hex": "#RRGGBB", "en": ["name", ...], "ko": ["이름", ...]}]}
//
// Every member of an entry other than "hex" is a locale whose value is a
// list of names.
type file struct {
	Entries []map[string]json.RawMessage `json:"entries"`
}

// Load reads a pack from a JSON file.
func Load(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &detdraw.Error{Kind: detdraw.KindColorPackLoad, Key: path, Err: err}
	}
	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("colorpack: %s: %w", path, err)
	}
	return p, nil
}

// Decode reads a pack from JSON. Any structural problem or bad hex value
// fails with ErrColorPackLoad.
func Decode(r io.Reader) (*Pack, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, &detdraw.Error{Kind: detdraw.KindColorPackLoad, Detail: "parse", Err: err}
	}

	entries := make([]Entry, 0, len(f.Entries))
	for i, raw := range f.Entries {
		at := fmt.Sprintf("entries[%d]", i)
		hexRaw, ok := raw["hex"]
		if !ok {
			return nil, detdraw.NewError(detdraw.KindColorPackLoad, at, "missing hex")
		}
		var hex string
		if err := json.Unmarshal(hexRaw, &hex); err != nil {
			return nil, &detdraw.Error{Kind: detdraw.KindColorPackLoad, Key: at + ".hex", Err: err}
		}
		c, err := detdraw.ParseHex(hex)
		if err != nil {
			return nil, &detdraw.Error{Kind: detdraw.KindColorPackLoad, Key: at + ".hex", Err: err}
		}

		e := Entry{Color: c, Names: make(map[string][]string)}
		for loc, v := range raw {
			if loc == "hex" {
				continue
			}
			var names []string
			if err := json.Unmarshal(v, &names); err != nil {
				return nil, &detdraw.Error{Kind: detdraw.KindColorPackLoad, Key: at + "." + loc, Err: err}
			}
			e.Names[loc] = names
		}
		entries = append(entries, e)
	}
	return New(entries), nil
}
