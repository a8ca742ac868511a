package codec

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/detdraw"
)

// Tag selects a wire format.
type Tag uint8

const (
	Bdl1 Tag = 1
	Bdl2 Tag = 2
)

func (t Tag) String() string {
	switch t {
	case Bdl1:
		return "bdl1"
	case Bdl2:
		return "bdl2"
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// ParseTag parses "bdl1" or "bdl2", ignoring case.
func ParseTag(s string) (Tag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bdl1":
		return Bdl1, nil
	case "bdl2":
		return Bdl2, nil
	}
	return 0, fmt.Errorf("codec: unknown format %q", s)
}

// Codec encodes and decodes one wire format.
type Codec interface {
	// Tag identifies the format.
	Tag() Tag
	// Magic returns the 4 bytes every encoding starts with.
	Magic() [4]byte
	// Encode serializes list.
	Encode(list *detdraw.DrawList) ([]byte, error)
	// Decode parses data, which must contain exactly one encoding.
	Decode(data []byte) (*detdraw.DrawList, error)
}

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	codecs     = make(map[Tag]Codec)
)

// Register makes a codec available by its tag. It is typically called from
// init() in a format package.
//
// Register panics if c is nil, or if a codec with the same tag or magic is
// already registered.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if c == nil {
		panic("codec: Register codec is nil")
	}
	if _, dup := codecs[c.Tag()]; dup {
		panic("codec: Register called twice for " + c.Tag().String())
	}
	for _, other := range codecs {
		if other.Magic() == c.Magic() {
			panic("codec: Register magic collision for " + c.Tag().String())
		}
	}
	codecs[c.Tag()] = c
}

// Unregister removes a codec from the registry.
// This is primarily useful for testing. Unknown tags are a no-op.
func Unregister(t Tag) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(codecs, t)
}

// Lookup returns the codec registered for t.
// The error hints at a forgotten import.
func Lookup(t Tag) (Codec, error) {
	registryMu.RLock()
	c, ok := codecs[t]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("codec: format %s not registered (forgotten import?)", t)
	}
	return c, nil
}

// Tags returns the registered tags in ascending order.
func Tags() []Tag {
	registryMu.RLock()
	defer registryMu.RUnlock()

	tags := make([]Tag, 0, len(codecs))
	for t := range codecs {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Sniff returns the format of data from its magic bytes.
func Sniff(data []byte) (Tag, error) {
	if len(data) < 4 {
		return 0, &ParseError{Code: CodeTruncated, Offset: len(data), Detail: "missing magic"}
	}
	var magic [4]byte
	copy(magic[:], data)

	registryMu.RLock()
	defer registryMu.RUnlock()
	for t, c := range codecs {
		if c.Magic() == magic {
			return t, nil
		}
	}
	return 0, &ParseError{Code: CodeBadMagic, Detail: fmt.Sprintf("unrecognized magic %q", magic[:])}
}

// Encode serializes list with the codec registered for t.
func Encode(t Tag, list *detdraw.DrawList) ([]byte, error) {
	c, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	return c.Encode(list)
}

// Decode parses data with the codec selected by its magic bytes.
func Decode(data []byte) (*detdraw.DrawList, Tag, error) {
	t, err := Sniff(data)
	if err != nil {
		return nil, 0, err
	}
	c, err := Lookup(t)
	if err != nil {
		return nil, 0, err
	}
	list, err := c.Decode(data)
	if err != nil {
		return nil, t, err
	}
	return list, t, nil
}
