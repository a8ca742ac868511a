package detdraw

import (
	"errors"
	"strings"
)

// Kind classifies a failure of the compile pipeline or a codec.
// Callers surface the kind name verbatim next to the message.
type Kind uint8

const (
	KindUnknown           Kind = iota
	KindNonIntPixel            // geometry not an integral pixel in range
	KindBadFieldType           // field present with the wrong value shape
	KindMissingField           // required field absent (directly or via $name)
	KindColorPackLoad          // color pack unreadable or unparsable
	KindColorPackNotFound      // name lookup without a color pack
	KindInvalidColorHex        // malformed #RRGGBB[AA] literal
	KindUnknownColorName       // name not present in the color pack
	KindDetbinParse            // malformed BDL1 input
	KindBdl2Parse              // malformed BDL2 input
	KindCmdCap                 // Cap-mode policy violation
	KindDetbinEncode           // draw list not representable in the format
)

var kindNames = [...]string{
	KindUnknown:           "Unknown",
	KindNonIntPixel:       "NonIntPixel",
	KindBadFieldType:      "BadFieldType",
	KindMissingField:      "MissingField",
	KindColorPackLoad:     "ColorPackLoad",
	KindColorPackNotFound: "ColorPackNotFound",
	KindInvalidColorHex:   "InvalidColorHex",
	KindUnknownColorName:  "UnknownColorName",
	KindDetbinParse:       "DetbinParse",
	KindBdl2Parse:         "Bdl2Parse",
	KindCmdCap:            "CmdCap",
	KindDetbinEncode:      "DetbinEncode",
}

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Sentinel errors, one per kind. Use errors.Is to test the kind of any error
// returned by detdraw packages:
//
//	if errors.Is(err, detdraw.ErrMissingField) { ... }
var (
	ErrNonIntPixel       = &Error{Kind: KindNonIntPixel}
	ErrBadFieldType      = &Error{Kind: KindBadFieldType}
	ErrMissingField      = &Error{Kind: KindMissingField}
	ErrColorPackLoad     = &Error{Kind: KindColorPackLoad}
	ErrColorPackNotFound = &Error{Kind: KindColorPackNotFound}
	ErrInvalidColorHex   = &Error{Kind: KindInvalidColorHex}
	ErrUnknownColorName  = &Error{Kind: KindUnknownColorName}
	ErrDetbinParse       = &Error{Kind: KindDetbinParse}
	ErrBdl2Parse         = &Error{Kind: KindBdl2Parse}
	ErrCmdCap            = &Error{Kind: KindCmdCap}
	ErrDetbinEncode      = &Error{Kind: KindDetbinEncode}
)

// Error is a classified failure. Key names the state key, field path or
// input that caused it, when there is one.
type Error struct {
	Kind   Kind
	Key    string
	Detail string
	Err    error
}

// NewError returns an Error of the given kind.
func NewError(kind Kind, key, detail string) *Error {
	return &Error{Kind: kind, Key: key, Detail: detail}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("detdraw: ")
	sb.WriteString(e.Kind.String())
	if e.Key != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Key)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Key == "" && t.Detail == "" && t.Err == nil
}

// ErrorKind implements the kinded interface used by KindOf.
func (e *Error) ErrorKind() Kind { return e.Kind }

// KindOf returns the kind of the first classified error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var k interface{ ErrorKind() Kind }
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindUnknown
}
