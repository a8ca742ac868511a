package codec

import (
	"errors"
	"fmt"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/internal/wire"
)

// ParseCode says why a decode failed.
type ParseCode uint8

const (
	CodeTruncated      ParseCode = iota + 1 // input ends inside a field
	CodeBadMagic                            // first 4 bytes are not the format magic
	CodeBadVersion                          // unsupported version
	CodeBadFixedQ                           // BDL2 fixed_q is not 8
	CodeBadHeaderFlags                      // BDL2 header flags non-zero
	CodeBadReserved                         // BDL2 header reserved non-zero
	CodeBadCmdFlags                         // BDL2 command flags outside the AA bit
	CodeUnknownOpcode                       // opcode not in the format
	CodeInvalidUTF8                         // string payload is not UTF-8
	CodeBadHashKind                         // sprite hash_kind not 0 or 1
	CodeTrailingBytes                       // bytes after the last command
)

var parseCodeNames = [...]string{
	CodeTruncated:      "truncated",
	CodeBadMagic:       "bad magic",
	CodeBadVersion:     "bad version",
	CodeBadFixedQ:      "bad fixed_q",
	CodeBadHeaderFlags: "bad header flags",
	CodeBadReserved:    "bad reserved",
	CodeBadCmdFlags:    "bad command flags",
	CodeUnknownOpcode:  "unknown opcode",
	CodeInvalidUTF8:    "invalid utf-8",
	CodeBadHashKind:    "bad hash kind",
	CodeTrailingBytes:  "trailing bytes",
}

func (c ParseCode) String() string {
	if int(c) < len(parseCodeNames) && parseCodeNames[c] != "" {
		return parseCodeNames[c]
	}
	return fmt.Sprintf("ParseCode(%d)", uint8(c))
}

// ParseError is a decode failure. It matches detdraw.ErrBdl2Parse when
// Format is Bdl2 and detdraw.ErrDetbinParse otherwise, and the per-code
// sentinels below.
type ParseError struct {
	Format Tag
	Code   ParseCode
	Offset int
	Detail string
}

// Per-code sentinels for errors.Is.
var (
	ErrTruncated      = &ParseError{Code: CodeTruncated}
	ErrBadMagic       = &ParseError{Code: CodeBadMagic}
	ErrBadVersion     = &ParseError{Code: CodeBadVersion}
	ErrBadFixedQ      = &ParseError{Code: CodeBadFixedQ}
	ErrBadHeaderFlags = &ParseError{Code: CodeBadHeaderFlags}
	ErrBadReserved    = &ParseError{Code: CodeBadReserved}
	ErrBadCmdFlags    = &ParseError{Code: CodeBadCmdFlags}
	ErrUnknownOpcode  = &ParseError{Code: CodeUnknownOpcode}
	ErrInvalidUTF8    = &ParseError{Code: CodeInvalidUTF8}
	ErrBadHashKind    = &ParseError{Code: CodeBadHashKind}
	ErrTrailingBytes  = &ParseError{Code: CodeTrailingBytes}
)

// ErrorKind reports the detdraw error kind of e.
func (e *ParseError) ErrorKind() detdraw.Kind {
	if e.Format == Bdl2 {
		return detdraw.KindBdl2Parse
	}
	return detdraw.KindDetbinParse
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("detdraw: %s: %s at offset %d", e.ErrorKind(), e.Code, e.Offset)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches the kind sentinel and the code sentinels.
func (e *ParseError) Is(target error) bool {
	switch t := target.(type) {
	case *ParseError:
		return t.Format == 0 && t.Detail == "" && t.Code == e.Code
	case *detdraw.Error:
		if e.Format == Bdl2 {
			return t == detdraw.ErrBdl2Parse
		}
		return t == detdraw.ErrDetbinParse
	}
	return false
}

// NewParseError builds a ParseError.
func NewParseError(format Tag, code ParseCode, offset int, detail string) *ParseError {
	return &ParseError{Format: format, Code: code, Offset: offset, Detail: detail}
}

// ReadFailure converts a reader failure at offset into a ParseError.
func ReadFailure(format Tag, err error, offset int) *ParseError {
	if errors.Is(err, wire.ErrInvalidUTF8) {
		return NewParseError(format, CodeInvalidUTF8, offset, "")
	}
	return NewParseError(format, CodeTruncated, offset, "")
}
