// Package wire provides little-endian primitives shared by the draw-list
// codecs.
package wire

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"

	"github.com/gogpu/detdraw"
)

// Reader failure causes.
var (
	ErrShort       = errors.New("wire: unexpected end of input")
	ErrInvalidUTF8 = errors.New("wire: string is not valid UTF-8")
)

// Writer appends little-endian values to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity for n bytes.
func NewWriter(n int) *Writer {
	return &Writer{buf: make([]byte, 0, n)}
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }
func (w *Writer) U8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) U16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *Writer) U32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *Writer) I32(v int32)  { w.U32(uint32(v)) }

func (w *Writer) Color(c detdraw.Rgba) {
	w.buf = append(w.buf, c.R, c.G, c.B, c.A)
}

// String writes a u32 byte length followed by the bytes of s.
func (w *Writer) String(s string) {
	w.U32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// Reader consumes little-endian values. The first failure is sticky: later
// reads return zero values and Err reports the cause.
type Reader struct {
	data    []byte
	off     int
	err     error
	failOff int
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first failure, if any.
func (r *Reader) Err() error { return r.err }

// FailOffset returns the offset at which the first failure occurred.
func (r *Reader) FailOffset() int { return r.failOff }

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
		r.failOff = r.off
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Remaining() < n {
		r.fail(ErrShort)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Raw returns the next n bytes without copying.
func (r *Reader) Raw(n int) []byte { return r.take(n) }

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) I32() int32 { return int32(r.U32()) }

func (r *Reader) Color() detdraw.Rgba {
	b := r.take(4)
	if b == nil {
		return detdraw.Rgba{}
	}
	return detdraw.Rgba{R: b[0], G: b[1], B: b[2], A: b[3]}
}

// String reads a u32 length-prefixed UTF-8 string.
func (r *Reader) String() string {
	n := r.U32()
	if r.err != nil {
		return ""
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.fail(ErrShort)
		return ""
	}
	start := r.off
	b := r.take(int(n))
	if !utf8.Valid(b) {
		r.off = start
		r.fail(ErrInvalidUTF8)
		return ""
	}
	return string(b)
}
