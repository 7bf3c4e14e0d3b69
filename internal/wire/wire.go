// Package wire provides the big-endian byte cursor used by every termstore
// binary encoding (logic expressions, dynamic data, chronologies).
//
// Writers never fail; Readers record the first error and return zero values
// afterwards, so a decoder can read a whole record and check Err once.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Writer appends encoded values to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) PutByte(b byte) { w.buf = append(w.buf, b) }

func (w *Writer) PutBool(v bool) {
	if v {
		w.PutByte(1)
		return
	}
	w.PutByte(0)
}

func (w *Writer) PutInt32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) PutInt64(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) PutFloat32(v float32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *Writer) PutFloat64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *Writer) PutUUID(u uuid.UUID) { w.buf = append(w.buf, u[:]...) }

// PutBytes writes a length-prefixed byte slice.
func (w *Writer) PutBytes(b []byte) {
	w.PutInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// PutString writes a length-prefixed UTF-8 string.
func (w *Writer) PutString(s string) {
	w.PutInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// Reader consumes encoded values from a byte slice.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first decoding error, if any.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("wire: need %d bytes at offset %d, have %d", n, r.pos, len(r.data)-r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) Byte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Bool() bool { return r.Byte() != 0 }

func (r *Reader) Int32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

func (r *Reader) Int64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

func (r *Reader) Float32() float32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

func (r *Reader) Float64() float64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

func (r *Reader) UUID() uuid.UUID {
	b := r.take(16)
	if b == nil {
		return uuid.Nil
	}
	var u uuid.UUID
	copy(u[:], b)
	return u
}

// Count reads a non-negative int32 length prefix.
func (r *Reader) Count() int {
	n := r.Int32()
	if n < 0 && r.err == nil {
		r.err = fmt.Errorf("wire: negative length %d at offset %d", n, r.pos-4)
		return 0
	}
	return int(n)
}

// Bytes reads a length-prefixed byte slice. The result is a copy.
func (r *Reader) Bytes() []byte {
	b := r.take(r.Count())
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// String reads a length-prefixed string.
func (r *Reader) String() string {
	return string(r.take(r.Count()))
}
