package encoding

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer emits the wallet primitives to an underlying stream. The first write
// error is sticky: later calls are no-ops and Err reports it.
type Writer struct {
	w   io.Writer
	buf [8]byte
	n   int64
	err error
}

// NewWriter returns a Writer that wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered by the Writer.
func (w *Writer) Err() error {
	return w.err
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 {
	return w.n
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		w.err = &IOError{Op: "write", Cause: err}
	}
	return n, w.err
}

func (w *Writer) WriteU8(v uint8) {
	w.buf[0] = v
	w.Write(w.buf[:1])
}

func (w *Writer) WriteBool(b bool) {
	if b {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

func (w *Writer) WriteU32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.Write(w.buf[:4])
}

func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

func (w *Writer) WriteU64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.Write(w.buf[:8])
}

func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

func (w *Writer) WriteF64(v float64) {
	w.WriteU64(math.Float64bits(v))
}

// WriteBytes writes b verbatim, with no length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.Write(b)
}

// WriteByteVector writes b as a Vec<u8>.
func (w *Writer) WriteByteVector(b []byte) {
	w.WriteU64(uint64(len(b)))
	w.Write(b)
}

// WriteString writes s with a u64 length prefix.
func (w *Writer) WriteString(s string) {
	w.WriteByteVector([]byte(s))
}

// WriteString32 writes s with a u32 length prefix.
func (w *Writer) WriteString32(s string) {
	w.WriteU32(uint32(len(s)))
	w.Write([]byte(s))
}

// WriteOptional writes an Option<T>; a nil v is None.
func WriteOptional[T any](w *Writer, v *T, fn func(*Writer, T)) {
	if v == nil {
		w.WriteU8(0)
		return
	}
	w.WriteU8(1)
	fn(w, *v)
}

// WriteVector writes a Vec<T>.
func WriteVector[T any](w *Writer, s []T, fn func(*Writer, T)) {
	w.WriteU64(uint64(len(s)))
	for _, v := range s {
		fn(w, v)
	}
}

// WriteArray32 adapts a fixed 32-byte field for WriteOptional and WriteVector.
func WriteArray32(w *Writer, v [32]byte) { w.WriteBytes(v[:]) }

// WriteU64 adapts (*Writer).WriteU64 for WriteOptional and WriteVector.
func WriteU64(w *Writer, v uint64) { w.WriteU64(v) }

// WriteU32 adapts (*Writer).WriteU32 for WriteOptional.
func WriteU32(w *Writer, v uint32) { w.WriteU32(v) }

// WriteI32 adapts (*Writer).WriteI32 for WriteOptional.
func WriteI32(w *Writer, v int32) { w.WriteI32(v) }

// WriteByteVector adapts (*Writer).WriteByteVector for WriteOptional.
func WriteByteVector(w *Writer, v []byte) { w.WriteByteVector(v) }
