// Package encoding implements the little-endian primitives of the ZecWallet
// Lite wallet file format.
//
// The wallet file is written and read linearly. Every section is consumed
// from a single forward-only cursor with no backtracking:
//
//	integers:  little-endian, fixed width
//	strings:   u64 length || UTF-8 bytes
//	Option<T>: presence byte (0x00 = None, 0x01 = Some) || T
//	Vec<T>:    u64 count || count * T
//
// A Reader is owned by exactly one decode call; it holds no shared state, so
// independent decodes over different inputs can run concurrently.
package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// maxPrealloc bounds the capacity reserved up front for a length-prefixed
// sequence. Lengths come from untrusted input; larger sequences still decode,
// they just grow as elements arrive.
const maxPrealloc = 1024

// Reader is a forward-only cursor over a wallet byte stream.
type Reader struct {
	r   io.Reader
	n   int64
	buf [8]byte
}

// NewReader wraps r in a cursor.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.n
}

// ReadFull fills p from the stream.
func (r *Reader) ReadFull(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.n += int64(n)
	if err != nil {
		return &IOError{Op: fmt.Sprintf("%d bytes", len(p)), Cause: err}
	}
	return nil
}

func (r *Reader) fixed(op string, size int) ([]byte, error) {
	n, err := io.ReadFull(r.r, r.buf[:size])
	r.n += int64(n)
	if err != nil {
		return nil, &IOError{Op: op, Cause: err}
	}
	return r.buf[:size], nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.fixed("u8", 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a byte and reports whether it is non-zero.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	return b > 0, err
}

// ReadU32 reads a little-endian u32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.fixed("u32", 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian i32.
func (r *Reader) ReadI32() (int32, error) {
	b, err := r.fixed("i32", 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadU64 reads a little-endian u64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.fixed("u64", 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64 reads a little-endian i64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF64 reads a little-endian IEEE 754 double.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	return math.Float64frombits(v), err
}

// ReadSize reads a u64 that must fit the platform's int. Positions, slot
// indices and counts are stored as u64 but used as native sizes.
func (r *Reader) ReadSize() (int, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt {
		return 0, Invalidf("size %d could not be decoded from a 64-bit value on this platform", v)
	}
	return int(v), nil
}

// ReadArray32 reads a fixed 32-byte field (txids, nullifiers, hashes).
func (r *Reader) ReadArray32() ([32]byte, error) {
	var out [32]byte
	n, err := io.ReadFull(r.r, out[:])
	r.n += int64(n)
	if err != nil {
		return out, &IOError{Op: "32-byte array", Cause: err}
	}
	return out, nil
}

// ReadBytes reads exactly n bytes. Memory grows with the data actually
// present, so a corrupted length fails with an IOError instead of a huge
// allocation.
func (r *Reader) ReadBytes(n uint64) ([]byte, error) {
	if n <= maxPrealloc {
		out := make([]byte, n)
		if err := r.ReadFull(out); err != nil {
			return nil, err
		}
		return out, nil
	}
	if n > math.MaxInt64 {
		return nil, Invalidf("byte length %d out of range", n)
	}
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r.r, int64(n))
	r.n += copied
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, &IOError{Op: fmt.Sprintf("%d bytes", n), Cause: err}
	}
	return buf.Bytes(), nil
}

// ReadByteVector reads a Vec<u8>.
func (r *Reader) ReadByteVector() ([]byte, error) {
	n, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(n)
}

// ReadString reads a u64-length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadByteVector()
	if err != nil {
		return "", err
	}
	return toUTF8(b)
}

// ReadString32 reads a string whose length prefix is a u32. Only UTXO
// addresses use this width.
func (r *Reader) ReadString32() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(uint64(n))
	if err != nil {
		return "", err
	}
	return toUTF8(b)
}

func toUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", Invalidf("string field is not valid UTF-8")
	}
	return string(b), nil
}

// ReadOptional reads an Option<T>. Presence bytes other than 0 and 1 are
// rejected as non-canonical.
func ReadOptional[T any](r *Reader, fn func(*Reader) (T, error)) (*T, error) {
	flag, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	switch flag {
	case 0:
		return nil, nil
	case 1:
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, Invalidf("non-canonical Option<T> presence byte 0x%02x", flag)
	}
}

// ReadVector reads a Vec<T>.
func ReadVector[T any](r *Reader, fn func(*Reader) (T, error)) ([]T, error) {
	count, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, min(count, maxPrealloc))
	for i := uint64(0); i < count; i++ {
		v, err := fn(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadU8 adapts (*Reader).ReadU8 for ReadVector.
func ReadU8(r *Reader) (uint8, error) { return r.ReadU8() }

// ReadU32 adapts (*Reader).ReadU32 for ReadOptional.
func ReadU32(r *Reader) (uint32, error) { return r.ReadU32() }

// ReadI32 adapts (*Reader).ReadI32 for ReadOptional.
func ReadI32(r *Reader) (int32, error) { return r.ReadI32() }

// ReadU64 adapts (*Reader).ReadU64 for ReadOptional and ReadVector.
func ReadU64(r *Reader) (uint64, error) { return r.ReadU64() }

// ReadF64 adapts (*Reader).ReadF64 for ReadOptional.
func ReadF64(r *Reader) (float64, error) { return r.ReadF64() }

// ReadArray32 adapts (*Reader).ReadArray32 for ReadOptional and ReadVector.
func ReadArray32(r *Reader) ([32]byte, error) { return r.ReadArray32() }

// ReadByteVector adapts (*Reader).ReadByteVector for ReadOptional.
func ReadByteVector(r *Reader) ([]byte, error) { return r.ReadByteVector() }
