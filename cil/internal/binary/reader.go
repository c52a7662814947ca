package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrUnexpectedEnd is returned when a read runs past the end of the buffer.
var ErrUnexpectedEnd = errors.New("binary: unexpected end of data")

// Reader provides bounds-checked little-endian reads over a byte slice with
// position tracking. Metadata structures are always addressed by absolute
// offset, so Reader never copies the underlying data.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data starting at position 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Seek moves the read position to pos.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return r.wrapError(ErrUnexpectedEnd)
	}
	r.pos = pos
	return nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if r.pos+1 > len(r.data) {
		return 0, r.wrapError(ErrUnexpectedEnd)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, r.wrapError(ErrUnexpectedEnd)
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, r.wrapError(ErrUnexpectedEnd)
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, r.wrapError(ErrUnexpectedEnd)
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, r.wrapError(ErrUnexpectedEnd)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadCString reads a NUL-terminated UTF-8 string and validates it.
func (r *Reader) ReadCString() (string, error) {
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != 0 {
		r.pos++
	}
	if r.pos >= len(r.data) {
		return "", r.wrapError(errors.New("unterminated string"))
	}
	raw := r.data[start:r.pos]
	r.pos++ // consume NUL
	if !utf8.Valid(raw) {
		return "", r.wrapError(errors.New("invalid UTF-8 in string"))
	}
	return string(raw), nil
}

// ReadCompressedU32 reads an ECMA-335 compressed unsigned integer
// (1, 2 or 4 bytes, selected by the top bits of the first byte).
func (r *Reader) ReadCompressedU32() (uint32, error) {
	b0, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	switch {
	case b0&0x80 == 0:
		return uint32(b0), nil
	case b0&0xC0 == 0x80:
		b1, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		return uint32(b0&0x3F)<<8 | uint32(b1), nil
	case b0&0xE0 == 0xC0:
		rest, err := r.ReadBytes(3)
		if err != nil {
			return 0, err
		}
		return uint32(b0&0x1F)<<24 | uint32(rest[0])<<16 | uint32(rest[1])<<8 | uint32(rest[2]), nil
	default:
		return 0, r.wrapError(fmt.Errorf("invalid compressed integer lead byte 0x%02X", b0))
	}
}

// Align advances the position to the next multiple of n.
func (r *Reader) Align(n int) error {
	rem := r.pos % n
	if rem == 0 {
		return nil
	}
	_, err := r.ReadBytes(n - rem)
	return err
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.pos, err)
}
