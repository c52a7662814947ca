package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Writer provides buffered little-endian writing utilities for metadata
// encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// U8 writes a single byte.
func (w *Writer) U8(b uint8) {
	w.buf.WriteByte(b)
}

// U16 writes a little-endian uint16.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// U32 writes a little-endian uint32.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// U64 writes a little-endian uint64.
func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// CString writes a NUL-terminated string.
func (w *Writer) CString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// CompressedU32 writes an ECMA-335 compressed unsigned integer. Values above
// the 29-bit maximum cannot be represented and return an error.
func (w *Writer) CompressedU32(v uint32) error {
	switch {
	case v < 0x80:
		w.buf.WriteByte(byte(v))
	case v < 0x4000:
		w.buf.WriteByte(byte(v>>8) | 0x80)
		w.buf.WriteByte(byte(v))
	case v < 0x2000_0000:
		w.buf.WriteByte(byte(v>>24) | 0xC0)
		w.buf.WriteByte(byte(v >> 16))
		w.buf.WriteByte(byte(v >> 8))
		w.buf.WriteByte(byte(v))
	default:
		return fmt.Errorf("value %d exceeds compressed integer maximum", v)
	}
	return nil
}

// CompressedU32Size returns the encoded size of v, or 0 if unrepresentable.
func CompressedU32Size(v uint32) int {
	switch {
	case v < 0x80:
		return 1
	case v < 0x4000:
		return 2
	case v < 0x2000_0000:
		return 4
	default:
		return 0
	}
}

// Pad writes zero bytes until the length is a multiple of n.
func (w *Writer) Pad(n int) {
	for w.buf.Len()%n != 0 {
		w.buf.WriteByte(0)
	}
}
