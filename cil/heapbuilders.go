package cil

import (
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/cilforge/cilmeta/cil/internal/binary"
	"github.com/cilforge/cilmeta/errors"
)

// Heap builders grow heaps append-only. The write pipeline rebuilds every
// heap through a builder, copying content that is still referenced, so the
// output never carries stale heap bytes.

// StringsBuilder builds a #Strings heap. The heap always starts with the
// single NUL of the empty string at offset 0. Identical strings share one
// record.
type StringsBuilder struct {
	w      *binary.Writer
	offset map[string]uint32
}

// NewStringsBuilder creates an empty strings heap builder.
func NewStringsBuilder() *StringsBuilder {
	b := &StringsBuilder{w: binary.NewWriter(), offset: make(map[string]uint32)}
	b.w.U8(0)
	return b
}

// Add appends s and returns its offset. The empty string is always
// offset 0.
func (b *StringsBuilder) Add(s string) uint32 {
	if s == "" {
		return 0
	}
	if off, ok := b.offset[s]; ok {
		return off
	}
	off := uint32(b.w.Len())
	b.w.CString(s)
	b.offset[s] = off
	return off
}

// Size returns the current heap size.
func (b *StringsBuilder) Size() uint32 { return uint32(b.w.Len()) }

// Bytes finalizes the heap, 4-byte aligned.
func (b *StringsBuilder) Bytes() []byte {
	b.w.Pad(4)
	return b.w.Bytes()
}

// BlobBuilder builds a #Blob heap. Offset identity of separate adds is
// preserved: duplicate content is not merged.
type BlobBuilder struct {
	w *binary.Writer
}

// NewBlobBuilder creates an empty blob heap builder.
func NewBlobBuilder() *BlobBuilder {
	b := &BlobBuilder{w: binary.NewWriter()}
	b.w.U8(0)
	return b
}

// Add appends content as a length-prefixed record and returns its offset.
// A nil/empty blob is the shared offset 0.
func (b *BlobBuilder) Add(content []byte) (uint32, error) {
	if len(content) == 0 {
		return 0, nil
	}
	off := uint32(b.w.Len())
	if err := b.w.CompressedU32(uint32(len(content))); err != nil {
		return 0, errors.New(errors.PhasePlan, errors.KindLayout).
			Path("heap", "blob").
			Cause(err).
			Detail("blob of %d bytes exceeds the length-prefix maximum", len(content)).
			Build()
	}
	b.w.WriteBytes(content)
	return off, nil
}

// Size returns the current heap size.
func (b *BlobBuilder) Size() uint32 { return uint32(b.w.Len()) }

// Bytes finalizes the heap, 4-byte aligned.
func (b *BlobBuilder) Bytes() []byte {
	b.w.Pad(4)
	return b.w.Bytes()
}

// GuidBuilder builds a #GUID heap of fixed 16-byte records addressed by
// 1-based index. Identical guids share one record.
type GuidBuilder struct {
	w     *binary.Writer
	index map[uuid.UUID]uint32
}

// NewGuidBuilder creates an empty guid heap builder.
func NewGuidBuilder() *GuidBuilder {
	return &GuidBuilder{w: binary.NewWriter(), index: make(map[uuid.UUID]uint32)}
}

// Add appends g and returns its 1-based index. The nil guid is index 0.
func (b *GuidBuilder) Add(g uuid.UUID) uint32 {
	if g == uuid.Nil {
		return 0
	}
	if idx, ok := b.index[g]; ok {
		return idx
	}
	b.w.WriteBytes(g[:])
	idx := uint32(b.w.Len() / 16)
	b.index[g] = idx
	return idx
}

// Size returns the current heap size, always a multiple of 16.
func (b *GuidBuilder) Size() uint32 { return uint32(b.w.Len()) }

// Bytes finalizes the heap.
func (b *GuidBuilder) Bytes() []byte { return b.w.Bytes() }

// UserStringBuilder builds a #US heap of length-prefixed UTF-16 records
// with a trailing marker byte.
type UserStringBuilder struct {
	w *binary.Writer
}

// NewUserStringBuilder creates an empty user string heap builder.
func NewUserStringBuilder() *UserStringBuilder {
	b := &UserStringBuilder{w: binary.NewWriter()}
	b.w.U8(0)
	return b
}

// Add appends s and returns its offset.
func (b *UserStringBuilder) Add(s string) (uint32, error) {
	units := utf16.Encode([]rune(s))
	off := uint32(b.w.Len())
	if err := b.w.CompressedU32(uint32(len(units)*2 + 1)); err != nil {
		return 0, errors.New(errors.PhasePlan, errors.KindLayout).
			Path("heap", "userstrings").
			Cause(err).
			Detail("user string of %d UTF-16 units exceeds the length-prefix maximum", len(units)).
			Build()
	}
	for _, u := range units {
		b.w.U16(u)
	}
	if userStringSpecial(units) {
		b.w.U8(1)
	} else {
		b.w.U8(0)
	}
	return off, nil
}

// Size returns the current heap size.
func (b *UserStringBuilder) Size() uint32 { return uint32(b.w.Len()) }

// Bytes finalizes the heap, 4-byte aligned.
func (b *UserStringBuilder) Bytes() []byte {
	b.w.Pad(4)
	return b.w.Bytes()
}
