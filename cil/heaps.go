package cil

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cilforge/cilmeta/cil/internal/binary"
	"github.com/cilforge/cilmeta/errors"
)

// StringHeap is the #Strings heap: a sequence of NUL-terminated UTF-8
// records referenced by byte offset. Offset 0 is the empty string.
type StringHeap struct {
	data []byte
}

// NewStringHeap wraps heap bytes. An empty heap is valid and resolves only
// offset 0.
func NewStringHeap(data []byte) *StringHeap {
	return &StringHeap{data: data}
}

// Size returns the heap size in bytes.
func (h *StringHeap) Size() uint32 { return uint32(len(h.data)) }

// Data returns the raw heap bytes.
func (h *StringHeap) Data() []byte { return h.data }

// Get resolves a string heap offset. Invalid UTF-8 and unterminated
// records are malformed-input errors.
func (h *StringHeap) Get(offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if offset >= uint32(len(h.data)) {
		return "", errors.OutOfBounds(errors.PhaseParse, []string{"heap", "strings"}, int(offset), len(h.data))
	}
	end := offset
	for end < uint32(len(h.data)) && h.data[end] != 0 {
		end++
	}
	if end == uint32(len(h.data)) {
		return "", errors.New(errors.PhaseParse, errors.KindMalformed).
			Path("heap", "strings").
			Offset(int64(offset)).
			Detail("unterminated string record").
			Build()
	}
	raw := h.data[offset:end]
	if !utf8.Valid(raw) {
		return "", errors.InvalidUTF8(errors.PhaseParse, []string{"heap", "strings"}, raw)
	}
	return string(raw), nil
}

// BlobHeap is the #Blob heap: length-prefixed byte records referenced by
// byte offset. Offset 0 is the empty blob.
type BlobHeap struct {
	data []byte
}

// NewBlobHeap wraps heap bytes.
func NewBlobHeap(data []byte) *BlobHeap {
	return &BlobHeap{data: data}
}

// Size returns the heap size in bytes.
func (h *BlobHeap) Size() uint32 { return uint32(len(h.data)) }

// Data returns the raw heap bytes.
func (h *BlobHeap) Data() []byte { return h.data }

// Get resolves a blob heap offset to the record's content bytes. The
// returned slice aliases the heap.
func (h *BlobHeap) Get(offset uint32) ([]byte, error) {
	if offset == 0 {
		return nil, nil
	}
	if offset >= uint32(len(h.data)) {
		return nil, errors.OutOfBounds(errors.PhaseParse, []string{"heap", "blob"}, int(offset), len(h.data))
	}
	r := binary.NewReader(h.data)
	if err := r.Seek(int(offset)); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseParse, []string{"heap", "blob"}, int(offset), len(h.data))
	}
	length, err := r.ReadCompressedU32()
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindMalformed).
			Path("heap", "blob").
			Offset(int64(offset)).
			Cause(err).
			Detail("blob length prefix").
			Build()
	}
	content, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindMalformed).
			Path("heap", "blob").
			Offset(int64(offset)).
			Detail("blob of %d bytes runs past heap end", length).
			Build()
	}
	return content, nil
}

// GuidHeap is the #GUID heap: fixed 16-byte records referenced by 1-based
// record index. Index 0 is the null guid reference.
type GuidHeap struct {
	data []byte
}

// NewGuidHeap wraps heap bytes. A heap whose size is not a multiple of 16
// is rejected.
func NewGuidHeap(data []byte) (*GuidHeap, error) {
	if len(data)%16 != 0 {
		return nil, errors.Malformed(errors.PhaseParse, "guid heap size %d is not a multiple of 16", len(data))
	}
	return &GuidHeap{data: data}, nil
}

// Size returns the heap size in bytes.
func (h *GuidHeap) Size() uint32 { return uint32(len(h.data)) }

// Data returns the raw heap bytes.
func (h *GuidHeap) Data() []byte { return h.data }

// Count returns the number of guid records.
func (h *GuidHeap) Count() uint32 { return uint32(len(h.data) / 16) }

// Get resolves a 1-based guid index.
func (h *GuidHeap) Get(index uint32) (uuid.UUID, error) {
	if index == 0 || index > h.Count() {
		return uuid.Nil, errors.OutOfBounds(errors.PhaseParse, []string{"heap", "guid"}, int(index), int(h.Count()))
	}
	var g uuid.UUID
	copy(g[:], h.data[(index-1)*16:index*16])
	return g, nil
}

// UserStringHeap is the #US heap: compressed-length-prefixed UTF-16LE
// records, each with one trailing marker byte, referenced by byte offset.
// Offset 0 is a structural single null byte.
type UserStringHeap struct {
	data []byte
}

// NewUserStringHeap wraps heap bytes. The heap's total size must be
// 4-byte aligned.
func NewUserStringHeap(data []byte) (*UserStringHeap, error) {
	if len(data)%4 != 0 {
		return nil, errors.Malformed(errors.PhaseParse, "user string heap size %d is not 4-byte aligned", len(data))
	}
	return &UserStringHeap{data: data}, nil
}

// Size returns the heap size in bytes.
func (h *UserStringHeap) Size() uint32 { return uint32(len(h.data)) }

// Data returns the raw heap bytes.
func (h *UserStringHeap) Data() []byte { return h.data }

// Get resolves a user string offset. The record length counts the UTF-16
// payload plus the trailing marker byte; an odd payload or an unpaired
// surrogate is a malformed-input error.
func (h *UserStringHeap) Get(offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if offset >= uint32(len(h.data)) {
		return "", errors.OutOfBounds(errors.PhaseParse, []string{"heap", "userstrings"}, int(offset), len(h.data))
	}
	r := binary.NewReader(h.data)
	if err := r.Seek(int(offset)); err != nil {
		return "", errors.OutOfBounds(errors.PhaseParse, []string{"heap", "userstrings"}, int(offset), len(h.data))
	}
	length, err := r.ReadCompressedU32()
	if err != nil {
		return "", errors.New(errors.PhaseParse, errors.KindMalformed).
			Path("heap", "userstrings").
			Offset(int64(offset)).
			Cause(err).
			Detail("user string length prefix").
			Build()
	}
	if length == 0 {
		return "", nil
	}
	if length%2 != 1 {
		return "", errors.Malformed(errors.PhaseParse, "user string record length %d at offset %d is not payload+marker", length, offset)
	}
	payload, err := r.ReadBytes(int(length))
	if err != nil {
		return "", errors.New(errors.PhaseParse, errors.KindMalformed).
			Path("heap", "userstrings").
			Offset(int64(offset)).
			Detail("user string of %d bytes runs past heap end", length).
			Build()
	}
	units := make([]uint16, (length-1)/2)
	for i := range units {
		units[i] = uint16(payload[2*i]) | uint16(payload[2*i+1])<<8
	}
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u < 0xDC00 {
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", errors.Malformed(errors.PhaseParse, "unpaired high surrogate 0x%04X at offset %d", u, offset)
			}
			i++
		} else if u >= 0xDC00 && u < 0xE000 {
			return "", errors.Malformed(errors.PhaseParse, "unpaired low surrogate 0x%04X at offset %d", u, offset)
		}
	}
	return string(utf16.Decode(units)), nil
}

// userStringSpecial reports whether any code unit forces the record's
// marker byte to 1.
func userStringSpecial(units []uint16) bool {
	for _, u := range units {
		if u >= 0x01 && u <= 0x08 {
			return true
		}
		if u >= 0x0E && u <= 0x1F {
			return true
		}
		switch u {
		case 0x27, 0x2D, 0x7F:
			return true
		}
		if u >= 0x80 {
			return true
		}
	}
	return false
}
