// Package cilmeta provides a .NET (ECMA-335) metadata table and heap engine.
//
// This library parses a raw metadata image into typed tables and heaps,
// resolves cross references into an owned object graph, supports staged
// mutation, and regenerates a byte-exact metadata image.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	cilmeta/             Root package with the Backend byte-source interface
//	├── cil/             Metadata format layer: tokens, tables, heaps, codecs
//	├── loader/          Two-pass raw-to-owned resolution of an image
//	├── builder/         Mutation context and fluent row builders
//	├── writer/          Plan/execute/verify write pipeline
//	├── validate/        Configurable-strictness validation engine
//	└── errors/          Structured error types for diagnostics
//
// # Quick Start
//
// Parse and resolve an image:
//
//	backend := cilmeta.NewMemoryBackend(data)
//	img, err := cil.Open(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	asm, err := loader.Load(img)
package cilmeta

import "fmt"

// Backend is a byte-addressable source of metadata. All access is
// bounds-checked; implementations never panic on out-of-range input.
type Backend interface {
	// Slice returns length bytes starting at offset, or an out-of-bounds error.
	Slice(offset, length int) ([]byte, error)
	// Data returns the full underlying byte image.
	Data() []byte
	// Len returns the total image size in bytes.
	Len() int
}

// BoundsError reports an out-of-range Backend access.
type BoundsError struct {
	Offset int
	Length int
	Size   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("backend: slice [%d:%d) out of bounds (size %d)", e.Offset, e.Offset+e.Length, e.Size)
}

// MemoryBackend is an in-memory Backend over a byte slice.
type MemoryBackend struct {
	data []byte
}

// NewMemoryBackend creates a Backend over data. The slice is not copied.
func NewMemoryBackend(data []byte) *MemoryBackend {
	return &MemoryBackend{data: data}
}

// Slice returns length bytes starting at offset.
func (b *MemoryBackend) Slice(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(b.data) {
		return nil, &BoundsError{Offset: offset, Length: length, Size: len(b.data)}
	}
	return b.data[offset : offset+length], nil
}

// Data returns the full underlying byte image.
func (b *MemoryBackend) Data() []byte {
	return b.data
}

// Len returns the total image size in bytes.
func (b *MemoryBackend) Len() int {
	return len(b.data)
}
