// Package ciltest assembles metadata image byte buffers for tests,
// including deliberately malformed ones that cannot be produced through
// the production write pipeline.
package ciltest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cilforge/cilmeta/cil"
)

// ImageBuilder assembles a complete metadata image byte buffer. Zero-value
// heaps are valid and empty. Raw heap overrides allow constructing
// structurally invalid images for validation tests.
type ImageBuilder struct {
	Version string
	Sorted  uint64

	Strings     *cil.StringsBuilder
	Blob        *cil.BlobBuilder
	Guid        *cil.GuidBuilder
	UserStrings *cil.UserStringBuilder

	// Raw overrides; when non-nil they replace the corresponding built
	// heap verbatim, alignment defects included.
	RawStrings     []byte
	RawBlob        []byte
	RawGuid        []byte
	RawUserStrings []byte

	rows [cil.MaxTableID][]cil.Row
}

// NewImageBuilder creates a builder with empty heaps.
func NewImageBuilder() *ImageBuilder {
	return &ImageBuilder{
		Version:     "v4.0.30319",
		Strings:     cil.NewStringsBuilder(),
		Blob:        cil.NewBlobBuilder(),
		Guid:        cil.NewGuidBuilder(),
		UserStrings: cil.NewUserStringBuilder(),
	}
}

// AddRow appends a raw row to its table and returns the new row's token.
func (b *ImageBuilder) AddRow(row cil.Row) cil.Token {
	id := row.Kind()
	b.rows[id] = append(b.rows[id], row)
	return cil.NewToken(id, uint32(len(b.rows[id])))
}

// AddModule appends a Module row with a fresh mvid, the usual first row of
// any image.
func (b *ImageBuilder) AddModule(name string) cil.Token {
	return b.AddRow(&cil.ModuleRaw{
		Name: b.Strings.Add(name),
		Mvid: b.Guid.Add(uuid.New()),
	})
}

// Build assembles the image bytes.
func (b *ImageBuilder) Build() ([]byte, error) {
	stringsData := b.RawStrings
	if stringsData == nil {
		stringsData = b.Strings.Bytes()
	}
	blobData := b.RawBlob
	if blobData == nil {
		blobData = b.Blob.Bytes()
	}
	guidData := b.RawGuid
	if guidData == nil {
		guidData = b.Guid.Bytes()
	}
	usData := b.RawUserStrings
	if usData == nil {
		usData = b.UserStrings.Bytes()
	}

	sizes := &cil.TableSizeInfo{
		WideStrings: len(stringsData) > 0xFFFF,
		WideGuid:    len(guidData) > 0xFFFF,
		WideBlob:    len(blobData) > 0xFFFF,
	}
	for id := cil.TableID(0); id < cil.MaxTableID; id++ {
		sizes.RowCounts[id] = uint32(len(b.rows[id]))
	}

	tables, err := cil.EncodeTablesStream(2, 0, b.Sorted, sizes, &b.rows)
	if err != nil {
		return nil, fmt.Errorf("encode tables: %w", err)
	}

	names := []string{cil.StreamTables, cil.StreamStrings, cil.StreamUserStrings, cil.StreamGuid, cil.StreamBlob}
	rootSize := cil.RootSize(b.Version, names)

	streams := make([]cil.StreamHeader, 0, len(names))
	offset := rootSize
	for _, pair := range []struct {
		name string
		data []byte
	}{
		{cil.StreamTables, tables},
		{cil.StreamStrings, stringsData},
		{cil.StreamUserStrings, usData},
		{cil.StreamGuid, guidData},
		{cil.StreamBlob, blobData},
	} {
		streams = append(streams, cil.StreamHeader{Offset: offset, Size: uint32(len(pair.data)), Name: pair.name})
		offset += uint32((len(pair.data) + 3) &^ 3)
	}

	out := cil.EncodeRoot(1, 1, b.Version, 0, streams)
	for _, pair := range [][]byte{tables, stringsData, usData, guidData, blobData} {
		out = append(out, pair...)
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
	}
	return out, nil
}
