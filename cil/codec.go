package cil

import (
	"github.com/cilforge/cilmeta/cil/internal/binary"
	"github.com/cilforge/cilmeta/errors"
)

// rowSizer accumulates the encoded size of a row. Sizing depends only on
// TableSizeInfo, never on field values.
type rowSizer struct {
	sizes *TableSizeInfo
	total uint32
}

func (s *rowSizer) U8(*uint8)   { s.total++ }
func (s *rowSizer) U16(*uint16) { s.total += 2 }
func (s *rowSizer) U32(*uint32) { s.total += 4 }

func (s *rowSizer) StringRef(*uint32) { s.total += s.sizes.StringIndexBytes() }
func (s *rowSizer) GuidRef(*uint32)   { s.total += s.sizes.GuidIndexBytes() }
func (s *rowSizer) BlobRef(*uint32)   { s.total += s.sizes.BlobIndexBytes() }

func (s *rowSizer) Index(id TableID, _ *uint32) { s.total += s.sizes.TableIndexBytes(id) }

func (s *rowSizer) IndexList(id TableID, v *uint32) { s.Index(id, v) }

func (s *rowSizer) Coded(kind CodedIndexKind, _ *CodedIndex) {
	s.total += s.sizes.CodedIndexBytes(kind)
}

// rowReader decodes row fields from a binary reader. The first error
// sticks; subsequent visits are no-ops.
type rowReader struct {
	r     *binary.Reader
	sizes *TableSizeInfo
	err   error
}

func (rd *rowReader) U8(v *uint8) {
	if rd.err != nil {
		return
	}
	*v, rd.err = rd.r.ReadU8()
}

func (rd *rowReader) U16(v *uint16) {
	if rd.err != nil {
		return
	}
	*v, rd.err = rd.r.ReadU16()
}

func (rd *rowReader) U32(v *uint32) {
	if rd.err != nil {
		return
	}
	*v, rd.err = rd.r.ReadU32()
}

func (rd *rowReader) narrowOrWide(wide bool) (uint32, error) {
	if wide {
		return rd.r.ReadU32()
	}
	v, err := rd.r.ReadU16()
	return uint32(v), err
}

func (rd *rowReader) StringRef(v *uint32) {
	if rd.err != nil {
		return
	}
	*v, rd.err = rd.narrowOrWide(rd.sizes.WideStrings)
}

func (rd *rowReader) GuidRef(v *uint32) {
	if rd.err != nil {
		return
	}
	*v, rd.err = rd.narrowOrWide(rd.sizes.WideGuid)
}

func (rd *rowReader) BlobRef(v *uint32) {
	if rd.err != nil {
		return
	}
	*v, rd.err = rd.narrowOrWide(rd.sizes.WideBlob)
}

func (rd *rowReader) Index(id TableID, v *uint32) {
	if rd.err != nil {
		return
	}
	*v, rd.err = rd.narrowOrWide(rd.sizes.TableIndexBytes(id) == 4)
}

func (rd *rowReader) IndexList(id TableID, v *uint32) { rd.Index(id, v) }

func (rd *rowReader) Coded(kind CodedIndexKind, v *CodedIndex) {
	if rd.err != nil {
		return
	}
	raw, err := rd.narrowOrWide(rd.sizes.CodedIndexBytes(kind) == 4)
	if err != nil {
		rd.err = err
		return
	}
	*v, rd.err = DecodeCodedIndex(kind, raw)
}

// rowWriter encodes row fields. Narrow encodings are range-checked: a
// logical value that does not fit its current width is an error, never a
// silent truncation.
type rowWriter struct {
	w     *binary.Writer
	sizes *TableSizeInfo
	err   error
}

// After an error the writer keeps emitting bytes so the produced length
// stays deterministic; the sticky error is what callers see.

func (wr *rowWriter) U8(v *uint8)   { wr.w.U8(*v) }
func (wr *rowWriter) U16(v *uint16) { wr.w.U16(*v) }
func (wr *rowWriter) U32(v *uint32) { wr.w.U32(*v) }

func (wr *rowWriter) narrowOrWide(path string, wide bool, v uint32) {
	if wide {
		wr.w.U32(v)
		return
	}
	if v > 0xFFFF && wr.err == nil {
		wr.err = errors.Overflow(errors.PhaseWrite, []string{path}, uint64(v), 2)
	}
	wr.w.U16(uint16(v))
}

func (wr *rowWriter) StringRef(v *uint32) { wr.narrowOrWide("string", wr.sizes.WideStrings, *v) }
func (wr *rowWriter) GuidRef(v *uint32)   { wr.narrowOrWide("guid", wr.sizes.WideGuid, *v) }
func (wr *rowWriter) BlobRef(v *uint32)   { wr.narrowOrWide("blob", wr.sizes.WideBlob, *v) }

func (wr *rowWriter) Index(id TableID, v *uint32) {
	wr.narrowOrWide(id.String(), wr.sizes.TableIndexBytes(id) == 4, *v)
}

func (wr *rowWriter) IndexList(id TableID, v *uint32) { wr.Index(id, v) }

func (wr *rowWriter) Coded(kind CodedIndexKind, v *CodedIndex) {
	raw, err := EncodeCodedIndex(kind, *v)
	if err != nil && wr.err == nil {
		wr.err = err
	}
	wide := wr.sizes.CodedIndexBytes(kind) == 4
	if !wide {
		maxRows := uint32(1)<<(16-kind.TagBits()) - 1
		if v.Row > maxRows && wr.err == nil {
			wr.err = errors.Overflow(errors.PhaseWrite, []string{kind.String()}, uint64(v.Row), 2)
		}
	}
	wr.narrowOrWide(kind.String(), wide, raw)
}

// readRow decodes one row of table id at the reader's current position,
// advancing it by exactly RowSize(id) bytes.
func readRow(id TableID, r *binary.Reader, sizes *TableSizeInfo) (Row, error) {
	row := newRawRow(id)
	if row == nil {
		return nil, errors.Malformed(errors.PhaseParse, "unknown table id 0x%02X", uint8(id))
	}
	start := r.Position()
	rd := &rowReader{r: r, sizes: sizes}
	row.codec(rd)
	if rd.err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindMalformed).
			Path("tables", id.String()).
			Offset(int64(start)).
			Cause(rd.err).
			Detail("decode row").
			Build()
	}
	if got := uint32(r.Position() - start); got != sizes.RowSize(id) {
		// Reads covering a different span than RowSize is a codec bug,
		// not an input problem.
		return nil, errors.Internal(errors.PhaseParse,
			"%s row decode consumed %d bytes, row size is %d", id, got, sizes.RowSize(id))
	}
	return row, nil
}

// writeRow encodes row at the writer's current position, producing exactly
// RowSize bytes. A size mismatch is a framework contract violation.
func writeRow(row Row, w *binary.Writer, sizes *TableSizeInfo) error {
	start := w.Len()
	wr := &rowWriter{w: w, sizes: sizes}
	row.codec(wr)
	if wr.err != nil {
		return wr.err
	}
	if got := uint32(w.Len() - start); got != sizes.RowSize(row.Kind()) {
		return errors.Internal(errors.PhaseWrite,
			"%s row encode produced %d bytes, row size is %d", row.Kind(), got, sizes.RowSize(row.Kind()))
	}
	return nil
}

// DecodeRowBytes decodes one row of table id from data, which must hold at
// least RowSize(id) bytes.
func DecodeRowBytes(id TableID, data []byte, sizes *TableSizeInfo) (Row, error) {
	return readRow(id, binary.NewReader(data), sizes)
}

// EncodeRowBytes encodes a row to exactly RowSize bytes.
func EncodeRowBytes(row Row, sizes *TableSizeInfo) ([]byte, error) {
	w := binary.NewWriter()
	if err := writeRow(row, w, sizes); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
