package cil

import (
	"math/bits"

	"github.com/cilforge/cilmeta/cil/internal/binary"
	"github.com/cilforge/cilmeta/errors"
)

// TablesStream is the parsed #~ stream: the header fields plus every
// table's decoded raw rows. Once parsed it is immutable and safe to share
// across goroutines.
type TablesStream struct {
	MajorVersion uint8
	MinorVersion uint8
	Sorted       uint64

	Sizes *TableSizeInfo

	rows [MaxTableID][]Row
}

// ParseTablesStream decodes a #~ stream image.
func ParseTablesStream(data []byte) (*TablesStream, error) {
	r := binary.NewReader(data)

	if _, err := r.ReadU32(); err != nil { // reserved
		return nil, tablesHeaderError(r, err)
	}
	major, err := r.ReadU8()
	if err != nil {
		return nil, tablesHeaderError(r, err)
	}
	minor, err := r.ReadU8()
	if err != nil {
		return nil, tablesHeaderError(r, err)
	}
	heapSizes, err := r.ReadU8()
	if err != nil {
		return nil, tablesHeaderError(r, err)
	}
	if _, err := r.ReadU8(); err != nil { // reserved, log2 of next rid
		return nil, tablesHeaderError(r, err)
	}
	valid, err := r.ReadU64()
	if err != nil {
		return nil, tablesHeaderError(r, err)
	}
	sorted, err := r.ReadU64()
	if err != nil {
		return nil, tablesHeaderError(r, err)
	}

	ts := &TablesStream{
		MajorVersion: major,
		MinorVersion: minor,
		Sorted:       sorted,
		Sizes:        &TableSizeInfo{},
	}
	ts.Sizes.WideStrings = heapSizes&HeapSizeWideStrings != 0
	ts.Sizes.WideGuid = heapSizes&HeapSizeWideGuid != 0
	ts.Sizes.WideBlob = heapSizes&HeapSizeWideBlob != 0

	// One row count per set bit of the valid mask, in table order.
	for id := TableID(0); id < MaxTableID; id++ {
		if valid&(1<<uint(id)) == 0 {
			continue
		}
		if !id.Valid() {
			return nil, errors.Malformed(errors.PhaseParse, "tables stream declares unknown table 0x%02X", uint8(id))
		}
		n, err := r.ReadU32()
		if err != nil {
			return nil, tablesHeaderError(r, err)
		}
		if n > 0x00FF_FFFF {
			return nil, errors.Malformed(errors.PhaseParse, "%s row count %d exceeds the 24-bit row id space", id, n)
		}
		ts.Sizes.RowCounts[id] = n
	}

	// Row counts are now final, so every index width is known and each
	// table can be decoded by plain offset arithmetic.
	for id := TableID(0); id < MaxTableID; id++ {
		n := ts.Sizes.RowCounts[id]
		if n == 0 {
			continue
		}
		rows := make([]Row, 0, n)
		for rid := uint32(1); rid <= n; rid++ {
			row, err := readRow(id, r, ts.Sizes)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		ts.rows[id] = rows
	}

	return ts, nil
}

func tablesHeaderError(r *binary.Reader, err error) error {
	return errors.New(errors.PhaseParse, errors.KindMalformed).
		Path("tables", "header").
		Offset(int64(r.Position())).
		Cause(err).
		Detail("tables stream header").
		Build()
}

// RowCount returns the number of rows of table id.
func (ts *TablesStream) RowCount(id TableID) uint32 {
	return ts.Sizes.RowCount(id)
}

// Rows returns every raw row of table id in row order. The returned slice
// must not be modified.
func (ts *TablesStream) Rows(id TableID) []Row {
	if id >= MaxTableID {
		return nil
	}
	return ts.rows[id]
}

// Row resolves a token to its raw row.
func (ts *TablesStream) Row(tok Token) (Row, error) {
	id := tok.Table()
	if id >= MaxTableID || tok.IsNil() || tok.RID() > ts.RowCount(id) {
		return nil, errors.New(errors.PhaseParse, errors.KindOutOfBounds).
			Token(tok.Value()).
			Detail("no such row").
			Build()
	}
	return ts.rows[id][tok.RID()-1], nil
}

// ValidMask returns the valid-table bitvector implied by the row counts.
func (ts *TablesStream) ValidMask() uint64 {
	var mask uint64
	for id := TableID(0); id < MaxTableID; id++ {
		if ts.Sizes.RowCounts[id] > 0 {
			mask |= 1 << uint(id)
		}
	}
	return mask
}

// EncodeTablesStream encodes a complete #~ stream from the given sizes and
// rows. len(rows[id]) must equal sizes.RowCounts[id] for every table; a
// mismatch is a contract violation because planning fixes row counts
// before encoding starts.
func EncodeTablesStream(major, minor uint8, sorted uint64, sizes *TableSizeInfo, rows *[MaxTableID][]Row) ([]byte, error) {
	var valid uint64
	for id := TableID(0); id < MaxTableID; id++ {
		if uint32(len(rows[id])) != sizes.RowCounts[id] {
			return nil, errors.Internal(errors.PhaseWrite,
				"%s has %d rows but planned count is %d", id, len(rows[id]), sizes.RowCounts[id])
		}
		if len(rows[id]) > 0 {
			valid |= 1 << uint(id)
		}
	}

	w := binary.NewWriter()
	w.U32(0) // reserved
	w.U8(major)
	w.U8(minor)
	w.U8(sizes.HeapSizesByte())
	w.U8(1) // reserved
	w.U64(valid)
	w.U64(sorted & valid)
	for id := TableID(0); id < MaxTableID; id++ {
		if len(rows[id]) > 0 {
			w.U32(uint32(len(rows[id])))
		}
	}
	for id := TableID(0); id < MaxTableID; id++ {
		for _, row := range rows[id] {
			if row.Kind() != id {
				return nil, errors.Internal(errors.PhaseWrite,
					"row of kind %s staged in table %s", row.Kind(), id)
			}
			if err := writeRow(row, w, sizes); err != nil {
				return nil, err
			}
		}
	}
	w.Pad(4)
	return w.Bytes(), nil
}

// TablesStreamSize returns the encoded size of a #~ stream with the given
// sizes, 4-byte aligned. Used by layout planning; must agree with
// EncodeTablesStream.
func TablesStreamSize(sizes *TableSizeInfo) uint64 {
	var valid uint64
	for id := TableID(0); id < MaxTableID; id++ {
		if sizes.RowCounts[id] > 0 {
			valid |= 1 << uint(id)
		}
	}
	size := uint64(24) + uint64(bits.OnesCount64(valid))*4 + sizes.TablesSize()
	return (size + 3) &^ 3
}
