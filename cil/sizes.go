package cil

// TableSizeInfo captures everything row codecs need to know about encoding
// widths: per-table row counts and the wide/narrow state of each heap
// index. It is computed once per image on the read path and recomputed from
// scratch during write-layout planning, because mutation can change row
// counts and therefore index widths.
type TableSizeInfo struct {
	RowCounts [MaxTableID]uint32

	WideStrings bool
	WideGuid    bool
	WideBlob    bool
}

// NewTableSizeInfo builds size info from explicit row counts and the heap
// size flag byte of the tables stream header.
func NewTableSizeInfo(rowCounts map[TableID]uint32, heapSizes uint8) *TableSizeInfo {
	s := &TableSizeInfo{
		WideStrings: heapSizes&HeapSizeWideStrings != 0,
		WideGuid:    heapSizes&HeapSizeWideGuid != 0,
		WideBlob:    heapSizes&HeapSizeWideBlob != 0,
	}
	for id, n := range rowCounts {
		if id < MaxTableID {
			s.RowCounts[id] = n
		}
	}
	return s
}

// RowCount returns the row count of table id.
func (s *TableSizeInfo) RowCount(id TableID) uint32 {
	if id >= MaxTableID {
		return 0
	}
	return s.RowCounts[id]
}

// HeapSizesByte returns the heap size flag byte for the tables stream
// header.
func (s *TableSizeInfo) HeapSizesByte() uint8 {
	var b uint8
	if s.WideStrings {
		b |= HeapSizeWideStrings
	}
	if s.WideGuid {
		b |= HeapSizeWideGuid
	}
	if s.WideBlob {
		b |= HeapSizeWideBlob
	}
	return b
}

// StringIndexBytes returns the byte width of a string heap offset.
func (s *TableSizeInfo) StringIndexBytes() uint32 {
	if s.WideStrings {
		return 4
	}
	return 2
}

// GuidIndexBytes returns the byte width of a guid heap index.
func (s *TableSizeInfo) GuidIndexBytes() uint32 {
	if s.WideGuid {
		return 4
	}
	return 2
}

// BlobIndexBytes returns the byte width of a blob heap offset.
func (s *TableSizeInfo) BlobIndexBytes() uint32 {
	if s.WideBlob {
		return 4
	}
	return 2
}

// TableIndexBytes returns the byte width of a simple index into table id:
// 2 bytes while the table fits in 16 bits, otherwise 4.
func (s *TableSizeInfo) TableIndexBytes(id TableID) uint32 {
	if s.RowCount(id) > 0xFFFF {
		return 4
	}
	return 2
}

// CodedIndexBytes returns the byte width of a coded index of family k. The
// field stays at 16 bits unless any participating table's row count
// exceeds what the remaining index bits can address.
func (s *TableSizeInfo) CodedIndexBytes(k CodedIndexKind) uint32 {
	maxRows := uint32(1)<<(16-k.TagBits()) - 1
	for _, member := range k.Family() {
		if member == TableNone {
			continue
		}
		if s.RowCount(member) > maxRows {
			return 4
		}
	}
	return 2
}

// RowSize returns the fixed encoded size in bytes of one row of table id
// under these sizes. It depends only on s, never on row content, so every
// row of a table shares one size and rows can be addressed as
// (rid-1)*RowSize.
func (s *TableSizeInfo) RowSize(id TableID) uint32 {
	row := newRawRow(id)
	if row == nil {
		return 0
	}
	sz := &rowSizer{sizes: s}
	row.codec(sz)
	return sz.total
}

// TablesSize returns the combined encoded size of all rows of all tables.
func (s *TableSizeInfo) TablesSize() uint64 {
	var total uint64
	for _, id := range AllTableIDs() {
		total += uint64(s.RowCounts[id]) * uint64(s.RowSize(id))
	}
	return total
}
