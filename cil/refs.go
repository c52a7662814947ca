package cil

// refCollector gathers the live table references of a row through its
// codec declaration.
type refCollector struct {
	refs []Token
}

func (c *refCollector) U8(*uint8)         {}
func (c *refCollector) U16(*uint16)       {}
func (c *refCollector) U32(*uint32)       {}
func (c *refCollector) StringRef(*uint32) {}
func (c *refCollector) GuidRef(*uint32)   {}
func (c *refCollector) BlobRef(*uint32)   {}

func (c *refCollector) Index(id TableID, v *uint32) {
	if *v != 0 {
		c.refs = append(c.refs, NewToken(id, *v))
	}
}

// List columns are range starts, not row references; a list may point one
// past the target table's end, so they are excluded from the reference
// set.
func (c *refCollector) IndexList(TableID, *uint32) {}

func (c *refCollector) Coded(_ CodedIndexKind, v *CodedIndex) {
	if !v.IsNil() {
		c.refs = append(c.refs, v.Token())
	}
}

// RowReferences returns every live table reference of row: simple index
// columns and coded-index fields. Null references and list-column range
// starts are omitted.
func RowReferences(row Row) []Token {
	c := &refCollector{}
	row.codec(c)
	return c.refs
}

// RowRewriter rewrites the reference fields of a row in place through its
// codec declaration. A nil function leaves the corresponding field class
// untouched; null references are never passed to the functions. The first
// rewrite error sticks and aborts further changes.
type RowRewriter struct {
	String func(uint32) (uint32, error)
	Guid   func(uint32) (uint32, error)
	Blob   func(uint32) (uint32, error)
	Ref    func(Token) (Token, error)
	// RefList rewrites list-column range starts, which may legitimately
	// point one past the target table's end.
	RefList func(TableID, uint32) (uint32, error)

	err error
}

func (w *RowRewriter) U8(*uint8)   {}
func (w *RowRewriter) U16(*uint16) {}
func (w *RowRewriter) U32(*uint32) {}

func (w *RowRewriter) heap(fn func(uint32) (uint32, error), v *uint32) {
	if fn == nil || w.err != nil || *v == 0 {
		return
	}
	nv, err := fn(*v)
	if err != nil {
		w.err = err
		return
	}
	*v = nv
}

func (w *RowRewriter) StringRef(v *uint32) { w.heap(w.String, v) }
func (w *RowRewriter) GuidRef(v *uint32)   { w.heap(w.Guid, v) }
func (w *RowRewriter) BlobRef(v *uint32)   { w.heap(w.Blob, v) }

func (w *RowRewriter) Index(id TableID, v *uint32) {
	if w.Ref == nil || w.err != nil || *v == 0 {
		return
	}
	nt, err := w.Ref(NewToken(id, *v))
	if err != nil {
		w.err = err
		return
	}
	*v = nt.RID()
}

func (w *RowRewriter) IndexList(id TableID, v *uint32) {
	if w.RefList == nil || w.err != nil || *v == 0 {
		return
	}
	nv, err := w.RefList(id, *v)
	if err != nil {
		w.err = err
		return
	}
	*v = nv
}

func (w *RowRewriter) Coded(_ CodedIndexKind, v *CodedIndex) {
	if w.Ref == nil || w.err != nil || v.IsNil() {
		return
	}
	nt, err := w.Ref(v.Token())
	if err != nil {
		w.err = err
		return
	}
	*v = CodedIndex{Tag: nt.Table(), Row: nt.RID()}
}

// Apply runs the rewriter over row.
func (w *RowRewriter) Apply(row Row) error {
	w.err = nil
	row.codec(w)
	return w.err
}

// rowSnapshot flattens a row's fields in declaration order. Scalar and
// index fields widen to uint64; coded indexes keep their own lane.
type rowSnapshot struct {
	vals  []uint64
	coded []CodedIndex
}

type snapshotTaker struct {
	s *rowSnapshot
}

func (t *snapshotTaker) U8(v *uint8)         { t.s.vals = append(t.s.vals, uint64(*v)) }
func (t *snapshotTaker) U16(v *uint16)       { t.s.vals = append(t.s.vals, uint64(*v)) }
func (t *snapshotTaker) U32(v *uint32)       { t.s.vals = append(t.s.vals, uint64(*v)) }
func (t *snapshotTaker) StringRef(v *uint32) { t.s.vals = append(t.s.vals, uint64(*v)) }
func (t *snapshotTaker) GuidRef(v *uint32)   { t.s.vals = append(t.s.vals, uint64(*v)) }
func (t *snapshotTaker) BlobRef(v *uint32)   { t.s.vals = append(t.s.vals, uint64(*v)) }

func (t *snapshotTaker) Index(_ TableID, v *uint32) { t.s.vals = append(t.s.vals, uint64(*v)) }

func (t *snapshotTaker) IndexList(id TableID, v *uint32) { t.Index(id, v) }

func (t *snapshotTaker) Coded(_ CodedIndexKind, v *CodedIndex) {
	t.s.coded = append(t.s.coded, *v)
}

type snapshotWriter struct {
	s  *rowSnapshot
	vi int
	ci int
}

func (w *snapshotWriter) next() uint64 {
	v := w.s.vals[w.vi]
	w.vi++
	return v
}

func (w *snapshotWriter) U8(v *uint8)         { *v = uint8(w.next()) }
func (w *snapshotWriter) U16(v *uint16)       { *v = uint16(w.next()) }
func (w *snapshotWriter) U32(v *uint32)       { *v = uint32(w.next()) }
func (w *snapshotWriter) StringRef(v *uint32) { *v = uint32(w.next()) }
func (w *snapshotWriter) GuidRef(v *uint32)   { *v = uint32(w.next()) }
func (w *snapshotWriter) BlobRef(v *uint32)   { *v = uint32(w.next()) }

func (w *snapshotWriter) Index(_ TableID, v *uint32) { *v = uint32(w.next()) }

func (w *snapshotWriter) IndexList(id TableID, v *uint32) { w.Index(id, v) }

func (w *snapshotWriter) Coded(_ CodedIndexKind, v *CodedIndex) {
	*v = w.s.coded[w.ci]
	w.ci++
}

// CloneRow returns a deep copy of row. Both codec passes visit the same
// declaration, so the field lanes always line up.
func CloneRow(row Row) Row {
	s := &rowSnapshot{}
	row.codec(&snapshotTaker{s: s})
	dst := newRawRow(row.Kind())
	dst.codec(&snapshotWriter{s: s})
	return dst
}
