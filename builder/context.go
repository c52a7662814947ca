package builder

import (
	"github.com/google/uuid"

	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
)

// Context stages mutations against a loaded image. Tokens handed out for
// added rows are stable for the lifetime of the context; layout planning
// compacts rid space only when the plan is built.
type Context struct {
	img *cil.Image

	original  [cil.MaxTableID]uint32
	allocated [cil.MaxTableID]uint32
	removedN  [cil.MaxTableID]uint32

	added   map[cil.Token]cil.Row
	updated map[cil.Token]cil.Row
	removed map[cil.Token]struct{}

	stringsTail *cil.StringsBuilder
	blobTail    *cil.BlobBuilder
	guidTail    *cil.GuidBuilder
	usTail      *cil.UserStringBuilder
}

// NewContext creates an edit session over img.
func NewContext(img *cil.Image) *Context {
	c := &Context{
		img:         img,
		added:       make(map[cil.Token]cil.Row),
		updated:     make(map[cil.Token]cil.Row),
		removed:     make(map[cil.Token]struct{}),
		stringsTail: cil.NewStringsBuilder(),
		blobTail:    cil.NewBlobBuilder(),
		guidTail:    cil.NewGuidBuilder(),
		usTail:      cil.NewUserStringBuilder(),
	}
	for _, id := range cil.AllTableIDs() {
		n := img.Tables.RowCount(id)
		c.original[id] = n
		c.allocated[id] = n
	}
	return c
}

// Image returns the image this context edits.
func (c *Context) Image() *cil.Image { return c.img }

// OriginalRowCount returns the table's row count at load time.
func (c *Context) OriginalRowCount(id cil.TableID) uint32 { return c.original[id] }

// RowCount returns the table's post-mutation row count: allocated rows
// minus staged removals.
func (c *Context) RowCount(id cil.TableID) uint32 {
	return c.allocated[id] - c.removedN[id]
}

// AllocatedRowCount returns the highest rid handed out for the table,
// staged removals included.
func (c *Context) AllocatedRowCount(id cil.TableID) uint32 { return c.allocated[id] }

// NextRID returns the rid the next added row of the table will receive.
func (c *Context) NextRID(id cil.TableID) uint32 { return c.allocated[id] + 1 }

// heapBase returns the offset where a heap's staged tail begins. An
// absent heap still reserves the structural byte at offset 0.
func heapBase(size uint32) uint32 {
	if size == 0 {
		return 1
	}
	return size
}

// AddString stages a string append and returns its provisional offset.
func (c *Context) AddString(s string) uint32 {
	off := c.stringsTail.Add(s)
	if off == 0 {
		return 0
	}
	return heapBase(c.img.Strings.Size()) + off - 1
}

// AddBlob stages a blob append and returns its provisional offset.
func (c *Context) AddBlob(content []byte) (uint32, error) {
	off, err := c.blobTail.Add(content)
	if err != nil || off == 0 {
		return 0, err
	}
	return heapBase(c.img.Blob.Size()) + off - 1, nil
}

// AddGuid stages a guid append and returns its provisional 1-based index.
func (c *Context) AddGuid(g uuid.UUID) uint32 {
	idx := c.guidTail.Add(g)
	if idx == 0 {
		return 0
	}
	return c.img.Guid.Count() + idx
}

// AddUserString stages a user string append and returns its provisional
// offset.
func (c *Context) AddUserString(s string) (uint32, error) {
	off, err := c.usTail.Add(s)
	if err != nil {
		return 0, err
	}
	return heapBase(c.img.UserStrings.Size()) + off - 1, nil
}

// ResolveString resolves an original or provisional string offset.
func (c *Context) ResolveString(off uint32) (string, error) {
	base := heapBase(c.img.Strings.Size())
	if off < base {
		return c.img.Strings.Get(off)
	}
	tail := cil.NewStringHeap(c.stringsTail.Bytes())
	return tail.Get(off - base + 1)
}

// ResolveBlob resolves an original or provisional blob offset.
func (c *Context) ResolveBlob(off uint32) ([]byte, error) {
	base := heapBase(c.img.Blob.Size())
	if off < base {
		return c.img.Blob.Get(off)
	}
	tail := cil.NewBlobHeap(c.blobTail.Bytes())
	return tail.Get(off - base + 1)
}

// ResolveGuid resolves an original or provisional guid index.
func (c *Context) ResolveGuid(idx uint32) (uuid.UUID, error) {
	if idx <= c.img.Guid.Count() {
		return c.img.Guid.Get(idx)
	}
	tail, err := cil.NewGuidHeap(c.guidTail.Bytes())
	if err != nil {
		return uuid.Nil, err
	}
	return tail.Get(idx - c.img.Guid.Count())
}

// ResolveUserString resolves an original or provisional user string
// offset.
func (c *Context) ResolveUserString(off uint32) (string, error) {
	base := heapBase(c.img.UserStrings.Size())
	if off < base {
		return c.img.UserStrings.Get(off)
	}
	tail, err := cil.NewUserStringHeap(c.usTail.Bytes())
	if err != nil {
		return "", err
	}
	return tail.Get(off - base + 1)
}

// UserStringTail returns the staged user string bytes past the record at
// offset 0, for layout planning.
func (c *Context) UserStringTail() []byte {
	tail := c.usTail.Bytes()
	if len(tail) <= 1 {
		return nil
	}
	return tail[1:]
}

// AddRow allocates the next rid of the row's table and stages the row.
func (c *Context) AddRow(row cil.Row) (cil.Token, error) {
	id := row.Kind()
	if !id.Valid() {
		return 0, errors.Malformed(errors.PhaseBuild, "cannot add row of unknown table 0x%02X", uint8(id))
	}
	if c.allocated[id] >= 0x00FF_FFFF {
		return 0, errors.New(errors.PhaseBuild, errors.KindOverflow).
			Path("tables", id.String()).
			Detail("table is at the 24-bit row id limit").
			Build()
	}
	c.allocated[id]++
	tok := cil.NewToken(id, c.allocated[id])
	c.added[tok] = row
	return tok, nil
}

// UpdateRow stages a replacement for an existing row. The replacement
// must be of the token's table kind.
func (c *Context) UpdateRow(tok cil.Token, row cil.Row) error {
	if row.Kind() != tok.Table() {
		return errors.Malformed(errors.PhaseBuild, "row of kind %s cannot replace token %s", row.Kind(), tok)
	}
	if err := c.mustExist(tok); err != nil {
		return err
	}
	if _, ok := c.added[tok]; ok {
		c.added[tok] = row
		return nil
	}
	c.updated[tok] = row
	return nil
}

// RemoveRow stages the removal of a row. With removeReferences set, any
// pending (added or updated) row still referencing the token is removed
// too, cascading; original rows that reference it are left for layout
// planning to reject.
func (c *Context) RemoveRow(tok cil.Token, removeReferences bool) error {
	if err := c.mustExist(tok); err != nil {
		return err
	}
	c.remove(tok)
	if !removeReferences {
		return nil
	}

	// Cascade over pending rows until no pending row references a
	// removed token.
	for {
		var next []cil.Token
		for t, row := range c.added {
			if c.IsRemoved(t) {
				continue
			}
			if c.referencesRemoved(row) {
				next = append(next, t)
			}
		}
		for t, row := range c.updated {
			if c.IsRemoved(t) {
				continue
			}
			if c.referencesRemoved(row) {
				next = append(next, t)
			}
		}
		if len(next) == 0 {
			return nil
		}
		for _, t := range next {
			c.remove(t)
		}
	}
}

func (c *Context) remove(tok cil.Token) {
	if _, ok := c.removed[tok]; ok {
		return
	}
	c.removed[tok] = struct{}{}
	c.removedN[tok.Table()]++
}

func (c *Context) referencesRemoved(row cil.Row) bool {
	for _, ref := range cil.RowReferences(row) {
		if _, ok := c.removed[ref]; ok {
			return true
		}
	}
	return false
}

func (c *Context) mustExist(tok cil.Token) error {
	id := tok.Table()
	if !id.Valid() || tok.IsNil() || tok.RID() > c.allocated[id] {
		return errors.New(errors.PhaseBuild, errors.KindOutOfBounds).
			Token(tok.Value()).
			Detail("no such row").
			Build()
	}
	if _, ok := c.removed[tok]; ok {
		return errors.New(errors.PhaseBuild, errors.KindLayout).
			Token(tok.Value()).
			Detail("row is already removed").
			Build()
	}
	return nil
}

// Row returns the staged view of a token: the pending replacement when
// one exists, the original raw row otherwise. Removed rows report false.
func (c *Context) Row(tok cil.Token) (cil.Row, bool) {
	if _, ok := c.removed[tok]; ok {
		return nil, false
	}
	if row, ok := c.updated[tok]; ok {
		return row, true
	}
	if row, ok := c.added[tok]; ok {
		return row, true
	}
	if tok.RID() > c.original[tok.Table()] {
		return nil, false
	}
	row, err := c.img.Tables.Row(tok)
	if err != nil {
		return nil, false
	}
	return row, true
}

// IsRemoved reports whether the token is staged for removal.
func (c *Context) IsRemoved(tok cil.Token) bool {
	_, ok := c.removed[tok]
	return ok
}

// IsAdded reports whether the token was allocated by this context.
func (c *Context) IsAdded(tok cil.Token) bool {
	return tok.RID() > c.original[tok.Table()]
}

// StagedRow pairs a live row with its pre-compaction token.
type StagedRow struct {
	Token cil.Token
	Row   cil.Row
}

// LiveRows returns the table's staged row sequence in rid order with
// removals skipped. Rows are the staged instances; callers that mutate
// them must clone first.
func (c *Context) LiveRows(id cil.TableID) []StagedRow {
	out := make([]StagedRow, 0, c.RowCount(id))
	for rid := uint32(1); rid <= c.allocated[id]; rid++ {
		tok := cil.NewToken(id, rid)
		row, ok := c.Row(tok)
		if !ok {
			continue
		}
		out = append(out, StagedRow{Token: tok, Row: row})
	}
	return out
}

// Dirty reports whether the context stages any mutation at all.
func (c *Context) Dirty() bool {
	return len(c.added)+len(c.updated)+len(c.removed) > 0 ||
		c.stringsTail.Size() > 1 || c.blobTail.Size() > 1 ||
		c.guidTail.Size() > 0 || c.usTail.Size() > 1
}
