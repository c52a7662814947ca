package writer

import (
	"go.uber.org/zap"

	"github.com/cilforge/cilmeta/builder"
	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
)

// OpKind discriminates the mechanical operations of a layout plan.
type OpKind uint8

const (
	// OpLiteral writes Data at Dst.
	OpLiteral OpKind = iota
	// OpCopy copies Size bytes from Src in the source image to Dst.
	OpCopy
	// OpZero zero-fills Size bytes at Dst.
	OpZero
)

// Operation is one mechanical step of image production. Operations carry
// no layout knowledge; by execution time every offset and size is final.
type Operation struct {
	Kind OpKind
	Dst  uint64
	Size uint64
	Src  uint64
	Data []byte
}

// Layout is a complete write plan: the output size, the stream table, the
// final table sizes, and the operation list that produces the image.
type Layout struct {
	TotalSize uint64
	Version   string
	Sizes     *cil.TableSizeInfo
	Streams   []cil.StreamHeader
	Ops       []Operation
}

// planner carries the state of one Plan run: rid compaction prefixes and
// the heap builders that accumulate still-referenced content.
type planner struct {
	ctx *builder.Context
	img *cil.Image

	strings *cil.StringsBuilder
	blob    *cil.BlobBuilder
	guid    *cil.GuidBuilder

	strMemo  map[uint32]uint32
	blobMemo map[uint32]uint32
	guidMemo map[uint32]uint32

	// before[id][rid] is the number of removed rows with a smaller rid,
	// defined up to rid = allocated+1 for list range ends. Nil when the
	// table has no removals.
	before [cil.MaxTableID][]uint32
}

// Plan computes the full output layout for the context's staged state.
// It performs no I/O; the returned plan is a pure description.
func Plan(ctx *builder.Context) (*Layout, error) {
	p := &planner{
		ctx:      ctx,
		img:      ctx.Image(),
		strings:  cil.NewStringsBuilder(),
		blob:     cil.NewBlobBuilder(),
		guid:     cil.NewGuidBuilder(),
		strMemo:  make(map[uint32]uint32),
		blobMemo: make(map[uint32]uint32),
		guidMemo: make(map[uint32]uint32),
	}
	p.buildCompaction()

	final, err := p.rewriteRows()
	if err != nil {
		return nil, err
	}

	// Heaps are final once every surviving row has been rewritten; their
	// sizes decide the index widths the tables stream encodes with.
	stringsData := p.strings.Bytes()
	blobData := p.blob.Bytes()
	guidData := p.guid.Bytes()
	usData := p.userStringsData()

	sizes := &cil.TableSizeInfo{
		WideStrings: len(stringsData) > 0xFFFF,
		WideGuid:    len(guidData) > 0xFFFF,
		WideBlob:    len(blobData) > 0xFFFF,
	}
	for _, id := range cil.AllTableIDs() {
		sizes.RowCounts[id] = uint32(len(final[id]))
	}

	tables := p.img.Tables
	tablesData, err := cil.EncodeTablesStream(tables.MajorVersion, tables.MinorVersion, tables.Sorted, sizes, final)
	if err != nil {
		return nil, err
	}
	if got := uint64(len(tablesData)); got != cil.TablesStreamSize(sizes) {
		return nil, errors.Internal(errors.PhasePlan,
			"tables stream encoded to %d bytes, planned size is %d", got, cil.TablesStreamSize(sizes))
	}

	plan := p.assemble(tablesData, stringsData, usData, guidData, blobData)
	plan.Sizes = sizes
	Logger().Debug("layout planned",
		zap.Uint64("total_size", plan.TotalSize),
		zap.Int("ops", len(plan.Ops)),
		zap.Int("streams", len(plan.Streams)))
	return plan, nil
}

// buildCompaction precomputes the removed-row prefix counts that map old
// rids onto the compacted rid space.
func (p *planner) buildCompaction() {
	for _, id := range cil.AllTableIDs() {
		n := p.ctx.AllocatedRowCount(id)
		if p.ctx.RowCount(id) == n {
			continue
		}
		pre := make([]uint32, n+2)
		var removed uint32
		for rid := uint32(1); rid <= n+1; rid++ {
			pre[rid] = removed
			if rid <= n && p.ctx.IsRemoved(cil.NewToken(id, rid)) {
				removed++
			}
		}
		p.before[id] = pre
	}
}

func (p *planner) removedBefore(id cil.TableID, rid uint32) uint32 {
	pre := p.before[id]
	if pre == nil {
		return 0
	}
	return pre[rid]
}

// mapToken maps a pre-compaction reference onto the output rid space.
// References to removed rows are a planning failure: removal of a row
// that something still points at must be resolved by the caller, never
// papered over in the output.
func (p *planner) mapToken(tok cil.Token) (cil.Token, error) {
	id := tok.Table()
	if !id.Valid() || tok.RID() > p.ctx.AllocatedRowCount(id) {
		return 0, errors.Layout("reference to %s past the end of its table", tok)
	}
	if p.ctx.IsRemoved(tok) {
		return 0, errors.Layout("reference to removed row %s", tok)
	}
	return cil.NewToken(id, tok.RID()-p.removedBefore(id, tok.RID())), nil
}

// mapList maps a list-column range start. Unlike a plain reference, a
// start may point one past the table's end and may name a removed row:
// the range then begins at the next surviving row.
func (p *planner) mapList(id cil.TableID, start uint32) (uint32, error) {
	if start > p.ctx.AllocatedRowCount(id)+1 {
		return 0, errors.Layout("list start %d past the end of %s", start, id)
	}
	return start - p.removedBefore(id, start), nil
}

func (p *planner) mapString(off uint32) (uint32, error) {
	if mapped, ok := p.strMemo[off]; ok {
		return mapped, nil
	}
	s, err := p.ctx.ResolveString(off)
	if err != nil {
		return 0, err
	}
	mapped := p.strings.Add(s)
	p.strMemo[off] = mapped
	return mapped, nil
}

// mapBlob keys the memo by source offset so rows sharing a blob record
// keep sharing it, while distinct records with equal content stay
// distinct.
func (p *planner) mapBlob(off uint32) (uint32, error) {
	if mapped, ok := p.blobMemo[off]; ok {
		return mapped, nil
	}
	content, err := p.ctx.ResolveBlob(off)
	if err != nil {
		return 0, err
	}
	mapped, err := p.blob.Add(content)
	if err != nil {
		return 0, err
	}
	p.blobMemo[off] = mapped
	return mapped, nil
}

func (p *planner) mapGuid(idx uint32) (uint32, error) {
	if mapped, ok := p.guidMemo[idx]; ok {
		return mapped, nil
	}
	g, err := p.ctx.ResolveGuid(idx)
	if err != nil {
		return 0, err
	}
	mapped := p.guid.Add(g)
	p.guidMemo[idx] = mapped
	return mapped, nil
}

// rewriteRows clones every surviving row and rewrites its heap offsets
// and table references into the output's compacted space. Heap content
// lands in the rebuilt heaps as it is encountered, so only referenced
// content survives the write.
func (p *planner) rewriteRows() (*[cil.MaxTableID][]cil.Row, error) {
	rw := &cil.RowRewriter{
		String:  p.mapString,
		Guid:    p.mapGuid,
		Blob:    p.mapBlob,
		Ref:     p.mapToken,
		RefList: p.mapList,
	}

	var final [cil.MaxTableID][]cil.Row
	for _, id := range cil.AllTableIDs() {
		live := p.ctx.LiveRows(id)
		if len(live) == 0 {
			continue
		}
		rows := make([]cil.Row, 0, len(live))
		for _, sr := range live {
			row := cil.CloneRow(sr.Row)
			if err := rw.Apply(row); err != nil {
				return nil, errors.New(errors.PhasePlan, errors.KindLayout).
					Token(sr.Token.Value()).
					Cause(err).
					Detail("rewrite row references").
					Build()
			}
			rows = append(rows, row)
		}
		final[id] = rows
	}
	return &final, nil
}

// userStringsData returns the output #US heap content before alignment:
// the original heap verbatim, then the staged tail. Offsets into the
// original heap stay valid because method bodies reference them outside
// the tables.
func (p *planner) userStringsData() []byte {
	orig := p.img.UserStrings.Data()
	if len(orig) == 0 {
		orig = []byte{0}
	}
	tail := p.ctx.UserStringTail()
	out := make([]byte, 0, len(orig)+len(tail))
	out = append(out, orig...)
	return append(out, tail...)
}

func align4(n uint64) uint64 { return (n + 3) &^ 3 }

// assemble lays the streams out after the root header and emits the
// operation list. The original #US bytes are the only content copied from
// the source image; everything else is regenerated.
func (p *planner) assemble(tablesData, stringsData, usData, guidData, blobData []byte) *Layout {
	version := p.img.Root.Version
	names := []string{cil.StreamTables, cil.StreamStrings, cil.StreamUserStrings, cil.StreamGuid, cil.StreamBlob}

	usSize := align4(uint64(len(usData)))

	offset := uint64(cil.RootSize(version, names))
	var streams []cil.StreamHeader
	for _, s := range []struct {
		name string
		size uint64
	}{
		{cil.StreamTables, uint64(len(tablesData))},
		{cil.StreamStrings, uint64(len(stringsData))},
		{cil.StreamUserStrings, usSize},
		{cil.StreamGuid, uint64(len(guidData))},
		{cil.StreamBlob, uint64(len(blobData))},
	} {
		streams = append(streams, cil.StreamHeader{Offset: uint32(offset), Size: uint32(s.size), Name: s.name})
		offset += align4(s.size)
	}

	plan := &Layout{
		TotalSize: offset,
		Version:   version,
		Streams:   streams,
	}
	root := cil.EncodeRoot(p.img.Root.MajorVersion, p.img.Root.MinorVersion, version, p.img.Root.Flags, streams)
	plan.Ops = append(plan.Ops, Operation{Kind: OpLiteral, Dst: 0, Size: uint64(len(root)), Data: root})

	literal := func(at uint64, data []byte) {
		plan.Ops = append(plan.Ops, Operation{Kind: OpLiteral, Dst: at, Size: uint64(len(data)), Data: data})
	}
	literal(uint64(streams[0].Offset), tablesData)
	literal(uint64(streams[1].Offset), stringsData)

	// The original #US stream is copied from the source image when it
	// exists; the staged tail and alignment follow it.
	usAt := uint64(streams[2].Offset)
	origLen := uint64(len(p.img.UserStrings.Data()))
	if orig := p.img.Root.Stream(cil.StreamUserStrings); orig != nil && origLen > 0 {
		plan.Ops = append(plan.Ops, Operation{Kind: OpCopy, Dst: usAt, Size: origLen, Src: uint64(orig.Offset)})
	} else {
		origLen = 1
		literal(usAt, []byte{0})
	}
	if tail := p.ctx.UserStringTail(); len(tail) > 0 {
		literal(usAt+origLen, tail)
	}
	if pad := usSize - (origLen + uint64(len(p.ctx.UserStringTail()))); pad > 0 {
		plan.Ops = append(plan.Ops, Operation{Kind: OpZero, Dst: usAt + usSize - pad, Size: pad})
	}

	literal(uint64(streams[3].Offset), guidData)
	literal(uint64(streams[4].Offset), blobData)
	return plan
}
