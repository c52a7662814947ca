package validate

import (
	"unicode/utf8"

	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
)

var rawValidators = []validator[*cil.Image]{
	{name: "cardinality", fatal: true, enabled: func(c Config) bool { return c.Structure }, run: checkCardinality},
	{name: "heap-structure", enabled: func(c Config) bool { return c.Heaps }, run: checkHeapStructure},
	{name: "list-bounds", enabled: func(c Config) bool { return c.Bounds }, run: checkListBounds},
	{name: "ref-bounds", enabled: func(c Config) bool { return c.Bounds }, run: checkRefBounds},
}

// checkCardinality enforces the fixed row-count constraints the rest of
// the pipeline assumes.
func checkCardinality(img *cil.Image, _ Config) []errors.Violation {
	var out []errors.Violation
	if n := img.Tables.RowCount(cil.TableModule); n != 1 {
		out = append(out, violationAt("image has %d Module rows, exactly one required", n))
	}
	if n := img.Tables.RowCount(cil.TableAssembly); n > 1 {
		out = append(out, violationAt("image has %d Assembly rows, at most one allowed", n))
	}
	for _, id := range cil.AllTableIDs() {
		// Rows past the 24-bit rid space can never be addressed by token.
		if n := img.Tables.RowCount(id); n > cil.MaxRID {
			out = append(out, violationAt("%s table has %d rows, exceeding the addressable %d", id, n, uint32(cil.MaxRID)))
		}
	}
	return out
}

// compressedPrefixLen returns the byte width of an ECMA-335 compressed
// length prefix from its first byte, or 0 for the invalid encoding.
func compressedPrefixLen(b byte) uint32 {
	switch {
	case b&0x80 == 0:
		return 1
	case b&0xC0 == 0x80:
		return 2
	case b&0xE0 == 0xC0:
		return 4
	default:
		return 0
	}
}

func checkHeapStructure(img *cil.Image, _ Config) []errors.Violation {
	var out []errors.Violation

	if s := img.Strings.Data(); len(s) > 0 {
		if s[0] != 0 {
			out = append(out, violationAt("strings heap does not start with the empty string record"))
		}
		if s[len(s)-1] != 0 {
			out = append(out, violationAt("strings heap is not NUL-terminated"))
		} else {
			for i := 1; i < len(s); {
				j := i
				for s[j] != 0 {
					j++
				}
				if !utf8.Valid(s[i:j]) {
					out = append(out, violationAt("strings heap record at offset %d is not valid UTF-8", i))
				}
				i = j + 1
			}
		}
	}

	if b := img.Blob.Data(); len(b) > 0 {
		if b[0] != 0 {
			out = append(out, violationAt("blob heap does not start with the empty blob record"))
		}
		for off := uint32(1); off < uint32(len(b)); {
			prefix := compressedPrefixLen(b[off])
			if prefix == 0 {
				out = append(out, violationAt("blob heap record at offset %d has an invalid length prefix", off))
				break
			}
			content, err := img.Blob.Get(off)
			if err != nil {
				out = append(out, violationAt("blob heap record at offset %d: %v", off, err))
				break
			}
			off += prefix + uint32(len(content))
		}
	}

	if n := img.Guid.Size(); n%16 != 0 {
		out = append(out, violationAt("guid heap size %d is not a multiple of 16", n))
	}
	if n := img.UserStrings.Size(); n%4 != 0 {
		out = append(out, violationAt("user string heap size %d is not 4-byte aligned", n))
	}
	return out
}

// listColumns names every run-length list column and its target table.
var listColumns = []struct {
	table  cil.TableID
	column string
	target cil.TableID
	get    func(cil.Row) uint32
}{
	{cil.TableTypeDef, "FieldList", cil.TableField, func(r cil.Row) uint32 { return r.(*cil.TypeDefRaw).FieldList }},
	{cil.TableTypeDef, "MethodList", cil.TableMethodDef, func(r cil.Row) uint32 { return r.(*cil.TypeDefRaw).MethodList }},
	{cil.TableMethodDef, "ParamList", cil.TableParam, func(r cil.Row) uint32 { return r.(*cil.MethodDefRaw).ParamList }},
	{cil.TableEventMap, "EventList", cil.TableEvent, func(r cil.Row) uint32 { return r.(*cil.EventMapRaw).EventList }},
	{cil.TablePropertyMap, "PropertyList", cil.TableProperty, func(r cil.Row) uint32 { return r.(*cil.PropertyMapRaw).PropertyList }},
	{cil.TableLocalScope, "VariableList", cil.TableLocalVariable, func(r cil.Row) uint32 { return r.(*cil.LocalScopeRaw).VariableList }},
	{cil.TableLocalScope, "ConstantList", cil.TableLocalConstant, func(r cil.Row) uint32 { return r.(*cil.LocalScopeRaw).ConstantList }},
}

// checkListBounds verifies that every list column stays within its
// target table and never runs backwards across rows.
func checkListBounds(img *cil.Image, _ Config) []errors.Violation {
	var out []errors.Violation
	for _, lc := range listColumns {
		rows := img.Tables.Rows(lc.table)
		total := img.Tables.RowCount(lc.target)
		var prev uint32
		for i, row := range rows {
			tok := cil.NewToken(lc.table, uint32(i+1))
			start := lc.get(row)
			if start == 0 || start > total+1 {
				out = append(out, violation(tok, "%s %d exceeds %s table of %d rows", lc.column, start, lc.target, total))
				continue
			}
			if start < prev {
				out = append(out, violation(tok, "%s %d runs backwards from the previous row's %d", lc.column, start, prev))
			}
			prev = start
		}
	}
	return out
}

// checkRefBounds verifies that every simple and coded index points at an
// existing row. Decoding already rejects unknown coded tags, so only
// range remains to check here.
func checkRefBounds(img *cil.Image, _ Config) []errors.Violation {
	var out []errors.Violation
	for _, id := range cil.AllTableIDs() {
		for i, row := range img.Tables.Rows(id) {
			for _, ref := range cil.RowReferences(row) {
				if ref.RID() > img.Tables.RowCount(ref.Table()) {
					out = append(out, violation(cil.NewToken(id, uint32(i+1)),
						"reference to %s past its table of %d rows", ref, img.Tables.RowCount(ref.Table())))
				}
			}
		}
	}
	return out
}
