package cil_test

import (
	"testing"

	"github.com/cilforge/cilmeta/cil"
)

func TestCodedIndexTagBits(t *testing.T) {
	cases := []struct {
		kind cil.CodedIndexKind
		want int
	}{
		{cil.CodedTypeDefOrRef, 2},
		{cil.CodedHasConstant, 2},
		{cil.CodedHasCustomAttribute, 5},
		{cil.CodedHasFieldMarshal, 1},
		{cil.CodedMemberRefParent, 3},
		{cil.CodedHasSemantics, 1},
		{cil.CodedMethodDefOrRef, 1},
		{cil.CodedCustomAttributeType, 3},
		{cil.CodedResolutionScope, 2},
		{cil.CodedTypeOrMethodDef, 1},
		{cil.CodedHasCustomDebugInformation, 5},
	}
	for _, c := range cases {
		if got := c.kind.TagBits(); got != c.want {
			t.Errorf("%s tag bits = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestCodedIndexRoundTrip(t *testing.T) {
	cases := []struct {
		kind cil.CodedIndexKind
		ci   cil.CodedIndex
	}{
		{cil.CodedTypeDefOrRef, cil.CodedIndex{Tag: cil.TableTypeDef, Row: 1}},
		{cil.CodedTypeDefOrRef, cil.CodedIndex{Tag: cil.TableTypeSpec, Row: 0x3FFF}},
		{cil.CodedResolutionScope, cil.CodedIndex{Tag: cil.TableAssemblyRef, Row: 7}},
		{cil.CodedCustomAttributeType, cil.CodedIndex{Tag: cil.TableMemberRef, Row: 12}},
		{cil.CodedHasCustomAttribute, cil.CodedIndex{Tag: cil.TableMethodSpec, Row: 3}},
	}
	for _, c := range cases {
		raw, err := cil.EncodeCodedIndex(c.kind, c.ci)
		if err != nil {
			t.Fatalf("%s encode %v: %v", c.kind, c.ci, err)
		}
		got, err := cil.DecodeCodedIndex(c.kind, raw)
		if err != nil {
			t.Fatalf("%s decode 0x%X: %v", c.kind, raw, err)
		}
		if got != c.ci {
			t.Errorf("%s round trip %v -> %v", c.kind, c.ci, got)
		}
	}
}

func TestCodedIndexKnownEncodings(t *testing.T) {
	// TypeDefOrRef tag order is TypeDef=0, TypeRef=1, TypeSpec=2.
	raw, err := cil.EncodeCodedIndex(cil.CodedTypeDefOrRef, cil.CodedIndex{Tag: cil.TableTypeRef, Row: 5})
	if err != nil {
		t.Fatal(err)
	}
	if raw != 5<<2|1 {
		t.Errorf("TypeRef[5] encoded as 0x%X, want 0x%X", raw, 5<<2|1)
	}
}

func TestCodedIndexInvalidTag(t *testing.T) {
	// TypeDefOrRef has 3 members; tag 3 is out of range.
	if _, err := cil.DecodeCodedIndex(cil.CodedTypeDefOrRef, 1<<2|3); err == nil {
		t.Error("expected error decoding tag 3 of TypeDefOrRef")
	}
	// CustomAttributeType tags 0, 1 and 4 are reserved.
	for _, tag := range []uint32{0, 1, 4} {
		if _, err := cil.DecodeCodedIndex(cil.CodedCustomAttributeType, 1<<3|tag); err == nil {
			t.Errorf("expected error decoding reserved tag %d of CustomAttributeType", tag)
		}
	}
}

func TestCodedIndexEncodeNonMember(t *testing.T) {
	if _, err := cil.EncodeCodedIndex(cil.CodedTypeDefOrRef, cil.CodedIndex{Tag: cil.TableAssembly, Row: 1}); err == nil {
		t.Error("expected error encoding Assembly into TypeDefOrRef")
	}
}

func TestCodedIndexWidthMonotonicity(t *testing.T) {
	// TypeDefOrRef has 2 tag bits, so 14 index bits: up to 0x3FFF rows narrow.
	sizes := &cil.TableSizeInfo{}
	sizes.RowCounts[cil.TableTypeDef] = 0x3FFF
	if got := sizes.CodedIndexBytes(cil.CodedTypeDefOrRef); got != 2 {
		t.Errorf("width at 0x3FFF rows = %d, want 2", got)
	}
	sizes.RowCounts[cil.TableTypeDef] = 0x4000
	if got := sizes.CodedIndexBytes(cil.CodedTypeDefOrRef); got != 4 {
		t.Errorf("width at 0x4000 rows = %d, want 4", got)
	}
	// Any family member crossing the threshold widens the field.
	sizes.RowCounts[cil.TableTypeDef] = 1
	sizes.RowCounts[cil.TableTypeSpec] = 0x4000
	if got := sizes.CodedIndexBytes(cil.CodedTypeDefOrRef); got != 4 {
		t.Errorf("width with large TypeSpec = %d, want 4", got)
	}
}

func TestCodedIndexWidthAgreement(t *testing.T) {
	// The same logical reference decodes identically from narrow and wide
	// encodings; only the field width differs.
	ci := cil.CodedIndex{Tag: cil.TableTypeRef, Row: 0x1234}
	raw, err := cil.EncodeCodedIndex(cil.CodedTypeDefOrRef, ci)
	if err != nil {
		t.Fatal(err)
	}
	got, err := cil.DecodeCodedIndex(cil.CodedTypeDefOrRef, raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != ci {
		t.Errorf("decode(encode(%v)) = %v", ci, got)
	}
}

func TestSimpleIndexWidth(t *testing.T) {
	sizes := &cil.TableSizeInfo{}
	sizes.RowCounts[cil.TableField] = 0xFFFF
	if got := sizes.TableIndexBytes(cil.TableField); got != 2 {
		t.Errorf("width at 0xFFFF rows = %d, want 2", got)
	}
	sizes.RowCounts[cil.TableField] = 0x10000
	if got := sizes.TableIndexBytes(cil.TableField); got != 4 {
		t.Errorf("width at 0x10000 rows = %d, want 4", got)
	}
}
