package cil

import (
	"math/bits"

	"github.com/cilforge/cilmeta/errors"
)

// CodedIndexKind names one coded index family: a field that may reference a
// row in any of an ordered set of tables.
type CodedIndexKind uint8

const (
	CodedTypeDefOrRef CodedIndexKind = iota
	CodedHasConstant
	CodedHasCustomAttribute
	CodedHasFieldMarshal
	CodedHasDeclSecurity
	CodedMemberRefParent
	CodedHasSemantics
	CodedMethodDefOrRef
	CodedMemberForwarded
	CodedImplementation
	CodedCustomAttributeType
	CodedResolutionScope
	CodedTypeOrMethodDef
	CodedHasCustomDebugInformation

	numCodedKinds
)

var codedKindNames = [numCodedKinds]string{
	"TypeDefOrRef", "HasConstant", "HasCustomAttribute", "HasFieldMarshal",
	"HasDeclSecurity", "MemberRefParent", "HasSemantics", "MethodDefOrRef",
	"MemberForwarded", "Implementation", "CustomAttributeType",
	"ResolutionScope", "TypeOrMethodDef", "HasCustomDebugInformation",
}

func (k CodedIndexKind) String() string {
	if int(k) < len(codedKindNames) {
		return codedKindNames[k]
	}
	return "CodedIndexKind(?)"
}

// hasCustomAttributeMembers is shared between HasCustomAttribute and the
// debug-stream HasCustomDebugInformation family, which extends it.
var hasCustomAttributeMembers = []TableID{
	TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam,
	TableInterfaceImpl, TableMemberRef, TableModule, TableDeclSecurity,
	TableProperty, TableEvent, TableStandAloneSig, TableModuleRef,
	TableTypeSpec, TableAssembly, TableAssemblyRef, TableFile,
	TableExportedType, TableManifestResource, TableGenericParam,
	TableGenericParamConstraint, TableMethodSpec,
}

// codedFamilies lists the participating tables of each family in tag order.
// TableNone marks reserved tag slots that no table is assigned to.
var codedFamilies = [numCodedKinds][]TableID{
	CodedTypeDefOrRef:     {TableTypeDef, TableTypeRef, TableTypeSpec},
	CodedHasConstant:      {TableField, TableParam, TableProperty},
	CodedHasCustomAttribute: hasCustomAttributeMembers,
	CodedHasFieldMarshal:  {TableField, TableParam},
	CodedHasDeclSecurity:  {TableTypeDef, TableMethodDef, TableAssembly},
	CodedMemberRefParent:  {TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef, TableTypeSpec},
	CodedHasSemantics:     {TableEvent, TableProperty},
	CodedMethodDefOrRef:   {TableMethodDef, TableMemberRef},
	CodedMemberForwarded:  {TableField, TableMethodDef},
	CodedImplementation:   {TableFile, TableAssemblyRef, TableExportedType},
	CodedCustomAttributeType: {TableNone, TableNone, TableMethodDef, TableMemberRef, TableNone},
	CodedResolutionScope:  {TableModule, TableModuleRef, TableAssemblyRef, TableTypeRef},
	CodedTypeOrMethodDef:  {TableTypeDef, TableMethodDef},
	CodedHasCustomDebugInformation: append(append([]TableID{}, hasCustomAttributeMembers...),
		TableDocument, TableLocalScope, TableLocalVariable, TableLocalConstant, TableImportScope),
}

// Family returns the participating tables of k in tag order. Reserved tag
// slots are TableNone. The returned slice must not be modified.
func (k CodedIndexKind) Family() []TableID {
	return codedFamilies[k]
}

// TagBits returns the number of tag bits of the family:
// ceil(log2(len(family))).
func (k CodedIndexKind) TagBits() int {
	n := len(codedFamilies[k])
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// CodedIndex is a decoded coded-index field: which table the reference
// selects and the 1-based row within it. Row 0 is the explicit null
// reference.
type CodedIndex struct {
	Tag TableID
	Row uint32
}

// Token returns the token form of the reference.
func (c CodedIndex) Token() Token {
	return NewToken(c.Tag, c.Row)
}

// IsNil reports whether the reference is the null sentinel.
func (c CodedIndex) IsNil() bool {
	return c.Row == 0
}

// DecodeCodedIndex unpacks a raw coded-index value for family k. A tag that
// selects a reserved or out-of-range family slot is a malformed-input
// error. Raw value 0 is the canonical null reference for every family.
func DecodeCodedIndex(k CodedIndexKind, value uint32) (CodedIndex, error) {
	if value == 0 {
		return CodedIndex{}, nil
	}
	tagBits := k.TagBits()
	tag := value & (1<<tagBits - 1)
	row := value >> tagBits

	family := k.Family()
	if int(tag) >= len(family) || family[tag] == TableNone {
		return CodedIndex{}, errors.New(errors.PhaseParse, errors.KindMalformed).
			Path("codedindex", k.String()).
			Detail("tag %d is not a member of the %s family", tag, k).
			Build()
	}
	return CodedIndex{Tag: family[tag], Row: row}, nil
}

// EncodeCodedIndex packs a coded index for family k. The tag table must be
// a member of the family.
func EncodeCodedIndex(k CodedIndexKind, ci CodedIndex) (uint32, error) {
	if ci.Row == 0 && ci.Tag == 0 {
		// Canonical null: tag slot 0, row 0.
		return 0, nil
	}
	family := k.Family()
	for tag, member := range family {
		if member == ci.Tag && member != TableNone {
			return ci.Row<<k.TagBits() | uint32(tag), nil
		}
	}
	return 0, errors.New(errors.PhasePlan, errors.KindLayout).
		Path("codedindex", k.String()).
		Detail("table %s is not a member of the %s family", ci.Tag, k).
		Build()
}
