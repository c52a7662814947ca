package cil

// Row is the unresolved, as-decoded representation of one table entry.
// Heap references are raw offsets (1-based record indexes for the guid
// heap), table references are raw 1-based row ids, and multi-table
// references are CodedIndex values. Rows are immutable after decode on the
// read path; mutation stages replacement rows in a builder context.
//
// Each table kind declares its field layout exactly once via codec; the
// same declaration drives sizing, reading and writing, which is what
// guarantees that reads and writes of a row cover exactly RowSize bytes.
type Row interface {
	Kind() TableID
	codec(c coder)
}

// coder visits the fields of a row in on-disk order. Implementations
// compute sizes, decode or encode depending on the concrete visitor.
type coder interface {
	U8(*uint8)
	U16(*uint16)
	U32(*uint32)
	StringRef(*uint32)
	GuidRef(*uint32)
	BlobRef(*uint32)
	Index(id TableID, v *uint32)
	IndexList(id TableID, v *uint32)
	Coded(kind CodedIndexKind, v *CodedIndex)
}

// ModuleRaw is the module identity row. Exactly one per image.
type ModuleRaw struct {
	Generation uint16
	Name       uint32
	Mvid       uint32
	EncID      uint32
	EncBaseID  uint32
}

func (*ModuleRaw) Kind() TableID { return TableModule }
func (r *ModuleRaw) codec(c coder) {
	c.U16(&r.Generation)
	c.StringRef(&r.Name)
	c.GuidRef(&r.Mvid)
	c.GuidRef(&r.EncID)
	c.GuidRef(&r.EncBaseID)
}

// TypeRefRaw references a type defined in another scope.
type TypeRefRaw struct {
	ResolutionScope CodedIndex
	Name            uint32
	Namespace       uint32
}

func (*TypeRefRaw) Kind() TableID { return TableTypeRef }
func (r *TypeRefRaw) codec(c coder) {
	c.Coded(CodedResolutionScope, &r.ResolutionScope)
	c.StringRef(&r.Name)
	c.StringRef(&r.Namespace)
}

// TypeDefRaw defines a type. FieldList and MethodList are the starts of
// run-length ranges ended by the next row's value (or the owning table's
// row count + 1 for the last row).
type TypeDefRaw struct {
	Flags      uint32
	Name       uint32
	Namespace  uint32
	Extends    CodedIndex
	FieldList  uint32
	MethodList uint32
}

func (*TypeDefRaw) Kind() TableID { return TableTypeDef }
func (r *TypeDefRaw) codec(c coder) {
	c.U32(&r.Flags)
	c.StringRef(&r.Name)
	c.StringRef(&r.Namespace)
	c.Coded(CodedTypeDefOrRef, &r.Extends)
	c.IndexList(TableField, &r.FieldList)
	c.IndexList(TableMethodDef, &r.MethodList)
}

// FieldPtrRaw is the indirection row used by edit-and-continue images.
type FieldPtrRaw struct {
	Field uint32
}

func (*FieldPtrRaw) Kind() TableID   { return TableFieldPtr }
func (r *FieldPtrRaw) codec(c coder) { c.Index(TableField, &r.Field) }

// FieldRaw defines a field of a type.
type FieldRaw struct {
	Flags     uint16
	Name      uint32
	Signature uint32
}

func (*FieldRaw) Kind() TableID { return TableField }
func (r *FieldRaw) codec(c coder) {
	c.U16(&r.Flags)
	c.StringRef(&r.Name)
	c.BlobRef(&r.Signature)
}

// MethodPtrRaw is the indirection row used by edit-and-continue images.
type MethodPtrRaw struct {
	Method uint32
}

func (*MethodPtrRaw) Kind() TableID   { return TableMethodPtr }
func (r *MethodPtrRaw) codec(c coder) { c.Index(TableMethodDef, &r.Method) }

// MethodDefRaw defines a method. ParamList is a run-length range start.
type MethodDefRaw struct {
	RVA       uint32
	ImplFlags uint16
	Flags     uint16
	Name      uint32
	Signature uint32
	ParamList uint32
}

func (*MethodDefRaw) Kind() TableID { return TableMethodDef }
func (r *MethodDefRaw) codec(c coder) {
	c.U32(&r.RVA)
	c.U16(&r.ImplFlags)
	c.U16(&r.Flags)
	c.StringRef(&r.Name)
	c.BlobRef(&r.Signature)
	c.IndexList(TableParam, &r.ParamList)
}

// ParamPtrRaw is the indirection row used by edit-and-continue images.
type ParamPtrRaw struct {
	Param uint32
}

func (*ParamPtrRaw) Kind() TableID   { return TableParamPtr }
func (r *ParamPtrRaw) codec(c coder) { c.Index(TableParam, &r.Param) }

// ParamRaw defines a method parameter.
type ParamRaw struct {
	Flags    uint16
	Sequence uint16
	Name     uint32
}

func (*ParamRaw) Kind() TableID { return TableParam }
func (r *ParamRaw) codec(c coder) {
	c.U16(&r.Flags)
	c.U16(&r.Sequence)
	c.StringRef(&r.Name)
}

// InterfaceImplRaw records that a type implements an interface.
type InterfaceImplRaw struct {
	Class     uint32
	Interface CodedIndex
}

func (*InterfaceImplRaw) Kind() TableID { return TableInterfaceImpl }
func (r *InterfaceImplRaw) codec(c coder) {
	c.Index(TableTypeDef, &r.Class)
	c.Coded(CodedTypeDefOrRef, &r.Interface)
}

// MemberRefRaw references a field or method of another scope.
type MemberRefRaw struct {
	Class     CodedIndex
	Name      uint32
	Signature uint32
}

func (*MemberRefRaw) Kind() TableID { return TableMemberRef }
func (r *MemberRefRaw) codec(c coder) {
	c.Coded(CodedMemberRefParent, &r.Class)
	c.StringRef(&r.Name)
	c.BlobRef(&r.Signature)
}

// ConstantRaw attaches a compile-time constant to a field, param or
// property.
type ConstantRaw struct {
	Type    uint8
	Padding uint8
	Parent  CodedIndex
	Value   uint32
}

func (*ConstantRaw) Kind() TableID { return TableConstant }
func (r *ConstantRaw) codec(c coder) {
	c.U8(&r.Type)
	c.U8(&r.Padding)
	c.Coded(CodedHasConstant, &r.Parent)
	c.BlobRef(&r.Value)
}

// CustomAttributeRaw attaches an attribute blob to almost any row kind.
type CustomAttributeRaw struct {
	Parent CodedIndex
	Type   CodedIndex
	Value  uint32
}

func (*CustomAttributeRaw) Kind() TableID { return TableCustomAttribute }
func (r *CustomAttributeRaw) codec(c coder) {
	c.Coded(CodedHasCustomAttribute, &r.Parent)
	c.Coded(CodedCustomAttributeType, &r.Type)
	c.BlobRef(&r.Value)
}

// FieldMarshalRaw records native marshalling for a field or parameter.
type FieldMarshalRaw struct {
	Parent     CodedIndex
	NativeType uint32
}

func (*FieldMarshalRaw) Kind() TableID { return TableFieldMarshal }
func (r *FieldMarshalRaw) codec(c coder) {
	c.Coded(CodedHasFieldMarshal, &r.Parent)
	c.BlobRef(&r.NativeType)
}

// DeclSecurityRaw records a declarative security action.
type DeclSecurityRaw struct {
	Action        uint16
	Parent        CodedIndex
	PermissionSet uint32
}

func (*DeclSecurityRaw) Kind() TableID { return TableDeclSecurity }
func (r *DeclSecurityRaw) codec(c coder) {
	c.U16(&r.Action)
	c.Coded(CodedHasDeclSecurity, &r.Parent)
	c.BlobRef(&r.PermissionSet)
}

// ClassLayoutRaw records explicit layout of a type.
type ClassLayoutRaw struct {
	PackingSize uint16
	ClassSize   uint32
	Parent      uint32
}

func (*ClassLayoutRaw) Kind() TableID { return TableClassLayout }
func (r *ClassLayoutRaw) codec(c coder) {
	c.U16(&r.PackingSize)
	c.U32(&r.ClassSize)
	c.Index(TableTypeDef, &r.Parent)
}

// FieldLayoutRaw records the explicit offset of a field.
type FieldLayoutRaw struct {
	Offset uint32
	Field  uint32
}

func (*FieldLayoutRaw) Kind() TableID { return TableFieldLayout }
func (r *FieldLayoutRaw) codec(c coder) {
	c.U32(&r.Offset)
	c.Index(TableField, &r.Field)
}

// StandAloneSigRaw holds a standalone signature blob.
type StandAloneSigRaw struct {
	Signature uint32
}

func (*StandAloneSigRaw) Kind() TableID   { return TableStandAloneSig }
func (r *StandAloneSigRaw) codec(c coder) { c.BlobRef(&r.Signature) }

// EventMapRaw maps a type to its run of Event rows.
type EventMapRaw struct {
	Parent    uint32
	EventList uint32
}

func (*EventMapRaw) Kind() TableID { return TableEventMap }
func (r *EventMapRaw) codec(c coder) {
	c.Index(TableTypeDef, &r.Parent)
	c.IndexList(TableEvent, &r.EventList)
}

// EventPtrRaw is the indirection row used by edit-and-continue images.
type EventPtrRaw struct {
	Event uint32
}

func (*EventPtrRaw) Kind() TableID   { return TableEventPtr }
func (r *EventPtrRaw) codec(c coder) { c.Index(TableEvent, &r.Event) }

// EventRaw defines an event.
type EventRaw struct {
	EventFlags uint16
	Name       uint32
	EventType  CodedIndex
}

func (*EventRaw) Kind() TableID { return TableEvent }
func (r *EventRaw) codec(c coder) {
	c.U16(&r.EventFlags)
	c.StringRef(&r.Name)
	c.Coded(CodedTypeDefOrRef, &r.EventType)
}

// PropertyMapRaw maps a type to its run of Property rows.
type PropertyMapRaw struct {
	Parent       uint32
	PropertyList uint32
}

func (*PropertyMapRaw) Kind() TableID { return TablePropertyMap }
func (r *PropertyMapRaw) codec(c coder) {
	c.Index(TableTypeDef, &r.Parent)
	c.IndexList(TableProperty, &r.PropertyList)
}

// PropertyPtrRaw is the indirection row used by edit-and-continue images.
type PropertyPtrRaw struct {
	Property uint32
}

func (*PropertyPtrRaw) Kind() TableID   { return TablePropertyPtr }
func (r *PropertyPtrRaw) codec(c coder) { c.Index(TableProperty, &r.Property) }

// PropertyRaw defines a property.
type PropertyRaw struct {
	Flags uint16
	Name  uint32
	Type  uint32
}

func (*PropertyRaw) Kind() TableID { return TableProperty }
func (r *PropertyRaw) codec(c coder) {
	c.U16(&r.Flags)
	c.StringRef(&r.Name)
	c.BlobRef(&r.Type)
}

// MethodSemanticsRaw associates a method with an event or property.
type MethodSemanticsRaw struct {
	Semantics   uint16
	Method      uint32
	Association CodedIndex
}

func (*MethodSemanticsRaw) Kind() TableID { return TableMethodSemantics }
func (r *MethodSemanticsRaw) codec(c coder) {
	c.U16(&r.Semantics)
	c.Index(TableMethodDef, &r.Method)
	c.Coded(CodedHasSemantics, &r.Association)
}

// MethodImplRaw records an explicit method override.
type MethodImplRaw struct {
	Class             uint32
	MethodBody        CodedIndex
	MethodDeclaration CodedIndex
}

func (*MethodImplRaw) Kind() TableID { return TableMethodImpl }
func (r *MethodImplRaw) codec(c coder) {
	c.Index(TableTypeDef, &r.Class)
	c.Coded(CodedMethodDefOrRef, &r.MethodBody)
	c.Coded(CodedMethodDefOrRef, &r.MethodDeclaration)
}

// ModuleRefRaw references another module by name.
type ModuleRefRaw struct {
	Name uint32
}

func (*ModuleRefRaw) Kind() TableID   { return TableModuleRef }
func (r *ModuleRefRaw) codec(c coder) { c.StringRef(&r.Name) }

// TypeSpecRaw holds a type signature blob.
type TypeSpecRaw struct {
	Signature uint32
}

func (*TypeSpecRaw) Kind() TableID   { return TableTypeSpec }
func (r *TypeSpecRaw) codec(c coder) { c.BlobRef(&r.Signature) }

// ImplMapRaw records a P/Invoke forwarding.
type ImplMapRaw struct {
	MappingFlags    uint16
	MemberForwarded CodedIndex
	ImportName      uint32
	ImportScope     uint32
}

func (*ImplMapRaw) Kind() TableID { return TableImplMap }
func (r *ImplMapRaw) codec(c coder) {
	c.U16(&r.MappingFlags)
	c.Coded(CodedMemberForwarded, &r.MemberForwarded)
	c.StringRef(&r.ImportName)
	c.Index(TableModuleRef, &r.ImportScope)
}

// FieldRVARaw records the data address of a field with an initial value.
type FieldRVARaw struct {
	RVA   uint32
	Field uint32
}

func (*FieldRVARaw) Kind() TableID { return TableFieldRVA }
func (r *FieldRVARaw) codec(c coder) {
	c.U32(&r.RVA)
	c.Index(TableField, &r.Field)
}

// EncLogRaw is an edit-and-continue log entry.
type EncLogRaw struct {
	Token    uint32
	FuncCode uint32
}

func (*EncLogRaw) Kind() TableID { return TableEncLog }
func (r *EncLogRaw) codec(c coder) {
	c.U32(&r.Token)
	c.U32(&r.FuncCode)
}

// EncMapRaw is an edit-and-continue map entry.
type EncMapRaw struct {
	Token uint32
}

func (*EncMapRaw) Kind() TableID   { return TableEncMap }
func (r *EncMapRaw) codec(c coder) { c.U32(&r.Token) }

// AssemblyRaw is the assembly identity row. At most one per image.
type AssemblyRaw struct {
	HashAlgID      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32
	PublicKey      uint32
	Name           uint32
	Culture        uint32
}

func (*AssemblyRaw) Kind() TableID { return TableAssembly }
func (r *AssemblyRaw) codec(c coder) {
	c.U32(&r.HashAlgID)
	c.U16(&r.MajorVersion)
	c.U16(&r.MinorVersion)
	c.U16(&r.BuildNumber)
	c.U16(&r.RevisionNumber)
	c.U32(&r.Flags)
	c.BlobRef(&r.PublicKey)
	c.StringRef(&r.Name)
	c.StringRef(&r.Culture)
}

// AssemblyProcessorRaw is a legacy processor record.
type AssemblyProcessorRaw struct {
	Processor uint32
}

func (*AssemblyProcessorRaw) Kind() TableID   { return TableAssemblyProcessor }
func (r *AssemblyProcessorRaw) codec(c coder) { c.U32(&r.Processor) }

// AssemblyOSRaw is a legacy OS record.
type AssemblyOSRaw struct {
	OSPlatformID   uint32
	OSMajorVersion uint32
	OSMinorVersion uint32
}

func (*AssemblyOSRaw) Kind() TableID { return TableAssemblyOS }
func (r *AssemblyOSRaw) codec(c coder) {
	c.U32(&r.OSPlatformID)
	c.U32(&r.OSMajorVersion)
	c.U32(&r.OSMinorVersion)
}

// AssemblyRefRaw references another assembly.
type AssemblyRefRaw struct {
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
	Flags            uint32
	PublicKeyOrToken uint32
	Name             uint32
	Culture          uint32
	HashValue        uint32
}

func (*AssemblyRefRaw) Kind() TableID { return TableAssemblyRef }
func (r *AssemblyRefRaw) codec(c coder) {
	c.U16(&r.MajorVersion)
	c.U16(&r.MinorVersion)
	c.U16(&r.BuildNumber)
	c.U16(&r.RevisionNumber)
	c.U32(&r.Flags)
	c.BlobRef(&r.PublicKeyOrToken)
	c.StringRef(&r.Name)
	c.StringRef(&r.Culture)
	c.BlobRef(&r.HashValue)
}

// AssemblyRefProcessorRaw is a legacy processor record.
type AssemblyRefProcessorRaw struct {
	Processor   uint32
	AssemblyRef uint32
}

func (*AssemblyRefProcessorRaw) Kind() TableID { return TableAssemblyRefProcessor }
func (r *AssemblyRefProcessorRaw) codec(c coder) {
	c.U32(&r.Processor)
	c.Index(TableAssemblyRef, &r.AssemblyRef)
}

// AssemblyRefOSRaw is a legacy OS record.
type AssemblyRefOSRaw struct {
	OSPlatformID   uint32
	OSMajorVersion uint32
	OSMinorVersion uint32
	AssemblyRef    uint32
}

func (*AssemblyRefOSRaw) Kind() TableID { return TableAssemblyRefOS }
func (r *AssemblyRefOSRaw) codec(c coder) {
	c.U32(&r.OSPlatformID)
	c.U32(&r.OSMajorVersion)
	c.U32(&r.OSMinorVersion)
	c.Index(TableAssemblyRef, &r.AssemblyRef)
}

// FileRaw records a file in the assembly manifest.
type FileRaw struct {
	Flags     uint32
	Name      uint32
	HashValue uint32
}

func (*FileRaw) Kind() TableID { return TableFile }
func (r *FileRaw) codec(c coder) {
	c.U32(&r.Flags)
	c.StringRef(&r.Name)
	c.BlobRef(&r.HashValue)
}

// ExportedTypeRaw records a type exported from another module of the
// assembly.
type ExportedTypeRaw struct {
	Flags          uint32
	TypeDefID      uint32
	TypeName       uint32
	TypeNamespace  uint32
	Implementation CodedIndex
}

func (*ExportedTypeRaw) Kind() TableID { return TableExportedType }
func (r *ExportedTypeRaw) codec(c coder) {
	c.U32(&r.Flags)
	c.U32(&r.TypeDefID)
	c.StringRef(&r.TypeName)
	c.StringRef(&r.TypeNamespace)
	c.Coded(CodedImplementation, &r.Implementation)
}

// ManifestResourceRaw records an embedded or linked resource.
type ManifestResourceRaw struct {
	Offset         uint32
	Flags          uint32
	Name           uint32
	Implementation CodedIndex
}

func (*ManifestResourceRaw) Kind() TableID { return TableManifestResource }
func (r *ManifestResourceRaw) codec(c coder) {
	c.U32(&r.Offset)
	c.U32(&r.Flags)
	c.StringRef(&r.Name)
	c.Coded(CodedImplementation, &r.Implementation)
}

// NestedClassRaw records lexical type nesting.
type NestedClassRaw struct {
	NestedClass    uint32
	EnclosingClass uint32
}

func (*NestedClassRaw) Kind() TableID { return TableNestedClass }
func (r *NestedClassRaw) codec(c coder) {
	c.Index(TableTypeDef, &r.NestedClass)
	c.Index(TableTypeDef, &r.EnclosingClass)
}

// GenericParamRaw defines a generic parameter of a type or method.
type GenericParamRaw struct {
	Number uint16
	Flags  uint16
	Owner  CodedIndex
	Name   uint32
}

func (*GenericParamRaw) Kind() TableID { return TableGenericParam }
func (r *GenericParamRaw) codec(c coder) {
	c.U16(&r.Number)
	c.U16(&r.Flags)
	c.Coded(CodedTypeOrMethodDef, &r.Owner)
	c.StringRef(&r.Name)
}

// MethodSpecRaw instantiates a generic method.
type MethodSpecRaw struct {
	Method        CodedIndex
	Instantiation uint32
}

func (*MethodSpecRaw) Kind() TableID { return TableMethodSpec }
func (r *MethodSpecRaw) codec(c coder) {
	c.Coded(CodedMethodDefOrRef, &r.Method)
	c.BlobRef(&r.Instantiation)
}

// GenericParamConstraintRaw constrains a generic parameter.
type GenericParamConstraintRaw struct {
	Owner      uint32
	Constraint CodedIndex
}

func (*GenericParamConstraintRaw) Kind() TableID { return TableGenericParamConstraint }
func (r *GenericParamConstraintRaw) codec(c coder) {
	c.Index(TableGenericParam, &r.Owner)
	c.Coded(CodedTypeDefOrRef, &r.Constraint)
}

// DocumentRaw is a portable-PDB source document record.
type DocumentRaw struct {
	Name          uint32
	HashAlgorithm uint32
	Hash          uint32
	Language      uint32
}

func (*DocumentRaw) Kind() TableID { return TableDocument }
func (r *DocumentRaw) codec(c coder) {
	c.BlobRef(&r.Name)
	c.GuidRef(&r.HashAlgorithm)
	c.BlobRef(&r.Hash)
	c.GuidRef(&r.Language)
}

// MethodDebugInformationRaw maps a method to its sequence points.
type MethodDebugInformationRaw struct {
	Document       uint32
	SequencePoints uint32
}

func (*MethodDebugInformationRaw) Kind() TableID { return TableMethodDebugInformation }
func (r *MethodDebugInformationRaw) codec(c coder) {
	c.Index(TableDocument, &r.Document)
	c.BlobRef(&r.SequencePoints)
}

// LocalScopeRaw is a portable-PDB local scope record.
type LocalScopeRaw struct {
	Method       uint32
	ImportScope  uint32
	VariableList uint32
	ConstantList uint32
	StartOffset  uint32
	Length       uint32
}

func (*LocalScopeRaw) Kind() TableID { return TableLocalScope }
func (r *LocalScopeRaw) codec(c coder) {
	c.Index(TableMethodDef, &r.Method)
	c.Index(TableImportScope, &r.ImportScope)
	c.IndexList(TableLocalVariable, &r.VariableList)
	c.IndexList(TableLocalConstant, &r.ConstantList)
	c.U32(&r.StartOffset)
	c.U32(&r.Length)
}

// LocalVariableRaw is a portable-PDB local variable record.
type LocalVariableRaw struct {
	Attributes uint16
	Index      uint16
	Name       uint32
}

func (*LocalVariableRaw) Kind() TableID { return TableLocalVariable }
func (r *LocalVariableRaw) codec(c coder) {
	c.U16(&r.Attributes)
	c.U16(&r.Index)
	c.StringRef(&r.Name)
}

// LocalConstantRaw is a portable-PDB local constant record.
type LocalConstantRaw struct {
	Name      uint32
	Signature uint32
}

func (*LocalConstantRaw) Kind() TableID { return TableLocalConstant }
func (r *LocalConstantRaw) codec(c coder) {
	c.StringRef(&r.Name)
	c.BlobRef(&r.Signature)
}

// ImportScopeRaw is a portable-PDB import scope record.
type ImportScopeRaw struct {
	Parent  uint32
	Imports uint32
}

func (*ImportScopeRaw) Kind() TableID { return TableImportScope }
func (r *ImportScopeRaw) codec(c coder) {
	c.Index(TableImportScope, &r.Parent)
	c.BlobRef(&r.Imports)
}

// StateMachineMethodRaw links an async state machine to its kickoff
// method.
type StateMachineMethodRaw struct {
	MoveNextMethod uint32
	KickoffMethod  uint32
}

func (*StateMachineMethodRaw) Kind() TableID { return TableStateMachineMethod }
func (r *StateMachineMethodRaw) codec(c coder) {
	c.Index(TableMethodDef, &r.MoveNextMethod)
	c.Index(TableMethodDef, &r.KickoffMethod)
}

// CustomDebugInformationRaw is a portable-PDB custom debug record.
type CustomDebugInformationRaw struct {
	Parent   CodedIndex
	KindGuid uint32
	Value    uint32
}

func (*CustomDebugInformationRaw) Kind() TableID { return TableCustomDebugInformation }
func (r *CustomDebugInformationRaw) codec(c coder) {
	c.Coded(CodedHasCustomDebugInformation, &r.Parent)
	c.GuidRef(&r.KindGuid)
	c.BlobRef(&r.Value)
}

// newRawRow returns a zero row of the given kind, or nil for unknown ids.
func newRawRow(id TableID) Row {
	switch id {
	case TableModule:
		return &ModuleRaw{}
	case TableTypeRef:
		return &TypeRefRaw{}
	case TableTypeDef:
		return &TypeDefRaw{}
	case TableFieldPtr:
		return &FieldPtrRaw{}
	case TableField:
		return &FieldRaw{}
	case TableMethodPtr:
		return &MethodPtrRaw{}
	case TableMethodDef:
		return &MethodDefRaw{}
	case TableParamPtr:
		return &ParamPtrRaw{}
	case TableParam:
		return &ParamRaw{}
	case TableInterfaceImpl:
		return &InterfaceImplRaw{}
	case TableMemberRef:
		return &MemberRefRaw{}
	case TableConstant:
		return &ConstantRaw{}
	case TableCustomAttribute:
		return &CustomAttributeRaw{}
	case TableFieldMarshal:
		return &FieldMarshalRaw{}
	case TableDeclSecurity:
		return &DeclSecurityRaw{}
	case TableClassLayout:
		return &ClassLayoutRaw{}
	case TableFieldLayout:
		return &FieldLayoutRaw{}
	case TableStandAloneSig:
		return &StandAloneSigRaw{}
	case TableEventMap:
		return &EventMapRaw{}
	case TableEventPtr:
		return &EventPtrRaw{}
	case TableEvent:
		return &EventRaw{}
	case TablePropertyMap:
		return &PropertyMapRaw{}
	case TablePropertyPtr:
		return &PropertyPtrRaw{}
	case TableProperty:
		return &PropertyRaw{}
	case TableMethodSemantics:
		return &MethodSemanticsRaw{}
	case TableMethodImpl:
		return &MethodImplRaw{}
	case TableModuleRef:
		return &ModuleRefRaw{}
	case TableTypeSpec:
		return &TypeSpecRaw{}
	case TableImplMap:
		return &ImplMapRaw{}
	case TableFieldRVA:
		return &FieldRVARaw{}
	case TableEncLog:
		return &EncLogRaw{}
	case TableEncMap:
		return &EncMapRaw{}
	case TableAssembly:
		return &AssemblyRaw{}
	case TableAssemblyProcessor:
		return &AssemblyProcessorRaw{}
	case TableAssemblyOS:
		return &AssemblyOSRaw{}
	case TableAssemblyRef:
		return &AssemblyRefRaw{}
	case TableAssemblyRefProcessor:
		return &AssemblyRefProcessorRaw{}
	case TableAssemblyRefOS:
		return &AssemblyRefOSRaw{}
	case TableFile:
		return &FileRaw{}
	case TableExportedType:
		return &ExportedTypeRaw{}
	case TableManifestResource:
		return &ManifestResourceRaw{}
	case TableNestedClass:
		return &NestedClassRaw{}
	case TableGenericParam:
		return &GenericParamRaw{}
	case TableMethodSpec:
		return &MethodSpecRaw{}
	case TableGenericParamConstraint:
		return &GenericParamConstraintRaw{}
	case TableDocument:
		return &DocumentRaw{}
	case TableMethodDebugInformation:
		return &MethodDebugInformationRaw{}
	case TableLocalScope:
		return &LocalScopeRaw{}
	case TableLocalVariable:
		return &LocalVariableRaw{}
	case TableLocalConstant:
		return &LocalConstantRaw{}
	case TableImportScope:
		return &ImportScopeRaw{}
	case TableStateMachineMethod:
		return &StateMachineMethodRaw{}
	case TableCustomDebugInformation:
		return &CustomDebugInformationRaw{}
	default:
		return nil
	}
}

// NewRow returns a zero raw row for id, for use by builders.
func NewRow(id TableID) Row {
	return newRawRow(id)
}
