package loader

import (
	"github.com/google/uuid"

	"github.com/cilforge/cilmeta/cil"
)

// Ref is a resolved cross reference. Token identifies the target row and
// Value holds the owned row itself (*TypeDef, *MethodDef, ...). The zero
// Ref is the explicit None used where a coded index carries the null
// sentinel.
type Ref struct {
	Token cil.Token
	Value any
}

// IsNone reports whether the reference is the explicit null.
func (r Ref) IsNone() bool { return r.Value == nil }

// Module is the owned Module row.
type Module struct {
	Token      cil.Token
	Generation uint16
	Name       string
	Mvid       uuid.UUID
	EncID      uuid.UUID
	EncBaseID  uuid.UUID
}

// TypeRef is a reference to a type defined in another scope.
type TypeRef struct {
	Token           cil.Token
	ResolutionScope Ref // Module, ModuleRef, AssemblyRef or TypeRef; None for exported-type lookup
	Name            string
	Namespace       string
}

// TypeDef is a type defined in this image, with its members sliced from
// the list columns.
type TypeDef struct {
	Token     cil.Token
	Flags     uint32
	Name      string
	Namespace string
	Extends   Ref // TypeDef, TypeRef or TypeSpec; None for interfaces and <Module>

	Fields  []*Field
	Methods []*MethodDef

	Interfaces    []*InterfaceImpl
	NestedTypes   []*TypeDef
	Enclosing     *TypeDef // nil for top-level types
	GenericParams []*GenericParam
}

// FullName returns "Namespace.Name", or just Name when the namespace is
// empty.
func (t *TypeDef) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Field is an owned Field row.
type Field struct {
	Token     cil.Token
	Flags     uint16
	Name      string
	Signature []byte
	Parent    *TypeDef
}

// MethodDef is an owned MethodDef row with its parameters.
type MethodDef struct {
	Token     cil.Token
	RVA       uint32
	ImplFlags uint16
	Flags     uint16
	Name      string
	Signature []byte
	Params    []*Param
	Parent    *TypeDef

	GenericParams []*GenericParam
}

// Param is an owned Param row.
type Param struct {
	Token    cil.Token
	Flags    uint16
	Sequence uint16
	Name     string
}

// InterfaceImpl records that Class implements Interface.
type InterfaceImpl struct {
	Token     cil.Token
	Class     *TypeDef
	Interface Ref // TypeDef, TypeRef or TypeSpec
}

// MemberRef is a reference to a member of another type or module.
type MemberRef struct {
	Token     cil.Token
	Class     Ref // TypeDef, TypeRef, ModuleRef, MethodDef or TypeSpec
	Name      string
	Signature []byte
}

// Constant is a compile-time constant attached to a field, parameter or
// property.
type Constant struct {
	Token  cil.Token
	Type   uint8
	Parent Ref // Field, Param or Property token
	Value  []byte
}

// CustomAttribute is an attribute instance attached to Parent.
type CustomAttribute struct {
	Token  cil.Token
	Parent Ref
	Type   Ref // MethodDef or MemberRef constructor
	Value  []byte
}

// ModuleRef names another module of the same assembly.
type ModuleRef struct {
	Token cil.Token
	Name  string
}

// TypeSpec is a type described by signature only.
type TypeSpec struct {
	Token     cil.Token
	Signature []byte
}

// AssemblyInfo is the owned Assembly identity row.
type AssemblyInfo struct {
	Token          cil.Token
	HashAlgID      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32
	PublicKey      []byte
	Name           string
	Culture        string
}

// AssemblyRef names a referenced assembly.
type AssemblyRef struct {
	Token            cil.Token
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
	Flags            uint32
	PublicKeyOrToken []byte
	Name             string
	Culture          string
	HashValue        []byte
}

// File names a file of the assembly manifest.
type File struct {
	Token     cil.Token
	Flags     uint32
	Name      string
	HashValue []byte
}

// ExportedType is a type forwarded or exported from another module.
type ExportedType struct {
	Token          cil.Token
	Flags          uint32
	TypeDefID      uint32
	Name           string
	Namespace      string
	Implementation Ref // File, AssemblyRef or ExportedType
}

// ManifestResource names an embedded or linked resource.
type ManifestResource struct {
	Token          cil.Token
	Offset         uint32
	Flags          uint32
	Name           string
	Implementation Ref // None for embedded resources
}

// NestedClass records the containment of Nested inside Enclosing.
type NestedClass struct {
	Token     cil.Token
	Nested    *TypeDef
	Enclosing *TypeDef
}

// GenericParam is a generic parameter of a type or method.
type GenericParam struct {
	Token  cil.Token
	Number uint16
	Flags  uint16
	Owner  Ref // TypeDef or MethodDef
	Name   string

	Constraints []*GenericParamConstraint
}

// GenericParamConstraint constrains a generic parameter to a type.
type GenericParamConstraint struct {
	Token      cil.Token
	Owner      *GenericParam
	Constraint Ref // TypeDef, TypeRef or TypeSpec
}

// MethodSpec is an instantiation of a generic method.
type MethodSpec struct {
	Token         cil.Token
	Method        Ref // MethodDef or MemberRef
	Instantiation []byte
}

// Assembly is the fully resolved object graph of one metadata image.
// Tables without an owned representation stay reachable through Raw.
type Assembly struct {
	Raw *cil.Image

	Module *Module
	Info   *AssemblyInfo // nil for netmodules

	TypeRefs                []*TypeRef
	TypeDefs                []*TypeDef
	Fields                  []*Field
	Methods                 []*MethodDef
	Params                  []*Param
	InterfaceImpls          []*InterfaceImpl
	MemberRefs              []*MemberRef
	Constants               []*Constant
	CustomAttributes        []*CustomAttribute
	ModuleRefs              []*ModuleRef
	TypeSpecs               []*TypeSpec
	AssemblyRefs            []*AssemblyRef
	Files                   []*File
	ExportedTypes           []*ExportedType
	Resources               []*ManifestResource
	NestedClasses           []*NestedClass
	GenericParams           []*GenericParam
	GenericParamConstraints []*GenericParamConstraint
	MethodSpecs             []*MethodSpec

	reg *registry
}

// Lookup resolves a token to its owned row, when the table has an owned
// representation.
func (a *Assembly) Lookup(tok cil.Token) (any, bool) {
	return a.reg.lookup(tok)
}

// TypeDef resolves a TypeDef token.
func (a *Assembly) TypeDef(tok cil.Token) (*TypeDef, bool) {
	return lookupAs[TypeDef](a.reg, tok)
}

// MethodDef resolves a MethodDef token.
func (a *Assembly) MethodDef(tok cil.Token) (*MethodDef, bool) {
	return lookupAs[MethodDef](a.reg, tok)
}

// Field resolves a Field token.
func (a *Assembly) Field(tok cil.Token) (*Field, bool) {
	return lookupAs[Field](a.reg, tok)
}
