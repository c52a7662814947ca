package builder

import (
	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
)

// Fluent row builders. Each validates its required fields before
// allocating a token, so a failed Build leaves the context untouched.

func missing(table, field string) error {
	return errors.Malformed(errors.PhaseBuild, "%s: %s is required", table, field)
}

// codedRef validates that tok's table belongs to the coded-index family
// and returns the reference. The nil token is the null reference.
func codedRef(kind cil.CodedIndexKind, tok cil.Token) (cil.CodedIndex, error) {
	if tok.IsNil() {
		return cil.CodedIndex{}, nil
	}
	ci := cil.CodedIndex{Tag: tok.Table(), Row: tok.RID()}
	if _, err := cil.EncodeCodedIndex(kind, ci); err != nil {
		return cil.CodedIndex{}, errors.New(errors.PhaseBuild, errors.KindLayout).
			Token(tok.Value()).
			Detail("table %s is not a member of the %s family", tok.Table(), kind).
			Build()
	}
	return ci, nil
}

// TypeRefBuilder builds a TypeRef row.
type TypeRefBuilder struct {
	scope     cil.Token
	name      string
	namespace string
}

func NewTypeRef() *TypeRefBuilder { return &TypeRefBuilder{} }

// ResolutionScope sets the scope token (Module, ModuleRef, AssemblyRef or
// TypeRef).
func (b *TypeRefBuilder) ResolutionScope(tok cil.Token) *TypeRefBuilder {
	b.scope = tok
	return b
}

func (b *TypeRefBuilder) Name(name string) *TypeRefBuilder { b.name = name; return b }

func (b *TypeRefBuilder) Namespace(ns string) *TypeRefBuilder { b.namespace = ns; return b }

func (b *TypeRefBuilder) Build(c *Context) (cil.Token, error) {
	if b.name == "" {
		return 0, missing("TypeRef", "name")
	}
	scope, err := codedRef(cil.CodedResolutionScope, b.scope)
	if err != nil {
		return 0, err
	}
	return c.AddRow(&cil.TypeRefRaw{
		ResolutionScope: scope,
		Name:            c.AddString(b.name),
		Namespace:       c.AddString(b.namespace),
	})
}

// TypeDefBuilder builds a TypeDef row. Its member lists default to the
// current table ends, the empty-member convention.
type TypeDefBuilder struct {
	flags      uint32
	name       string
	namespace  string
	extends    cil.Token
	fieldList  uint32
	methodList uint32
}

func NewTypeDef() *TypeDefBuilder { return &TypeDefBuilder{} }

func (b *TypeDefBuilder) Flags(flags uint32) *TypeDefBuilder { b.flags = flags; return b }

func (b *TypeDefBuilder) Name(name string) *TypeDefBuilder { b.name = name; return b }

func (b *TypeDefBuilder) Namespace(ns string) *TypeDefBuilder { b.namespace = ns; return b }

// Extends sets the base type (TypeDef, TypeRef or TypeSpec token).
func (b *TypeDefBuilder) Extends(tok cil.Token) *TypeDefBuilder { b.extends = tok; return b }

// FieldList overrides the first owned Field rid.
func (b *TypeDefBuilder) FieldList(rid uint32) *TypeDefBuilder { b.fieldList = rid; return b }

// MethodList overrides the first owned MethodDef rid.
func (b *TypeDefBuilder) MethodList(rid uint32) *TypeDefBuilder { b.methodList = rid; return b }

func (b *TypeDefBuilder) Build(c *Context) (cil.Token, error) {
	if b.name == "" {
		return 0, missing("TypeDef", "name")
	}
	extends, err := codedRef(cil.CodedTypeDefOrRef, b.extends)
	if err != nil {
		return 0, err
	}
	fieldList := b.fieldList
	if fieldList == 0 {
		fieldList = c.NextRID(cil.TableField)
	}
	methodList := b.methodList
	if methodList == 0 {
		methodList = c.NextRID(cil.TableMethodDef)
	}
	return c.AddRow(&cil.TypeDefRaw{
		Flags:      b.flags,
		Name:       c.AddString(b.name),
		Namespace:  c.AddString(b.namespace),
		Extends:    extends,
		FieldList:  fieldList,
		MethodList: methodList,
	})
}

// FieldBuilder builds a Field row.
type FieldBuilder struct {
	flags     uint16
	name      string
	signature []byte
}

func NewField() *FieldBuilder { return &FieldBuilder{} }

func (b *FieldBuilder) Flags(flags uint16) *FieldBuilder { b.flags = flags; return b }

func (b *FieldBuilder) Name(name string) *FieldBuilder { b.name = name; return b }

func (b *FieldBuilder) Signature(sig []byte) *FieldBuilder { b.signature = sig; return b }

func (b *FieldBuilder) Build(c *Context) (cil.Token, error) {
	if b.name == "" {
		return 0, missing("Field", "name")
	}
	if len(b.signature) == 0 {
		return 0, missing("Field", "signature")
	}
	sig, err := c.AddBlob(b.signature)
	if err != nil {
		return 0, err
	}
	return c.AddRow(&cil.FieldRaw{Flags: b.flags, Name: c.AddString(b.name), Signature: sig})
}

// MethodDefBuilder builds a MethodDef row.
type MethodDefBuilder struct {
	rva       uint32
	implFlags uint16
	flags     uint16
	name      string
	signature []byte
	paramList uint32
}

func NewMethodDef() *MethodDefBuilder { return &MethodDefBuilder{} }

func (b *MethodDefBuilder) RVA(rva uint32) *MethodDefBuilder { b.rva = rva; return b }

func (b *MethodDefBuilder) ImplFlags(f uint16) *MethodDefBuilder { b.implFlags = f; return b }

func (b *MethodDefBuilder) Flags(f uint16) *MethodDefBuilder { b.flags = f; return b }

func (b *MethodDefBuilder) Name(name string) *MethodDefBuilder { b.name = name; return b }

func (b *MethodDefBuilder) Signature(sig []byte) *MethodDefBuilder { b.signature = sig; return b }

// ParamList overrides the first owned Param rid.
func (b *MethodDefBuilder) ParamList(rid uint32) *MethodDefBuilder { b.paramList = rid; return b }

func (b *MethodDefBuilder) Build(c *Context) (cil.Token, error) {
	if b.name == "" {
		return 0, missing("MethodDef", "name")
	}
	if len(b.signature) == 0 {
		return 0, missing("MethodDef", "signature")
	}
	sig, err := c.AddBlob(b.signature)
	if err != nil {
		return 0, err
	}
	paramList := b.paramList
	if paramList == 0 {
		paramList = c.NextRID(cil.TableParam)
	}
	return c.AddRow(&cil.MethodDefRaw{
		RVA:       b.rva,
		ImplFlags: b.implFlags,
		Flags:     b.flags,
		Name:      c.AddString(b.name),
		Signature: sig,
		ParamList: paramList,
	})
}

// ParamBuilder builds a Param row.
type ParamBuilder struct {
	flags    uint16
	sequence uint16
	name     string
}

func NewParam() *ParamBuilder { return &ParamBuilder{} }

func (b *ParamBuilder) Flags(flags uint16) *ParamBuilder { b.flags = flags; return b }

// Sequence sets the 1-based parameter position; 0 is the return value.
func (b *ParamBuilder) Sequence(seq uint16) *ParamBuilder { b.sequence = seq; return b }

func (b *ParamBuilder) Name(name string) *ParamBuilder { b.name = name; return b }

func (b *ParamBuilder) Build(c *Context) (cil.Token, error) {
	return c.AddRow(&cil.ParamRaw{Flags: b.flags, Sequence: b.sequence, Name: c.AddString(b.name)})
}

// MemberRefBuilder builds a MemberRef row.
type MemberRefBuilder struct {
	class     cil.Token
	name      string
	signature []byte
}

func NewMemberRef() *MemberRefBuilder { return &MemberRefBuilder{} }

// Class sets the declaring scope (TypeDef, TypeRef, ModuleRef, MethodDef
// or TypeSpec token).
func (b *MemberRefBuilder) Class(tok cil.Token) *MemberRefBuilder { b.class = tok; return b }

func (b *MemberRefBuilder) Name(name string) *MemberRefBuilder { b.name = name; return b }

func (b *MemberRefBuilder) Signature(sig []byte) *MemberRefBuilder { b.signature = sig; return b }

func (b *MemberRefBuilder) Build(c *Context) (cil.Token, error) {
	if b.class.IsNil() {
		return 0, missing("MemberRef", "class")
	}
	if b.name == "" {
		return 0, missing("MemberRef", "name")
	}
	if len(b.signature) == 0 {
		return 0, missing("MemberRef", "signature")
	}
	class, err := codedRef(cil.CodedMemberRefParent, b.class)
	if err != nil {
		return 0, err
	}
	sig, err := c.AddBlob(b.signature)
	if err != nil {
		return 0, err
	}
	return c.AddRow(&cil.MemberRefRaw{Class: class, Name: c.AddString(b.name), Signature: sig})
}

// ModuleRefBuilder builds a ModuleRef row.
type ModuleRefBuilder struct {
	name string
}

func NewModuleRef() *ModuleRefBuilder { return &ModuleRefBuilder{} }

func (b *ModuleRefBuilder) Name(name string) *ModuleRefBuilder { b.name = name; return b }

func (b *ModuleRefBuilder) Build(c *Context) (cil.Token, error) {
	if b.name == "" {
		return 0, missing("ModuleRef", "name")
	}
	return c.AddRow(&cil.ModuleRefRaw{Name: c.AddString(b.name)})
}

// AssemblyRefBuilder builds an AssemblyRef row.
type AssemblyRefBuilder struct {
	version          [4]uint16
	flags            uint32
	publicKeyOrToken []byte
	name             string
	culture          string
	hash             []byte
}

func NewAssemblyRef() *AssemblyRefBuilder { return &AssemblyRefBuilder{} }

func (b *AssemblyRefBuilder) Version(major, minor, build, revision uint16) *AssemblyRefBuilder {
	b.version = [4]uint16{major, minor, build, revision}
	return b
}

func (b *AssemblyRefBuilder) Flags(flags uint32) *AssemblyRefBuilder { b.flags = flags; return b }

func (b *AssemblyRefBuilder) PublicKeyOrToken(pk []byte) *AssemblyRefBuilder {
	b.publicKeyOrToken = pk
	return b
}

func (b *AssemblyRefBuilder) Name(name string) *AssemblyRefBuilder { b.name = name; return b }

func (b *AssemblyRefBuilder) Culture(culture string) *AssemblyRefBuilder {
	b.culture = culture
	return b
}

func (b *AssemblyRefBuilder) Hash(hash []byte) *AssemblyRefBuilder { b.hash = hash; return b }

func (b *AssemblyRefBuilder) Build(c *Context) (cil.Token, error) {
	if b.name == "" {
		return 0, missing("AssemblyRef", "name")
	}
	pk, err := c.AddBlob(b.publicKeyOrToken)
	if err != nil {
		return 0, err
	}
	hash, err := c.AddBlob(b.hash)
	if err != nil {
		return 0, err
	}
	return c.AddRow(&cil.AssemblyRefRaw{
		MajorVersion:     b.version[0],
		MinorVersion:     b.version[1],
		BuildNumber:      b.version[2],
		RevisionNumber:   b.version[3],
		Flags:            b.flags,
		PublicKeyOrToken: pk,
		Name:             c.AddString(b.name),
		Culture:          c.AddString(b.culture),
		HashValue:        hash,
	})
}

// CustomAttributeBuilder builds a CustomAttribute row.
type CustomAttributeBuilder struct {
	parent cil.Token
	ctor   cil.Token
	value  []byte
}

func NewCustomAttribute() *CustomAttributeBuilder { return &CustomAttributeBuilder{} }

// Parent sets the attributed row.
func (b *CustomAttributeBuilder) Parent(tok cil.Token) *CustomAttributeBuilder {
	b.parent = tok
	return b
}

// Constructor sets the attribute constructor (MethodDef or MemberRef
// token).
func (b *CustomAttributeBuilder) Constructor(tok cil.Token) *CustomAttributeBuilder {
	b.ctor = tok
	return b
}

func (b *CustomAttributeBuilder) Value(value []byte) *CustomAttributeBuilder {
	b.value = value
	return b
}

func (b *CustomAttributeBuilder) Build(c *Context) (cil.Token, error) {
	if b.parent.IsNil() {
		return 0, missing("CustomAttribute", "parent")
	}
	if b.ctor.IsNil() {
		return 0, missing("CustomAttribute", "constructor")
	}
	parent, err := codedRef(cil.CodedHasCustomAttribute, b.parent)
	if err != nil {
		return 0, err
	}
	ctor, err := codedRef(cil.CodedCustomAttributeType, b.ctor)
	if err != nil {
		return 0, err
	}
	value, err := c.AddBlob(b.value)
	if err != nil {
		return 0, err
	}
	return c.AddRow(&cil.CustomAttributeRaw{Parent: parent, Type: ctor, Value: value})
}

// StandAloneSigBuilder builds a StandAloneSig row.
type StandAloneSigBuilder struct {
	signature []byte
}

func NewStandAloneSig() *StandAloneSigBuilder { return &StandAloneSigBuilder{} }

func (b *StandAloneSigBuilder) Signature(sig []byte) *StandAloneSigBuilder {
	b.signature = sig
	return b
}

func (b *StandAloneSigBuilder) Build(c *Context) (cil.Token, error) {
	if len(b.signature) == 0 {
		return 0, missing("StandAloneSig", "signature")
	}
	sig, err := c.AddBlob(b.signature)
	if err != nil {
		return 0, err
	}
	return c.AddRow(&cil.StandAloneSigRaw{Signature: sig})
}
