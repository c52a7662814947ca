package loader

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
)

// stages groups tables so that a materializer only runs once every table
// it slices into is complete: Param before MethodDef, Field and MethodDef
// before TypeDef, TypeDef before the tables that point straight at it.
var stages = [][]cil.TableID{
	{
		cil.TableModule, cil.TableTypeRef, cil.TableField, cil.TableParam,
		cil.TableMemberRef, cil.TableConstant, cil.TableCustomAttribute,
		cil.TableModuleRef, cil.TableTypeSpec, cil.TableAssembly,
		cil.TableAssemblyRef, cil.TableFile, cil.TableExportedType,
		cil.TableManifestResource, cil.TableMethodSpec,
	},
	{cil.TableMethodDef},
	{cil.TableTypeDef},
	{cil.TableInterfaceImpl, cil.TableNestedClass, cil.TableGenericParam},
	{cil.TableGenericParamConstraint},
}

type state struct {
	img *cil.Image
	reg *registry
	asm *Assembly
}

// Load resolves a parsed image into an owned Assembly.
func Load(img *cil.Image) (*Assembly, error) {
	start := time.Now()
	st := &state{img: img, reg: newRegistry(), asm: &Assembly{Raw: img}}
	st.asm.reg = st.reg

	for i, stage := range stages {
		stageStart := time.Now()
		var g errgroup.Group
		for _, id := range stage {
			fn := materializers[id]
			g.Go(func() error { return fn(st) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		Logger().Debug("materialize stage complete",
			zap.Int("stage", i),
			zap.Duration("elapsed", time.Since(stageStart)))
	}

	res := st.asm.Resolver()
	var g errgroup.Group
	for _, fn := range resolvePasses {
		fn := fn
		g.Go(func() error { return fn(st, res) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st.link()

	Logger().Debug("load complete",
		zap.Int("types", len(st.asm.TypeDefs)),
		zap.Int("methods", len(st.asm.Methods)),
		zap.Duration("elapsed", time.Since(start)))
	return st.asm, nil
}

// Resolver returns a coded-index resolver over the assembly's registry.
func (a *Assembly) Resolver() *Resolver {
	return &Resolver{reg: a.reg}
}

// heap access with resolve-phase error context

func (st *state) str(off uint32, tok cil.Token) (string, error) {
	s, err := st.img.Strings.Get(off)
	if err != nil {
		return "", heapError(tok, "strings", err)
	}
	return s, nil
}

func (st *state) blob(off uint32, tok cil.Token) ([]byte, error) {
	b, err := st.img.Blob.Get(off)
	if err != nil {
		return nil, heapError(tok, "blob", err)
	}
	return b, nil
}

func (st *state) guid(idx uint32, tok cil.Token) (uuid.UUID, error) {
	if idx == 0 {
		return uuid.Nil, nil
	}
	g, err := st.img.Guid.Get(idx)
	if err != nil {
		return uuid.Nil, heapError(tok, "guid", err)
	}
	return g, nil
}

func heapError(tok cil.Token, heap string, cause error) error {
	return errors.New(errors.PhaseResolve, errors.KindMalformed).
		Token(tok.Value()).
		Path("heap", heap).
		Cause(cause).
		Detail("heap lookup failed").
		Build()
}

// listRange turns a list column into a [start, end) rid range. start is
// row i's value, next is row i+1's (or 0 when i is the last row) and
// total is the target table's row count.
func listRange(source cil.Token, start, next, total uint32) (uint32, uint32, error) {
	end := next
	if end == 0 {
		end = total + 1
	}
	if start == 0 || start > total+1 || end < start || end > total+1 {
		return 0, 0, errors.New(errors.PhaseResolve, errors.KindOutOfBounds).
			Token(source.Value()).
			Detail("list range [%d, %d) exceeds target table of %d rows", start, end, total).
			Build()
	}
	return start, end, nil
}

func rawRows(st *state, id cil.TableID) []cil.Row {
	return st.img.Tables.Rows(id)
}

var materializers = map[cil.TableID]func(*state) error{
	cil.TableModule:                 materializeModule,
	cil.TableTypeRef:                materializeTypeRef,
	cil.TableField:                  materializeField,
	cil.TableParam:                  materializeParam,
	cil.TableMemberRef:              materializeMemberRef,
	cil.TableConstant:               materializeConstant,
	cil.TableCustomAttribute:        materializeCustomAttribute,
	cil.TableModuleRef:              materializeModuleRef,
	cil.TableTypeSpec:               materializeTypeSpec,
	cil.TableAssembly:               materializeAssembly,
	cil.TableAssemblyRef:            materializeAssemblyRef,
	cil.TableFile:                   materializeFile,
	cil.TableExportedType:           materializeExportedType,
	cil.TableManifestResource:       materializeManifestResource,
	cil.TableMethodSpec:             materializeMethodSpec,
	cil.TableMethodDef:              materializeMethodDef,
	cil.TableTypeDef:                materializeTypeDef,
	cil.TableInterfaceImpl:          materializeInterfaceImpl,
	cil.TableNestedClass:            materializeNestedClass,
	cil.TableGenericParam:           materializeGenericParam,
	cil.TableGenericParamConstraint: materializeGenericParamConstraint,
}

func materializeModule(st *state) error {
	for i, row := range rawRows(st, cil.TableModule) {
		raw := row.(*cil.ModuleRaw)
		tok := cil.NewToken(cil.TableModule, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		mvid, err := st.guid(raw.Mvid, tok)
		if err != nil {
			return err
		}
		encID, err := st.guid(raw.EncID, tok)
		if err != nil {
			return err
		}
		encBase, err := st.guid(raw.EncBaseID, tok)
		if err != nil {
			return err
		}
		m := &Module{Token: tok, Generation: raw.Generation, Name: name, Mvid: mvid, EncID: encID, EncBaseID: encBase}
		if err := st.reg.insert(tok, m); err != nil {
			return err
		}
		if st.asm.Module == nil {
			st.asm.Module = m
		}
	}
	return nil
}

func materializeTypeRef(st *state) error {
	for i, row := range rawRows(st, cil.TableTypeRef) {
		raw := row.(*cil.TypeRefRaw)
		tok := cil.NewToken(cil.TableTypeRef, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		ns, err := st.str(raw.Namespace, tok)
		if err != nil {
			return err
		}
		tr := &TypeRef{Token: tok, Name: name, Namespace: ns}
		if err := st.reg.insert(tok, tr); err != nil {
			return err
		}
		st.asm.TypeRefs = append(st.asm.TypeRefs, tr)
	}
	return nil
}

func materializeField(st *state) error {
	for i, row := range rawRows(st, cil.TableField) {
		raw := row.(*cil.FieldRaw)
		tok := cil.NewToken(cil.TableField, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		sig, err := st.blob(raw.Signature, tok)
		if err != nil {
			return err
		}
		f := &Field{Token: tok, Flags: raw.Flags, Name: name, Signature: sig}
		if err := st.reg.insert(tok, f); err != nil {
			return err
		}
		st.asm.Fields = append(st.asm.Fields, f)
	}
	return nil
}

func materializeParam(st *state) error {
	for i, row := range rawRows(st, cil.TableParam) {
		raw := row.(*cil.ParamRaw)
		tok := cil.NewToken(cil.TableParam, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		p := &Param{Token: tok, Flags: raw.Flags, Sequence: raw.Sequence, Name: name}
		if err := st.reg.insert(tok, p); err != nil {
			return err
		}
		st.asm.Params = append(st.asm.Params, p)
	}
	return nil
}

func materializeMethodDef(st *state) error {
	rows := rawRows(st, cil.TableMethodDef)
	paramTotal := st.img.Tables.RowCount(cil.TableParam)
	for i, row := range rows {
		raw := row.(*cil.MethodDefRaw)
		tok := cil.NewToken(cil.TableMethodDef, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		sig, err := st.blob(raw.Signature, tok)
		if err != nil {
			return err
		}
		var next uint32
		if i+1 < len(rows) {
			next = rows[i+1].(*cil.MethodDefRaw).ParamList
		}
		lo, hi, err := listRange(tok, raw.ParamList, next, paramTotal)
		if err != nil {
			return err
		}
		m := &MethodDef{
			Token: tok, RVA: raw.RVA, ImplFlags: raw.ImplFlags, Flags: raw.Flags,
			Name: name, Signature: sig,
			Params: st.asm.Params[lo-1 : hi-1],
		}
		if err := st.reg.insert(tok, m); err != nil {
			return err
		}
		st.asm.Methods = append(st.asm.Methods, m)
	}
	return nil
}

func materializeTypeDef(st *state) error {
	rows := rawRows(st, cil.TableTypeDef)
	fieldTotal := st.img.Tables.RowCount(cil.TableField)
	methodTotal := st.img.Tables.RowCount(cil.TableMethodDef)
	for i, row := range rows {
		raw := row.(*cil.TypeDefRaw)
		tok := cil.NewToken(cil.TableTypeDef, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		ns, err := st.str(raw.Namespace, tok)
		if err != nil {
			return err
		}
		var nextField, nextMethod uint32
		if i+1 < len(rows) {
			nextField = rows[i+1].(*cil.TypeDefRaw).FieldList
			nextMethod = rows[i+1].(*cil.TypeDefRaw).MethodList
		}
		flo, fhi, err := listRange(tok, raw.FieldList, nextField, fieldTotal)
		if err != nil {
			return err
		}
		mlo, mhi, err := listRange(tok, raw.MethodList, nextMethod, methodTotal)
		if err != nil {
			return err
		}
		td := &TypeDef{
			Token: tok, Flags: raw.Flags, Name: name, Namespace: ns,
			Fields:  st.asm.Fields[flo-1 : fhi-1],
			Methods: st.asm.Methods[mlo-1 : mhi-1],
		}
		for _, f := range td.Fields {
			f.Parent = td
		}
		for _, m := range td.Methods {
			m.Parent = td
		}
		if err := st.reg.insert(tok, td); err != nil {
			return err
		}
		st.asm.TypeDefs = append(st.asm.TypeDefs, td)
	}
	return nil
}

func materializeMemberRef(st *state) error {
	for i, row := range rawRows(st, cil.TableMemberRef) {
		raw := row.(*cil.MemberRefRaw)
		tok := cil.NewToken(cil.TableMemberRef, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		sig, err := st.blob(raw.Signature, tok)
		if err != nil {
			return err
		}
		mr := &MemberRef{Token: tok, Name: name, Signature: sig}
		if err := st.reg.insert(tok, mr); err != nil {
			return err
		}
		st.asm.MemberRefs = append(st.asm.MemberRefs, mr)
	}
	return nil
}

func materializeConstant(st *state) error {
	for i, row := range rawRows(st, cil.TableConstant) {
		raw := row.(*cil.ConstantRaw)
		tok := cil.NewToken(cil.TableConstant, uint32(i+1))
		value, err := st.blob(raw.Value, tok)
		if err != nil {
			return err
		}
		c := &Constant{Token: tok, Type: raw.Type, Value: value}
		if err := st.reg.insert(tok, c); err != nil {
			return err
		}
		st.asm.Constants = append(st.asm.Constants, c)
	}
	return nil
}

func materializeCustomAttribute(st *state) error {
	for i, row := range rawRows(st, cil.TableCustomAttribute) {
		raw := row.(*cil.CustomAttributeRaw)
		tok := cil.NewToken(cil.TableCustomAttribute, uint32(i+1))
		value, err := st.blob(raw.Value, tok)
		if err != nil {
			return err
		}
		ca := &CustomAttribute{Token: tok, Value: value}
		if err := st.reg.insert(tok, ca); err != nil {
			return err
		}
		st.asm.CustomAttributes = append(st.asm.CustomAttributes, ca)
	}
	return nil
}

func materializeModuleRef(st *state) error {
	for i, row := range rawRows(st, cil.TableModuleRef) {
		raw := row.(*cil.ModuleRefRaw)
		tok := cil.NewToken(cil.TableModuleRef, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		mr := &ModuleRef{Token: tok, Name: name}
		if err := st.reg.insert(tok, mr); err != nil {
			return err
		}
		st.asm.ModuleRefs = append(st.asm.ModuleRefs, mr)
	}
	return nil
}

func materializeTypeSpec(st *state) error {
	for i, row := range rawRows(st, cil.TableTypeSpec) {
		raw := row.(*cil.TypeSpecRaw)
		tok := cil.NewToken(cil.TableTypeSpec, uint32(i+1))
		sig, err := st.blob(raw.Signature, tok)
		if err != nil {
			return err
		}
		ts := &TypeSpec{Token: tok, Signature: sig}
		if err := st.reg.insert(tok, ts); err != nil {
			return err
		}
		st.asm.TypeSpecs = append(st.asm.TypeSpecs, ts)
	}
	return nil
}

func materializeAssembly(st *state) error {
	for i, row := range rawRows(st, cil.TableAssembly) {
		raw := row.(*cil.AssemblyRaw)
		tok := cil.NewToken(cil.TableAssembly, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		culture, err := st.str(raw.Culture, tok)
		if err != nil {
			return err
		}
		pk, err := st.blob(raw.PublicKey, tok)
		if err != nil {
			return err
		}
		info := &AssemblyInfo{
			Token: tok, HashAlgID: raw.HashAlgID,
			MajorVersion: raw.MajorVersion, MinorVersion: raw.MinorVersion,
			BuildNumber: raw.BuildNumber, RevisionNumber: raw.RevisionNumber,
			Flags: raw.Flags, PublicKey: pk, Name: name, Culture: culture,
		}
		if err := st.reg.insert(tok, info); err != nil {
			return err
		}
		if st.asm.Info == nil {
			st.asm.Info = info
		}
	}
	return nil
}

func materializeAssemblyRef(st *state) error {
	for i, row := range rawRows(st, cil.TableAssemblyRef) {
		raw := row.(*cil.AssemblyRefRaw)
		tok := cil.NewToken(cil.TableAssemblyRef, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		culture, err := st.str(raw.Culture, tok)
		if err != nil {
			return err
		}
		pk, err := st.blob(raw.PublicKeyOrToken, tok)
		if err != nil {
			return err
		}
		hash, err := st.blob(raw.HashValue, tok)
		if err != nil {
			return err
		}
		ar := &AssemblyRef{
			Token: tok,
			MajorVersion: raw.MajorVersion, MinorVersion: raw.MinorVersion,
			BuildNumber: raw.BuildNumber, RevisionNumber: raw.RevisionNumber,
			Flags: raw.Flags, PublicKeyOrToken: pk, Name: name, Culture: culture,
			HashValue: hash,
		}
		if err := st.reg.insert(tok, ar); err != nil {
			return err
		}
		st.asm.AssemblyRefs = append(st.asm.AssemblyRefs, ar)
	}
	return nil
}

func materializeFile(st *state) error {
	for i, row := range rawRows(st, cil.TableFile) {
		raw := row.(*cil.FileRaw)
		tok := cil.NewToken(cil.TableFile, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		hash, err := st.blob(raw.HashValue, tok)
		if err != nil {
			return err
		}
		f := &File{Token: tok, Flags: raw.Flags, Name: name, HashValue: hash}
		if err := st.reg.insert(tok, f); err != nil {
			return err
		}
		st.asm.Files = append(st.asm.Files, f)
	}
	return nil
}

func materializeExportedType(st *state) error {
	for i, row := range rawRows(st, cil.TableExportedType) {
		raw := row.(*cil.ExportedTypeRaw)
		tok := cil.NewToken(cil.TableExportedType, uint32(i+1))
		name, err := st.str(raw.TypeName, tok)
		if err != nil {
			return err
		}
		ns, err := st.str(raw.TypeNamespace, tok)
		if err != nil {
			return err
		}
		et := &ExportedType{Token: tok, Flags: raw.Flags, TypeDefID: raw.TypeDefID, Name: name, Namespace: ns}
		if err := st.reg.insert(tok, et); err != nil {
			return err
		}
		st.asm.ExportedTypes = append(st.asm.ExportedTypes, et)
	}
	return nil
}

func materializeManifestResource(st *state) error {
	for i, row := range rawRows(st, cil.TableManifestResource) {
		raw := row.(*cil.ManifestResourceRaw)
		tok := cil.NewToken(cil.TableManifestResource, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		r := &ManifestResource{Token: tok, Offset: raw.Offset, Flags: raw.Flags, Name: name}
		if err := st.reg.insert(tok, r); err != nil {
			return err
		}
		st.asm.Resources = append(st.asm.Resources, r)
	}
	return nil
}

func materializeMethodSpec(st *state) error {
	for i, row := range rawRows(st, cil.TableMethodSpec) {
		raw := row.(*cil.MethodSpecRaw)
		tok := cil.NewToken(cil.TableMethodSpec, uint32(i+1))
		inst, err := st.blob(raw.Instantiation, tok)
		if err != nil {
			return err
		}
		ms := &MethodSpec{Token: tok, Instantiation: inst}
		if err := st.reg.insert(tok, ms); err != nil {
			return err
		}
		st.asm.MethodSpecs = append(st.asm.MethodSpecs, ms)
	}
	return nil
}

func materializeInterfaceImpl(st *state) error {
	for i, row := range rawRows(st, cil.TableInterfaceImpl) {
		raw := row.(*cil.InterfaceImplRaw)
		tok := cil.NewToken(cil.TableInterfaceImpl, uint32(i+1))
		class, ok := lookupAs[TypeDef](st.reg, cil.NewToken(cil.TableTypeDef, raw.Class))
		if !ok {
			return errors.Unresolved(tok.Value(), "interface implementation class does not exist")
		}
		ii := &InterfaceImpl{Token: tok, Class: class}
		if err := st.reg.insert(tok, ii); err != nil {
			return err
		}
		st.asm.InterfaceImpls = append(st.asm.InterfaceImpls, ii)
	}
	return nil
}

func materializeNestedClass(st *state) error {
	for i, row := range rawRows(st, cil.TableNestedClass) {
		raw := row.(*cil.NestedClassRaw)
		tok := cil.NewToken(cil.TableNestedClass, uint32(i+1))
		nested, ok := lookupAs[TypeDef](st.reg, cil.NewToken(cil.TableTypeDef, raw.NestedClass))
		if !ok {
			return errors.Unresolved(tok.Value(), "nested class does not exist")
		}
		enclosing, ok := lookupAs[TypeDef](st.reg, cil.NewToken(cil.TableTypeDef, raw.EnclosingClass))
		if !ok {
			return errors.Unresolved(tok.Value(), "enclosing class does not exist")
		}
		nc := &NestedClass{Token: tok, Nested: nested, Enclosing: enclosing}
		if err := st.reg.insert(tok, nc); err != nil {
			return err
		}
		st.asm.NestedClasses = append(st.asm.NestedClasses, nc)
	}
	return nil
}

func materializeGenericParam(st *state) error {
	for i, row := range rawRows(st, cil.TableGenericParam) {
		raw := row.(*cil.GenericParamRaw)
		tok := cil.NewToken(cil.TableGenericParam, uint32(i+1))
		name, err := st.str(raw.Name, tok)
		if err != nil {
			return err
		}
		gp := &GenericParam{Token: tok, Number: raw.Number, Flags: raw.Flags, Name: name}
		if err := st.reg.insert(tok, gp); err != nil {
			return err
		}
		st.asm.GenericParams = append(st.asm.GenericParams, gp)
	}
	return nil
}

func materializeGenericParamConstraint(st *state) error {
	for i, row := range rawRows(st, cil.TableGenericParamConstraint) {
		raw := row.(*cil.GenericParamConstraintRaw)
		tok := cil.NewToken(cil.TableGenericParamConstraint, uint32(i+1))
		owner, ok := lookupAs[GenericParam](st.reg, cil.NewToken(cil.TableGenericParam, raw.Owner))
		if !ok {
			return errors.Unresolved(tok.Value(), "constraint owner does not exist")
		}
		gc := &GenericParamConstraint{Token: tok, Owner: owner}
		if err := st.reg.insert(tok, gc); err != nil {
			return err
		}
		st.asm.GenericParamConstraints = append(st.asm.GenericParamConstraints, gc)
	}
	return nil
}

// resolvePasses resolve the coded-index fields of each owned table once
// the registry is complete. Each pass touches only its own table's rows.
var resolvePasses = []func(*state, *Resolver) error{
	resolveTypeRefs,
	resolveTypeDefs,
	resolveInterfaceImpls,
	resolveMemberRefs,
	resolveConstants,
	resolveCustomAttributes,
	resolveGenericParams,
	resolveGenericParamConstraints,
	resolveMethodSpecs,
	resolveExportedTypes,
	resolveManifestResources,
}

func resolveTypeRefs(st *state, res *Resolver) error {
	for i, tr := range st.asm.TypeRefs {
		raw := rawRows(st, cil.TableTypeRef)[i].(*cil.TypeRefRaw)
		ref, err := res.Resolve(raw.ResolutionScope)
		if err != nil {
			return errors.Unresolved(tr.Token.Value(), "resolution scope: "+err.Error())
		}
		tr.ResolutionScope = ref
	}
	return nil
}

func resolveTypeDefs(st *state, res *Resolver) error {
	for i, td := range st.asm.TypeDefs {
		raw := rawRows(st, cil.TableTypeDef)[i].(*cil.TypeDefRaw)
		ref, err := res.Resolve(raw.Extends)
		if err != nil {
			return errors.Unresolved(td.Token.Value(), "extends: "+err.Error())
		}
		td.Extends = ref
	}
	return nil
}

func resolveInterfaceImpls(st *state, res *Resolver) error {
	for i, ii := range st.asm.InterfaceImpls {
		raw := rawRows(st, cil.TableInterfaceImpl)[i].(*cil.InterfaceImplRaw)
		ref, err := res.required(raw.Interface, ii.Token, "interface")
		if err != nil {
			return err
		}
		ii.Interface = ref
	}
	return nil
}

func resolveMemberRefs(st *state, res *Resolver) error {
	for i, mr := range st.asm.MemberRefs {
		raw := rawRows(st, cil.TableMemberRef)[i].(*cil.MemberRefRaw)
		ref, err := res.required(raw.Class, mr.Token, "member class")
		if err != nil {
			return err
		}
		mr.Class = ref
	}
	return nil
}

func resolveConstants(st *state, res *Resolver) error {
	for i, c := range st.asm.Constants {
		raw := rawRows(st, cil.TableConstant)[i].(*cil.ConstantRaw)
		ref, err := res.required(raw.Parent, c.Token, "constant parent")
		if err != nil {
			return err
		}
		c.Parent = ref
	}
	return nil
}

func resolveCustomAttributes(st *state, res *Resolver) error {
	for i, ca := range st.asm.CustomAttributes {
		raw := rawRows(st, cil.TableCustomAttribute)[i].(*cil.CustomAttributeRaw)
		parent, err := res.required(raw.Parent, ca.Token, "attribute parent")
		if err != nil {
			return err
		}
		ctor, err := res.required(raw.Type, ca.Token, "attribute constructor")
		if err != nil {
			return err
		}
		ca.Parent = parent
		ca.Type = ctor
	}
	return nil
}

func resolveGenericParams(st *state, res *Resolver) error {
	for i, gp := range st.asm.GenericParams {
		raw := rawRows(st, cil.TableGenericParam)[i].(*cil.GenericParamRaw)
		owner, err := res.required(raw.Owner, gp.Token, "generic parameter owner")
		if err != nil {
			return err
		}
		gp.Owner = owner
	}
	return nil
}

func resolveGenericParamConstraints(st *state, res *Resolver) error {
	for i, gc := range st.asm.GenericParamConstraints {
		raw := rawRows(st, cil.TableGenericParamConstraint)[i].(*cil.GenericParamConstraintRaw)
		ref, err := res.required(raw.Constraint, gc.Token, "constraint type")
		if err != nil {
			return err
		}
		gc.Constraint = ref
	}
	return nil
}

func resolveMethodSpecs(st *state, res *Resolver) error {
	for i, ms := range st.asm.MethodSpecs {
		raw := rawRows(st, cil.TableMethodSpec)[i].(*cil.MethodSpecRaw)
		ref, err := res.required(raw.Method, ms.Token, "instantiated method")
		if err != nil {
			return err
		}
		ms.Method = ref
	}
	return nil
}

func resolveExportedTypes(st *state, res *Resolver) error {
	for i, et := range st.asm.ExportedTypes {
		raw := rawRows(st, cil.TableExportedType)[i].(*cil.ExportedTypeRaw)
		ref, err := res.Resolve(raw.Implementation)
		if err != nil {
			return errors.Unresolved(et.Token.Value(), "implementation: "+err.Error())
		}
		et.Implementation = ref
	}
	return nil
}

func resolveManifestResources(st *state, res *Resolver) error {
	for i, r := range st.asm.Resources {
		raw := rawRows(st, cil.TableManifestResource)[i].(*cil.ManifestResourceRaw)
		ref, err := res.Resolve(raw.Implementation)
		if err != nil {
			return errors.Unresolved(r.Token.Value(), "implementation: "+err.Error())
		}
		r.Implementation = ref
	}
	return nil
}

// link applies the owner-pushes-child relationships. Runs once, single
// threaded, after every resolve pass has finished.
func (st *state) link() {
	for _, ii := range st.asm.InterfaceImpls {
		ii.Class.Interfaces = append(ii.Class.Interfaces, ii)
	}
	for _, nc := range st.asm.NestedClasses {
		nc.Enclosing.NestedTypes = append(nc.Enclosing.NestedTypes, nc.Nested)
		nc.Nested.Enclosing = nc.Enclosing
	}
	for _, gp := range st.asm.GenericParams {
		switch owner := gp.Owner.Value.(type) {
		case *TypeDef:
			owner.GenericParams = append(owner.GenericParams, gp)
		case *MethodDef:
			owner.GenericParams = append(owner.GenericParams, gp)
		}
	}
	for _, gc := range st.asm.GenericParamConstraints {
		gc.Owner.Constraints = append(gc.Owner.Constraints, gc)
	}
}
