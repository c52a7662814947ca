package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cilforge/cilmeta/builder"
	"github.com/cilforge/cilmeta/cil"
)

func TestTypeRefBuilder(t *testing.T) {
	c := builder.NewContext(testImage(t))

	scope, err := builder.NewAssemblyRef().
		Name("mscorlib").
		Version(4, 0, 0, 0).
		Build(c)
	require.NoError(t, err)

	tok, err := builder.NewTypeRef().
		ResolutionScope(scope).
		Namespace("System").
		Name("Object").
		Build(c)
	require.NoError(t, err)

	row, ok := c.Row(tok)
	require.True(t, ok)
	tr := row.(*cil.TypeRefRaw)
	assert.Equal(t, cil.TableAssemblyRef, tr.ResolutionScope.Tag)
	assert.Equal(t, scope.RID(), tr.ResolutionScope.Row)

	name, err := c.ResolveString(tr.Name)
	require.NoError(t, err)
	assert.Equal(t, "Object", name)
}

func TestTypeRefBuilderRequiresName(t *testing.T) {
	c := builder.NewContext(testImage(t))
	_, err := builder.NewTypeRef().Namespace("System").Build(c)
	assert.Error(t, err)
	assert.Equal(t, uint32(0), c.RowCount(cil.TableTypeRef), "failed build must not allocate")
}

func TestTypeRefBuilderRejectsBadScope(t *testing.T) {
	c := builder.NewContext(testImage(t))
	_, err := builder.NewTypeRef().
		Name("Object").
		ResolutionScope(cil.NewToken(cil.TableField, 1)).
		Build(c)
	assert.Error(t, err, "Field is not a ResolutionScope member")
}

func TestTypeDefBuilderDefaultsListsToTableEnds(t *testing.T) {
	c := builder.NewContext(testImage(t))

	tok, err := builder.NewTypeDef().
		Flags(0x100001).
		Namespace("Sample").
		Name("Widget").
		Build(c)
	require.NoError(t, err)

	row, ok := c.Row(tok)
	require.True(t, ok)
	td := row.(*cil.TypeDefRaw)
	assert.Equal(t, c.NextRID(cil.TableField), td.FieldList)
	assert.Equal(t, c.NextRID(cil.TableMethodDef), td.MethodList)
}

func TestFieldAndMethodBuilders(t *testing.T) {
	c := builder.NewContext(testImage(t))

	fieldTok, err := builder.NewField().
		Flags(0x06).
		Name("value").
		Signature([]byte{0x06, 0x08}).
		Build(c)
	require.NoError(t, err)

	paramTok, err := builder.NewParam().Sequence(1).Name("x").Build(c)
	require.NoError(t, err)

	methodTok, err := builder.NewMethodDef().
		RVA(0x2050).
		Flags(0x0086).
		Name("Compute").
		Signature([]byte{0x20, 0x01, 0x08, 0x08}).
		ParamList(paramTok.RID()).
		Build(c)
	require.NoError(t, err)

	row, _ := c.Row(methodTok)
	md := row.(*cil.MethodDefRaw)
	assert.Equal(t, paramTok.RID(), md.ParamList)

	sig, err := c.ResolveBlob(md.Signature)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x20, 0x01, 0x08, 0x08}, sig)

	row, _ = c.Row(fieldTok)
	assert.Equal(t, uint16(0x06), row.(*cil.FieldRaw).Flags)

	// Missing signatures are rejected before allocation.
	_, err = builder.NewField().Name("broken").Build(c)
	assert.Error(t, err)
	_, err = builder.NewMethodDef().Name("broken").Build(c)
	assert.Error(t, err)
}

func TestMemberRefBuilder(t *testing.T) {
	c := builder.NewContext(testImage(t))

	scope, err := builder.NewAssemblyRef().Name("mscorlib").Build(c)
	require.NoError(t, err)
	class, err := builder.NewTypeRef().ResolutionScope(scope).Namespace("System").Name("Console").Build(c)
	require.NoError(t, err)

	tok, err := builder.NewMemberRef().
		Class(class).
		Name("WriteLine").
		Signature([]byte{0x00, 0x01, 0x01, 0x0E}).
		Build(c)
	require.NoError(t, err)

	row, _ := c.Row(tok)
	mr := row.(*cil.MemberRefRaw)
	assert.Equal(t, cil.TableTypeRef, mr.Class.Tag)

	_, err = builder.NewMemberRef().Name("WriteLine").Signature([]byte{0}).Build(c)
	assert.Error(t, err, "class is required")
}

func TestCustomAttributeBuilder(t *testing.T) {
	c := builder.NewContext(testImage(t))

	scope, err := builder.NewAssemblyRef().Name("mscorlib").Build(c)
	require.NoError(t, err)
	class, err := builder.NewTypeRef().ResolutionScope(scope).Namespace("System").Name("ObsoleteAttribute").Build(c)
	require.NoError(t, err)
	ctor, err := builder.NewMemberRef().Class(class).Name(".ctor").Signature([]byte{0x20, 0x00, 0x01}).Build(c)
	require.NoError(t, err)

	tok, err := builder.NewCustomAttribute().
		Parent(cil.NewToken(cil.TableTypeDef, 1)).
		Constructor(ctor).
		Value([]byte{0x01, 0x00, 0x00, 0x00}).
		Build(c)
	require.NoError(t, err)

	row, _ := c.Row(tok)
	ca := row.(*cil.CustomAttributeRaw)
	assert.Equal(t, cil.TableMemberRef, ca.Type.Tag)
	assert.Equal(t, cil.TableTypeDef, ca.Parent.Tag)

	// A TypeDef cannot be an attribute constructor.
	_, err = builder.NewCustomAttribute().
		Parent(cil.NewToken(cil.TableTypeDef, 1)).
		Constructor(cil.NewToken(cil.TableTypeDef, 1)).
		Build(c)
	assert.Error(t, err)
}

func TestModuleRefAndStandAloneSigBuilders(t *testing.T) {
	c := builder.NewContext(testImage(t))

	tok, err := builder.NewModuleRef().Name("native.dll").Build(c)
	require.NoError(t, err)
	row, _ := c.Row(tok)
	name, err := c.ResolveString(row.(*cil.ModuleRefRaw).Name)
	require.NoError(t, err)
	assert.Equal(t, "native.dll", name)

	sigTok, err := builder.NewStandAloneSig().Signature([]byte{0x07, 0x01, 0x08}).Build(c)
	require.NoError(t, err)
	row, _ = c.Row(sigTok)
	sig, err := c.ResolveBlob(row.(*cil.StandAloneSigRaw).Signature)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x01, 0x08}, sig)

	_, err = builder.NewModuleRef().Build(c)
	assert.Error(t, err)
	_, err = builder.NewStandAloneSig().Build(c)
	assert.Error(t, err)
}
