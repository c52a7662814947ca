package writer_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cilforge/cilmeta"
	"github.com/cilforge/cilmeta/builder"
	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/cil/ciltest"
	cilerrors "github.com/cilforge/cilmeta/errors"
	"github.com/cilforge/cilmeta/writer"
)

// sourceImage assembles a small but representative image: a module, an
// assembly reference, a base type reference, two type definitions, three
// fields, and a user string referenced from outside the tables.
func sourceImage(t *testing.T) (data []byte, usOff uint32) {
	t.Helper()
	b := ciltest.NewImageBuilder()
	b.AddModule("app.dll")

	scope := b.AddRow(&cil.AssemblyRefRaw{MajorVersion: 4, Name: b.Strings.Add("mscorlib")})
	object := b.AddRow(&cil.TypeRefRaw{
		ResolutionScope: cil.CodedIndex{Tag: cil.TableAssemblyRef, Row: scope.RID()},
		Namespace:       b.Strings.Add("System"),
		Name:            b.Strings.Add("Object"),
	})

	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("<Module>"), FieldList: 1, MethodList: 1})
	b.AddRow(&cil.TypeDefRaw{
		Flags:      0x100001,
		Namespace:  b.Strings.Add("App"),
		Name:       b.Strings.Add("Program"),
		Extends:    cil.CodedIndex{Tag: cil.TableTypeRef, Row: object.RID()},
		FieldList:  1,
		MethodList: 1,
	})

	for _, name := range []string{"alpha", "beta", "gamma"} {
		sig, err := b.Blob.Add([]byte{0x06, 0x08})
		require.NoError(t, err)
		b.AddRow(&cil.FieldRaw{Flags: 6, Name: b.Strings.Add(name), Signature: sig})
	}

	usOff, err := b.UserStrings.Add("boot message")
	require.NoError(t, err)

	data, err = b.Build()
	require.NoError(t, err)
	return data, usOff
}

func openImage(t *testing.T, data []byte) *cil.Image {
	t.Helper()
	img, err := cil.Open(cilmeta.NewMemoryBackend(data))
	require.NoError(t, err)
	return img
}

func typeName(t *testing.T, img *cil.Image, rid uint32) string {
	t.Helper()
	row, err := img.Tables.Row(cil.NewToken(cil.TableTypeDef, rid))
	require.NoError(t, err)
	name, err := img.Strings.Get(row.(*cil.TypeDefRaw).Name)
	require.NoError(t, err)
	return name
}

func fieldName(t *testing.T, img *cil.Image, rid uint32) string {
	t.Helper()
	row, err := img.Tables.Row(cil.NewToken(cil.TableField, rid))
	require.NoError(t, err)
	name, err := img.Strings.Get(row.(*cil.FieldRaw).Name)
	require.NoError(t, err)
	return name
}

func TestWriteUnmodifiedRoundTrip(t *testing.T) {
	data, usOff := sourceImage(t)
	src := cilmeta.NewMemoryBackend(data)
	img := openImage(t, data)

	out, err := writer.Write(builder.NewContext(img), src)
	require.NoError(t, err)

	img2 := openImage(t, out)
	for _, id := range cil.AllTableIDs() {
		assert.Equal(t, img.Tables.RowCount(id), img2.Tables.RowCount(id), "%s row count", id)
	}

	row, err := img2.Tables.Row(cil.NewToken(cil.TableModule, 1))
	require.NoError(t, err)
	name, err := img2.Strings.Get(row.(*cil.ModuleRaw).Name)
	require.NoError(t, err)
	assert.Equal(t, "app.dll", name)

	assert.Equal(t, "Program", typeName(t, img2, 2))

	// User string offsets survive rewriting because method bodies address
	// them outside the tables.
	us, err := img2.UserStrings.Get(usOff)
	require.NoError(t, err)
	assert.Equal(t, "boot message", us)
}

func TestWriteAppliesMutations(t *testing.T) {
	data, usOff := sourceImage(t)
	src := cilmeta.NewMemoryBackend(data)
	img := openImage(t, data)
	ctx := builder.NewContext(img)

	fieldTok := cil.NewToken(cil.TableField, 1)
	orig, ok := ctx.Row(fieldTok)
	require.True(t, ok)
	require.NoError(t, ctx.UpdateRow(fieldTok, &cil.FieldRaw{
		Flags:     6,
		Name:      ctx.AddString("renamed"),
		Signature: orig.(*cil.FieldRaw).Signature,
	}))

	_, err := builder.NewTypeDef().
		Flags(0x100001).
		Namespace("App").
		Name("Generated").
		Build(ctx)
	require.NoError(t, err)

	usNew, err := ctx.AddUserString("injected")
	require.NoError(t, err)

	out, err := writer.Write(ctx, src)
	require.NoError(t, err)
	img2 := openImage(t, out)

	assert.Equal(t, uint32(3), img2.Tables.RowCount(cil.TableTypeDef))
	assert.Equal(t, "Generated", typeName(t, img2, 3))
	assert.Equal(t, "renamed", fieldName(t, img2, 1))
	assert.Equal(t, "beta", fieldName(t, img2, 2))

	// Provisional user string offsets become final unchanged: the staged
	// tail lands directly after the preserved original heap.
	us, err := img2.UserStrings.Get(usNew)
	require.NoError(t, err)
	assert.Equal(t, "injected", us)
	us, err = img2.UserStrings.Get(usOff)
	require.NoError(t, err)
	assert.Equal(t, "boot message", us)

	// The module identity is untouched by unrelated edits.
	modBefore, err := img.Tables.Row(cil.NewToken(cil.TableModule, 1))
	require.NoError(t, err)
	modAfter, err := img2.Tables.Row(cil.NewToken(cil.TableModule, 1))
	require.NoError(t, err)
	mvidBefore, err := img.Guid.Get(modBefore.(*cil.ModuleRaw).Mvid)
	require.NoError(t, err)
	mvidAfter, err := img2.Guid.Get(modAfter.(*cil.ModuleRaw).Mvid)
	require.NoError(t, err)
	assert.Equal(t, mvidBefore, mvidAfter)
}

func TestWriteCompactsRemovedRows(t *testing.T) {
	data, _ := sourceImage(t)
	src := cilmeta.NewMemoryBackend(data)
	ctx := builder.NewContext(openImage(t, data))

	require.NoError(t, ctx.RemoveRow(cil.NewToken(cil.TableField, 2), false))

	out, err := writer.Write(ctx, src)
	require.NoError(t, err)
	img2 := openImage(t, out)

	require.Equal(t, uint32(2), img2.Tables.RowCount(cil.TableField))
	assert.Equal(t, "alpha", fieldName(t, img2, 1))
	assert.Equal(t, "gamma", fieldName(t, img2, 2))

	row, err := img2.Tables.Row(cil.NewToken(cil.TableTypeDef, 2))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), row.(*cil.TypeDefRaw).FieldList)
}

func TestWriteRejectsDanglingReference(t *testing.T) {
	data, _ := sourceImage(t)
	src := cilmeta.NewMemoryBackend(data)
	ctx := builder.NewContext(openImage(t, data))

	value, err := ctx.AddBlob([]byte{0x2A, 0, 0, 0})
	require.NoError(t, err)
	_, err = ctx.AddRow(&cil.ConstantRaw{
		Type:   0x08,
		Parent: cil.CodedIndex{Tag: cil.TableField, Row: 2},
		Value:  value,
	})
	require.NoError(t, err)

	require.NoError(t, ctx.RemoveRow(cil.NewToken(cil.TableField, 2), false))

	_, err = writer.Write(ctx, src)
	require.Error(t, err)
	var e *cilerrors.Error
	require.True(t, cilerrors.As(err, &e))
	assert.Equal(t, cilerrors.KindLayout, e.Kind)
}

func TestWriteWidensCodedIndexes(t *testing.T) {
	data, _ := sourceImage(t)
	src := cilmeta.NewMemoryBackend(data)
	ctx := builder.NewContext(openImage(t, data))

	// TypeDefOrRef spends 2 tag bits, so 0x3FFF rows is the last narrow
	// count; growing TypeRef past it must widen every coded field of the
	// family.
	scope := cil.NewToken(cil.TableAssemblyRef, 1)
	for i := ctx.RowCount(cil.TableTypeRef); i <= 0x4000; i++ {
		_, err := builder.NewTypeRef().
			ResolutionScope(scope).
			Name(fmt.Sprintf("T%04X", i)).
			Build(ctx)
		require.NoError(t, err)
	}

	out, err := writer.Write(ctx, src)
	require.NoError(t, err)
	img2 := openImage(t, out)

	require.Equal(t, uint32(0x4001), img2.Tables.RowCount(cil.TableTypeRef))
	assert.Equal(t, uint32(4), img2.Tables.Sizes.CodedIndexBytes(cil.CodedTypeDefOrRef))

	row, err := img2.Tables.Row(cil.NewToken(cil.TableTypeDef, 2))
	require.NoError(t, err)
	extends := row.(*cil.TypeDefRaw).Extends
	require.Equal(t, cil.TableTypeRef, extends.Tag)
	target, err := img2.Tables.Row(cil.NewToken(cil.TableTypeRef, extends.Row))
	require.NoError(t, err)
	name, err := img2.Strings.Get(target.(*cil.TypeRefRaw).Name)
	require.NoError(t, err)
	assert.Equal(t, "Object", name)
}

func TestExecuteRejectsDefectivePlans(t *testing.T) {
	src := cilmeta.NewMemoryBackend(nil)

	_, err := writer.Execute(&writer.Layout{
		TotalSize: 8,
		Ops:       []writer.Operation{{Kind: writer.OpLiteral, Dst: 4, Size: 8, Data: make([]byte, 8)}},
	}, src)
	require.Error(t, err)
	assert.True(t, cilerrors.IsInternal(err))

	_, err = writer.Execute(&writer.Layout{
		TotalSize: 8,
		Ops: []writer.Operation{
			{Kind: writer.OpZero, Dst: 0, Size: 6},
			{Kind: writer.OpZero, Dst: 4, Size: 4},
		},
	}, src)
	require.Error(t, err)
	assert.True(t, cilerrors.IsInternal(err))
}

func TestVerifyCatchesPlanDrift(t *testing.T) {
	data, _ := sourceImage(t)
	src := cilmeta.NewMemoryBackend(data)
	ctx := builder.NewContext(openImage(t, data))

	plan, err := writer.Plan(ctx)
	require.NoError(t, err)
	out, err := writer.Execute(plan, src)
	require.NoError(t, err)
	require.NoError(t, writer.Verify(plan, out))

	plan.Sizes.RowCounts[cil.TableTypeDef]++
	err = writer.Verify(plan, out)
	require.Error(t, err)
	assert.True(t, cilerrors.IsInternal(err))
}

func TestWriteFile(t *testing.T) {
	data, _ := sourceImage(t)
	src := cilmeta.NewMemoryBackend(data)
	ctx := builder.NewContext(openImage(t, data))

	path := filepath.Join(t.TempDir(), "out.meta")
	require.NoError(t, writer.WriteFile(ctx, src, path))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	img2 := openImage(t, written)
	assert.Equal(t, uint32(2), img2.Tables.RowCount(cil.TableTypeDef))
}
