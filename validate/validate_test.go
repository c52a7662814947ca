package validate_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cilforge/cilmeta"
	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/cil/ciltest"
	cilerrors "github.com/cilforge/cilmeta/errors"
	"github.com/cilforge/cilmeta/loader"
	"github.com/cilforge/cilmeta/validate"
)

func openImage(t *testing.T, b *ciltest.ImageBuilder) *cil.Image {
	t.Helper()
	data, err := b.Build()
	require.NoError(t, err)
	img, err := cil.Open(cilmeta.NewMemoryBackend(data))
	require.NoError(t, err)
	return img
}

func violations(t *testing.T, err error) []cilerrors.Violation {
	t.Helper()
	require.Error(t, err)
	var ve *cilerrors.ValidationError
	require.True(t, cilerrors.As(err, &ve))
	return ve.Violations
}

func namesOf(vs []cilerrors.Violation) []string {
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		names = append(names, v.Validator)
	}
	return names
}

func TestPresetSubsets(t *testing.T) {
	groups := func(c validate.Config) []bool {
		return []bool{c.Structure, c.Heaps, c.Bounds, c.Semantics, c.Naming, c.Versions}
	}
	covers := func(wide, narrow validate.Config) bool {
		w, n := groups(wide), groups(narrow)
		for i := range n {
			if n[i] && !w[i] {
				return false
			}
		}
		return true
	}

	assert.True(t, covers(validate.Strict(), validate.Comprehensive()))
	assert.True(t, covers(validate.Comprehensive(), validate.Production()))
	assert.True(t, covers(validate.Production(), validate.Minimal()))
	assert.True(t, covers(validate.Minimal(), validate.Disabled()))

	assert.False(t, covers(validate.Minimal(), validate.Production()))
	assert.True(t, validate.Strict().FailFast)
	assert.False(t, validate.Comprehensive().FailFast)
}

func TestRawCardinality(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("Orphan"), FieldList: 1, MethodList: 1})

	err := validate.NewEngine(validate.Minimal()).Raw(openImage(t, b))
	vs := violations(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "cardinality", vs[0].Validator)
	assert.True(t, vs[0].Fatal)

	b = ciltest.NewImageBuilder()
	b.AddModule("a.dll")
	b.AddRow(&cil.AssemblyRaw{Name: b.Strings.Add("a")})
	b.AddRow(&cil.AssemblyRaw{Name: b.Strings.Add("b")})
	err = validate.NewEngine(validate.Minimal()).Raw(openImage(t, b))
	assert.Contains(t, namesOf(violations(t, err)), "cardinality")
}

func TestRawHeapStructure(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("a.dll")
	// Unterminated record followed by nothing: the heap must end in NUL.
	b.RawStrings = []byte{0, 'a', 'b', 'c'}

	err := validate.NewEngine(validate.Production()).Raw(openImage(t, b))
	assert.Contains(t, namesOf(violations(t, err)), "heap-structure")

	b = ciltest.NewImageBuilder()
	b.AddModule("a.dll")
	b.RawStrings = []byte{0, 0xFF, 0xFE, 0}
	err = validate.NewEngine(validate.Production()).Raw(openImage(t, b))
	assert.Contains(t, namesOf(violations(t, err)), "heap-structure")
}

func TestRawRefBounds(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("a.dll")
	b.AddRow(&cil.TypeDefRaw{
		Name:       b.Strings.Add("Dangling"),
		Extends:    cil.CodedIndex{Tag: cil.TableTypeRef, Row: 5},
		FieldList:  1,
		MethodList: 1,
	})

	err := validate.NewEngine(validate.Production()).Raw(openImage(t, b))
	vs := violations(t, err)
	require.Contains(t, namesOf(vs), "ref-bounds")
	for _, v := range vs {
		if v.Validator == "ref-bounds" {
			assert.Equal(t, cil.NewToken(cil.TableTypeDef, 1).Value(), v.Token)
		}
	}
}

func TestRawListBounds(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("a.dll")
	sig, err := b.Blob.Add([]byte{0x06, 0x08})
	require.NoError(t, err)
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("Bad"), FieldList: 7, MethodList: 1})
	b.AddRow(&cil.FieldRaw{Name: b.Strings.Add("f"), Signature: sig})

	verr := validate.NewEngine(validate.Production()).Raw(openImage(t, b))
	assert.Contains(t, namesOf(violations(t, verr)), "list-bounds")
}

func TestRawCleanImagePasses(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("clean.dll")
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("<Module>"), FieldList: 1, MethodList: 1})

	assert.NoError(t, validate.NewEngine(validate.Strict()).Raw(openImage(t, b)))
}

// inheritanceChain builds length linked TypeDefs, the first extending the
// second and so on; with cycle set, the last extends the first again.
func inheritanceChain(t *testing.T, length int, cycle bool) *loader.Assembly {
	t.Helper()
	b := ciltest.NewImageBuilder()
	b.AddModule("chain.dll")
	for i := 1; i <= length; i++ {
		row := &cil.TypeDefRaw{
			Name:       b.Strings.Add(fmt.Sprintf("T%d", i)),
			FieldList:  1,
			MethodList: 1,
		}
		if i < length {
			row.Extends = cil.CodedIndex{Tag: cil.TableTypeDef, Row: uint32(i + 1)}
		} else if cycle {
			row.Extends = cil.CodedIndex{Tag: cil.TableTypeDef, Row: 1}
		}
		b.AddRow(row)
	}
	asm, err := loader.Load(openImage(t, b))
	require.NoError(t, err)
	return asm
}

func TestOwnedInheritanceCycle(t *testing.T) {
	asm := inheritanceChain(t, 3, true)
	err := validate.NewEngine(validate.Comprehensive()).Owned(asm)
	vs := violations(t, err)
	require.Contains(t, namesOf(vs), "inheritance")
	for _, v := range vs {
		if v.Validator == "inheritance" {
			assert.True(t, v.Fatal)
		}
	}
}

func TestOwnedInheritanceDepth(t *testing.T) {
	cfg := validate.Config{Semantics: true, MaxInheritanceDepth: 4}

	deep := inheritanceChain(t, 6, false)
	err := validate.NewEngine(cfg).Owned(deep)
	assert.Contains(t, namesOf(violations(t, err)), "inheritance")

	shallow := inheritanceChain(t, 4, false)
	assert.NoError(t, validate.NewEngine(cfg).Owned(shallow))
}

func TestOwnedNestingCycle(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("nest.dll")
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("A"), FieldList: 1, MethodList: 1})
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("B"), FieldList: 1, MethodList: 1})
	b.AddRow(&cil.NestedClassRaw{NestedClass: 2, EnclosingClass: 1})
	b.AddRow(&cil.NestedClassRaw{NestedClass: 1, EnclosingClass: 2})

	asm, err := loader.Load(openImage(t, b))
	require.NoError(t, err)
	verr := validate.NewEngine(validate.Comprehensive()).Owned(asm)
	assert.Contains(t, namesOf(violations(t, verr)), "nesting")
}

func TestOwnedInterfaceCycle(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("iface.dll")
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("IA"), FieldList: 1, MethodList: 1})
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("IB"), FieldList: 1, MethodList: 1})
	b.AddRow(&cil.InterfaceImplRaw{Class: 1, Interface: cil.CodedIndex{Tag: cil.TableTypeDef, Row: 2}})
	b.AddRow(&cil.InterfaceImplRaw{Class: 2, Interface: cil.CodedIndex{Tag: cil.TableTypeDef, Row: 1}})

	asm, err := loader.Load(openImage(t, b))
	require.NoError(t, err)
	verr := validate.NewEngine(validate.Comprehensive()).Owned(asm)
	assert.Contains(t, namesOf(violations(t, verr)), "interfaces")
}

func TestOwnedIdentifiers(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("names.dll")
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("Ok\x01Bad"), FieldList: 1, MethodList: 1})
	b.AddRow(&cil.TypeDefRaw{FieldList: 1, MethodList: 1}) // empty name

	asm, err := loader.Load(openImage(t, b))
	require.NoError(t, err)
	verr := validate.NewEngine(validate.Comprehensive()).Owned(asm)
	vs := violations(t, verr)
	count := 0
	for _, v := range vs {
		if v.Validator == "identifiers" {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 2)
}

func TestOwnedVersionSanity(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("ver.dll")
	b.AddRow(&cil.AssemblyRaw{MajorVersion: 0xFFFF, Name: b.Strings.Add("bad")})

	asm, err := loader.Load(openImage(t, b))
	require.NoError(t, err)
	verr := validate.NewEngine(validate.Config{Versions: true}).Owned(asm)
	assert.Contains(t, namesOf(violations(t, verr)), "versions")
}

func TestDisabledRunsNothing(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("NoModule"), FieldList: 1, MethodList: 1})

	img := openImage(t, b)
	assert.NoError(t, validate.NewEngine(validate.Disabled()).Raw(img))
	assert.NoError(t, validate.NewEngine(validate.Disabled()).Run(img, nil))
}

func TestRunMergesBothFamilies(t *testing.T) {
	b := ciltest.NewImageBuilder()
	b.AddModule("both.dll")
	b.AddRow(&cil.TypeDefRaw{
		Name:       b.Strings.Add("Loop\x02"),
		Extends:    cil.CodedIndex{Tag: cil.TableTypeDef, Row: 1},
		FieldList:  1,
		MethodList: 1,
	})
	b.AddRow(&cil.AssemblyRaw{Name: b.Strings.Add("a")})
	b.AddRow(&cil.AssemblyRaw{Name: b.Strings.Add("b")})

	img := openImage(t, b)
	asm, err := loader.Load(img)
	require.NoError(t, err)

	verr := validate.NewEngine(validate.Comprehensive()).Run(img, asm)
	names := namesOf(violations(t, verr))
	assert.Contains(t, names, "cardinality")
	assert.Contains(t, names, "inheritance")
	assert.Contains(t, names, "identifiers")
}

func TestRunFailFastSkipsOwnedOnFatalRaw(t *testing.T) {
	b := ciltest.NewImageBuilder()
	// No Module row: a fatal structural defect.
	b.AddRow(&cil.TypeDefRaw{Name: b.Strings.Add("X\x03"), FieldList: 1, MethodList: 1})

	img := openImage(t, b)
	asm, err := loader.Load(img)
	require.NoError(t, err)

	verr := validate.NewEngine(validate.Strict()).Run(img, asm)
	vs := violations(t, verr)
	assert.Contains(t, namesOf(vs), "cardinality")
	assert.NotContains(t, namesOf(vs), "identifiers", "owned pass must be skipped after a fatal raw violation")
}
