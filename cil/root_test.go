package cil_test

import (
	"testing"

	"github.com/cilforge/cilmeta"
	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/cil/ciltest"
)

func buildSampleImage(t *testing.T) []byte {
	t.Helper()
	b := ciltest.NewImageBuilder()
	b.AddModule("sample.dll")

	sysName := b.Strings.Add("System")
	objName := b.Strings.Add("Object")
	scope := b.AddRow(&cil.AssemblyRefRaw{
		MajorVersion: 4,
		Name:         b.Strings.Add("mscorlib"),
	})
	objRef := b.AddRow(&cil.TypeRefRaw{
		ResolutionScope: cil.CodedIndex{Tag: scope.Table(), Row: scope.RID()},
		Name:            objName,
		Namespace:       sysName,
	})
	b.AddRow(&cil.TypeDefRaw{
		Name:       b.Strings.Add("<Module>"),
		FieldList:  1,
		MethodList: 1,
	})
	b.AddRow(&cil.TypeDefRaw{
		Flags:      0x100001,
		Name:       b.Strings.Add("Widget"),
		Namespace:  b.Strings.Add("Sample"),
		Extends:    cil.CodedIndex{Tag: objRef.Table(), Row: objRef.RID()},
		FieldList:  1,
		MethodList: 1,
	})

	data, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestOpenRoundTrip(t *testing.T) {
	data := buildSampleImage(t)
	img, err := cil.Open(cilmeta.NewMemoryBackend(data))
	if err != nil {
		t.Fatal(err)
	}

	if img.Root.Version != "v4.0.30319" {
		t.Errorf("version = %q", img.Root.Version)
	}
	if img.Root.Stream(cil.StreamTables) == nil {
		t.Fatal("no #~ stream header")
	}

	if got := img.Tables.RowCount(cil.TableModule); got != 1 {
		t.Errorf("Module rows = %d, want 1", got)
	}
	if got := img.Tables.RowCount(cil.TableTypeDef); got != 2 {
		t.Errorf("TypeDef rows = %d, want 2", got)
	}

	row, err := img.Tables.Row(cil.NewToken(cil.TableModule, 1))
	if err != nil {
		t.Fatal(err)
	}
	mod := row.(*cil.ModuleRaw)
	name, err := img.Strings.Get(mod.Name)
	if err != nil || name != "sample.dll" {
		t.Errorf("module name = %q, %v", name, err)
	}
	if _, err := img.Guid.Get(mod.Mvid); err != nil {
		t.Errorf("mvid lookup: %v", err)
	}

	row, err = img.Tables.Row(cil.NewToken(cil.TableTypeDef, 2))
	if err != nil {
		t.Fatal(err)
	}
	td := row.(*cil.TypeDefRaw)
	if got, _ := img.Strings.Get(td.Name); got != "Widget" {
		t.Errorf("type name = %q", got)
	}
	if td.Extends.Tag != cil.TableTypeRef || td.Extends.Row != 1 {
		t.Errorf("extends = %+v", td.Extends)
	}

	ref, err := img.Tables.Row(td.Extends.Token())
	if err != nil {
		t.Fatal(err)
	}
	tr := ref.(*cil.TypeRefRaw)
	if ns, _ := img.Strings.Get(tr.Namespace); ns != "System" {
		t.Errorf("typeref namespace = %q", ns)
	}
}

func TestOpenBadMagic(t *testing.T) {
	data := buildSampleImage(t)
	data[0] ^= 0xFF
	if _, err := cil.Open(cilmeta.NewMemoryBackend(data)); err == nil {
		t.Error("expected error for corrupt magic")
	}
}

func TestOpenTruncated(t *testing.T) {
	data := buildSampleImage(t)
	for _, n := range []int{0, 4, 16, len(data) / 2} {
		if _, err := cil.Open(cilmeta.NewMemoryBackend(data[:n])); err == nil {
			t.Errorf("expected error opening %d-byte prefix", n)
		}
	}
}

func TestOpenMissingTablesStream(t *testing.T) {
	root := cil.EncodeRoot(1, 1, "v4.0.30319", 0, []cil.StreamHeader{})
	if _, err := cil.Open(cilmeta.NewMemoryBackend(root)); err == nil {
		t.Error("expected error for image without #~")
	}
}

func TestRootEncodeSizeAgreement(t *testing.T) {
	names := []string{cil.StreamTables, cil.StreamStrings, cil.StreamUserStrings, cil.StreamGuid, cil.StreamBlob}
	streams := make([]cil.StreamHeader, len(names))
	for i, n := range names {
		streams[i] = cil.StreamHeader{Name: n}
	}
	for _, version := range []string{"v4.0.30319", "v2.0.50727", "x"} {
		got := cil.EncodeRoot(1, 1, version, 0, streams)
		if want := cil.RootSize(version, names); uint32(len(got)) != want {
			t.Errorf("version %q: encoded %d bytes, RootSize says %d", version, len(got), want)
		}
	}
}

func TestTablesStreamSizeAgreement(t *testing.T) {
	var rows [cil.MaxTableID][]cil.Row
	rows[cil.TableModule] = []cil.Row{&cil.ModuleRaw{Name: 1, Mvid: 1}}
	rows[cil.TableField] = []cil.Row{
		&cil.FieldRaw{Flags: 6, Name: 5, Signature: 1},
		&cil.FieldRaw{Flags: 6, Name: 9, Signature: 4},
		&cil.FieldRaw{Flags: 6, Name: 13, Signature: 7},
	}
	sizes := &cil.TableSizeInfo{}
	sizes.RowCounts[cil.TableModule] = 1
	sizes.RowCounts[cil.TableField] = 3

	data, err := cil.EncodeTablesStream(2, 0, 0, sizes, &rows)
	if err != nil {
		t.Fatal(err)
	}
	if want := cil.TablesStreamSize(sizes); uint64(len(data)) != want {
		t.Errorf("encoded %d bytes, TablesStreamSize says %d", len(data), want)
	}
}
