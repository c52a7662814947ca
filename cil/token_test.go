package cil_test

import (
	"testing"

	"github.com/cilforge/cilmeta/cil"
)

func TestTokenPacking(t *testing.T) {
	tok := cil.NewToken(cil.TableMethodDef, 0x1234)
	if tok.Value() != 0x06001234 {
		t.Errorf("token value = 0x%08X, want 0x06001234", tok.Value())
	}
	if tok.Table() != cil.TableMethodDef {
		t.Errorf("table = %s, want MethodDef", tok.Table())
	}
	if tok.RID() != 0x1234 {
		t.Errorf("rid = %d, want %d", tok.RID(), 0x1234)
	}
}

func TestTokenRIDMask(t *testing.T) {
	// Row ids are 24-bit; overflowing bits must not leak into the table tag.
	tok := cil.NewToken(cil.TableTypeDef, 0x01FF_FFFF)
	if tok.Table() != cil.TableTypeDef {
		t.Errorf("table = %s after rid overflow, want TypeDef", tok.Table())
	}
	if tok.RID() != 0x00FF_FFFF {
		t.Errorf("rid = 0x%X, want 0x00FFFFFF", tok.RID())
	}
}

func TestTokenNil(t *testing.T) {
	if !cil.NewToken(cil.TableTypeDef, 0).IsNil() {
		t.Error("rid 0 should be nil")
	}
	if cil.NewToken(cil.TableTypeDef, 1).IsNil() {
		t.Error("rid 1 should not be nil")
	}
}

func TestTableIDNames(t *testing.T) {
	cases := []struct {
		id   cil.TableID
		want string
	}{
		{cil.TableModule, "Module"},
		{cil.TableTypeDef, "TypeDef"},
		{cil.TableGenericParamConstraint, "GenericParamConstraint"},
		{cil.TableCustomDebugInformation, "CustomDebugInformation"},
	}
	for _, c := range cases {
		if got := c.id.String(); got != c.want {
			t.Errorf("TableID(0x%02X).String() = %q, want %q", uint8(c.id), got, c.want)
		}
	}
	if cil.TableID(0x2D).Valid() {
		t.Error("0x2D should not be a valid table id")
	}
}

func TestAllTableIDsOrdered(t *testing.T) {
	ids := cil.AllTableIDs()
	if len(ids) == 0 {
		t.Fatal("no table ids")
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids not strictly increasing at %d: %s <= %s", i, ids[i], ids[i-1])
		}
	}
	if ids[0] != cil.TableModule || ids[len(ids)-1] != cil.TableCustomDebugInformation {
		t.Errorf("unexpected id range %s..%s", ids[0], ids[len(ids)-1])
	}
}
