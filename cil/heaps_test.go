package cil_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"

	"github.com/cilforge/cilmeta/cil"
)

func TestStringHeapGet(t *testing.T) {
	data := []byte{0, 'H', 'e', 'l', 'l', 'o', 0, 'W', 0}
	h := cil.NewStringHeap(data)

	s, err := h.Get(0)
	if err != nil || s != "" {
		t.Errorf("Get(0) = %q, %v; want empty", s, err)
	}
	s, err = h.Get(1)
	if err != nil || s != "Hello" {
		t.Errorf("Get(1) = %q, %v; want Hello", s, err)
	}
	s, err = h.Get(7)
	if err != nil || s != "W" {
		t.Errorf("Get(7) = %q, %v; want W", s, err)
	}
	if _, err = h.Get(100); err == nil {
		t.Error("expected out-of-bounds error")
	}
}

func TestStringHeapUnterminated(t *testing.T) {
	h := cil.NewStringHeap([]byte{0, 'a', 'b'})
	if _, err := h.Get(1); err == nil {
		t.Error("expected error for unterminated record")
	}
}

func TestStringHeapInvalidUTF8(t *testing.T) {
	h := cil.NewStringHeap([]byte{0, 0xFF, 0xFE, 0})
	if _, err := h.Get(1); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestBlobHeapGet(t *testing.T) {
	// Offset 1: 3-byte blob. Offset 5: empty record.
	data := []byte{0, 3, 0xAA, 0xBB, 0xCC, 0}
	h := cil.NewBlobHeap(data)

	b, err := h.Get(0)
	if err != nil || b != nil {
		t.Errorf("Get(0) = %v, %v; want nil", b, err)
	}
	b, err = h.Get(1)
	if err != nil || !bytes.Equal(b, []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("Get(1) = % x, %v", b, err)
	}
	b, err = h.Get(5)
	if err != nil || len(b) != 0 {
		t.Errorf("Get(5) = % x, %v; want empty", b, err)
	}
}

func TestBlobHeapTruncated(t *testing.T) {
	h := cil.NewBlobHeap([]byte{0, 5, 0xAA})
	if _, err := h.Get(1); err == nil {
		t.Error("expected error for blob running past heap end")
	}
}

func TestGuidHeapAlignment(t *testing.T) {
	if _, err := cil.NewGuidHeap(make([]byte, 17)); err == nil {
		t.Error("expected error for heap size 17")
	}
	if _, err := cil.NewGuidHeap(make([]byte, 32)); err != nil {
		t.Errorf("aligned heap rejected: %v", err)
	}
}

func TestGuidHeapGet(t *testing.T) {
	g1 := uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10")
	data := append([]byte{}, g1[:]...)
	h, err := cil.NewGuidHeap(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.Get(1)
	if err != nil || got != g1 {
		t.Errorf("Get(1) = %s, %v; want %s", got, err, g1)
	}
	if _, err = h.Get(0); err == nil {
		t.Error("expected error for index 0")
	}
	if _, err = h.Get(2); err == nil {
		t.Error("expected error for index past heap")
	}
}

func TestUserStringHeapAlignment(t *testing.T) {
	if _, err := cil.NewUserStringHeap(make([]byte, 5)); err == nil {
		t.Error("expected error for unaligned heap")
	}
}

func TestUserStringHeapUnpairedSurrogate(t *testing.T) {
	// One high surrogate (0xD800) with no pair, marker byte 1.
	data := []byte{0, 3, 0x00, 0xD8, 1, 0, 0, 0}
	h, err := cil.NewUserStringHeap(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Get(1); err == nil {
		t.Error("expected error for unpaired surrogate")
	}
}

func TestStringsBuilderRoundTrip(t *testing.T) {
	b := cil.NewStringsBuilder()
	off1 := b.Add("Object")
	off2 := b.Add("System")
	if off1 == 0 || off2 == 0 || off1 == off2 {
		t.Fatalf("offsets %d, %d", off1, off2)
	}
	if b.Add("Object") != off1 {
		t.Error("duplicate add should return the original offset")
	}
	if b.Add("") != 0 {
		t.Error("empty string should be offset 0")
	}

	h := cil.NewStringHeap(b.Bytes())
	for off, want := range map[uint32]string{off1: "Object", off2: "System"} {
		got, err := h.Get(off)
		if err != nil || got != want {
			t.Errorf("Get(%d) = %q, %v; want %q", off, got, err, want)
		}
	}
}

func TestBlobBuilderRoundTrip(t *testing.T) {
	b := cil.NewBlobBuilder()
	content := []byte{0x20, 0x01, 0x01, 0x08}
	off, err := b.Add(content)
	if err != nil {
		t.Fatal(err)
	}
	// Duplicate content keeps its own record: offset identity is preserved.
	off2, err := b.Add(content)
	if err != nil {
		t.Fatal(err)
	}
	if off2 == off {
		t.Error("blob adds should not be de-duplicated")
	}

	h := cil.NewBlobHeap(b.Bytes())
	got, err := h.Get(off)
	if err != nil || !bytes.Equal(got, content) {
		t.Errorf("Get(%d) = % x, %v", off, got, err)
	}
}

func TestGuidBuilderRoundTrip(t *testing.T) {
	b := cil.NewGuidBuilder()
	g := uuid.New()
	idx := b.Add(g)
	if idx != 1 {
		t.Fatalf("first guid index = %d, want 1", idx)
	}
	if b.Add(g) != 1 {
		t.Error("duplicate guid should share the record")
	}
	if b.Add(uuid.Nil) != 0 {
		t.Error("nil guid should be index 0")
	}

	h, err := cil.NewGuidHeap(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.Get(idx)
	if err != nil || got != g {
		t.Errorf("Get(%d) = %s, %v; want %s", idx, got, err, g)
	}
}

func TestUserStringBuilderRoundTrip(t *testing.T) {
	b := cil.NewUserStringBuilder()
	cases := []string{"hello", "héllo wörld", "π ≈ 3.14159", "emoji \U0001F600", ""}
	offsets := make([]uint32, len(cases))
	for i, s := range cases {
		off, err := b.Add(s)
		if err != nil {
			t.Fatalf("Add(%q): %v", s, err)
		}
		offsets[i] = off
	}

	data := b.Bytes()
	if len(data)%4 != 0 {
		t.Fatalf("heap size %d not 4-byte aligned", len(data))
	}
	h, err := cil.NewUserStringHeap(data)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range cases {
		got, err := h.Get(offsets[i])
		if err != nil || got != s {
			t.Errorf("Get(%d) = %q, %v; want %q", offsets[i], got, err, s)
		}
	}
}
