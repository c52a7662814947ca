package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(PhaseParse, KindMalformed).
		Path("heap", "strings").
		Offset(0x40).
		Detail("unterminated string record").
		Build()

	msg := err.Error()
	if !strings.Contains(msg, "[parse]") {
		t.Errorf("missing phase: %s", msg)
	}
	if !strings.Contains(msg, "malformed") {
		t.Errorf("missing kind: %s", msg)
	}
	if !strings.Contains(msg, "heap.strings") {
		t.Errorf("missing path: %s", msg)
	}
	if !strings.Contains(msg, "unterminated string record") {
		t.Errorf("missing detail: %s", msg)
	}
}

func TestErrorTokenContext(t *testing.T) {
	err := Unresolved(0x02000005, "extends a missing row")
	if !strings.Contains(err.Error(), "0x02000005") {
		t.Errorf("token not rendered: %s", err.Error())
	}
	if err.Kind != KindUnresolved {
		t.Errorf("kind = %s, want %s", err.Kind, KindUnresolved)
	}
}

func TestErrorIsMatchesPhaseAndKind(t *testing.T) {
	err := Malformed(PhaseParse, "bad heap")
	target := &Error{Phase: PhaseParse, Kind: KindMalformed}
	if !stderrors.Is(err, target) {
		t.Error("expected Is to match on phase+kind")
	}
	other := &Error{Phase: PhaseWrite, Kind: KindMalformed}
	if stderrors.Is(err, other) {
		t.Error("expected Is to reject different phase")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := WriteFailed("flush output", cause)
	if !stderrors.Is(err, cause) {
		t.Error("cause not reachable via Unwrap chain")
	}
}

func TestIsInternal(t *testing.T) {
	if !IsInternal(Internal(PhaseWrite, "executor wrote past planned buffer")) {
		t.Error("Internal error not detected")
	}
	if IsInternal(Malformed(PhaseParse, "bad bytes")) {
		t.Error("malformed input misclassified as internal")
	}
	if IsInternal(stderrors.New("plain")) {
		t.Error("plain error misclassified as internal")
	}
}

func TestValidationErrorCollects(t *testing.T) {
	verr := &ValidationError{Violations: []Violation{
		{Validator: "heap-alignment", Detail: "guid heap size 17 not a multiple of 16"},
		{Validator: "cardinality", Token: 0x00000001, Fatal: true, Detail: "Module table has 2 rows"},
	}}

	msg := verr.Error()
	if !strings.Contains(msg, "2 validation violation(s)") {
		t.Errorf("missing count: %s", msg)
	}
	if !strings.Contains(msg, "heap-alignment") || !strings.Contains(msg, "cardinality") {
		t.Errorf("violations not listed: %s", msg)
	}
	if !verr.HasFatal() {
		t.Error("fatal violation not reported")
	}
}
