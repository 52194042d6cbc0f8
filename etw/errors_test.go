package etw

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	e := newHostError(ErrSchemaNotFound, 5, "probe failed")
	if !errors.Is(e, ErrSchemaNotFound) {
		t.Fatal("errors.Is should see through to the sentinel")
	}
	if errors.Is(e, ErrInvalidParameter) {
		t.Fatal("errors.Is should not match an unrelated sentinel")
	}
}

func TestErrorMessageIncludesContext(t *testing.T) {
	e := newHostError(ErrNeedsElevation, 5, "EnableTraceEx2").
		withEventContext(*MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}"), 42)

	msg := e.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	if !errors.Is(e, ErrNeedsElevation) {
		t.Fatal("withEventContext must preserve the sentinel")
	}
	if e.EventID != 42 {
		t.Fatalf("EventID = %d, want 42", e.EventID)
	}
}

func TestWithEventContextDoesNotMutateOriginal(t *testing.T) {
	base := newHostError(ErrUnknownHost, 1, "ctx")
	annotated := base.withEventContext(*MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}"), 7)
	if !base.Provider.IsZero() {
		t.Fatal("withEventContext must not mutate the receiver")
	}
	if annotated.Provider.IsZero() {
		t.Fatal("withEventContext must set Provider on the copy")
	}
}
