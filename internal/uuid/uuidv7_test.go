package uuid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	id := New()
	if !IsValid(id) {
		t.Fatalf("expected valid uuid, got %q", id)
	}
	if id[14] != '7' {
		t.Errorf("expected version 7, got %q", id)
	}

	a, b := New(), New()
	if a == b {
		t.Error("expected distinct ids")
	}
}

func TestParse(t *testing.T) {
	upper := strings.ToUpper("0192a4e2-6b1f-7c3a-9d2e-4f5a6b7c8d9e")
	got, err := Parse(upper)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != strings.ToLower(upper) {
		t.Errorf("expected canonical form, got %q", got)
	}

	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for invalid uuid")
	}
	if IsValid("12345") {
		t.Error("expected 12345 to be invalid")
	}
}
