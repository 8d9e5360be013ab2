package core

import (
	"testing"
)

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	if a.IsEmpty() || b.IsEmpty() {
		t.Fatal("generated IDs must not be empty")
	}
	if a == b {
		t.Error("consecutive IDs must differ")
	}
	if len(a.String()) != 36 {
		t.Errorf("expected a canonical UUID string, got %q", a)
	}
}

func TestParseColumnKey(t *testing.T) {
	key, err := ParseColumnKey("age")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.String() != "age" {
		t.Errorf("expected age, got %q", key)
	}

	for _, bad := range []string{"", "   "} {
		if _, err := ParseColumnKey(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseRunID(t *testing.T) {
	if _, err := ParseRunID(""); err == nil {
		t.Error("expected error for empty run ID")
	}
	id, err := ParseRunID("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "run-1" {
		t.Errorf("expected run-1, got %q", id)
	}
}
