package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected uuid, got %q: %v", first, err)
	}
}

func TestSequenceGenerator_Exhausted(t *testing.T) {
	t.Parallel()

	gen := NewSequenceGenerator("a")
	if got, err := gen.NewID(); err != nil || got != "a" {
		t.Fatalf("unexpected first id=%q err=%v", got, err)
	}
	if _, err := gen.NewID(); err == nil {
		t.Fatalf("expected exhausted error")
	}
}
