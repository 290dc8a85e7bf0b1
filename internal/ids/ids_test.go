package ids

import (
	"testing"
	"time"
)

func TestNewRunID_ShapeAndValidation(t *testing.T) {
	now := time.Date(2026, 2, 15, 18, 0, 12, 0, time.UTC)
	id, err := NewRunID(now)
	if err != nil {
		t.Fatalf("NewRunID: %v", err)
	}
	if !IsValidRunID(id) {
		t.Fatalf("generated id does not validate: %q", id)
	}
	if id[:16] != "20260215-180012Z" {
		t.Fatalf("unexpected timestamp prefix: %q", id)
	}
}

func TestIsValidRunID_RejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "run-1", "20260215-180012Z", "20260215-180012Z-XYZXYZ"} {
		if IsValidRunID(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
