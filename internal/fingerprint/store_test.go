package fingerprint

import (
	"context"
	"testing"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, ok, err := store.Get(ctx, "case-1", "legal_ground_match"); err != nil || ok {
		t.Fatalf("expected absent entry, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "case-1", "legal_ground_match", "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fp, ok, err := store.Get(ctx, "case-1", "legal_ground_match")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || fp != "abc" {
		t.Errorf("expected abc, got %q ok=%v", fp, ok)
	}
}

func TestMemoryStore_KeysIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "case-1", "legal_ground_match", "aaa")
	store.Set(ctx, "case-2", "legal_ground_match", "bbb")
	store.Set(ctx, "case-1", "keypoint_extraction", "ccc")

	if store.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", store.Len())
	}

	fp, _, _ := store.Get(ctx, "case-1", "legal_ground_match")
	if fp != "aaa" {
		t.Errorf("case-1/legal_ground_match: expected aaa, got %s", fp)
	}
	fp, _, _ = store.Get(ctx, "case-2", "legal_ground_match")
	if fp != "bbb" {
		t.Errorf("case-2/legal_ground_match: expected bbb, got %s", fp)
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "case-1", "n", "old")
	store.Set(ctx, "case-1", "n", "new")

	fp, _, _ := store.Get(ctx, "case-1", "n")
	if fp != "new" {
		t.Errorf("expected new, got %s", fp)
	}
}
