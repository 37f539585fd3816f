package fingerprint

import (
	"errors"
	"testing"
)

func TestCompute_Deterministic(t *testing.T) {
	inputs := map[string]any{
		"trigger": map[string]any{"event_id": "e1", "text": "претензия"},
	}

	first, err := Compute("legal_ground_match", inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Compute("legal_ground_match", inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("same inputs produced different fingerprints: %s vs %s", first, second)
	}
}

func TestCompute_MapOrderIndependent(t *testing.T) {
	// map-ы неупорядочены: перестановка ключей не должна менять хэш
	a := map[string]any{
		"grounds":  []any{"392", "81"},
		"keywords": map[string]any{"x": 1, "y": 2, "z": 3},
	}
	b := map[string]any{
		"keywords": map[string]any{"z": 3, "y": 2, "x": 1},
		"grounds":  []any{"392", "81"},
	}

	fpA, err := Compute("keypoint_extraction", a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fpB, err := Compute("keypoint_extraction", b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fpA != fpB {
		t.Error("map key order changed the fingerprint")
	}
}

func TestCompute_ContentChangeChangesHash(t *testing.T) {
	base := map[string]any{"text": "иск подан"}
	changed := map[string]any{"text": "иск подан в срок"}

	fpBase, err := Compute("keypoint_extraction", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fpChanged, err := Compute("keypoint_extraction", changed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fpBase == fpChanged {
		t.Error("content change did not change the fingerprint")
	}
}

func TestCompute_ListOrderMatters(t *testing.T) {
	// Списки упорядочены: перестановка элементов меняет хэш
	a := map[string]any{"items": []any{"first", "second"}}
	b := map[string]any{"items": []any{"second", "first"}}

	fpA, _ := Compute("n", a)
	fpB, _ := Compute("n", b)
	if fpA == fpB {
		t.Error("list reordering should change the fingerprint")
	}
}

func TestCompute_NodeTypeAffectsHash(t *testing.T) {
	inputs := map[string]any{"text": "одинаковые входы"}

	fpA, _ := Compute("keypoint_extraction", inputs)
	fpB, _ := Compute("keypoint_checklist", inputs)
	if fpA == fpB {
		t.Error("different node types should produce different fingerprints")
	}
}

func TestCompute_EmptyInputs(t *testing.T) {
	fpNil, err := Compute("n", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fpEmpty, err := Compute("n", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fpNil == "" || fpEmpty == "" {
		t.Error("empty inputs should still produce a fingerprint")
	}
}

func TestCompute_NotHashableInput(t *testing.T) {
	_, err := Compute("n", map[string]any{"ch": make(chan int)})
	if err == nil {
		t.Fatal("expected error for non-serializable input")
	}

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if valErr.NodeType != "n" {
		t.Errorf("expected node type n, got %s", valErr.NodeType)
	}
}

func TestCompute_NestedStructures(t *testing.T) {
	a := map[string]any{
		"match": map[string]any{
			"grounds": []any{
				map[string]any{"code": "392", "score": 0.91},
				map[string]any{"code": "81", "score": 0.44},
			},
		},
	}
	b := map[string]any{
		"match": map[string]any{
			"grounds": []any{
				map[string]any{"score": 0.91, "code": "392"},
				map[string]any{"score": 0.44, "code": "81"},
			},
		},
	}

	fpA, err := Compute("draft:JUDICIAL_COMPLAINT", a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fpB, err := Compute("draft:JUDICIAL_COMPLAINT", b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fpA != fpB {
		t.Error("nested map key order changed the fingerprint")
	}
}
