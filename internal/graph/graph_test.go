package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestNew_SimpleChain(t *testing.T) {
	g, err := New([]NodeDef{
		{Type: "A"},
		{Type: "B", DependsOn: []string{"A"}},
		{Type: "C", DependsOn: []string{"B"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Size() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.Size())
	}

	// Проверяем зависимости и dependents
	nodeA := g.Node("A")
	if !nodeA.IsRoot() {
		t.Error("A should be a root node")
	}
	if len(nodeA.Dependents) != 1 || nodeA.Dependents[0] != "B" {
		t.Errorf("A should have dependent B, got %v", nodeA.Dependents)
	}

	nodeC := g.Node("C")
	if len(nodeC.DependsOn) != 1 || nodeC.DependsOn[0] != "B" {
		t.Error("C should depend on B")
	}

	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(g.Order(), want) {
		t.Errorf("expected order %v, got %v", want, g.Order())
	}
}

func TestNew_Diamond(t *testing.T) {
	// A → B → D
	// A → C → D
	g, err := New([]NodeDef{
		{Type: "A"},
		{Type: "B", DependsOn: []string{"A"}},
		{Type: "C", DependsOn: []string{"A"}},
		{Type: "D", DependsOn: []string{"B", "C"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"A", "B", "C", "D"}
	if !reflect.DeepEqual(g.Order(), want) {
		t.Errorf("expected order %v, got %v", want, g.Order())
	}
}

func TestNew_DeclarationOrderBreaksTies(t *testing.T) {
	// X и Y независимы: порядок должен совпадать с порядком объявления
	g, err := New([]NodeDef{
		{Type: "Y"},
		{Type: "X"},
		{Type: "Z", DependsOn: []string{"X", "Y"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Y", "X", "Z"}
	if !reflect.DeepEqual(g.Order(), want) {
		t.Errorf("expected order %v, got %v", want, g.Order())
	}
}

func TestNew_CycleDetected(t *testing.T) {
	_, err := New([]NodeDef{
		{Type: "A", DependsOn: []string{"C"}},
		{Type: "B", DependsOn: []string{"A"}},
		{Type: "C", DependsOn: []string{"B"}},
	})
	if !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestNew_UnknownDependency(t *testing.T) {
	_, err := New([]NodeDef{
		{Type: "A", DependsOn: []string{"missing"}},
	})
	if !errors.Is(err, ErrUnknownDependency) {
		t.Errorf("expected ErrUnknownDependency, got %v", err)
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatal("expected *ConfigError")
	}
	if cfgErr.Subject != "A" {
		t.Errorf("expected subject A, got %s", cfgErr.Subject)
	}
}

func TestNew_SelfDependency(t *testing.T) {
	_, err := New([]NodeDef{
		{Type: "A", DependsOn: []string{"A"}},
	})
	if !errors.Is(err, ErrSelfDependency) {
		t.Errorf("expected ErrSelfDependency, got %v", err)
	}
}

func TestNew_DuplicateNodeType(t *testing.T) {
	_, err := New([]NodeDef{
		{Type: "A"},
		{Type: "A"},
	})
	if !errors.Is(err, ErrDuplicateNodeType) {
		t.Errorf("expected ErrDuplicateNodeType, got %v", err)
	}
}

func TestNew_EmptyGraph(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, ErrEmptyNodes) {
		t.Errorf("expected ErrEmptyNodes, got %v", err)
	}
}

func TestDescendants_FromMiddle(t *testing.T) {
	// A → B → D, A → C, D и C независимы от B/C соответственно
	g, err := New([]NodeDef{
		{Type: "A"},
		{Type: "B", DependsOn: []string{"A"}},
		{Type: "C", DependsOn: []string{"A"}},
		{Type: "D", DependsOn: []string{"B"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := g.Descendants([]string{"B"})
	want := []string{"B", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDescendants_SeedUnion(t *testing.T) {
	g, err := New([]NodeDef{
		{Type: "A"},
		{Type: "B"},
		{Type: "C", DependsOn: []string{"A", "B"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// C достижим из обоих seeds, но должен попасть в результат один раз
	got := g.Descendants([]string{"A", "B"})
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDescendants_Deterministic(t *testing.T) {
	defs := []NodeDef{
		{Type: "match"},
		{Type: "keypoints", DependsOn: []string{"match"}},
		{Type: "checklist", DependsOn: []string{"keypoints"}},
		{Type: "draft", DependsOn: []string{"keypoints", "match"}},
	}

	g1, err := New(defs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g2, err := New(defs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := g1.Descendants([]string{"match"})
	second := g2.Descendants([]string{"match"})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("descendants order not deterministic: %v vs %v", first, second)
	}

	// Топологическая корректность: каждая зависимость раньше зависимого
	pos := make(map[string]int, len(first))
	for i, nodeType := range first {
		pos[nodeType] = i
	}
	for _, nodeType := range first {
		for _, dep := range g1.Node(nodeType).DependsOn {
			depPos, inScope := pos[dep]
			if inScope && depPos >= pos[nodeType] {
				t.Errorf("dependency %s does not precede %s in %v", dep, nodeType, first)
			}
		}
	}
}

func TestDescendants_UnknownSeedIgnored(t *testing.T) {
	g, err := New([]NodeDef{{Type: "A"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := g.Descendants([]string{"missing"})
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
