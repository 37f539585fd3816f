package graph

import (
	"errors"
	"reflect"
	"testing"
)

func testGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New([]NodeDef{
		{Type: "legal_ground_match"},
		{Type: "keypoint_extraction", DependsOn: []string{"legal_ground_match"}},
		{Type: "keypoint_checklist", DependsOn: []string{"keypoint_extraction"}},
	})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func TestSeedsFor_Basic(t *testing.T) {
	g := testGraph(t)
	table, err := NewTriggerTable([]TriggerRule{
		{Event: "process_event_added", Entity: "process_event", Seeds: []string{"legal_ground_match"}},
		{Event: "keypoint_edited", Entity: "keypoint", Seeds: []string{"keypoint_checklist"}},
	}, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seeds := table.SeedsFor("process_event_added", "process_event")
	want := []string{"legal_ground_match"}
	if !reflect.DeepEqual(seeds, want) {
		t.Errorf("expected %v, got %v", want, seeds)
	}
}

func TestSeedsFor_UnionWithoutDuplicates(t *testing.T) {
	g := testGraph(t)

	// Два правила на одну пару: seeds объединяются, дубликаты отбрасываются
	table, err := NewTriggerTable([]TriggerRule{
		{Event: "evidence_added", Entity: "evidence", Seeds: []string{"legal_ground_match", "keypoint_extraction"}},
		{Event: "evidence_added", Entity: "evidence", Seeds: []string{"keypoint_extraction", "keypoint_checklist"}},
	}, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seeds := table.SeedsFor("evidence_added", "evidence")
	want := []string{"legal_ground_match", "keypoint_extraction", "keypoint_checklist"}
	if !reflect.DeepEqual(seeds, want) {
		t.Errorf("expected %v, got %v", want, seeds)
	}
}

func TestSeedsFor_UnknownPairIsEmpty(t *testing.T) {
	g := testGraph(t)
	table, err := NewTriggerTable([]TriggerRule{
		{Event: "process_event_added", Entity: "process_event", Seeds: []string{"legal_ground_match"}},
	}, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seeds := table.SeedsFor("noop_event", "x"); len(seeds) != 0 {
		t.Errorf("expected empty seeds for unknown pair, got %v", seeds)
	}
}

func TestNewTriggerTable_UnknownSeed(t *testing.T) {
	g := testGraph(t)
	_, err := NewTriggerTable([]TriggerRule{
		{Event: "evidence_added", Entity: "evidence", Seeds: []string{"no_such_node"}},
	}, g)
	if !errors.Is(err, ErrUnknownSeed) {
		t.Errorf("expected ErrUnknownSeed, got %v", err)
	}
}

func TestNewTriggerTable_EmptyEvent(t *testing.T) {
	g := testGraph(t)
	_, err := NewTriggerTable([]TriggerRule{
		{Event: "", Entity: "evidence", Seeds: []string{"legal_ground_match"}},
	}, g)
	if !errors.Is(err, ErrEmptyTriggerEvent) {
		t.Errorf("expected ErrEmptyTriggerEvent, got %v", err)
	}
}

func TestNewTriggerTable_EmptySeeds(t *testing.T) {
	g := testGraph(t)
	_, err := NewTriggerTable([]TriggerRule{
		{Event: "evidence_added", Entity: "evidence"},
	}, g)
	if !errors.Is(err, ErrEmptyTriggerSeeds) {
		t.Errorf("expected ErrEmptyTriggerSeeds, got %v", err)
	}
}
