package config

import (
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Casegraph/internal/graph"
)

const validConfig = `
step_timeout: 45s
supersede_active: true

nodes:
  - type: legal_ground_match
    endpoint: http://matcher:8080/recompute
  - type: keypoints
    depends_on: [legal_ground_match]
    endpoint: http://keypoints:8080/recompute
  - type: checklist
    depends_on: [keypoints]
    endpoint: http://checklist:8080/recompute

triggers:
  - event: process_event_added
    entity: process_event
    seeds: [legal_ground_match]
  - event: keypoint_edited
    entity: keypoint
    seeds: [keypoints]

sweep:
  cron: "0 3 * * *"
  window: 12h
`

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(cfg.Nodes))
	}
	if len(cfg.Triggers) != 2 {
		t.Errorf("expected 2 triggers, got %d", len(cfg.Triggers))
	}
	if !cfg.SupersedeActive {
		t.Error("expected supersede_active to be set")
	}

	timeout, err := cfg.StepTimeoutDuration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timeout != 45*time.Second {
		t.Errorf("expected 45s step timeout, got %v", timeout)
	}

	if cfg.Sweep == nil {
		t.Fatal("expected sweep config")
	}
	window, err := cfg.Sweep.WindowDuration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if window != 12*time.Hour {
		t.Errorf("expected 12h window, got %v", window)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
nodes:
  - type: legal_ground_match
    endpoint: http://matcher:8080/recompute
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	timeout, _ := cfg.StepTimeoutDuration()
	if timeout != defaultStepTimeout {
		t.Errorf("expected default step timeout, got %v", timeout)
	}
	if cfg.SupersedeActive {
		t.Error("supersede should be off by default")
	}
	if cfg.Sweep != nil {
		t.Error("sweep should be absent by default")
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("   \n"))
	if !errors.Is(err, ErrEmptyConfig) {
		t.Errorf("expected ErrEmptyConfig, got %v", err)
	}
}

func TestParse_MissingEndpoint(t *testing.T) {
	_, err := Parse([]byte(`
nodes:
  - type: legal_ground_match
`))
	if !errors.Is(err, ErrMissingEndpoint) {
		t.Errorf("expected ErrMissingEndpoint, got %v", err)
	}
}

func TestParse_CycleRejected(t *testing.T) {
	_, err := Parse([]byte(`
nodes:
  - type: a
    depends_on: [b]
    endpoint: http://a/recompute
  - type: b
    depends_on: [a]
    endpoint: http://b/recompute
`))
	if !errors.Is(err, graph.ErrCyclicDependency) {
		t.Errorf("expected cycle error, got %v", err)
	}
}

func TestParse_UnknownTriggerSeed(t *testing.T) {
	_, err := Parse([]byte(`
nodes:
  - type: legal_ground_match
    endpoint: http://matcher:8080/recompute
triggers:
  - event: process_event_added
    entity: process_event
    seeds: [nonexistent]
`))
	if !errors.Is(err, graph.ErrUnknownSeed) {
		t.Errorf("expected unknown seed error, got %v", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte(`
step_timeout: soon
nodes:
  - type: legal_ground_match
    endpoint: http://matcher:8080/recompute
`))
	if !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestBuildGraph_Order(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, err := cfg.BuildGraph()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := g.Order()
	if len(order) != 3 || order[0] != "legal_ground_match" || order[2] != "checklist" {
		t.Errorf("unexpected topological order: %v", order)
	}
}

func TestBuildRegistry(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	registry := cfg.BuildRegistry()
	for _, node := range cfg.Nodes {
		if !registry.Has(node.Type) {
			t.Errorf("expected recomputer for %s", node.Type)
		}
	}
}
