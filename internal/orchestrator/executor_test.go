package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Casegraph/internal/domain"
	"github.com/shaiso/Casegraph/internal/fingerprint"
	"github.com/shaiso/Casegraph/internal/recompute"
)

// countingRecomputer tracks invocations and remembers its last output per case.
type countingRecomputer struct {
	mu     sync.Mutex
	calls  int
	fail   error
	latest map[string]map[string]any
}

func newCountingRecomputer() *countingRecomputer {
	return &countingRecomputer{latest: make(map[string]map[string]any)}
}

func (r *countingRecomputer) Recompute(_ context.Context, caseID string, _ map[string]any) (*recompute.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.fail != nil {
		return nil, r.fail
	}

	out := map[string]any{"revision": float64(r.calls)}
	r.latest[caseID] = out
	return &recompute.Result{
		Output:  out,
		Metrics: map[string]float64{"items_produced": 3},
	}, nil
}

func (r *countingRecomputer) Latest(_ context.Context, caseID string) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, ok := r.latest[caseID]
	if !ok {
		return nil, recompute.ErrArtifactNotFound
	}
	return out, nil
}

func (r *countingRecomputer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newTestExecutor(timeout time.Duration) (*StepExecutor, *recompute.Registry, *fingerprint.MemoryStore) {
	registry := recompute.NewRegistry()
	store := fingerprint.NewMemoryStore()
	return NewStepExecutor(registry, store, timeout, nil), registry, store
}

func TestExecute_Success(t *testing.T) {
	exec, registry, store := newTestExecutor(0)
	rec := newCountingRecomputer()
	registry.Register("keypoints", rec)

	inputs := map[string]any{"legal_ground_match": map[string]any{"grounds": []any{"art. 12"}}}
	step, output := exec.Execute(context.Background(), "case-1", "keypoints", inputs)

	if step.Status != domain.StepStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s (%s)", step.Status, step.Error)
	}
	if output == nil || output["revision"] != float64(1) {
		t.Errorf("expected recomputed output, got %v", output)
	}
	if step.Metrics["items_produced"] != 3 {
		t.Errorf("expected recomputer metrics to be kept, got %v", step.Metrics)
	}
	if _, ok := step.Metrics["duration_ms"]; !ok {
		t.Error("expected duration_ms metric")
	}
	if store.Len() != 1 {
		t.Errorf("expected fingerprint to be stored, store has %d entries", store.Len())
	}
}

func TestExecute_SkipUnchanged(t *testing.T) {
	exec, registry, _ := newTestExecutor(0)
	rec := newCountingRecomputer()
	registry.Register("keypoints", rec)

	inputs := map[string]any{"legal_ground_match": map[string]any{"grounds": []any{"art. 12"}}}

	first, _ := exec.Execute(context.Background(), "case-1", "keypoints", inputs)
	if first.Status != domain.StepStatusSuccess {
		t.Fatalf("expected first run SUCCESS, got %s", first.Status)
	}

	second, output := exec.Execute(context.Background(), "case-1", "keypoints", inputs)
	if second.Status != domain.StepStatusSkippedUnchanged {
		t.Fatalf("expected SKIPPED_UNCHANGED, got %s", second.Status)
	}
	if rec.callCount() != 1 {
		t.Errorf("recomputer should not be invoked for unchanged inputs, got %d calls", rec.callCount())
	}
	// Skipped step still hands the current artifact to dependents
	if output == nil || output["revision"] != float64(1) {
		t.Errorf("expected latest artifact as output, got %v", output)
	}
	if second.Error != "" {
		t.Errorf("skipped step should have no error, got %q", second.Error)
	}
}

func TestExecute_ChangedInputsRecompute(t *testing.T) {
	exec, registry, _ := newTestExecutor(0)
	rec := newCountingRecomputer()
	registry.Register("keypoints", rec)

	first, _ := exec.Execute(context.Background(), "case-1", "keypoints", map[string]any{"v": float64(1)})
	second, _ := exec.Execute(context.Background(), "case-1", "keypoints", map[string]any{"v": float64(2)})

	if first.Status != domain.StepStatusSuccess || second.Status != domain.StepStatusSuccess {
		t.Fatalf("expected both runs SUCCESS, got %s / %s", first.Status, second.Status)
	}
	if rec.callCount() != 2 {
		t.Errorf("expected 2 recomputations, got %d", rec.callCount())
	}
}

func TestExecute_KeyOrderDoesNotInvalidate(t *testing.T) {
	exec, registry, _ := newTestExecutor(0)
	rec := newCountingRecomputer()
	registry.Register("keypoints", rec)

	exec.Execute(context.Background(), "case-1", "keypoints", map[string]any{"a": float64(1), "b": float64(2)})
	step, _ := exec.Execute(context.Background(), "case-1", "keypoints", map[string]any{"b": float64(2), "a": float64(1)})

	if step.Status != domain.StepStatusSkippedUnchanged {
		t.Errorf("map key order should not change the fingerprint, got %s", step.Status)
	}
}

func TestExecute_FailureDoesNotAdvanceFingerprint(t *testing.T) {
	exec, registry, store := newTestExecutor(0)
	rec := newCountingRecomputer()
	rec.fail = errors.New("embedding service unavailable")
	registry.Register("keypoints", rec)

	inputs := map[string]any{"v": float64(1)}

	step, output := exec.Execute(context.Background(), "case-1", "keypoints", inputs)
	if step.Status != domain.StepStatusFailed {
		t.Fatalf("expected FAILED, got %s", step.Status)
	}
	if step.ErrorKind != domain.ErrorKindRecompute {
		t.Errorf("expected RECOMPUTE kind, got %s", step.ErrorKind)
	}
	if output != nil {
		t.Errorf("failed step should have no output, got %v", output)
	}
	if store.Len() != 0 {
		t.Error("failed step must not advance the fingerprint")
	}

	// Same inputs again after the dependency recovers: recomputed, not skipped
	rec.fail = nil
	step, _ = exec.Execute(context.Background(), "case-1", "keypoints", inputs)
	if step.Status != domain.StepStatusSuccess {
		t.Errorf("expected retry to recompute, got %s", step.Status)
	}
	if rec.callCount() != 2 {
		t.Errorf("expected 2 invocations, got %d", rec.callCount())
	}
}

func TestExecute_Timeout(t *testing.T) {
	exec, registry, store := newTestExecutor(20 * time.Millisecond)
	registry.Register("draft", &recompute.FuncRecomputer{
		RecomputeFn: func(ctx context.Context, _ string, _ map[string]any) (*recompute.Result, error) {
			// Ignores the context entirely
			time.Sleep(200 * time.Millisecond)
			return &recompute.Result{}, nil
		},
	})

	step, _ := exec.Execute(context.Background(), "case-1", "draft", map[string]any{"v": float64(1)})

	if step.Status != domain.StepStatusFailed {
		t.Fatalf("expected FAILED, got %s", step.Status)
	}
	if step.ErrorKind != domain.ErrorKindTimeout {
		t.Errorf("expected TIMEOUT kind, got %s", step.ErrorKind)
	}
	if store.Len() != 0 {
		t.Error("timed out step must not advance the fingerprint")
	}
}

func TestExecute_ContextAwareTimeout(t *testing.T) {
	exec, registry, _ := newTestExecutor(20 * time.Millisecond)
	registry.Register("draft", &recompute.FuncRecomputer{
		RecomputeFn: func(ctx context.Context, _ string, _ map[string]any) (*recompute.Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	step, _ := exec.Execute(context.Background(), "case-1", "draft", map[string]any{"v": float64(1)})

	if step.Status != domain.StepStatusFailed || step.ErrorKind != domain.ErrorKindTimeout {
		t.Errorf("expected FAILED/TIMEOUT, got %s/%s", step.Status, step.ErrorKind)
	}
}

func TestExecute_PanicRecovered(t *testing.T) {
	exec, registry, _ := newTestExecutor(0)
	registry.Register("checklist", &recompute.FuncRecomputer{
		RecomputeFn: func(context.Context, string, map[string]any) (*recompute.Result, error) {
			panic("nil template")
		},
	})

	step, _ := exec.Execute(context.Background(), "case-1", "checklist", map[string]any{"v": float64(1)})

	if step.Status != domain.StepStatusFailed {
		t.Fatalf("expected FAILED, got %s", step.Status)
	}
	if step.ErrorKind != domain.ErrorKindRecompute {
		t.Errorf("expected RECOMPUTE kind, got %s", step.ErrorKind)
	}
	if !strings.Contains(step.Error, "recompute panic") {
		t.Errorf("expected panic to be captured in error, got %q", step.Error)
	}
}

func TestExecute_UnknownNode(t *testing.T) {
	exec, _, _ := newTestExecutor(0)

	step, _ := exec.Execute(context.Background(), "case-1", "unknown", map[string]any{})

	if step.Status != domain.StepStatusFailed || step.ErrorKind != domain.ErrorKindRecompute {
		t.Errorf("expected FAILED/RECOMPUTE for unregistered node, got %s/%s", step.Status, step.ErrorKind)
	}
}

func TestExecute_UnhashableInputs(t *testing.T) {
	exec, registry, _ := newTestExecutor(0)
	rec := newCountingRecomputer()
	registry.Register("keypoints", rec)

	step, _ := exec.Execute(context.Background(), "case-1", "keypoints", map[string]any{
		"bad": func() {},
	})

	if step.Status != domain.StepStatusFailed {
		t.Fatalf("expected FAILED, got %s", step.Status)
	}
	if step.ErrorKind != domain.ErrorKindValidation {
		t.Errorf("expected VALIDATION kind, got %s", step.ErrorKind)
	}
	if rec.callCount() != 0 {
		t.Error("recomputer should not run on unhashable inputs")
	}
}

func TestExecute_LatestFailureOnUnchangedNode(t *testing.T) {
	exec, registry, _ := newTestExecutor(0)

	calls := 0
	failLatest := false
	registry.Register("keypoints", &recompute.FuncRecomputer{
		RecomputeFn: func(context.Context, string, map[string]any) (*recompute.Result, error) {
			calls++
			return &recompute.Result{Output: map[string]any{"ok": true}}, nil
		},
		LatestFn: func(context.Context, string) (map[string]any, error) {
			if failLatest {
				return nil, errors.New("artifact store down")
			}
			return map[string]any{"ok": true}, nil
		},
	})

	inputs := map[string]any{"v": float64(1)}
	exec.Execute(context.Background(), "case-1", "keypoints", inputs)

	// Inputs unchanged, but the current artifact cannot be loaded:
	// dependents would build on missing data, so the step fails
	failLatest = true
	step, output := exec.Execute(context.Background(), "case-1", "keypoints", inputs)

	if step.Status != domain.StepStatusFailed {
		t.Fatalf("expected FAILED, got %s", step.Status)
	}
	if output != nil {
		t.Errorf("expected no output, got %v", output)
	}
	if calls != 1 {
		t.Errorf("recomputer should not be re-invoked, got %d calls", calls)
	}
}

func TestExecute_CancelledJobDoesNotAbortStep(t *testing.T) {
	exec, registry, _ := newTestExecutor(time.Second)
	rec := newCountingRecomputer()
	registry.Register("keypoints", rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A step already scheduled runs to completion even if the job is cancelled
	step, _ := exec.Execute(ctx, "case-1", "keypoints", map[string]any{"v": float64(1)})

	if step.Status != domain.StepStatusSuccess {
		t.Errorf("expected step to finish despite cancelled job, got %s (%s)", step.Status, step.Error)
	}
}
