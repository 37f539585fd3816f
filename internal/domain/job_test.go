package domain

import "testing"

func stepWith(name string, status StepStatus) Step {
	s := NewStep(name)
	s.Status = status
	return *s
}

func finalized(statuses ...StepStatus) *Job {
	job := NewJob("case-1", TriggerEvent{EventType: "process_event_added"})
	job.MarkRunning()
	for i, st := range statuses {
		job.Steps = append(job.Steps, stepWith(string(rune('a'+i)), st))
	}
	job.Finalize()
	return job
}

// --- Finalize aggregation ---

func TestFinalize_AllSuccessCompleted(t *testing.T) {
	job := finalized(StepStatusSuccess, StepStatusSuccess)
	if job.Status != JobStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", job.Status)
	}
	if job.FinishedAt == nil {
		t.Error("expected FinishedAt to be set")
	}
}

func TestFinalize_SkippedUnchangedStillCompleted(t *testing.T) {
	// A fully memoized run is a successful run.
	job := finalized(StepStatusSkippedUnchanged, StepStatusSkippedUnchanged)
	if job.Status != JobStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", job.Status)
	}
}

func TestFinalize_NoStepsCompleted(t *testing.T) {
	// Unknown trigger produces an empty scope, which is a no-op, not a failure.
	job := finalized()
	if job.Status != JobStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", job.Status)
	}
}

func TestFinalize_MixedPartialFailure(t *testing.T) {
	job := finalized(StepStatusSuccess, StepStatusFailed, StepStatusSkippedBlocked)
	if job.Status != JobStatusPartialFailure {
		t.Errorf("status = %s, want PARTIAL_FAILURE", job.Status)
	}
}

func TestFinalize_NoSuccessFailed(t *testing.T) {
	job := finalized(StepStatusFailed, StepStatusSkippedBlocked)
	if job.Status != JobStatusFailed {
		t.Errorf("status = %s, want FAILED", job.Status)
	}
}

func TestFinalize_BlockedOnlyFailed(t *testing.T) {
	// Blocked steps count against the job even when nothing ran.
	job := finalized(StepStatusSkippedBlocked)
	if job.Status != JobStatusFailed {
		t.Errorf("status = %s, want FAILED", job.Status)
	}
}

func TestFinalize_SkippedUnchangedPlusFailed(t *testing.T) {
	// Memoized steps are not successes for aggregation purposes:
	// if the only executed step failed, the job failed.
	job := finalized(StepStatusSkippedUnchanged, StepStatusFailed)
	if job.Status != JobStatusFailed {
		t.Errorf("status = %s, want FAILED", job.Status)
	}
}

// --- Counts ---

func TestCounts(t *testing.T) {
	job := finalized(
		StepStatusSuccess,
		StepStatusSuccess,
		StepStatusSkippedUnchanged,
		StepStatusSkippedBlocked,
		StepStatusFailed,
	)

	c := job.Counts()
	if c.Total != 5 {
		t.Errorf("Total = %d, want 5", c.Total)
	}
	if c.Success != 2 {
		t.Errorf("Success = %d, want 2", c.Success)
	}
	if c.SkippedUnchanged != 1 {
		t.Errorf("SkippedUnchanged = %d, want 1", c.SkippedUnchanged)
	}
	if c.SkippedBlocked != 1 {
		t.Errorf("SkippedBlocked = %d, want 1", c.SkippedBlocked)
	}
	if c.Failed != 1 {
		t.Errorf("Failed = %d, want 1", c.Failed)
	}
}
