package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrEmptyCaseID — submit без идентификатора дела.
	ErrEmptyCaseID = errors.New("case id is required")

	// ErrEmptyEventType — submit без типа события.
	ErrEmptyEventType = errors.New("event type is required")

	// ErrStepTimeout — пересчёт шага превысил лимит времени.
	ErrStepTimeout = errors.New("step execution timeout")
)
