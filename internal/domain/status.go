package domain

// JobStatus — статус выполнения job.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ PARTIAL_FAILURE
//	                  ↘ FAILED
type JobStatus string

const (
	// JobStatusPending — job создан, но пересчёт ещё не начался.
	JobStatusPending JobStatus = "PENDING"

	// JobStatusRunning — job в процессе выполнения.
	JobStatusRunning JobStatus = "RUNNING"

	// JobStatusCompleted — ни один шаг не упал и не был заблокирован.
	JobStatusCompleted JobStatus = "COMPLETED"

	// JobStatusPartialFailure — часть шагов успешна, часть упала или заблокирована.
	JobStatusPartialFailure JobStatus = "PARTIAL_FAILURE"

	// JobStatusFailed — ни одного успешного шага, есть упавшие или заблокированные.
	JobStatusFailed JobStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный (job завершён).
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusPartialFailure, JobStatusFailed:
		return true
	default:
		return false
	}
}

// StepStatus — статус выполнения одного шага (узла графа) внутри job.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCESS
//	                  ↘ SKIPPED_UNCHANGED (fingerprint совпал, пересчёт не нужен)
//	                  ↘ FAILED
//	        → SKIPPED_BLOCKED (upstream-зависимость упала в этом же job)
type StepStatus string

const (
	// StepStatusPending — шаг запланирован, но ещё не выполнялся.
	StepStatusPending StepStatus = "PENDING"

	// StepStatusRunning — шаг выполняется.
	StepStatusRunning StepStatus = "RUNNING"

	// StepStatusSuccess — пересчёт выполнен успешно, fingerprint обновлён.
	StepStatusSuccess StepStatus = "SUCCESS"

	// StepStatusSkippedUnchanged — входы шага не изменились, пересчёт пропущен.
	StepStatusSkippedUnchanged StepStatus = "SKIPPED_UNCHANGED"

	// StepStatusSkippedBlocked — шаг пропущен из-за упавшей upstream-зависимости.
	StepStatusSkippedBlocked StepStatus = "SKIPPED_BLOCKED"

	// StepStatusFailed — пересчёт завершился ошибкой, fingerprint не обновлён.
	StepStatusFailed StepStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusSuccess, StepStatusSkippedUnchanged, StepStatusSkippedBlocked, StepStatusFailed:
		return true
	default:
		return false
	}
}

// IsSkipped возвращает true, если шаг был пропущен (по любой причине).
func (s StepStatus) IsSkipped() bool {
	return s == StepStatusSkippedUnchanged || s == StepStatusSkippedBlocked
}

// ErrorKind — категория ошибки упавшего шага.
//
// Позволяет потребителю job-результата решить, имеет ли смысл retry
// (TIMEOUT — да, VALIDATION — нет, пока не исправлены входные данные).
type ErrorKind string

const (
	// ErrorKindValidation — входы шага некорректны (не хэшируются / не сериализуются).
	ErrorKindValidation ErrorKind = "VALIDATION"

	// ErrorKindRecompute — логика пересчёта узла завершилась ошибкой.
	ErrorKindRecompute ErrorKind = "RECOMPUTE"

	// ErrorKindTimeout — пересчёт превысил лимит времени на шаг.
	ErrorKindTimeout ErrorKind = "TIMEOUT"
)
