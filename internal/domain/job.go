package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job — один прогон оркестратора по триггеру.
//
// Job создаётся когда:
// - Внешнее событие по делу приходит через API или очередь events.case
// - Scheduler запускает reconcile sweep по недавно активным делам
//
// Job живёт ровно один прогон: создаётся в PENDING, выполняется в RUNNING
// и после финализации становится неизменяемой записью. Steps упорядочены
// в порядке выполнения — по одному на каждый узел, попавший в scope прогона
// (включая пропущенные), так что потребитель может восстановить картину
// прогона без повторного обхода графа.
type Job struct {
	// ID — уникальный идентификатор job.
	ID uuid.UUID `json:"id"`

	// CaseID — идентификатор дела, по которому пересчитываются артефакты.
	CaseID string `json:"case_id"`

	// EventType — тип события-триггера (например, "process_event_added").
	EventType string `json:"event_type"`

	// EntityType — тип сущности, к которой относится событие.
	EntityType string `json:"entity_type"`

	// EntityID — идентификатор сущности события.
	EntityID string `json:"entity_id,omitempty"`

	// InputHash — fingerprint payload триггера.
	// Используется для обнаружения повторной доставки того же события.
	InputHash string `json:"input_hash,omitempty"`

	// Status — текущий статус job.
	Status JobStatus `json:"status"`

	// Steps — шаги прогона в порядке выполнения.
	Steps []Step `json:"steps,omitempty"`

	// StartedAt — время начала выполнения (когда статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время финализации.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания job.
	CreatedAt time.Time `json:"created_at"`
}

// NewJob создаёт job в статусе PENDING.
func NewJob(caseID string, event TriggerEvent) *Job {
	return &Job{
		ID:         uuid.New(),
		CaseID:     caseID,
		EventType:  event.EventType,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Status:     JobStatusPending,
		CreatedAt:  time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если job ещё не завершён.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// IsFinished возвращает true, если job завершён.
func (j *Job) IsFinished() bool {
	return j.Status.IsTerminal()
}

// MarkRunning переводит job в статус RUNNING.
func (j *Job) MarkRunning() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// Finalize вычисляет итоговый статус по шагам и фиксирует время завершения.
//
// Правила агрегации:
//   - COMPLETED — ни один шаг не FAILED и не SKIPPED_BLOCKED
//     (в том числе job без шагов — неизвестный триггер это no-op, не ошибка)
//   - FAILED — есть упавшие или заблокированные шаги и ни одного SUCCESS
//   - PARTIAL_FAILURE — есть хотя бы один SUCCESS и хотя бы один
//     упавший или заблокированный шаг
func (j *Job) Finalize() {
	now := time.Now()
	j.FinishedAt = &now
	j.Status = aggregateStatus(j.Steps)
}

// aggregateStatus вычисляет статус job по финальным статусам шагов.
func aggregateStatus(steps []Step) JobStatus {
	var succeeded, broken int
	for i := range steps {
		switch steps[i].Status {
		case StepStatusSuccess:
			succeeded++
		case StepStatusFailed, StepStatusSkippedBlocked:
			broken++
		}
	}

	switch {
	case broken == 0:
		return JobStatusCompleted
	case succeeded == 0:
		return JobStatusFailed
	default:
		return JobStatusPartialFailure
	}
}

// StepCounts — количество шагов по статусам.
type StepCounts struct {
	Total            int `json:"total"`
	Success          int `json:"success"`
	SkippedUnchanged int `json:"skipped_unchanged"`
	SkippedBlocked   int `json:"skipped_blocked"`
	Failed           int `json:"failed"`
}

// Counts возвращает распределение шагов по статусам.
func (j *Job) Counts() StepCounts {
	c := StepCounts{Total: len(j.Steps)}
	for i := range j.Steps {
		switch j.Steps[i].Status {
		case StepStatusSuccess:
			c.Success++
		case StepStatusSkippedUnchanged:
			c.SkippedUnchanged++
		case StepStatusSkippedBlocked:
			c.SkippedBlocked++
		case StepStatusFailed:
			c.Failed++
		}
	}
	return c
}
