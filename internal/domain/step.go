package domain

import "time"

// Step — выполнение одного узла графа внутри job.
//
// Step создаётся оркестратором когда узел попадает в scope прогона,
// и после финализации не изменяется. Steps внутри job append-only.
type Step struct {
	// Name — тип узла (например, "legal_ground_match").
	Name string `json:"name"`

	// Status — текущий статус шага.
	Status StepStatus `json:"status"`

	// Metrics — числовые счётчики выполнения (items_produced, duration_ms и т.п.).
	// Для пропущенных шагов пустые.
	Metrics map[string]float64 `json:"metrics,omitempty"`

	// ErrorKind — категория ошибки. Заполнена только при Status == FAILED.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// Error — текст ошибки. Непустой тогда и только тогда, когда Status == FAILED.
	Error string `json:"error,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время планирования шага.
	CreatedAt time.Time `json:"created_at"`
}

// NewStep создаёт шаг в статусе PENDING.
func NewStep(name string) *Step {
	return &Step{
		Name:      name,
		Status:    StepStatusPending,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
func (s *Step) Duration() time.Duration {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

// MarkRunning переводит шаг в статус RUNNING.
func (s *Step) MarkRunning() {
	now := time.Now()
	s.Status = StepStatusRunning
	s.StartedAt = &now
}

// MarkSucceeded переводит шаг в статус SUCCESS с метриками пересчёта.
func (s *Step) MarkSucceeded(metrics map[string]float64) {
	now := time.Now()
	s.Status = StepStatusSuccess
	s.FinishedAt = &now
	s.Metrics = metrics
}

// MarkSkippedUnchanged помечает шаг пропущенным: входы не изменились.
func (s *Step) MarkSkippedUnchanged() {
	now := time.Now()
	s.Status = StepStatusSkippedUnchanged
	s.FinishedAt = &now
}

// MarkSkippedBlocked помечает шаг заблокированным упавшей upstream-зависимостью.
func (s *Step) MarkSkippedBlocked() {
	now := time.Now()
	s.Status = StepStatusSkippedBlocked
	s.FinishedAt = &now
}

// MarkFailed переводит шаг в статус FAILED с категорией и текстом ошибки.
func (s *Step) MarkFailed(kind ErrorKind, errMsg string) {
	now := time.Now()
	s.Status = StepStatusFailed
	s.FinishedAt = &now
	s.ErrorKind = kind
	s.Error = errMsg
}
