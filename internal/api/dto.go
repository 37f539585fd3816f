package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Casegraph/internal/domain"
)

// Event DTOs

// SubmitEventRequest — входящее событие по делу.
type SubmitEventRequest struct {
	CaseID     string         `json:"case_id"`
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`

	// Async — поставить событие в очередь вместо синхронного пересчёта.
	Async bool `json:"async,omitempty"`
}

// AcceptedResponse — подтверждение постановки события в очередь.
type AcceptedResponse struct {
	CaseID    string `json:"case_id"`
	EventType string `json:"event_type"`
	Queued    bool   `json:"queued"`
}

// Job DTOs

// JobResponse — ответ с job.
type JobResponse struct {
	ID         uuid.UUID         `json:"id"`
	CaseID     string            `json:"case_id"`
	EventType  string            `json:"event_type"`
	EntityType string            `json:"entity_type,omitempty"`
	EntityID   string            `json:"entity_id,omitempty"`
	Status     string            `json:"status"`
	Counts     domain.StepCounts `json:"counts"`
	Steps      []StepResponse    `json:"steps,omitempty"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// StepResponse — ответ с шагом job.
type StepResponse struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	ErrorKind  string             `json:"error_kind,omitempty"`
	Error      string             `json:"error,omitempty"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

// JobFromDomain конвертирует domain.Job в JobResponse.
func JobFromDomain(j domain.Job) JobResponse {
	steps := make([]StepResponse, len(j.Steps))
	for i, s := range j.Steps {
		steps[i] = StepResponse{
			Name:       s.Name,
			Status:     string(s.Status),
			Metrics:    s.Metrics,
			ErrorKind:  string(s.ErrorKind),
			Error:      s.Error,
			StartedAt:  s.StartedAt,
			FinishedAt: s.FinishedAt,
		}
	}

	return JobResponse{
		ID:         j.ID,
		CaseID:     j.CaseID,
		EventType:  j.EventType,
		EntityType: j.EntityType,
		EntityID:   j.EntityID,
		Status:     string(j.Status),
		Counts:     j.Counts(),
		Steps:      steps,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		CreatedAt:  j.CreatedAt,
	}
}

// Graph DTOs

// GraphNodeResponse — узел графа зависимостей.
type GraphNodeResponse struct {
	Type       string   `json:"type"`
	DependsOn  []string `json:"depends_on,omitempty"`
	Dependents []string `json:"dependents,omitempty"`
}

// GraphResponse — граф зависимостей в топологическом порядке.
type GraphResponse struct {
	Nodes []GraphNodeResponse `json:"nodes"`
}

// CancelResponse — результат отмены job дела.
type CancelResponse struct {
	CaseID    string `json:"case_id"`
	Cancelled bool   `json:"cancelled"`
}
