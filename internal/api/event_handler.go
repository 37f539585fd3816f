package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaiso/Casegraph/internal/domain"
	"github.com/shaiso/Casegraph/internal/mq"
	"github.com/shaiso/Casegraph/internal/orchestrator"
)

// SubmitEvent принимает событие по делу и синхронно выполняет пересчёт.
// При async=true событие публикуется в очередь events.case.
// POST /api/v1/events
func (h *Handler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req SubmitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.CaseID == "" {
		BadRequest(w, "case_id is required")
		return
	}
	if req.EventType == "" {
		BadRequest(w, "event_type is required")
		return
	}

	if req.Async {
		if h.publisher == nil {
			BadRequest(w, "async submission is not available")
			return
		}
		payload := mq.CaseEventPayload{
			CaseID:     req.CaseID,
			EventType:  req.EventType,
			EntityType: req.EntityType,
			EntityID:   req.EntityID,
			Payload:    req.Payload,
		}
		if err := h.publisher.PublishCaseEvent(r.Context(), payload); err != nil {
			InternalError(w, h.logger, err)
			return
		}
		JSON(w, http.StatusAccepted, DataResponse{Data: AcceptedResponse{
			CaseID:    req.CaseID,
			EventType: req.EventType,
			Queued:    true,
		}})
		return
	}

	event := domain.TriggerEvent{
		EventType:  req.EventType,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Payload:    req.Payload,
	}

	job, err := h.orch.Submit(r.Context(), req.CaseID, event)
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyCaseID) || errors.Is(err, orchestrator.ErrEmptyEventType) {
			BadRequest(w, err.Error())
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, JobFromDomain(*job))
}

// CancelCase отменяет выполняющийся job дела.
// POST /api/v1/cases/{id}/cancel
func (h *Handler) CancelCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	if caseID == "" {
		BadRequest(w, "invalid case id")
		return
	}

	cancelled := h.orch.CancelCase(caseID)
	Success(w, CancelResponse{CaseID: caseID, Cancelled: cancelled})
}
