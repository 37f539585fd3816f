package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/Casegraph/internal/domain"
	"github.com/shaiso/Casegraph/internal/repo"
)

// ListJobs возвращает список jobs с фильтрацией.
// GET /api/v1/jobs?case_id=...&status=...&limit=...&offset=...
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := repo.JobFilter{
		CaseID: r.URL.Query().Get("case_id"),
		Limit:  parseIntOr(r.URL.Query().Get("limit"), 50),
		Offset: parseIntOr(r.URL.Query().Get("offset"), 0),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.JobStatus(status)
	}

	jobs, err := h.jobRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]JobResponse, len(jobs))
	for i, job := range jobs {
		result[i] = JobFromDomain(job)
	}

	List(w, result, len(result))
}

// GetJob возвращает job по ID вместе с шагами.
// GET /api/v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	Success(w, JobFromDomain(*job))
}

// GetGraph возвращает граф зависимостей в топологическом порядке.
// GET /api/v1/graph
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	order := h.graph.Order()
	nodes := make([]GraphNodeResponse, 0, len(order))
	for _, nodeType := range order {
		node := h.graph.Node(nodeType)
		nodes = append(nodes, GraphNodeResponse{
			Type:       node.Type,
			DependsOn:  node.DependsOn,
			Dependents: node.Dependents,
		})
	}

	Success(w, GraphResponse{Nodes: nodes})
}

// parseIntOr возвращает целое из строки или значение по умолчанию.
func parseIntOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}
