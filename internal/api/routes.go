package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Events
	mux.Handle("POST /api/v1/events", chain(http.HandlerFunc(h.SubmitEvent)))

	// Jobs
	mux.Handle("GET /api/v1/jobs", chain(http.HandlerFunc(h.ListJobs)))
	mux.Handle("GET /api/v1/jobs/{id}", chain(http.HandlerFunc(h.GetJob)))

	// Cases
	mux.Handle("POST /api/v1/cases/{id}/cancel", chain(http.HandlerFunc(h.CancelCase)))

	// Graph
	mux.Handle("GET /api/v1/graph", chain(http.HandlerFunc(h.GetGraph)))
}
