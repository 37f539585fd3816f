package api

import (
	"log/slog"

	"github.com/shaiso/Casegraph/internal/graph"
	"github.com/shaiso/Casegraph/internal/mq"
	"github.com/shaiso/Casegraph/internal/orchestrator"
	"github.com/shaiso/Casegraph/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	orch      *orchestrator.Orchestrator
	jobRepo   *repo.JobRepo
	graph     *graph.Graph
	triggers  *graph.TriggerTable
	publisher *mq.Publisher
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Orchestrator *orchestrator.Orchestrator
	JobRepo      *repo.JobRepo
	Graph        *graph.Graph
	Triggers     *graph.TriggerTable
	Publisher    *mq.Publisher
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		orch:      cfg.Orchestrator,
		jobRepo:   cfg.JobRepo,
		graph:     cfg.Graph,
		triggers:  cfg.Triggers,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}
