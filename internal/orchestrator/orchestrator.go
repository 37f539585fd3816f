package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Casegraph/internal/domain"
	"github.com/shaiso/Casegraph/internal/fingerprint"
	"github.com/shaiso/Casegraph/internal/graph"
	"github.com/shaiso/Casegraph/internal/recompute"
	"github.com/shaiso/Casegraph/internal/telemetry"
)

// Default configuration values.
const (
	defaultStepTimeout = 30 * time.Second

	// triggerInputKey — ключ payload триггера во входах корневых узлов.
	triggerInputKey = "trigger"
)

// JobStore — персистентность финализированных jobs (audit trail).
// Реализация: repo.JobRepo.
type JobStore interface {
	// SaveJob сохраняет финализированный job вместе с шагами.
	SaveJob(ctx context.Context, job *domain.Job) error

	// FindCompletedByInputHash ищет COMPLETED job по тому же триггеру
	// с тем же input hash. Возвращает (nil, nil), если такого нет.
	FindCompletedByInputHash(ctx context.Context, caseID, eventType, entityType, inputHash string) (*domain.Job, error)
}

// Publisher — публикация события о финализированном job.
// Реализация: mq.Publisher.
type Publisher interface {
	PublishJobFinalized(ctx context.Context, job *domain.Job) error
}

// Orchestrator — ядро Casegraph: по триггеру определяет затронутые узлы,
// упорядочивает их топологически и прогоняет через StepExecutor
// с транзитивной блокировкой downstream при падениях.
//
// Submit синхронный: job выполняется в вызывающей горутине и возвращается
// уже финализированным. Асинхронность обеспечивают обёртки
// (mq consumer, scheduler). Jobs разных дел независимы и могут
// выполняться параллельно: общего мутабельного состояния, кроме
// fingerprint store, у них нет.
type Orchestrator struct {
	graph    *graph.Graph
	triggers *graph.TriggerTable
	registry *recompute.Registry
	executor *StepExecutor

	jobs      JobStore  // опционально
	publisher Publisher // опционально

	supersede bool
	logger    *slog.Logger

	// active — выполняющиеся jobs по делам (caseID → job).
	mu     sync.Mutex
	active map[string]*activeJob
}

// activeJob — выполняющийся job с функцией отмены.
type activeJob struct {
	jobID  uuid.UUID
	cancel context.CancelFunc
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Graph — граф зависимостей артефактов. Обязателен.
	Graph *graph.Graph

	// Triggers — trigger table. Обязательна.
	Triggers *graph.TriggerTable

	// Registry — реестр recomputer-ов. Обязателен.
	Registry *recompute.Registry

	// Fingerprints — хранилище fingerprint-ов. Обязательно.
	Fingerprints fingerprint.Store

	// Jobs — персистентность jobs (опционально).
	Jobs JobStore

	// Publisher — публикация финализированных jobs (опционально).
	Publisher Publisher

	// StepTimeout — лимит времени на шаг (default: 30s).
	StepTimeout time.Duration

	// SupersedeActive — отменять ли выполняющийся job дела
	// при новом триггере по тому же делу.
	SupersedeActive bool

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	stepTimeout := cfg.StepTimeout
	if stepTimeout <= 0 {
		stepTimeout = defaultStepTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		graph:     cfg.Graph,
		triggers:  cfg.Triggers,
		registry:  cfg.Registry,
		executor:  NewStepExecutor(cfg.Registry, cfg.Fingerprints, stepTimeout, logger),
		jobs:      cfg.Jobs,
		publisher: cfg.Publisher,
		supersede: cfg.SupersedeActive,
		logger:    logger,
		active:    make(map[string]*activeJob),
	}
}

// Submit выполняет один прогон пересчёта по триггеру и возвращает
// финализированный job.
//
// Ошибку возвращает только некорректный вызов (пустой case id / event type);
// любые проблемы самого пересчёта выражены статусами шагов и job.
func (o *Orchestrator) Submit(ctx context.Context, caseID string, event domain.TriggerEvent) (*domain.Job, error) {
	if caseID == "" {
		return nil, ErrEmptyCaseID
	}
	if event.EventType == "" {
		return nil, ErrEmptyEventType
	}

	job := domain.NewJob(caseID, event)
	logger := telemetry.WithCaseID(telemetry.WithJobID(o.logger, job.ID.String()), caseID)

	// Fingerprint payload триггера — для обнаружения повторной доставки
	if hash, err := fingerprint.Compute("trigger:"+event.EventType, event.Payload); err == nil {
		job.InputHash = hash.String()
	} else {
		logger.Warn("trigger payload is not hashable", "error", err)
	}

	// Повторная доставка: то же событие уже успешно обработано
	if o.jobs != nil && job.InputHash != "" {
		existing, err := o.jobs.FindCompletedByInputHash(ctx, caseID, event.EventType, event.EntityType, job.InputHash)
		if err != nil {
			logger.Warn("failed to check for duplicate delivery", "error", err)
		} else if existing != nil {
			logger.Info("duplicate delivery, returning recorded job",
				"existing_job_id", existing.ID,
				"event_type", event.EventType,
			)
			return existing, nil
		}
	}

	runCtx := o.registerActive(ctx, job)
	defer o.unregisterActive(job)

	o.run(runCtx, job, event, logger)
	o.finalizeObservers(ctx, job, logger)

	return job, nil
}

// run выполняет прогон: seeds → scope → шаги по порядку.
func (o *Orchestrator) run(ctx context.Context, job *domain.Job, event domain.TriggerEvent, logger *slog.Logger) {
	job.MarkRunning()

	seeds := o.triggers.SeedsFor(event.EventType, event.EntityType)
	if len(seeds) == 0 {
		// Неизвестный триггер — документированный no-op, не ошибка:
		// продьюсер не должен падать из-за события, которое граф не потребляет
		logger.Info("no seeds for trigger, nothing to recompute",
			"event_type", event.EventType,
			"entity_type", event.EntityType,
		)
		job.Finalize()
		return
	}

	scope := o.graph.Descendants(seeds)
	logger.Info("job started",
		"event_type", event.EventType,
		"seeds", seeds,
		"steps_in_scope", len(scope),
	)

	// outputs — выходы узлов текущего прогона (вход зависимых узлов)
	outputs := make(map[string]map[string]any, len(scope))
	// blocked — упавшие и заблокированные узлы; блокировка транзитивна
	blocked := make(map[string]bool)

	for i, nodeType := range scope {
		// Отмена job: дальнейшие шаги не планируются, текущий уже завершён.
		// Хвост scope фиксируется как SKIPPED_BLOCKED, чтобы последовательность
		// шагов осталась полной — по одному на каждый узел в scope.
		if ctx.Err() != nil {
			logger.Warn("job cancelled, blocking remaining steps", "remaining", len(scope)-i)
			for _, rest := range scope[i:] {
				step := domain.NewStep(rest)
				step.MarkSkippedBlocked()
				o.appendStep(job, step)
			}
			break
		}

		node := o.graph.Node(nodeType)

		if upstreamBlocked(node, blocked) {
			step := domain.NewStep(nodeType)
			step.MarkSkippedBlocked()
			o.appendStep(job, step)
			blocked[nodeType] = true
			continue
		}

		inputs, err := o.gatherInputs(ctx, job.CaseID, node, event, outputs)
		if err != nil {
			// Входы собрать не удалось — шаг падает, downstream блокируется
			step := domain.NewStep(nodeType)
			step.MarkRunning()
			step.MarkFailed(domain.ErrorKindRecompute, err.Error())
			o.appendStep(job, step)
			blocked[nodeType] = true
			continue
		}

		step, output := o.executor.Execute(ctx, job.CaseID, nodeType, inputs)
		o.appendStep(job, step)

		if step.Status == domain.StepStatusFailed {
			blocked[nodeType] = true
			continue
		}
		outputs[nodeType] = output
	}

	job.Finalize()

	counts := job.Counts()
	logger.Info("job finished",
		"status", job.Status,
		"duration", job.Duration(),
		"success", counts.Success,
		"skipped_unchanged", counts.SkippedUnchanged,
		"skipped_blocked", counts.SkippedBlocked,
		"failed", counts.Failed,
	)
}

// gatherInputs собирает входы узла: выходы его зависимостей
// (из текущего прогона или текущий артефакт для зависимостей вне scope)
// и payload триггера для корневых узлов.
func (o *Orchestrator) gatherInputs(ctx context.Context, caseID string, node *graph.Node, event domain.TriggerEvent, outputs map[string]map[string]any) (map[string]any, error) {
	inputs := make(map[string]any, len(node.DependsOn)+1)

	if node.IsRoot() {
		inputs[triggerInputKey] = event.Payload
	}

	for _, dep := range node.DependsOn {
		if out, ok := outputs[dep]; ok {
			inputs[dep] = out
			continue
		}

		// Зависимость вне scope прогона: её артефакт не пересчитывался,
		// берём текущий
		rec, err := o.registry.Get(dep)
		if err != nil {
			return nil, fmt.Errorf("dependency %s: %w", dep, err)
		}
		out, err := rec.Latest(ctx, caseID)
		if err != nil {
			return nil, fmt.Errorf("load latest output of %s: %w", dep, err)
		}
		inputs[dep] = out
	}

	return inputs, nil
}

// appendStep добавляет финализированный шаг в job и пишет метрики.
func (o *Orchestrator) appendStep(job *domain.Job, step *domain.Step) {
	job.Steps = append(job.Steps, *step)

	telemetry.StepsTotal.WithLabelValues(step.Name, string(step.Status)).Inc()
	if step.Status == domain.StepStatusSuccess || step.Status == domain.StepStatusFailed {
		telemetry.StepDuration.WithLabelValues(step.Name).Observe(step.Duration().Seconds())
	}
}

// finalizeObservers пишет метрики job, сохраняет его и публикует событие.
// Контекст отвязывается от отмены: результат отменённого job тоже запись.
func (o *Orchestrator) finalizeObservers(ctx context.Context, job *domain.Job, logger *slog.Logger) {
	telemetry.JobsTotal.WithLabelValues(string(job.Status)).Inc()
	telemetry.JobDuration.Observe(job.Duration().Seconds())

	saveCtx := context.WithoutCancel(ctx)

	if o.jobs != nil {
		if err := o.jobs.SaveJob(saveCtx, job); err != nil {
			logger.Error("failed to persist job", "error", err)
		}
	}

	if o.publisher != nil {
		if err := o.publisher.PublishJobFinalized(saveCtx, job); err != nil {
			logger.Warn("failed to publish job.finalized", "error", err)
		}
	}
}

// upstreamBlocked проверяет, заблокирован ли узел упавшей зависимостью.
func upstreamBlocked(node *graph.Node, blocked map[string]bool) bool {
	for _, dep := range node.DependsOn {
		if blocked[dep] {
			return true
		}
	}
	return false
}

// registerActive регистрирует выполняющийся job дела и возвращает
// его контекст. При SupersedeActive прежний job дела отменяется:
// его завершённые шаги уже записали свои fingerprints и остаются валидными.
func (o *Orchestrator) registerActive(ctx context.Context, job *domain.Job) context.Context {
	runCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	if prev, ok := o.active[job.CaseID]; ok && o.supersede {
		o.logger.Info("superseding active job",
			"case_id", job.CaseID,
			"superseded_job_id", prev.jobID,
			"job_id", job.ID,
		)
		prev.cancel()
	}
	o.active[job.CaseID] = &activeJob{jobID: job.ID, cancel: cancel}

	return runCtx
}

// unregisterActive снимает регистрацию job, если он всё ещё текущий.
func (o *Orchestrator) unregisterActive(job *domain.Job) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if current, ok := o.active[job.CaseID]; ok && current.jobID == job.ID {
		current.cancel()
		delete(o.active, job.CaseID)
	}
}

// CancelCase отменяет выполняющийся job дела.
// Возвращает false, если активного job нет.
func (o *Orchestrator) CancelCase(caseID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	current, ok := o.active[caseID]
	if !ok {
		return false
	}
	current.cancel()
	return true
}

// ActiveJobsCount возвращает количество выполняющихся jobs.
func (o *Orchestrator) ActiveJobsCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.active)
}
