package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Casegraph/internal/domain"
)

// Событие reconcile sweep.
const (
	// SweepEventType — тип триггер-события, которое создаёт sweep.
	SweepEventType = "reconcile_sweep"

	// SweepEntityType — тип сущности sweep-события.
	SweepEntityType = "case"
)

// cronParser — парсер cron-выражений (стандартные 5 полей).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// CaseSource — источник недавно активных дел.
// Реализация: repo.JobRepo.
type CaseSource interface {
	RecentCaseIDs(ctx context.Context, since time.Time) ([]string, error)
}

// Submitter — приём триггер-событий.
// Реализация: orchestrator.Orchestrator.
type Submitter interface {
	Submit(ctx context.Context, caseID string, event domain.TriggerEvent) (*domain.Job, error)
}

// Sweeper — фоновый reconcile sweep.
//
// По расписанию проходит по недавно активным делам и отправляет каждому
// sweep-событие: узлы с актуальными fingerprint-ами пропускаются, а
// артефакты, пропустившие пересчёт (недоставленное событие, упавший job),
// доводятся до консистентности.
//
// Payload sweep-события содержит дату с точностью до суток, поэтому
// повторные sweeps в тот же день гасятся обнаружением повторной доставки.
type Sweeper struct {
	cases     CaseSource
	submitter Submitter
	window    time.Duration
	logger    *slog.Logger

	cronExpr string
	runner   *cron.Cron
}

// Config — конфигурация Sweeper.
type Config struct {
	// Cases — источник недавних дел. Обязателен.
	Cases CaseSource

	// Submitter — приёмник sweep-событий. Обязателен.
	Submitter Submitter

	// CronExpr — расписание sweep (например, "0 3 * * *").
	CronExpr string

	// Window — окно недавней активности дел (default: 24h).
	Window time.Duration

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Sweeper.
func New(cfg Config) *Sweeper {
	window := cfg.Window
	if window <= 0 {
		window = 24 * time.Hour
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		cases:     cfg.Cases,
		submitter: cfg.Submitter,
		window:    window,
		logger:    logger,
		cronExpr:  cfg.CronExpr,
	}
}

// Start запускает sweep по расписанию.
func (s *Sweeper) Start(ctx context.Context) error {
	if err := ValidateCronExpr(s.cronExpr); err != nil {
		return err
	}

	runner := cron.New(cron.WithParser(cronParser))
	_, err := runner.AddFunc(s.cronExpr, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("reconcile sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	s.runner = runner
	runner.Start()
	s.logger.Info("sweeper started", "cron", s.cronExpr, "window", s.window)
	return nil
}

// Stop останавливает расписание и дожидается текущего sweep.
func (s *Sweeper) Stop() {
	if s.runner != nil {
		<-s.runner.Stop().Done()
		s.logger.Info("sweeper stopped")
	}
}

// Sweep выполняет один проход по недавно активным делам.
//
// Ошибка одного дела не блокирует остальные.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := time.Now()

	caseIDs, err := s.cases.RecentCaseIDs(ctx, now.Add(-s.window))
	if err != nil {
		return fmt.Errorf("list recent cases: %w", err)
	}
	if len(caseIDs) == 0 {
		s.logger.Debug("no recent cases to sweep")
		return nil
	}

	event := domain.TriggerEvent{
		EventType:  SweepEventType,
		EntityType: SweepEntityType,
		Payload: map[string]any{
			"swept_at": now.UTC().Truncate(24 * time.Hour).Format(time.RFC3339),
		},
	}

	var swept, failed int
	for _, caseID := range caseIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		job, err := s.submitter.Submit(ctx, caseID, event)
		if err != nil {
			s.logger.Error("failed to sweep case", "case_id", caseID, "error", err)
			failed++
			continue
		}

		swept++
		s.logger.Debug("case swept",
			"case_id", caseID,
			"job_id", job.ID,
			"status", job.Status,
		)
	}

	s.logger.Info("reconcile sweep completed",
		"cases", len(caseIDs),
		"swept", swept,
		"failed", failed,
	)
	return nil
}
