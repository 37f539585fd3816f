package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Casegraph/internal/domain"
	"github.com/shaiso/Casegraph/internal/fingerprint"
	"github.com/shaiso/Casegraph/internal/recompute"
	"github.com/shaiso/Casegraph/internal/telemetry"
)

// StepExecutor выполняет один узел графа и превращает любой исход
// в финализированный Step.
//
// Инварианты:
//   - при совпадении fingerprint recomputer не вызывается вовсе
//     (SKIPPED_UNCHANGED, нулевая стоимость)
//   - fingerprint обновляется только при успешном пересчёте: упавший
//     шаг будет повторён следующим триггером, а не выдан за актуальный
//   - ни ошибка, ни паника recomputer-а не выходят за границу Execute
type StepExecutor struct {
	registry *recompute.Registry
	store    fingerprint.Store
	timeout  time.Duration
	logger   *slog.Logger
}

// NewStepExecutor создаёт StepExecutor.
// timeout <= 0 отключает лимит времени на шаг.
func NewStepExecutor(registry *recompute.Registry, store fingerprint.Store, timeout time.Duration, logger *slog.Logger) *StepExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StepExecutor{
		registry: registry,
		store:    store,
		timeout:  timeout,
		logger:   logger,
	}
}

// Execute выполняет узел и возвращает финализированный Step
// вместе с актуальным выходом узла (nil, если шаг упал).
func (e *StepExecutor) Execute(ctx context.Context, caseID, nodeType string, inputs map[string]any) (*domain.Step, map[string]any) {
	step := domain.NewStep(nodeType)
	step.MarkRunning()

	logger := telemetry.WithNodeType(telemetry.WithCaseID(e.logger, caseID), nodeType)

	// 1. Fingerprint текущих входов
	fp, err := fingerprint.Compute(nodeType, inputs)
	if err != nil {
		step.MarkFailed(domain.ErrorKindValidation, err.Error())
		logger.Warn("step inputs are not hashable", "error", err)
		return step, nil
	}

	rec, err := e.registry.Get(nodeType)
	if err != nil {
		step.MarkFailed(domain.ErrorKindRecompute, err.Error())
		logger.Error("no recomputer for node", "error", err)
		return step, nil
	}

	// 2. Сравнение с последним сохранённым fingerprint
	stored, ok, err := e.store.Get(ctx, caseID, nodeType)
	if err != nil {
		step.MarkFailed(domain.ErrorKindRecompute, fmt.Sprintf("read fingerprint: %v", err))
		logger.Error("failed to read fingerprint", "error", err)
		return step, nil
	}

	if ok && stored == fp {
		// Входы не изменились — пересчёт не нужен. Текущий артефакт
		// всё равно читаем: он вход для зависимых узлов.
		output, err := rec.Latest(ctx, caseID)
		if err != nil {
			// Без актуального выхода зависимые узлы строились бы
			// на отсутствующих данных — это падение шага, не skip
			step.MarkFailed(domain.ErrorKindRecompute, fmt.Sprintf("load current artifact: %v", err))
			logger.Error("failed to load current artifact for unchanged node", "error", err)
			return step, nil
		}

		step.MarkSkippedUnchanged()
		logger.Debug("step skipped, inputs unchanged")
		return step, output
	}

	// 3. Пересчёт под таймаутом
	result, err := e.invoke(ctx, rec, caseID, inputs)
	if err != nil {
		// fingerprint НЕ обновляется: следующий триггер повторит пересчёт
		step.MarkFailed(classifyError(err), err.Error())
		logger.Warn("step failed", "kind", step.ErrorKind, "error", err)
		return step, nil
	}

	// 4. Фиксируем новый fingerprint
	if err := e.store.Set(ctx, caseID, nodeType, fp); err != nil {
		// Шаг успешен; несохранённый fingerprint означает лишь
		// лишний пересчёт в следующем прогоне
		logger.Warn("failed to store fingerprint", "error", err)
	}

	metrics := make(map[string]float64, len(result.Metrics)+1)
	for k, v := range result.Metrics {
		metrics[k] = v
	}
	step.MarkSucceeded(metrics)
	metrics["duration_ms"] = float64(step.Duration().Milliseconds())

	logger.Info("step succeeded", "duration", step.Duration())
	return step, result.Output
}

// invokeOutcome — результат вызова recomputer-а.
type invokeOutcome struct {
	result *recompute.Result
	err    error
}

// invoke вызывает recomputer с лимитом времени и перехватом паник.
//
// Отмена job не прерывает уже начатый шаг: его контекст отвязан от
// отмены родителя и ограничен только таймаутом, поэтому шаг завершается
// сам или по своему дедлайну.
func (e *StepExecutor) invoke(ctx context.Context, rec recompute.Recomputer, caseID string, inputs map[string]any) (*recompute.Result, error) {
	runCtx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if e.timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, e.timeout)
	}
	defer cancel()

	done := make(chan invokeOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invokeOutcome{err: fmt.Errorf("recompute panic: %v", r)}
			}
		}()
		result, err := rec.Recompute(runCtx, caseID, inputs)
		done <- invokeOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrStepTimeout, out.err)
		}
		return out.result, out.err

	case <-runCtx.Done():
		// Recomputer, игнорирующий контекст, не должен висить весь job
		return nil, fmt.Errorf("%w after %s", ErrStepTimeout, e.timeout)
	}
}

// classifyError определяет категорию ошибки упавшего шага.
func classifyError(err error) domain.ErrorKind {
	var valErr *fingerprint.ValidationError
	switch {
	case errors.Is(err, ErrStepTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrorKindTimeout
	case errors.As(err, &valErr):
		return domain.ErrorKindValidation
	default:
		return domain.ErrorKindRecompute
	}
}
