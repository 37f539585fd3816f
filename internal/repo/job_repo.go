package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Casegraph/internal/domain"
)

// JobRepo — репозиторий для работы с jobs и их шагами.
//
// Jobs после финализации неизменяемы, поэтому здесь только вставка
// и чтение: SaveJob пишет job вместе со всеми шагами одной транзакцией.
type JobRepo struct {
	pool *pgxpool.Pool
}

// NewJobRepo создаёт новый JobRepo.
func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// SaveJob сохраняет финализированный job вместе с шагами.
func (r *JobRepo) SaveJob(ctx context.Context, job *domain.Job) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO jobs (id, case_id, event_type, entity_type, entity_id,
		                  input_hash, status, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		job.ID,
		job.CaseID,
		job.EventType,
		nullString(job.EntityType),
		nullString(job.EntityID),
		nullString(job.InputHash),
		job.Status,
		job.StartedAt,
		job.FinishedAt,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	stepQuery := `
		INSERT INTO job_steps (job_id, idx, name, status, metrics,
		                       error_kind, error, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for i := range job.Steps {
		step := &job.Steps[i]

		metricsJSON, err := json.Marshal(step.Metrics)
		if err != nil {
			return fmt.Errorf("marshal step metrics: %w", err)
		}

		_, err = tx.Exec(ctx, stepQuery,
			job.ID,
			i,
			step.Name,
			step.Status,
			metricsJSON,
			nullString(string(step.ErrorKind)),
			nullString(step.Error),
			step.StartedAt,
			step.FinishedAt,
			step.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert step %s: %w", step.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID возвращает job по ID вместе с шагами.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, case_id, event_type, entity_type, entity_id,
		       input_hash, status, started_at, finished_at, created_at
		FROM jobs
		WHERE id = $1
	`
	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	steps, err := r.loadSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Steps = steps
	return job, nil
}

// FindCompletedByInputHash ищет COMPLETED job по тому же триггеру
// с тем же input hash. Возвращает (nil, nil), если такого job нет.
func (r *JobRepo) FindCompletedByInputHash(ctx context.Context, caseID, eventType, entityType, inputHash string) (*domain.Job, error) {
	query := `
		SELECT id
		FROM jobs
		WHERE case_id = $1
		  AND event_type = $2
		  AND entity_type IS NOT DISTINCT FROM $3
		  AND input_hash = $4
		  AND status = 'COMPLETED'
		ORDER BY created_at DESC
		LIMIT 1
	`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, caseID, eventType, nullString(entityType), inputHash).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job by input hash: %w", err)
	}
	return r.GetByID(ctx, id)
}

// List возвращает список jobs с фильтрацией (без шагов).
func (r *JobRepo) List(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	query := `
		SELECT id, case_id, event_type, entity_type, entity_id,
		       input_hash, status, started_at, finished_at, created_at
		FROM jobs
		WHERE ($1::text IS NULL OR case_id = $1)
		  AND ($2::text IS NULL OR status = $2::job_status)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.CaseID),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// RecentCaseIDs возвращает дела с jobs за последнее окно времени.
// Используется scheduler-ом для reconcile sweep.
func (r *JobRepo) RecentCaseIDs(ctx context.Context, since time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT case_id
		FROM jobs
		WHERE created_at >= $1
		ORDER BY case_id
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list recent cases: %w", err)
	}
	defer rows.Close()

	var caseIDs []string
	for rows.Next() {
		var caseID string
		if err := rows.Scan(&caseID); err != nil {
			return nil, fmt.Errorf("scan case id: %w", err)
		}
		caseIDs = append(caseIDs, caseID)
	}
	return caseIDs, rows.Err()
}

// loadSteps возвращает шаги job в порядке выполнения.
func (r *JobRepo) loadSteps(ctx context.Context, jobID uuid.UUID) ([]domain.Step, error) {
	query := `
		SELECT name, status, metrics, error_kind, error,
		       started_at, finished_at, created_at
		FROM job_steps
		WHERE job_id = $1
		ORDER BY idx ASC
	`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.Step
	for rows.Next() {
		var step domain.Step
		var metricsJSON []byte
		var errorKind, stepError *string

		err := rows.Scan(
			&step.Name,
			&step.Status,
			&metricsJSON,
			&errorKind,
			&stepError,
			&step.StartedAt,
			&step.FinishedAt,
			&step.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}

		if metricsJSON != nil {
			if err := json.Unmarshal(metricsJSON, &step.Metrics); err != nil {
				return nil, fmt.Errorf("unmarshal step metrics: %w", err)
			}
		}
		if errorKind != nil {
			step.ErrorKind = domain.ErrorKind(*errorKind)
		}
		if stepError != nil {
			step.Error = *stepError
		}

		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// --- Helpers ---

// JobFilter — параметры фильтрации jobs.
type JobFilter struct {
	CaseID string
	Status domain.JobStatus
	Limit  int
	Offset int
}

// scanJob сканирует одну строку в Job.
func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	var entityType, entityID, inputHash *string

	err := row.Scan(
		&job.ID,
		&job.CaseID,
		&job.EventType,
		&entityType,
		&entityID,
		&inputHash,
		&job.Status,
		&job.StartedAt,
		&job.FinishedAt,
		&job.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if entityType != nil {
		job.EntityType = *entityType
	}
	if entityID != nil {
		job.EntityID = *entityID
	}
	if inputHash != nil {
		job.InputHash = *inputHash
	}

	return &job, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
