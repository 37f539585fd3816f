package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Casegraph/internal/fingerprint"
)

// FingerprintRepo — Postgres-реализация fingerprint.Store.
//
// Одна строка на пару (case_id, node_type); Set перезаписывает
// предыдущее значение атомарным upsert-ом.
type FingerprintRepo struct {
	pool *pgxpool.Pool
}

// NewFingerprintRepo создаёт новый FingerprintRepo.
func NewFingerprintRepo(pool *pgxpool.Pool) *FingerprintRepo {
	return &FingerprintRepo{pool: pool}
}

// Get возвращает сохранённый fingerprint узла.
func (r *FingerprintRepo) Get(ctx context.Context, caseID, nodeType string) (fingerprint.Fingerprint, bool, error) {
	query := `
		SELECT fingerprint
		FROM fingerprints
		WHERE case_id = $1 AND node_type = $2
	`
	var fp string
	err := r.pool.QueryRow(ctx, query, caseID, nodeType).Scan(&fp)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get fingerprint: %w", err)
	}
	return fingerprint.Fingerprint(fp), true, nil
}

// Set сохраняет fingerprint узла, перезаписывая предыдущий.
func (r *FingerprintRepo) Set(ctx context.Context, caseID, nodeType string, fp fingerprint.Fingerprint) error {
	query := `
		INSERT INTO fingerprints (case_id, node_type, fingerprint, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (case_id, node_type)
		DO UPDATE SET fingerprint = EXCLUDED.fingerprint, updated_at = now()
	`
	_, err := r.pool.Exec(ctx, query, caseID, nodeType, fp.String())
	if err != nil {
		return fmt.Errorf("upsert fingerprint: %w", err)
	}
	return nil
}
