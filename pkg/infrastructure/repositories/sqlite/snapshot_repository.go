package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/obrador/fabricacion/pkg/domain/repositories"
)

// SnapshotRepository stores each job's latest result as a JSON payload
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a repository over an already migrated database
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

var _ repositories.SnapshotRepository = (*SnapshotRepository)(nil)

// SaveSnapshots upserts every result in a single transaction. Other stored jobs are kept.
func (r *SnapshotRepository) SaveSnapshots(ctx context.Context, results []entities.ManufacturingResult) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return upsertSnapshots(ctx, tx, results)
	})
}

// ReplaceSnapshots makes results the whole stored set: jobs not in results are deleted
// in the same transaction as the upserts
func (r *SnapshotRepository) ReplaceSnapshots(ctx context.Context, results []entities.ManufacturingResult) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM manufacturing_snapshots`); err != nil {
			return fmt.Errorf("clear snapshots: %w", err)
		}
		return upsertSnapshots(ctx, tx, results)
	})
}

func (r *SnapshotRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshots: %w", err)
	}
	return nil
}

func upsertSnapshots(ctx context.Context, tx *sql.Tx, results []entities.ManufacturingResult) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO manufacturing_snapshots (job_id, name, status, currency, unit_cost, calculated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (job_id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			currency = excluded.currency,
			unit_cost = excluded.unit_cost,
			calculated_at = excluded.calculated_at,
			payload = excluded.payload
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode snapshot %s: %w", result.JobID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			string(result.JobID),
			result.Name,
			result.Status.String(),
			result.Currency,
			result.UnitCost.String(),
			result.LastCalculatedAt.UTC().Format(time.RFC3339Nano),
			string(payload),
		); err != nil {
			return fmt.Errorf("save snapshot %s: %w", result.JobID, err)
		}
	}
	return nil
}

// GetSnapshot returns the stored result of one job
func (r *SnapshotRepository) GetSnapshot(ctx context.Context, jobID entities.JobID) (entities.ManufacturingResult, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM manufacturing_snapshots WHERE job_id = ?`, string(jobID),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ManufacturingResult{}, fmt.Errorf("job %s: %w", jobID, repositories.ErrSnapshotNotFound)
	}
	if err != nil {
		return entities.ManufacturingResult{}, fmt.Errorf("load snapshot %s: %w", jobID, err)
	}

	return decodeSnapshot(jobID, payload)
}

// ListSnapshots returns every stored result ordered by job id
func (r *SnapshotRepository) ListSnapshots(ctx context.Context) ([]entities.ManufacturingResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT job_id, payload FROM manufacturing_snapshots ORDER BY job_id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var results []entities.ManufacturingResult
	for rows.Next() {
		var jobID, payload string
		if err := rows.Scan(&jobID, &payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		result, err := decodeSnapshot(entities.JobID(jobID), payload)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return results, nil
}

// DeleteSnapshot removes the stored result of one job
func (r *SnapshotRepository) DeleteSnapshot(ctx context.Context, jobID entities.JobID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM manufacturing_snapshots WHERE job_id = ?`, string(jobID))
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", jobID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", jobID, err)
	}
	if affected == 0 {
		return fmt.Errorf("job %s: %w", jobID, repositories.ErrSnapshotNotFound)
	}
	return nil
}

func decodeSnapshot(jobID entities.JobID, payload string) (entities.ManufacturingResult, error) {
	var result entities.ManufacturingResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return entities.ManufacturingResult{}, fmt.Errorf("decode snapshot %s: %w", jobID, err)
	}
	return result, nil
}
