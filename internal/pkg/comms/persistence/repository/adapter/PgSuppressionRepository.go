package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSuppressionRepository stores opt-out rows keyed on
// (workspace_id, e164).
type PgSuppressionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSuppressionRepository(pool *pgxpool.Pool) *PgSuppressionRepository {
	return &PgSuppressionRepository{pool: pool}
}

func (r *PgSuppressionRepository) guard() error {
	if r.pool == nil {
		return errors.New("suppression repository: nil pool")
	}
	return nil
}

func (r *PgSuppressionRepository) SetOptOut(ctx context.Context, workspaceID string, e164 string, at time.Time) error {
	if err := r.guard(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO suppressions (workspace_id, e164, opted_out_at, updated_at)
		VALUES ($1::uuid, $2, $3, now())
		ON CONFLICT (workspace_id, e164) DO UPDATE
		SET opted_out_at = EXCLUDED.opted_out_at, updated_at = now()`,
		workspaceID, e164, at,
	)
	return err
}

func (r *PgSuppressionRepository) ClearOptOut(ctx context.Context, workspaceID string, e164 string) error {
	if err := r.guard(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO suppressions (workspace_id, e164, opted_out_at, updated_at)
		VALUES ($1::uuid, $2, NULL, now())
		ON CONFLICT (workspace_id, e164) DO UPDATE
		SET opted_out_at = NULL, updated_at = now()`,
		workspaceID, e164,
	)
	return err
}

func (r *PgSuppressionRepository) IsSuppressed(ctx context.Context, workspaceID string, e164 string) (bool, error) {
	if err := r.guard(); err != nil {
		return false, err
	}
	var suppressed bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM suppressions
			WHERE workspace_id = $1 AND e164 = $2 AND opted_out_at IS NOT NULL
		)`,
		workspaceID, e164,
	).Scan(&suppressed)
	if err != nil {
		return false, err
	}
	return suppressed, nil
}
