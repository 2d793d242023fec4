package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	retention "commscore/internal/pkg/retention/application/domain"
)

// PgSweepRepository performs cutoff-based hard deletes. Each class
// deletes in id batches inside one transaction so child rows never
// outlive their parent visibility.
type PgSweepRepository struct {
	pool *pgxpool.Pool
}

func NewPgSweepRepository(pool *pgxpool.Pool) *PgSweepRepository {
	return &PgSweepRepository{pool: pool}
}

const emptyConversationPredicate = `
	cv.updated_at < $1
	AND NOT EXISTS (SELECT 1 FROM sms_messages s WHERE s.conversation_id = cv.id)
	AND NOT EXISTS (SELECT 1 FROM calls cl WHERE cl.conversation_id = cv.id)
	AND NOT EXISTS (SELECT 1 FROM comm_events e WHERE e.conversation_id = cv.id)`

func (r *PgSweepRepository) CountExpired(ctx context.Context, class retention.Class, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, errors.New("sweep repository: nil pool")
	}
	var query string
	switch class {
	case retention.ClassChatMessages:
		query = `SELECT count(*) FROM messages WHERE created_at < $1`
	case retention.ClassCommEvents:
		query = `SELECT count(*) FROM comm_events WHERE occurred_at < $1`
	case retention.ClassSmsMessages:
		query = `SELECT count(*) FROM sms_messages WHERE occurred_at < $1`
	case retention.ClassCalls:
		query = `SELECT count(*) FROM calls WHERE occurred_at < $1`
	case retention.ClassConversations:
		query = `SELECT count(*) FROM conversations cv WHERE ` + emptyConversationPredicate
	default:
		return 0, fmt.Errorf("sweep repository: unknown class %q", class)
	}
	var count int64
	if err := r.pool.QueryRow(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgSweepRepository) DeleteExpiredBatch(ctx context.Context, class retention.Class, cutoff time.Time, batch int) (int64, error) {
	if r.pool == nil {
		return 0, errors.New("sweep repository: nil pool")
	}
	switch class {
	case retention.ClassChatMessages:
		return r.deleteChatMessages(ctx, cutoff, batch)
	case retention.ClassCommEvents:
		return r.deleteSimple(ctx, `
			DELETE FROM comm_events
			WHERE id IN (SELECT id FROM comm_events WHERE occurred_at < $1 LIMIT $2)`,
			cutoff, batch)
	case retention.ClassSmsMessages:
		return r.deleteSimple(ctx, `
			DELETE FROM sms_messages
			WHERE id IN (SELECT id FROM sms_messages WHERE occurred_at < $1 LIMIT $2)`,
			cutoff, batch)
	case retention.ClassCalls:
		return r.deleteSimple(ctx, `
			DELETE FROM calls
			WHERE id IN (SELECT id FROM calls WHERE occurred_at < $1 LIMIT $2)`,
			cutoff, batch)
	case retention.ClassConversations:
		return r.deleteEmptyConversations(ctx, cutoff, batch)
	default:
		return 0, fmt.Errorf("sweep repository: unknown class %q", class)
	}
}

func (r *PgSweepRepository) deleteSimple(ctx context.Context, query string, cutoff time.Time, batch int) (int64, error) {
	tag, err := r.pool.Exec(ctx, query, cutoff, batch)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgSweepRepository) deleteChatMessages(ctx context.Context, cutoff time.Time, batch int) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id FROM messages WHERE created_at < $1 LIMIT $2`,
		cutoff, batch,
	)
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM reactions WHERE message_id = ANY($1)`, ids); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM mentions WHERE message_id = ANY($1)`, ids); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM messages WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgSweepRepository) deleteEmptyConversations(ctx context.Context, cutoff time.Time, batch int) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT cv.id FROM conversations cv WHERE `+emptyConversationPredicate+` LIMIT $2`,
		cutoff, batch,
	)
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM conversation_read_states WHERE conversation_id = ANY($1)`, ids); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM conversations WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
