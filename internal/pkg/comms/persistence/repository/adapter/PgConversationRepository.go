package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/pagination"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// PgConversationRepository is the user-scoped surface. Every statement
// filters on (workspace_id, assigned_to_user_id) so a conversation
// assigned to another user is indistinguishable from a missing one.
type PgConversationRepository struct {
	pool  *pgxpool.Pool
	scope tenancy.Identity
}

func NewPgConversationRepository(pool *pgxpool.Pool, scope tenancy.Identity) *PgConversationRepository {
	return &PgConversationRepository{pool: pool, scope: scope}
}

func (r *PgConversationRepository) guard() error {
	if r.pool == nil {
		return errors.New("conversation repository: nil pool")
	}
	if r.scope.WorkspaceID == "" || r.scope.UserID == "" {
		return errors.New("conversation repository: empty scope")
	}
	return nil
}

func (r *PgConversationRepository) FindByID(ctx context.Context, id string) (comms.Conversation, bool, error) {
	if err := r.guard(); err != nil {
		return comms.Conversation{}, false, err
	}
	var conv comms.Conversation
	err := scanConversation(r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE id = $1 AND workspace_id = $2 AND assigned_to_user_id = $3`,
		id, r.scope.WorkspaceID, r.scope.UserID,
	), &conv)
	if errors.Is(err, pgx.ErrNoRows) {
		return comms.Conversation{}, false, nil
	}
	if err != nil {
		return comms.Conversation{}, false, err
	}
	return conv, true, nil
}

func (r *PgConversationRepository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]comms.Conversation, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE workspace_id = $1 AND assigned_to_user_id = $2
		  AND ($3::timestamptz IS NULL OR (updated_at, id::text) < ($3, $4))
		ORDER BY updated_at DESC, id DESC
		LIMIT $5`
	var (
		cursorTS any
		cursorID any
	)
	if cursor != nil {
		cursorTS = cursor.SortKey
		cursorID = cursor.ID
	}
	rows, err := r.pool.Query(ctx, query, r.scope.WorkspaceID, r.scope.UserID, cursorTS, cursorID, limit+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []comms.Conversation
	for rows.Next() {
		var conv comms.Conversation
		if err := scanConversation(rows, &conv); err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (r *PgConversationRepository) ListEvents(ctx context.Context, conversationID string, limit int, cursor *pagination.Cursor) ([]comms.CommEvent, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	query := `
		SELECT e.id, e.workspace_id, e.conversation_id, e.type, e.occurred_at, e.payload
		FROM comm_events e
		JOIN conversations cv ON cv.id = e.conversation_id
		WHERE e.conversation_id = $1
		  AND cv.workspace_id = $2 AND cv.assigned_to_user_id = $3
		  AND ($4::timestamptz IS NULL OR (e.occurred_at, e.id::text) < ($4, $5))
		ORDER BY e.occurred_at DESC, e.id DESC
		LIMIT $6`
	var (
		cursorTS any
		cursorID any
	)
	if cursor != nil {
		cursorTS = cursor.SortKey
		cursorID = cursor.ID
	}
	rows, err := r.pool.Query(ctx, query, conversationID, r.scope.WorkspaceID, r.scope.UserID, cursorTS, cursorID, limit+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []comms.CommEvent
	for rows.Next() {
		var event comms.CommEvent
		if err := rows.Scan(&event.ID, &event.WorkspaceID, &event.ConversationID, &event.Type, &event.OccurredAt, &event.Payload); err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func (r *PgConversationRepository) DeleteCascade(ctx context.Context, id string) (bool, error) {
	if err := r.guard(); err != nil {
		return false, err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var owned string
	err = tx.QueryRow(ctx, `
		SELECT id FROM conversations
		WHERE id = $1 AND workspace_id = $2 AND assigned_to_user_id = $3
		FOR UPDATE`,
		id, r.scope.WorkspaceID, r.scope.UserID,
	).Scan(&owned)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// Children first so a crash mid-delete never leaves orphans behind a
	// still-visible parent.
	for _, stmt := range []string{
		`DELETE FROM conversation_read_states WHERE conversation_id = $1`,
		`DELETE FROM comm_events WHERE conversation_id = $1`,
		`DELETE FROM sms_messages WHERE conversation_id = $1`,
		`DELETE FROM calls WHERE conversation_id = $1`,
		`DELETE FROM conversations WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
