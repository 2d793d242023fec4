package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	message "commscore/internal/pkg/message/application/domain"
	"commscore/internal/pkg/pagination"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

const messageColumns = `m.id::text, m.channel_id::text, m.author_user_id::text, m.body, m.type,
	m.parent_id::text, m.client_nonce, m.deleted_at, m.is_visible, m.created_at, m.updated_at`

// PgMessageRepository persists messages for one workspace. The workspace
// filter rides on a join through the owning channel on every statement.
type PgMessageRepository struct {
	pool  *pgxpool.Pool
	scope tenancy.Identity
}

func NewPgMessageRepository(pool *pgxpool.Pool, scope tenancy.Identity) *PgMessageRepository {
	return &PgMessageRepository{pool: pool, scope: scope}
}

func (r *PgMessageRepository) guard() error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	if r.scope.WorkspaceID == "" {
		return errors.New("PgMessageRepository: empty workspace scope")
	}
	return nil
}

func (r *PgMessageRepository) UpsertByNonce(ctx context.Context, m message.Message) (message.Message, bool, error) {
	if err := r.guard(); err != nil {
		return message.Message{}, false, err
	}
	// The no-op DO UPDATE lets RETURNING yield the original row on a nonce
	// replay; (xmax = 0) tells a fresh insert from a conflict hit.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (channel_id, author_user_id, body, type, parent_id, client_nonce)
		SELECT $1::uuid, $2::uuid, $3, $4, $5::uuid, $6
		WHERE EXISTS (
			SELECT 1 FROM channels c WHERE c.id = $1::uuid AND c.workspace_id = $7::uuid
		)
		ON CONFLICT (channel_id, author_user_id, client_nonce) WHERE client_nonce IS NOT NULL
		DO UPDATE SET client_nonce = EXCLUDED.client_nonce
		RETURNING id::text, channel_id::text, author_user_id::text, body, type,
			parent_id::text, client_nonce, deleted_at, is_visible, created_at, updated_at,
			(xmax = 0) AS inserted
	`, m.ChannelID, m.AuthorUserID, m.Body, m.Type, m.ParentID, m.ClientNonce, r.scope.WorkspaceID)

	var out message.Message
	var inserted bool
	err := row.Scan(&out.ID, &out.ChannelID, &out.AuthorUserID, &out.Body, &out.Type,
		&out.ParentID, &out.ClientNonce, &out.DeletedAt, &out.IsVisible, &out.CreatedAt, &out.UpdatedAt, &inserted)
	if err != nil {
		return message.Message{}, false, err
	}
	return out, inserted, nil
}

func (r *PgMessageRepository) FindByID(ctx context.Context, id string) (message.Message, bool, error) {
	if err := r.guard(); err != nil {
		return message.Message{}, false, err
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN channels c ON c.id = m.channel_id
		WHERE m.id = $1::uuid AND c.workspace_id = $2::uuid
	`, id, r.scope.WorkspaceID)
	m, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return message.Message{}, false, nil
	}
	if err != nil {
		return message.Message{}, false, err
	}
	return m, true, nil
}

func (r *PgMessageRepository) List(ctx context.Context, channelID string, limit int, cursor *pagination.Cursor, forward bool) ([]message.Message, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	var cursorKey *time.Time
	var cursorID *string
	if cursor != nil {
		cursorKey, cursorID = &cursor.SortKey, &cursor.ID
	}

	// Keyset comparison flips with the direction; OFFSET is never used.
	q := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN channels c ON c.id = m.channel_id
		WHERE m.channel_id = $1::uuid AND c.workspace_id = $2::uuid AND m.is_visible
		  AND ($3::timestamptz IS NULL OR (m.created_at, m.id::text) < ($3::timestamptz, $4::text))
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $5`
	if forward {
		q = `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN channels c ON c.id = m.channel_id
		WHERE m.channel_id = $1::uuid AND c.workspace_id = $2::uuid AND m.is_visible
		  AND ($3::timestamptz IS NULL OR (m.created_at, m.id::text) > ($3::timestamptz, $4::text))
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $5`
	}

	rows, err := r.pool.Query(ctx, q, channelID, r.scope.WorkspaceID, cursorKey, cursorID, limit+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []message.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PgMessageRepository) UpdateBody(ctx context.Context, id, body string) (message.Message, error) {
	if err := r.guard(); err != nil {
		return message.Message{}, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE messages m SET body = $3, updated_at = now()
		FROM channels c
		WHERE m.id = $1::uuid AND c.id = m.channel_id AND c.workspace_id = $2::uuid
		  AND m.deleted_at IS NULL
		RETURNING `+messageColumns,
		id, r.scope.WorkspaceID, body)
	return scanMessage(row)
}

func (r *PgMessageRepository) SoftDelete(ctx context.Context, id string) error {
	if err := r.guard(); err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages m SET deleted_at = now(), is_visible = FALSE, updated_at = now()
		FROM channels c
		WHERE m.id = $1::uuid AND c.id = m.channel_id AND c.workspace_id = $2::uuid
		  AND m.deleted_at IS NULL
	`, id, r.scope.WorkspaceID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgMessageRepository) ToggleReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	if err := r.guard(); err != nil {
		return false, err
	}
	// Insert-then-delete inside one transaction: two racing toggles resolve
	// to a deterministic end state instead of erroring.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		INSERT INTO reactions (message_id, user_id, emoji)
		SELECT $1::uuid, $2::uuid, $3
		WHERE EXISTS (
			SELECT 1 FROM messages m JOIN channels c ON c.id = m.channel_id
			WHERE m.id = $1::uuid AND c.workspace_id = $4::uuid
		)
		ON CONFLICT (message_id, user_id, emoji) DO NOTHING
	`, messageID, userID, emoji, r.scope.WorkspaceID)
	if err != nil {
		return false, err
	}
	added := ct.RowsAffected() > 0
	if !added {
		if _, err := tx.Exec(ctx, `
			DELETE FROM reactions WHERE message_id = $1::uuid AND user_id = $2::uuid AND emoji = $3
		`, messageID, userID, emoji); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return added, nil
}

func (r *PgMessageRepository) ListReactions(ctx context.Context, messageID string) ([]message.Reaction, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT r.message_id::text, r.user_id::text, r.emoji, r.created_at
		FROM reactions r
		JOIN messages m ON m.id = r.message_id
		JOIN channels c ON c.id = m.channel_id
		WHERE r.message_id = $1::uuid AND c.workspace_id = $2::uuid
		ORDER BY r.created_at ASC
	`, messageID, r.scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []message.Reaction
	for rows.Next() {
		var re message.Reaction
		if err := rows.Scan(&re.MessageID, &re.UserID, &re.Emoji, &re.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

func (r *PgMessageRepository) InsertMentions(ctx context.Context, messageID string, userIDs []string) error {
	if err := r.guard(); err != nil {
		return err
	}
	for _, uid := range userIDs {
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO mentions (workspace_id, message_id, mentioned_user_id)
			VALUES ($1::uuid, $2::uuid, $3::uuid)
			ON CONFLICT (message_id, mentioned_user_id) DO NOTHING
		`, r.scope.WorkspaceID, messageID, uid); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgMessageRepository) TouchChannelActivity(ctx context.Context, channelID string, at time.Time) error {
	if err := r.guard(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE channels SET last_message_at = $3, updated_at = $3
		WHERE id = $1::uuid AND workspace_id = $2::uuid
	`, channelID, r.scope.WorkspaceID, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (message.Message, error) {
	var m message.Message
	err := row.Scan(&m.ID, &m.ChannelID, &m.AuthorUserID, &m.Body, &m.Type,
		&m.ParentID, &m.ClientNonce, &m.DeletedAt, &m.IsVisible, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
