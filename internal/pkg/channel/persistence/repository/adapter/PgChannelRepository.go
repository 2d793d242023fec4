package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	channel "commscore/internal/pkg/channel/application/domain"
	repository "commscore/internal/pkg/channel/persistence/repository/port"
	"commscore/internal/pkg/pagination"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

const channelColumns = `id::text, workspace_id::text, type, key, name, is_private, archived_at, last_message_at, created_at, updated_at`

// PgChannelRepository persists channels for one workspace. It cannot be
// constructed without a tenant identity; every statement filters on it.
type PgChannelRepository struct {
	pool  *pgxpool.Pool
	scope tenancy.Identity
}

func NewPgChannelRepository(pool *pgxpool.Pool, scope tenancy.Identity) *PgChannelRepository {
	return &PgChannelRepository{pool: pool, scope: scope}
}

func (r *PgChannelRepository) guard() error {
	if r == nil || r.pool == nil {
		return errors.New("PgChannelRepository: nil pool")
	}
	if r.scope.WorkspaceID == "" {
		return errors.New("PgChannelRepository: empty workspace scope")
	}
	return nil
}

func (r *PgChannelRepository) EnsureBoard(ctx context.Context) (channel.Channel, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, err
	}
	// The partial unique index on (workspace_id, type) WHERE type='BOARD'
	// makes concurrent first calls converge on a single row.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO channels (workspace_id, type, key, name, is_private)
		VALUES ($1::uuid, 'BOARD', $2, 'Board', FALSE)
		ON CONFLICT (workspace_id, type) WHERE type = 'BOARD'
		DO UPDATE SET updated_at = channels.updated_at
		RETURNING `+channelColumns,
		r.scope.WorkspaceID, channel.BoardKey)
	return scanChannel(row)
}

func (r *PgChannelRepository) InsertRoom(ctx context.Context, ch channel.Channel, memberIDs []string) (channel.Channel, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return channel.Channel{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO channels (workspace_id, type, key, name, is_private)
		VALUES ($1::uuid, 'ROOM', $2, $3, $4)
		RETURNING `+channelColumns,
		r.scope.WorkspaceID, ch.Key, ch.Name, ch.IsPrivate)
	created, err := scanChannel(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return channel.Channel{}, repository.ErrDuplicateKey
		}
		return channel.Channel{}, err
	}
	for _, uid := range memberIDs {
		if err := upsertMembership(ctx, tx, created.ID, uid); err != nil {
			return channel.Channel{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return channel.Channel{}, err
	}
	return created, nil
}

func (r *PgChannelRepository) UpsertDM(ctx context.Context, key string, memberIDs []string) (channel.Channel, bool, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, false, err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return channel.Channel{}, false, err
	}
	defer tx.Rollback(ctx)

	// xmax = 0 distinguishes a fresh insert from a conflict-returned row.
	row := tx.QueryRow(ctx, `
		INSERT INTO channels (workspace_id, type, key, name, is_private)
		VALUES ($1::uuid, 'DM', $2, '', TRUE)
		ON CONFLICT (workspace_id, key) WHERE archived_at IS NULL
		DO UPDATE SET updated_at = channels.updated_at
		RETURNING `+channelColumns+`, (xmax = 0) AS inserted`,
		r.scope.WorkspaceID, key)
	ch, inserted, err := scanChannelInserted(row)
	if err != nil {
		return channel.Channel{}, false, err
	}
	for _, uid := range memberIDs {
		if err := upsertMembership(ctx, tx, ch.ID, uid); err != nil {
			return channel.Channel{}, false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return channel.Channel{}, false, err
	}
	return ch, inserted, nil
}

func (r *PgChannelRepository) FindByID(ctx context.Context, id string) (channel.Channel, bool, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, false, err
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+channelColumns+`
		FROM channels
		WHERE id = $1::uuid AND workspace_id = $2::uuid
	`, id, r.scope.WorkspaceID)
	ch, err := scanChannel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return channel.Channel{}, false, nil
	}
	if err != nil {
		return channel.Channel{}, false, err
	}
	return ch, true, nil
}

func (r *PgChannelRepository) ListVisible(ctx context.Context, includeArchived bool, limit int, cursor *pagination.Cursor) ([]channel.Channel, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	var cursorKey *time.Time
	var cursorID *string
	if cursor != nil {
		cursorKey, cursorID = &cursor.SortKey, &cursor.ID
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+channelColumns+`
		FROM channels c
		WHERE c.workspace_id = $1::uuid
		  AND ($2 OR c.archived_at IS NULL)
		  AND (
		       (c.type IN ('BOARD','ROOM') AND NOT c.is_private)
		    OR EXISTS (
		         SELECT 1 FROM channel_members m
		         WHERE m.channel_id = c.id AND m.user_id = $3::uuid AND m.removed_at IS NULL
		       )
		  )
		  AND ($4::timestamptz IS NULL OR (c.updated_at, c.id::text) < ($4::timestamptz, $5::text))
		ORDER BY c.updated_at DESC, c.id DESC
		LIMIT $6
	`, r.scope.WorkspaceID, includeArchived, r.scope.UserID, cursorKey, cursorID, limit+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []channel.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (r *PgChannelRepository) Patch(ctx context.Context, id string, p channel.Patch) (channel.Channel, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE channels SET
			name        = COALESCE($3, name),
			is_private  = COALESCE($4, is_private),
			archived_at = CASE WHEN $5 THEN now() ELSE archived_at END,
			updated_at  = now()
		WHERE id = $1::uuid AND workspace_id = $2::uuid
		RETURNING `+channelColumns,
		id, r.scope.WorkspaceID, p.Name, p.IsPrivate, p.Archive)
	return scanChannel(row)
}

func (r *PgChannelRepository) IsMember(ctx context.Context, channelID, userID string) (bool, error) {
	if err := r.guard(); err != nil {
		return false, err
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM channel_members m
			JOIN channels c ON c.id = m.channel_id
			WHERE m.channel_id = $1::uuid AND m.user_id = $2::uuid
			  AND m.removed_at IS NULL AND c.workspace_id = $3::uuid
		)
	`, channelID, userID, r.scope.WorkspaceID).Scan(&ok)
	return ok, err
}

func (r *PgChannelRepository) MemberIDs(ctx context.Context, channelID string) ([]string, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT m.user_id::text
		FROM channel_members m
		JOIN channels c ON c.id = m.channel_id
		WHERE m.channel_id = $1::uuid AND m.removed_at IS NULL AND c.workspace_id = $2::uuid
	`, channelID, r.scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgChannelRepository) AddMember(ctx context.Context, channelID, userID string) error {
	if err := r.guard(); err != nil {
		return err
	}
	return upsertMembership(ctx, r.pool, channelID, userID)
}

func (r *PgChannelRepository) RemoveMember(ctx context.Context, channelID, userID string) error {
	if err := r.guard(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE channel_members SET removed_at = now()
		WHERE channel_id = $1::uuid AND user_id = $2::uuid AND removed_at IS NULL
	`, channelID, userID)
	return err
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx, so membership
// upserts can run inside or outside a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertMembership(ctx context.Context, db execer, channelID, userID string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO channel_members (channel_id, user_id)
		VALUES ($1::uuid, $2::uuid)
		ON CONFLICT (channel_id, user_id)
		DO UPDATE SET removed_at = NULL
	`, channelID, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (channel.Channel, error) {
	var ch channel.Channel
	err := row.Scan(&ch.ID, &ch.WorkspaceID, &ch.Type, &ch.Key, &ch.Name,
		&ch.IsPrivate, &ch.ArchivedAt, &ch.LastMessageAt, &ch.CreatedAt, &ch.UpdatedAt)
	return ch, err
}

func scanChannelInserted(row rowScanner) (channel.Channel, bool, error) {
	var ch channel.Channel
	var inserted bool
	err := row.Scan(&ch.ID, &ch.WorkspaceID, &ch.Type, &ch.Key, &ch.Name,
		&ch.IsPrivate, &ch.ArchivedAt, &ch.LastMessageAt, &ch.CreatedAt, &ch.UpdatedAt, &inserted)
	return ch, inserted, err
}
