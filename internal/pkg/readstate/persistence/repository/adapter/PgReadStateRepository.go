package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "commscore/internal/pkg/readstate/application/domain"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// tableSpec names the tables and columns a read-state repository works
// against. Channel and conversation pointers share the same shape.
type tableSpec struct {
	stateTable   string
	threadColumn string
	anchorColumn string
	anchorTable  string
	anchorKey    string
}

var (
	channelSpec = tableSpec{
		stateTable:   "channel_read_states",
		threadColumn: "channel_id",
		anchorColumn: "last_read_message_id",
		anchorTable:  "messages",
		anchorKey:    "created_at",
	}
	conversationSpec = tableSpec{
		stateTable:   "conversation_read_states",
		threadColumn: "conversation_id",
		anchorColumn: "last_read_event_id",
		anchorTable:  "comm_events",
		anchorKey:    "occurred_at",
	}
)

type PgReadStateRepository struct {
	pool  *pgxpool.Pool
	scope tenancy.Identity
	spec  tableSpec
}

// NewPgChannelReadStateRepository tracks read pointers on chat channels,
// anchored to message ids ordered by created_at.
func NewPgChannelReadStateRepository(pool *pgxpool.Pool, scope tenancy.Identity) *PgReadStateRepository {
	return &PgReadStateRepository{pool: pool, scope: scope, spec: channelSpec}
}

// NewPgConversationReadStateRepository tracks read pointers on comms
// conversations, anchored to event ids ordered by occurred_at.
func NewPgConversationReadStateRepository(pool *pgxpool.Pool, scope tenancy.Identity) *PgReadStateRepository {
	return &PgReadStateRepository{pool: pool, scope: scope, spec: conversationSpec}
}

func (r *PgReadStateRepository) guard() error {
	if r.pool == nil {
		return errors.New("readstate repository: nil pool")
	}
	if r.scope.WorkspaceID == "" {
		return errors.New("readstate repository: empty workspace scope")
	}
	return nil
}

func (r *PgReadStateRepository) Get(ctx context.Context, threadID string, userID string) (domain.State, bool, error) {
	if err := r.guard(); err != nil {
		return domain.State{}, false, err
	}
	query := fmt.Sprintf(
		`SELECT %s, user_id, %s, last_read_at FROM %s WHERE %s = $1 AND user_id = $2`,
		r.spec.threadColumn, r.spec.anchorColumn, r.spec.stateTable, r.spec.threadColumn,
	)
	var state domain.State
	err := r.pool.QueryRow(ctx, query, threadID, userID).
		Scan(&state.ThreadID, &state.UserID, &state.AnchorID, &state.LastReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.State{}, false, nil
	}
	if err != nil {
		return domain.State{}, false, err
	}
	return state, true, nil
}

// Upsert writes the pointer with a monotonic guard so a concurrent older
// write cannot clobber a newer one. A nil anchor, a missing stored row,
// or a stored anchor whose target row is gone all let the write through.
func (r *PgReadStateRepository) Upsert(ctx context.Context, state domain.State) (domain.State, error) {
	if err := r.guard(); err != nil {
		return domain.State{}, err
	}
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS rs (%[2]s, user_id, %[3]s, last_read_at)
		VALUES ($1::uuid, $2::uuid, $3, now())
		ON CONFLICT (%[2]s, user_id) DO UPDATE
		SET %[3]s = EXCLUDED.%[3]s, last_read_at = now()
		WHERE EXCLUDED.%[3]s IS NULL
		   OR rs.%[3]s IS NULL
		   OR NOT EXISTS (SELECT 1 FROM %[4]s cur WHERE cur.id = rs.%[3]s)
		   OR (SELECT nxt.%[5]s FROM %[4]s nxt WHERE nxt.id = EXCLUDED.%[3]s)
		      >= (SELECT cur.%[5]s FROM %[4]s cur WHERE cur.id = rs.%[3]s)
		RETURNING %[2]s, user_id, %[3]s, last_read_at`,
		r.spec.stateTable, r.spec.threadColumn, r.spec.anchorColumn, r.spec.anchorTable, r.spec.anchorKey,
	)
	var stored domain.State
	err := r.pool.QueryRow(ctx, query, state.ThreadID, state.UserID, state.AnchorID).
		Scan(&stored.ThreadID, &stored.UserID, &stored.AnchorID, &stored.LastReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Guard rejected the write; the stored pointer is newer.
		current, _, getErr := r.Get(ctx, state.ThreadID, state.UserID)
		if getErr != nil {
			return domain.State{}, getErr
		}
		return current, nil
	}
	if err != nil {
		return domain.State{}, err
	}
	return stored, nil
}

// PgMessageAnchorResolver resolves message ids to their created_at key
// within a channel, scoped to the caller's workspace.
type PgMessageAnchorResolver struct {
	pool  *pgxpool.Pool
	scope tenancy.Identity
}

func NewPgMessageAnchorResolver(pool *pgxpool.Pool, scope tenancy.Identity) *PgMessageAnchorResolver {
	return &PgMessageAnchorResolver{pool: pool, scope: scope}
}

func (r *PgMessageAnchorResolver) ResolveAnchor(ctx context.Context, threadID string, anchorID string) (time.Time, bool, error) {
	var key time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT m.created_at
		FROM messages m
		JOIN channels c ON c.id = m.channel_id
		WHERE m.id = $1 AND m.channel_id = $2 AND c.workspace_id = $3`,
		anchorID, threadID, r.scope.WorkspaceID,
	).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return key, true, nil
}

// PgEventAnchorResolver resolves comm event ids to their occurred_at key
// within a conversation, scoped to the caller's workspace.
type PgEventAnchorResolver struct {
	pool  *pgxpool.Pool
	scope tenancy.Identity
}

func NewPgEventAnchorResolver(pool *pgxpool.Pool, scope tenancy.Identity) *PgEventAnchorResolver {
	return &PgEventAnchorResolver{pool: pool, scope: scope}
}

func (r *PgEventAnchorResolver) ResolveAnchor(ctx context.Context, threadID string, anchorID string) (time.Time, bool, error) {
	var key time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT e.occurred_at
		FROM comm_events e
		JOIN conversations cv ON cv.id = e.conversation_id
		WHERE e.id = $1 AND e.conversation_id = $2 AND cv.workspace_id = $3`,
		anchorID, threadID, r.scope.WorkspaceID,
	).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return key, true, nil
}
