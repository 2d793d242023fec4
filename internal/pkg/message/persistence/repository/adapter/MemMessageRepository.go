package adapter

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	message "commscore/internal/pkg/message/application/domain"
	"commscore/internal/pkg/pagination"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// MemMessageRepository implements the message port in memory for tests,
// mirroring the Postgres adapter's uniqueness and visibility semantics.
type MemMessageRepository struct {
	store *MemMessageStore
	scope tenancy.Identity
}

type MemMessageStore struct {
	mu        sync.Mutex
	messages  map[string]message.Message
	byNonce   map[string]string // channel|author|nonce -> message id
	reactions map[string]map[string]message.Reaction // messageID -> user|emoji
	mentions  map[string][]message.Mention
	workspace map[string]string // channelID -> workspaceID

	// OnTouch lets tests observe channel activity advancement.
	OnTouch func(channelID string, at time.Time)

	clock time.Time
}

func NewMemMessageStore() *MemMessageStore {
	return &MemMessageStore{
		messages:  make(map[string]message.Message),
		byNonce:   make(map[string]string),
		reactions: make(map[string]map[string]message.Reaction),
		mentions:  make(map[string][]message.Mention),
		workspace: make(map[string]string),
	}
}

// RegisterChannel teaches the store which workspace owns a channel; the
// Postgres adapter gets this from its join.
func (s *MemMessageStore) RegisterChannel(channelID, workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspace[channelID] = workspaceID
}

func (s *MemMessageStore) Scoped(scope tenancy.Identity) *MemMessageRepository {
	return &MemMessageRepository{store: s, scope: scope}
}

// tick returns a strictly increasing timestamp so insertion order is total
// even within one clock granule.
func (s *MemMessageStore) tick() time.Time {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(s.clock) {
		now = s.clock.Add(time.Microsecond)
	}
	s.clock = now
	return now
}

func (r *MemMessageRepository) guard() error {
	if r.scope.WorkspaceID == "" {
		return errors.New("MemMessageRepository: empty workspace scope")
	}
	return nil
}

func (r *MemMessageRepository) owns(channelID string) bool {
	return r.store.workspace[channelID] == r.scope.WorkspaceID
}

func (r *MemMessageRepository) UpsertByNonce(ctx context.Context, m message.Message) (message.Message, bool, error) {
	if err := r.guard(); err != nil {
		return message.Message{}, false, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if !r.owns(m.ChannelID) {
		return message.Message{}, false, errors.New("MemMessageRepository: channel outside workspace")
	}
	if m.ClientNonce != nil && *m.ClientNonce != "" {
		key := m.ChannelID + "|" + m.AuthorUserID + "|" + *m.ClientNonce
		if id, ok := s.byNonce[key]; ok {
			return s.messages[id], false, nil
		}
		defer func() { s.byNonce[key] = m.ID }()
	}
	now := s.tick()
	m.ID = uuid.NewString()
	m.IsVisible = true
	m.CreatedAt, m.UpdatedAt = now, now
	s.messages[m.ID] = m
	return m, true, nil
}

func (r *MemMessageRepository) FindByID(ctx context.Context, id string) (message.Message, bool, error) {
	if err := r.guard(); err != nil {
		return message.Message{}, false, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok || !r.owns(m.ChannelID) {
		return message.Message{}, false, nil
	}
	return m, true, nil
}

func (r *MemMessageRepository) List(ctx context.Context, channelID string, limit int, cursor *pagination.Cursor, forward bool) ([]message.Message, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if !r.owns(channelID) {
		return nil, nil
	}
	var out []message.Message
	for _, m := range s.messages {
		if m.ChannelID != channelID || !m.IsVisible {
			continue
		}
		if cursor != nil {
			if forward && !newerThan(m.CreatedAt, m.ID, *cursor) {
				continue
			}
			if !forward && !olderThan(m.CreatedAt, m.ID, *cursor) {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			if forward {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if forward {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit+1 {
		out = out[:limit+1]
	}
	return out, nil
}

func (r *MemMessageRepository) UpdateBody(ctx context.Context, id, body string) (message.Message, error) {
	if err := r.guard(); err != nil {
		return message.Message{}, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok || !r.owns(m.ChannelID) || m.Deleted() {
		return message.Message{}, errors.New("MemMessageRepository: no such live message")
	}
	m.Body = body
	m.UpdatedAt = s.tick()
	s.messages[id] = m
	return m, nil
}

func (r *MemMessageRepository) SoftDelete(ctx context.Context, id string) error {
	if err := r.guard(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok || !r.owns(m.ChannelID) || m.Deleted() {
		return errors.New("MemMessageRepository: no such live message")
	}
	now := s.tick()
	m.DeletedAt = &now
	m.IsVisible = false
	m.UpdatedAt = now
	s.messages[id] = m
	return nil
}

func (r *MemMessageRepository) ToggleReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	if err := r.guard(); err != nil {
		return false, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok || !r.owns(m.ChannelID) {
		return false, errors.New("MemMessageRepository: no such message")
	}
	key := userID + "|" + emoji
	if s.reactions[messageID] == nil {
		s.reactions[messageID] = make(map[string]message.Reaction)
	}
	if _, ok := s.reactions[messageID][key]; ok {
		delete(s.reactions[messageID], key)
		return false, nil
	}
	s.reactions[messageID][key] = message.Reaction{
		MessageID: messageID, UserID: userID, Emoji: emoji, CreatedAt: s.tick(),
	}
	return true, nil
}

func (r *MemMessageRepository) ListReactions(ctx context.Context, messageID string) ([]message.Reaction, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []message.Reaction
	for _, re := range s.reactions[messageID] {
		out = append(out, re)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemMessageRepository) InsertMentions(ctx context.Context, messageID string, userIDs []string) error {
	if err := r.guard(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, uid := range userIDs {
		s.mentions[messageID] = append(s.mentions[messageID], message.Mention{
			WorkspaceID: r.scope.WorkspaceID, MessageID: messageID,
			MentionedUserID: uid, CreatedAt: s.tick(),
		})
	}
	return nil
}

// Mentions exposes recorded mentions for assertions.
func (s *MemMessageStore) Mentions(messageID string) []message.Mention {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]message.Mention(nil), s.mentions[messageID]...)
}

func (r *MemMessageRepository) TouchChannelActivity(ctx context.Context, channelID string, at time.Time) error {
	if err := r.guard(); err != nil {
		return err
	}
	if r.store.OnTouch != nil {
		r.store.OnTouch(channelID, at)
	}
	return nil
}

func olderThan(key time.Time, id string, cursor pagination.Cursor) bool {
	if key.Before(cursor.SortKey) {
		return true
	}
	return key.Equal(cursor.SortKey) && id < cursor.ID
}

func newerThan(key time.Time, id string, cursor pagination.Cursor) bool {
	if key.After(cursor.SortKey) {
		return true
	}
	return key.Equal(cursor.SortKey) && id > cursor.ID
}
