package adapter

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	channel "commscore/internal/pkg/channel/application/domain"
	repository "commscore/internal/pkg/channel/persistence/repository/port"
	"commscore/internal/pkg/pagination"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// MemChannelRepository is an in-memory implementation of the channel port.
// It backs tests and mirrors the storage-level uniqueness guarantees the
// Postgres adapter gets from its indexes.
type MemChannelRepository struct {
	store *MemChannelStore
	scope tenancy.Identity
}

// MemChannelStore holds the shared state so several scoped repositories
// (different workspaces or users) can observe the same data, the way
// separate requests share one database.
type MemChannelStore struct {
	mu       sync.Mutex
	channels map[string]channel.Channel
	members  map[string]map[string]channel.Membership // channelID -> userID
}

func NewMemChannelStore() *MemChannelStore {
	return &MemChannelStore{
		channels: make(map[string]channel.Channel),
		members:  make(map[string]map[string]channel.Membership),
	}
}

func (s *MemChannelStore) Scoped(scope tenancy.Identity) *MemChannelRepository {
	return &MemChannelRepository{store: s, scope: scope}
}

func (r *MemChannelRepository) guard() error {
	if r.scope.WorkspaceID == "" {
		return errors.New("MemChannelRepository: empty workspace scope")
	}
	return nil
}

func (r *MemChannelRepository) EnsureBoard(ctx context.Context) (channel.Channel, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch.WorkspaceID == r.scope.WorkspaceID && ch.Type == channel.TypeBoard {
			return ch, nil
		}
	}
	now := time.Now().UTC()
	ch := channel.Channel{
		ID: uuid.NewString(), WorkspaceID: r.scope.WorkspaceID,
		Type: channel.TypeBoard, Key: channel.BoardKey, Name: "Board",
		CreatedAt: now, UpdatedAt: now,
	}
	s.channels[ch.ID] = ch
	return ch, nil
}

func (r *MemChannelRepository) InsertRoom(ctx context.Context, ch channel.Channel, memberIDs []string) (channel.Channel, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.channels {
		if existing.WorkspaceID == r.scope.WorkspaceID && existing.Key == ch.Key && existing.ArchivedAt == nil {
			return channel.Channel{}, repository.ErrDuplicateKey
		}
	}
	now := time.Now().UTC()
	ch.ID = uuid.NewString()
	ch.WorkspaceID = r.scope.WorkspaceID
	ch.Type = channel.TypeRoom
	ch.CreatedAt, ch.UpdatedAt = now, now
	s.channels[ch.ID] = ch
	for _, uid := range memberIDs {
		s.addMemberLocked(ch.ID, uid)
	}
	return ch, nil
}

func (r *MemChannelRepository) UpsertDM(ctx context.Context, key string, memberIDs []string) (channel.Channel, bool, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, false, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch.WorkspaceID == r.scope.WorkspaceID && ch.Key == key && ch.ArchivedAt == nil {
			return ch, false, nil
		}
	}
	now := time.Now().UTC()
	ch := channel.Channel{
		ID: uuid.NewString(), WorkspaceID: r.scope.WorkspaceID,
		Type: channel.TypeDM, Key: key, IsPrivate: true,
		CreatedAt: now, UpdatedAt: now,
	}
	s.channels[ch.ID] = ch
	for _, uid := range memberIDs {
		s.addMemberLocked(ch.ID, uid)
	}
	return ch, true, nil
}

func (r *MemChannelRepository) FindByID(ctx context.Context, id string) (channel.Channel, bool, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, false, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[id]
	if !ok || ch.WorkspaceID != r.scope.WorkspaceID {
		return channel.Channel{}, false, nil
	}
	return ch, true, nil
}

func (r *MemChannelRepository) ListVisible(ctx context.Context, includeArchived bool, limit int, cursor *pagination.Cursor) ([]channel.Channel, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []channel.Channel
	for _, ch := range s.channels {
		if ch.WorkspaceID != r.scope.WorkspaceID {
			continue
		}
		if ch.ArchivedAt != nil && !includeArchived {
			continue
		}
		if !ch.Open() && !s.isLiveMemberLocked(ch.ID, r.scope.UserID) {
			continue
		}
		if cursor != nil && !olderThan(ch.UpdatedAt, ch.ID, *cursor) {
			continue
		}
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit+1 {
		out = out[:limit+1]
	}
	return out, nil
}

func (r *MemChannelRepository) Patch(ctx context.Context, id string, p channel.Patch) (channel.Channel, error) {
	if err := r.guard(); err != nil {
		return channel.Channel{}, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[id]
	if !ok || ch.WorkspaceID != r.scope.WorkspaceID {
		return channel.Channel{}, errors.New("MemChannelRepository: no such channel")
	}
	if p.Name != nil {
		ch.Name = *p.Name
	}
	if p.IsPrivate != nil {
		ch.IsPrivate = *p.IsPrivate
	}
	if p.Archive {
		now := time.Now().UTC()
		ch.ArchivedAt = &now
	}
	ch.UpdatedAt = time.Now().UTC()
	s.channels[id] = ch
	return ch, nil
}

func (r *MemChannelRepository) IsMember(ctx context.Context, channelID, userID string) (bool, error) {
	if err := r.guard(); err != nil {
		return false, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[channelID]
	if !ok || ch.WorkspaceID != r.scope.WorkspaceID {
		return false, nil
	}
	return s.isLiveMemberLocked(channelID, userID), nil
}

func (r *MemChannelRepository) MemberIDs(ctx context.Context, channelID string) ([]string, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for uid, m := range s.members[channelID] {
		if m.RemovedAt == nil {
			ids = append(ids, uid)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemChannelRepository) AddMember(ctx context.Context, channelID, userID string) error {
	if err := r.guard(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addMemberLocked(channelID, userID)
	return nil
}

func (r *MemChannelRepository) RemoveMember(ctx context.Context, channelID, userID string) error {
	if err := r.guard(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[channelID][userID]; ok && m.RemovedAt == nil {
		now := time.Now().UTC()
		m.RemovedAt = &now
		s.members[channelID][userID] = m
	}
	return nil
}

// TouchLastMessage advances the channel's activity watermark; exposed so the
// message pipeline's memory adapter can share the store.
func (s *MemChannelStore) TouchLastMessage(channelID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[channelID]
	if !ok {
		return
	}
	ch.LastMessageAt = &at
	ch.UpdatedAt = at
	s.channels[channelID] = ch
}

func (s *MemChannelStore) addMemberLocked(channelID, userID string) {
	if s.members[channelID] == nil {
		s.members[channelID] = make(map[string]channel.Membership)
	}
	s.members[channelID][userID] = channel.Membership{
		ChannelID: channelID, UserID: userID, JoinedAt: time.Now().UTC(),
	}
}

func (s *MemChannelStore) isLiveMemberLocked(channelID, userID string) bool {
	m, ok := s.members[channelID][userID]
	return ok && m.RemovedAt == nil
}

func olderThan(key time.Time, id string, cursor pagination.Cursor) bool {
	if key.Before(cursor.SortKey) {
		return true
	}
	return key.Equal(cursor.SortKey) && id < cursor.ID
}
