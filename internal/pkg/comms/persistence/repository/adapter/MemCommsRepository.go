package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/pagination"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// MemCommsStore is an in-memory stand-in for the comms tables. It backs
// the directory, ledger and suppression ports directly and hands out
// user-scoped views via ScopedConversations.
type MemCommsStore struct {
	mu            sync.Mutex
	numbers       map[string]comms.PhoneNumber // e164 -> number
	conversations map[string]comms.Conversation
	byThreadKey   map[string]string // workspace|threadKey -> conversation id
	sms           map[string]comms.SmsMessage
	smsBySid      map[string]string
	calls         map[string]comms.Call
	callsBySid    map[string]string
	events        map[string]comms.CommEvent
	suppressions  map[string]comms.Suppression // workspace|e164
	clock         time.Time
}

func NewMemCommsStore() *MemCommsStore {
	return &MemCommsStore{
		numbers:       make(map[string]comms.PhoneNumber),
		conversations: make(map[string]comms.Conversation),
		byThreadKey:   make(map[string]string),
		sms:           make(map[string]comms.SmsMessage),
		smsBySid:      make(map[string]string),
		calls:         make(map[string]comms.Call),
		callsBySid:    make(map[string]string),
		events:        make(map[string]comms.CommEvent),
		suppressions:  make(map[string]comms.Suppression),
		clock:         time.Now().Truncate(time.Microsecond),
	}
}

// tick returns a strictly increasing timestamp so ordering keys are
// never equal within one test run.
func (s *MemCommsStore) tick() time.Time {
	s.clock = s.clock.Add(time.Microsecond)
	return s.clock
}

// RegisterNumber seeds a provisioned workspace number.
func (s *MemCommsStore) RegisterNumber(pn comms.PhoneNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numbers[pn.E164] = pn
}

func (s *MemCommsStore) FindByE164(ctx context.Context, e164 string) (comms.PhoneNumber, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pn, ok := s.numbers[e164]
	return pn, ok, nil
}

func (s *MemCommsStore) UpsertConversation(ctx context.Context, conv comms.Conversation) (comms.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := conv.WorkspaceID + "|" + conv.ThreadKey
	if existingID, ok := s.byThreadKey[key]; ok {
		existing := s.conversations[existingID]
		existing.UpdatedAt = s.tick()
		s.conversations[existingID] = existing
		return existing, false, nil
	}
	now := s.tick()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	s.conversations[conv.ID] = conv
	s.byThreadKey[key] = conv.ID
	return conv, true, nil
}

func (s *MemCommsStore) InsertSmsBySid(ctx context.Context, msg comms.SmsMessage) (comms.SmsMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, ok := s.smsBySid[msg.ProviderSid]; ok {
		return s.sms[existingID], false, nil
	}
	msg.CreatedAt = s.tick()
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = msg.CreatedAt
	}
	s.sms[msg.ID] = msg
	s.smsBySid[msg.ProviderSid] = msg.ID
	return msg, true, nil
}

func (s *MemCommsStore) FindSmsBySid(ctx context.Context, providerSid string) (comms.SmsMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.smsBySid[providerSid]
	if !ok {
		return comms.SmsMessage{}, false, nil
	}
	return s.sms[id], true, nil
}

func (s *MemCommsStore) UpdateSmsStatus(ctx context.Context, messageID string, status string, errorCode *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.sms[messageID]
	if !ok {
		return nil
	}
	msg.Status = status
	msg.ErrorCode = errorCode
	s.sms[messageID] = msg
	return nil
}

func (s *MemCommsStore) InsertCallBySid(ctx context.Context, call comms.Call) (comms.Call, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, ok := s.callsBySid[call.ProviderSid]; ok {
		return s.calls[existingID], false, nil
	}
	call.CreatedAt = s.tick()
	if call.OccurredAt.IsZero() {
		call.OccurredAt = call.CreatedAt
	}
	s.calls[call.ID] = call
	s.callsBySid[call.ProviderSid] = call.ID
	return call, true, nil
}

func (s *MemCommsStore) AppendEvent(ctx context.Context, event comms.CommEvent) (comms.CommEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.tick()
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *MemCommsStore) LatestDeliveryStatus(ctx context.Context, conversationID string, messageID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		latest   comms.CommEvent
		found    bool
	)
	for _, event := range s.events {
		if event.ConversationID != conversationID || event.Type != comms.EventDeliveryUpdate {
			continue
		}
		if id, _ := event.Payload["messageId"].(string); id != messageID {
			continue
		}
		if !found || event.OccurredAt.After(latest.OccurredAt) {
			latest = event
			found = true
		}
	}
	if !found {
		return "", false, nil
	}
	status, _ := latest.Payload["status"].(string)
	return status, true, nil
}

func (s *MemCommsStore) TouchConversation(ctx context.Context, conversationID string, direction comms.Direction, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil
	}
	conv.LastMessageAt = &at
	if direction == comms.DirectionInbound {
		conv.LastInboundAt = &at
	} else {
		conv.LastOutboundAt = &at
	}
	conv.UpdatedAt = s.tick()
	s.conversations[conversationID] = conv
	return nil
}

func (s *MemCommsStore) SetOptOut(ctx context.Context, workspaceID string, e164 string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressions[workspaceID+"|"+e164] = comms.Suppression{
		WorkspaceID: workspaceID, E164: e164, OptedOutAt: &at, UpdatedAt: s.tick(),
	}
	return nil
}

func (s *MemCommsStore) ClearOptOut(ctx context.Context, workspaceID string, e164 string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressions[workspaceID+"|"+e164] = comms.Suppression{
		WorkspaceID: workspaceID, E164: e164, UpdatedAt: s.tick(),
	}
	return nil
}

func (s *MemCommsStore) IsSuppressed(ctx context.Context, workspaceID string, e164 string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup, ok := s.suppressions[workspaceID+"|"+e164]
	return ok && sup.OptedOutAt != nil, nil
}

// Suppression exposes the raw row for assertions.
func (s *MemCommsStore) Suppression(workspaceID, e164 string) (comms.Suppression, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup, ok := s.suppressions[workspaceID+"|"+e164]
	return sup, ok
}

// Events returns the ledger entries for a conversation ordered oldest
// first, for assertions.
func (s *MemCommsStore) Events(conversationID string) []comms.CommEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []comms.CommEvent
	for _, event := range s.events {
		if event.ConversationID == conversationID {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out
}

// ScopedConversations returns the user-private view backed by this store.
func (s *MemCommsStore) ScopedConversations(scope tenancy.Identity) *MemConversationRepository {
	return &MemConversationRepository{store: s, scope: scope}
}

// MemConversationRepository mirrors the user-scoped Postgres surface.
type MemConversationRepository struct {
	store *MemCommsStore
	scope tenancy.Identity
}

func (r *MemConversationRepository) visible(conv comms.Conversation) bool {
	return conv.WorkspaceID == r.scope.WorkspaceID && conv.AssignedToUserID == r.scope.UserID
}

func (r *MemConversationRepository) FindByID(ctx context.Context, id string) (comms.Conversation, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	conv, ok := r.store.conversations[id]
	if !ok || !r.visible(conv) {
		return comms.Conversation{}, false, nil
	}
	return conv, true, nil
}

func (r *MemConversationRepository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]comms.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []comms.Conversation
	for _, conv := range r.store.conversations {
		if !r.visible(conv) {
			continue
		}
		if cursor != nil && !olderPair(conv.UpdatedAt, conv.ID, *cursor) {
			continue
		}
		out = append(out, conv)
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

func (r *MemConversationRepository) ListEvents(ctx context.Context, conversationID string, limit int, cursor *pagination.Cursor) ([]comms.CommEvent, error) {
	r.store.mu.Lock()
	conv, ok := r.store.conversations[conversationID]
	if !ok || !r.visible(conv) {
		r.store.mu.Unlock()
		return nil, nil
	}
	var out []comms.CommEvent
	for _, event := range r.store.events {
		if event.ConversationID != conversationID {
			continue
		}
		if cursor != nil && !olderPair(event.OccurredAt, event.ID, *cursor) {
			continue
		}
		out = append(out, event)
	}
	r.store.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit+1 {
		out = out[:limit+1]
	}
	return out, nil
}

func (r *MemConversationRepository) DeleteCascade(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	conv, ok := r.store.conversations[id]
	if !ok || !r.visible(conv) {
		return false, nil
	}
	for eventID, event := range r.store.events {
		if event.ConversationID == id {
			delete(r.store.events, eventID)
		}
	}
	for msgID, msg := range r.store.sms {
		if msg.ConversationID == id {
			delete(r.store.smsBySid, msg.ProviderSid)
			delete(r.store.sms, msgID)
		}
	}
	for callID, call := range r.store.calls {
		if call.ConversationID == id {
			delete(r.store.callsBySid, call.ProviderSid)
			delete(r.store.calls, callID)
		}
	}
	delete(r.store.byThreadKey, conv.WorkspaceID+"|"+conv.ThreadKey)
	delete(r.store.conversations, id)
	return true, nil
}

func olderPair(ts time.Time, id string, cursor pagination.Cursor) bool {
	if ts.Before(cursor.SortKey) {
		return true
	}
	return ts.Equal(cursor.SortKey) && id < cursor.ID
}
