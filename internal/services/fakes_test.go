package services

import (
	"context"
	"sort"
	"time"

	"roomatch/internal/domain/chat"
	"roomatch/internal/domain/group"
	"roomatch/internal/domain/user"
	"roomatch/internal/redis"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (r *fakeUserRepo) add(u user.User) {
	r.users[u.ID] = u
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := r.users[u.ID]; ok {
		return roomatch_errors.ErrAlreadyExists
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, roomatch_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, roomatch_errors.ErrNotFound
}

func (r *fakeUserRepo) GetAllUsers(_ context.Context, page, limit int) ([]user.User, int64, error) {
	all := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	return all, int64(len(all)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u user.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return roomatch_errors.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	u, ok := r.users[id]
	if !ok {
		return roomatch_errors.ErrNotFound
	}
	u.Status = status
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return roomatch_errors.ErrNotFound
	}
	u.LastLoginAt.Time = at
	u.LastLoginAt.Valid = true
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return roomatch_errors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeGroupRepo struct {
	groups map[uuid.UUID]group.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[uuid.UUID]group.Group)}
}

func (r *fakeGroupRepo) add(g group.Group) {
	r.groups[g.ID] = g
}

func (r *fakeGroupRepo) Create(_ context.Context, g *group.Group) error {
	if _, ok := r.groups[g.ID]; ok {
		return roomatch_errors.ErrAlreadyExists
	}
	r.groups[g.ID] = *g
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id uuid.UUID) (group.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return group.Group{}, roomatch_errors.ErrNotFound
	}
	return g, nil
}

func (r *fakeGroupRepo) GetUserGroups(_ context.Context, userID uuid.UUID, page, limit int) ([]group.Group, int64, error) {
	var out []group.Group
	for _, g := range r.groups {
		if g.HasInvitee(userID) {
			out = append(out, g)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeGroupRepo) Update(_ context.Context, g group.Group) error {
	if _, ok := r.groups[g.ID]; !ok {
		return roomatch_errors.ErrNotFound
	}
	r.groups[g.ID] = g
	return nil
}

func (r *fakeGroupRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	g, ok := r.groups[id]
	if !ok {
		return roomatch_errors.ErrNotFound
	}
	g.Status = status
	r.groups[id] = g
	return nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.groups[id]; !ok {
		return roomatch_errors.ErrNotFound
	}
	delete(r.groups, id)
	return nil
}

func (r *fakeGroupRepo) AddInvitee(_ context.Context, inv *group.Invitee) error {
	g, ok := r.groups[inv.GroupID]
	if !ok {
		return roomatch_errors.ErrNotFound
	}
	if g.HasInvitee(inv.UserID) {
		return roomatch_errors.ErrAlreadyExists
	}
	g.Invitees = append(g.Invitees, *inv)
	r.groups[inv.GroupID] = g
	return nil
}

func (r *fakeGroupRepo) RemoveInvitee(_ context.Context, groupID, userID uuid.UUID) error {
	g, ok := r.groups[groupID]
	if !ok {
		return roomatch_errors.ErrNotFound
	}
	for i, inv := range g.Invitees {
		if inv.UserID == userID {
			g.Invitees = append(g.Invitees[:i], g.Invitees[i+1:]...)
			r.groups[groupID] = g
			return nil
		}
	}
	return roomatch_errors.ErrNotFound
}

func (r *fakeGroupRepo) GetInvitees(_ context.Context, groupID uuid.UUID) ([]group.Invitee, error) {
	g, ok := r.groups[groupID]
	if !ok {
		return nil, roomatch_errors.ErrNotFound
	}
	return g.Invitees, nil
}

func (r *fakeGroupRepo) IsInvitee(_ context.Context, groupID, userID uuid.UUID) (bool, error) {
	g, ok := r.groups[groupID]
	if !ok {
		return false, nil
	}
	return g.HasInvitee(userID), nil
}

type fakeConversationRepo struct {
	conversations map[uuid.UUID]chat.Conversation
	messages      []chat.Message

	// failNextCreate makes the next Create report a unique violation and
	// missNextFind makes the next FindPrivate miss, together simulating a
	// concurrent writer inserting between lookup and insert.
	failNextCreate    bool
	missNextFind      bool
	missNextGroupFind bool
	createCalls       int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[uuid.UUID]chat.Conversation)}
}

func (r *fakeConversationRepo) Create(_ context.Context, c *chat.Conversation) error {
	r.createCalls++
	if r.failNextCreate {
		r.failNextCreate = false
		return roomatch_errors.ErrAlreadyExists
	}
	for _, existing := range r.conversations {
		if existing.Kind != c.Kind {
			continue
		}
		switch c.Kind {
		case chat.KindPrivate:
			if existing.FirstParticipantID == c.FirstParticipantID &&
				existing.SecondParticipantID == c.SecondParticipantID {
				return roomatch_errors.ErrAlreadyExists
			}
		case chat.KindGroup:
			if existing.GroupID == c.GroupID {
				return roomatch_errors.ErrAlreadyExists
			}
		}
	}
	r.conversations[c.ID] = *c
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id uuid.UUID) (chat.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return chat.Conversation{}, roomatch_errors.ErrNotFound
	}
	return c, nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.conversations[id]; !ok {
		return roomatch_errors.ErrNotFound
	}
	delete(r.conversations, id)
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ConversationID != id {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeConversationRepo) DeleteAllByKind(_ context.Context, kind string) error {
	for id, c := range r.conversations {
		if c.Kind != kind {
			continue
		}
		delete(r.conversations, id)
		kept := r.messages[:0]
		for _, m := range r.messages {
			if m.ConversationID != id {
				kept = append(kept, m)
			}
		}
		r.messages = kept
	}
	return nil
}

func (r *fakeConversationRepo) CountByKind(_ context.Context, kind string) (int64, error) {
	var count int64
	for _, c := range r.conversations {
		if c.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (r *fakeConversationRepo) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	c, ok := r.conversations[id]
	if !ok {
		return roomatch_errors.ErrNotFound
	}
	c.UpdatedAt = at
	r.conversations[id] = c
	return nil
}

func (r *fakeConversationRepo) FindPrivate(_ context.Context, userA, userB uuid.UUID) (chat.Conversation, error) {
	if r.missNextFind {
		r.missNextFind = false
		return chat.Conversation{}, roomatch_errors.ErrNotFound
	}
	first, second := chat.PairKey(userA, userB)
	for _, c := range r.conversations {
		if c.Kind == chat.KindPrivate &&
			c.FirstParticipantID.Valid && c.FirstParticipantID.UUID == first &&
			c.SecondParticipantID.Valid && c.SecondParticipantID.UUID == second {
			return c, nil
		}
	}
	return chat.Conversation{}, roomatch_errors.ErrNotFound
}

func (r *fakeConversationRepo) FindByGroup(_ context.Context, groupID uuid.UUID) (chat.Conversation, error) {
	if r.missNextGroupFind {
		r.missNextGroupFind = false
		return chat.Conversation{}, roomatch_errors.ErrNotFound
	}
	for _, c := range r.conversations {
		if c.Kind == chat.KindGroup && c.GroupID.Valid && c.GroupID.UUID == groupID {
			return c, nil
		}
	}
	return chat.Conversation{}, roomatch_errors.ErrNotFound
}

func (r *fakeConversationRepo) GetUserConversations(_ context.Context, userID uuid.UUID, page, limit int) ([]chat.Conversation, int64, error) {
	var out []chat.Conversation
	for _, c := range r.conversations {
		if c.Kind == chat.KindPrivate && c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	total := int64(len(out))
	out = paginate(out, page, limit)
	return out, total, nil
}

func (r *fakeConversationRepo) CreateMessage(_ context.Context, m *chat.Message) error {
	if _, ok := r.conversations[m.ConversationID]; !ok {
		return roomatch_errors.ErrNotFound
	}
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeConversationRepo) GetMessageByID(_ context.Context, id uuid.UUID) (chat.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return chat.Message{}, roomatch_errors.ErrNotFound
}

func (r *fakeConversationRepo) GetConversationMessages(_ context.Context, conversationID uuid.UUID, page, limit int) ([]chat.Message, int64, error) {
	var out []chat.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	total := int64(len(out))
	out = paginate(out, page, limit)
	return out, total, nil
}

func (r *fakeConversationRepo) CountMessages(_ context.Context, conversationID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			count++
		}
	}
	return count, nil
}

// fakeCache is an in-memory stand-in for the Redis cache store.
type fakeCache struct {
	users         map[uuid.UUID]redis.UserCache
	conversations map[uuid.UUID]redis.ConversationCache
	counts        map[uuid.UUID]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		users:         make(map[uuid.UUID]redis.UserCache),
		conversations: make(map[uuid.UUID]redis.ConversationCache),
		counts:        make(map[uuid.UUID]int64),
	}
}

func (c *fakeCache) GetUser(_ context.Context, userID uuid.UUID) (*redis.UserCache, error) {
	u, ok := c.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (c *fakeCache) SetUserFromEntity(_ context.Context, u *user.User) error {
	c.users[u.ID] = redis.UserCache{ID: u.ID, Email: u.Email, Status: u.Status}
	return nil
}

func (c *fakeCache) InvalidateUser(_ context.Context, userID uuid.UUID) error {
	delete(c.users, userID)
	return nil
}

func (c *fakeCache) GetConversation(_ context.Context, conversationID uuid.UUID) (*redis.ConversationCache, error) {
	conv, ok := c.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	return &conv, nil
}

func (c *fakeCache) SetConversationFromEntity(_ context.Context, conv *chat.Conversation) error {
	c.conversations[conv.ID] = redis.ConversationCache{
		ID:                  conv.ID,
		Kind:                conv.Kind,
		FirstParticipantID:  conv.FirstParticipantID,
		SecondParticipantID: conv.SecondParticipantID,
		GroupID:             conv.GroupID,
		CreatedAt:           conv.CreatedAt,
		UpdatedAt:           conv.UpdatedAt,
	}
	return nil
}

func (c *fakeCache) InvalidateConversation(_ context.Context, conversationID uuid.UUID) error {
	delete(c.conversations, conversationID)
	delete(c.counts, conversationID)
	return nil
}

func (c *fakeCache) GetMessageCount(_ context.Context, conversationID uuid.UUID) (int64, error) {
	count, ok := c.counts[conversationID]
	if !ok {
		return -1, nil
	}
	return count, nil
}

func (c *fakeCache) SetMessageCount(_ context.Context, conversationID uuid.UUID, count int64) error {
	c.counts[conversationID] = count
	return nil
}

func paginate[T any](items []T, page, limit int) []T {
	offset := (page - 1) * limit
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func enabledUser() user.User {
	now := time.Now()
	return user.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Status:       user.StatusEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func openGroupWith(members ...uuid.UUID) group.Group {
	now := time.Now()
	g := group.Group{
		ID:        uuid.New(),
		Name:      "flatshare",
		Status:    group.StatusOpened,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, id := range members {
		role := group.RoleMember
		if i == 0 {
			role = group.RoleCreator
			g.CreatedBy = id
		}
		g.Invitees = append(g.Invitees, group.Invitee{
			GroupID:  g.ID,
			UserID:   id,
			Role:     role,
			JoinedAt: now,
		})
	}
	return g
}
