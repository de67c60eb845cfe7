package services

import (
	"context"
	"errors"
	"time"

	"roomatch/internal/domain/chat"
	"roomatch/internal/domain/user"
	"roomatch/internal/repository"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupChatService manages group conversations: one conversation per group,
// created lazily on the first message. Eligibility reads (author account
// enabled, group open, author is an invitee) come from the repositories at
// call time.
type GroupChatService struct {
	db       *gorm.DB
	users    repository.UserRepository
	groups   repository.GroupRepository
	convs    repository.ConversationRepository
	notifier Notifier
	cache    Cache
}

func NewGroupChatService(db *gorm.DB, users repository.UserRepository, groups repository.GroupRepository, convs repository.ConversationRepository) *GroupChatService {
	return &GroupChatService{
		db:     db,
		users:  users,
		groups: groups,
		convs:  convs,
	}
}

func (s *GroupChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetCache attaches a best-effort Redis cache.
func (s *GroupChatService) SetCache(cache Cache) {
	s.cache = cache
}

// WithTx returns a service bound to a caller-controlled transaction.
func (s *GroupChatService) WithTx(tx *gorm.DB) *GroupChatService {
	return &GroupChatService{
		users:    repository.NewUserRepository(tx),
		groups:   repository.NewGroupRepository(tx),
		convs:    repository.NewConversationRepository(tx),
		notifier: s.notifier,
		cache:    s.cache,
	}
}

func (s *GroupChatService) transact(ctx context.Context, fn func(svc *GroupChatService) error) error {
	if s.db == nil {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.WithTx(tx))
	})
}

// FindOne returns the group's conversation, or ErrNotFound when no message
// has been posted yet.
func (s *GroupChatService) FindOne(ctx context.Context, groupID uuid.UUID) (chat.Conversation, error) {
	return s.convs.FindByGroup(ctx, groupID)
}

// Get returns a conversation by id.
func (s *GroupChatService) Get(ctx context.Context, id uuid.UUID) (chat.Conversation, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetConversation(ctx, id); err == nil && cached != nil {
			return cached.Entity(), nil
		}
	}
	conv, err := s.convs.GetByID(ctx, id)
	if err != nil {
		return chat.Conversation{}, err
	}
	if s.cache != nil {
		_ = s.cache.SetConversationFromEntity(ctx, &conv)
	}
	return conv, nil
}

// ListMessages returns the group's messages oldest-first; a group with no
// conversation yet yields an empty page.
func (s *GroupChatService) ListMessages(ctx context.Context, groupID uuid.UUID, page, limit int) ([]chat.Message, int64, error) {
	conv, err := s.convs.FindByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			return []chat.Message{}, 0, nil
		}
		return nil, 0, err
	}
	page, limit = normalizePage(page, limit)
	return s.convs.GetConversationMessages(ctx, conv.ID, page, limit)
}

// CountMessages returns the group's total message count, 0 when no
// conversation exists.
func (s *GroupChatService) CountMessages(ctx context.Context, groupID uuid.UUID) (int64, error) {
	conv, err := s.convs.FindByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if s.cache != nil {
		if cached, cerr := s.cache.GetMessageCount(ctx, conv.ID); cerr == nil && cached >= 0 {
			return cached, nil
		}
	}
	count, err := s.convs.CountMessages(ctx, conv.ID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.SetMessageCount(ctx, conv.ID, count)
	}
	return count, nil
}

// CreateMessage validates the input, checks that the author's account is
// still enabled, that the group is open and that the author is one of its
// invitees, then resolves or creates the group's conversation and appends
// the message.
func (s *GroupChatService) CreateMessage(ctx context.Context, authorID, groupID uuid.UUID, in MessageInput) (chat.Message, error) {
	content, err := in.validate()
	if err != nil {
		return chat.Message{}, err
	}

	// The token may outlive the account status it was issued under.
	author, err := s.lookupUser(ctx, authorID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			return chat.Message{}, roomatch_errors.ErrForbidden
		}
		return chat.Message{}, err
	}
	if !author.IsEnabled() {
		return chat.Message{}, roomatch_errors.ErrForbidden
	}

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			return chat.Message{}, &roomatch_errors.InvalidParameterError{
				Parameter: "group",
				Reason:    "group does not exist",
			}
		}
		return chat.Message{}, err
	}
	if !g.IsAvailable() {
		return chat.Message{}, &roomatch_errors.InvalidParameterError{
			Parameter: "group",
			Reason:    "group is closed",
		}
	}
	if !g.HasInvitee(authorID) {
		return chat.Message{}, &roomatch_errors.InvalidParameterError{
			Parameter: "author",
			Reason:    "author is not a member of the group",
		}
	}

	conv, err := s.findOrCreateConversation(ctx, groupID)
	if err != nil {
		return chat.Message{}, err
	}

	msg := chat.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		AuthorID:       authorID,
		Content:        content,
		ParentID:       in.ParentID,
		CreatedAt:      time.Now(),
	}

	err = s.transact(ctx, func(svc *GroupChatService) error {
		if msg.ParentID.Valid {
			if err := svc.checkParent(ctx, msg.ParentID.UUID, conv.ID); err != nil {
				return err
			}
		}
		if err := svc.convs.CreateMessage(ctx, &msg); err != nil {
			return err
		}
		return svc.convs.Touch(ctx, conv.ID, msg.CreatedAt)
	})
	if err != nil {
		return chat.Message{}, err
	}

	if s.cache != nil {
		// Drops the metadata entry too; Touch just moved updated_at.
		_ = s.cache.InvalidateConversation(ctx, conv.ID)
	}
	if s.notifier != nil {
		s.notifier.MessageCreated(conv, msg)
	}
	return msg, nil
}

// Delete removes a group conversation and cascades its messages. A missing
// conversation is a no-op success.
func (s *GroupChatService) Delete(ctx context.Context, conversationID uuid.UUID) error {
	err := s.convs.Delete(ctx, conversationID)
	if err != nil && !errors.Is(err, roomatch_errors.ErrNotFound) {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateConversation(ctx, conversationID)
	}
	return nil
}

// DeleteAll removes every group conversation.
func (s *GroupChatService) DeleteAll(ctx context.Context) error {
	return s.convs.DeleteAllByKind(ctx, chat.KindGroup)
}

// Count returns the number of group conversations.
func (s *GroupChatService) Count(ctx context.Context) (int64, error) {
	return s.convs.CountByKind(ctx, chat.KindGroup)
}

func (s *GroupChatService) findOrCreateConversation(ctx context.Context, groupID uuid.UUID) (chat.Conversation, error) {
	conv, err := s.convs.FindByGroup(ctx, groupID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, roomatch_errors.ErrNotFound) {
		return chat.Conversation{}, err
	}

	fresh := chat.NewGroupConversation(groupID)
	cerr := s.convs.Create(ctx, &fresh)
	if cerr == nil {
		return fresh, nil
	}
	if !errors.Is(cerr, roomatch_errors.ErrAlreadyExists) {
		return chat.Conversation{}, cerr
	}
	return s.convs.FindByGroup(ctx, groupID)
}

// lookupUser resolves an account for the eligibility checks, preferring the
// short-lived status cache over a database read.
func (s *GroupChatService) lookupUser(ctx context.Context, id uuid.UUID) (user.User, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetUser(ctx, id); err == nil && cached != nil {
			return user.User{ID: cached.ID, Email: cached.Email, Status: cached.Status}, nil
		}
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if s.cache != nil {
		_ = s.cache.SetUserFromEntity(ctx, &u)
	}
	return u, nil
}

func (s *GroupChatService) checkParent(ctx context.Context, parentID, conversationID uuid.UUID) error {
	parent, err := s.convs.GetMessageByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			return &roomatch_errors.ValidationError{Field: "parent_id", Reason: "parent message does not exist"}
		}
		return err
	}
	if parent.ConversationID != conversationID {
		return &roomatch_errors.ValidationError{Field: "parent_id", Reason: "parent message belongs to another conversation"}
	}
	return nil
}
