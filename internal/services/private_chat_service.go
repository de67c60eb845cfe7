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

// Notifier receives messages accepted into a conversation, after commit.
// Implementations must not block.
type Notifier interface {
	MessageCreated(conv chat.Conversation, msg chat.Message)
}

// PrivateChatService manages 1:1 conversations. A conversation between two
// users is created lazily on the first message and is unique per unordered
// pair; the unique index on the normalized pair plus a re-fetch on duplicate
// key makes concurrent first messages converge on one row.
type PrivateChatService struct {
	db       *gorm.DB
	users    repository.UserRepository
	convs    repository.ConversationRepository
	notifier Notifier
	cache    Cache
}

func NewPrivateChatService(db *gorm.DB, users repository.UserRepository, convs repository.ConversationRepository) *PrivateChatService {
	return &PrivateChatService{
		db:    db,
		users: users,
		convs: convs,
	}
}

// SetNotifier attaches a post-commit message listener. Must be called before
// the service starts handling requests.
func (s *PrivateChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetCache attaches a best-effort Redis cache. All cache failures fall back
// to the database.
func (s *PrivateChatService) SetCache(cache Cache) {
	s.cache = cache
}

// WithTx returns a service bound to a caller-controlled transaction. The
// returned service runs its operations directly on tx; the caller owns
// commit and rollback.
func (s *PrivateChatService) WithTx(tx *gorm.DB) *PrivateChatService {
	return &PrivateChatService{
		users:    repository.NewUserRepository(tx),
		convs:    repository.NewConversationRepository(tx),
		notifier: s.notifier,
		cache:    s.cache,
	}
}

func (s *PrivateChatService) transact(ctx context.Context, fn func(svc *PrivateChatService) error) error {
	if s.db == nil {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.WithTx(tx))
	})
}

// FindAll lists the conversations where participant is either side, most
// recently active first.
func (s *PrivateChatService) FindAll(ctx context.Context, participant uuid.UUID, page, limit int) ([]chat.Conversation, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.convs.GetUserConversations(ctx, participant, page, limit)
}

// FindOne returns the conversation between the two users regardless of
// argument order, or ErrNotFound.
func (s *PrivateChatService) FindOne(ctx context.Context, userA, userB uuid.UUID) (chat.Conversation, error) {
	return s.convs.FindPrivate(ctx, userA, userB)
}

// Get returns a conversation by id.
func (s *PrivateChatService) Get(ctx context.Context, id uuid.UUID) (chat.Conversation, error) {
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

// ListMessages returns the messages between the two users oldest-first. A
// pair with no conversation yet yields an empty page, not an error.
func (s *PrivateChatService) ListMessages(ctx context.Context, userA, userB uuid.UUID, page, limit int) ([]chat.Message, int64, error) {
	conv, err := s.convs.FindPrivate(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			return []chat.Message{}, 0, nil
		}
		return nil, 0, err
	}
	page, limit = normalizePage(page, limit)
	return s.convs.GetConversationMessages(ctx, conv.ID, page, limit)
}

// CountMessages returns the total message count for the pair, 0 when no
// conversation exists.
func (s *PrivateChatService) CountMessages(ctx context.Context, userA, userB uuid.UUID) (int64, error) {
	conv, err := s.convs.FindPrivate(ctx, userA, userB)
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

// CreateMessage validates the input, checks that the author may still post
// and that the recipient can receive messages, resolves or creates the
// pair's conversation and appends the message. Appending and the activity
// bump run in one transaction.
func (s *PrivateChatService) CreateMessage(ctx context.Context, authorID, recipientID uuid.UUID, in MessageInput) (chat.Message, error) {
	content, err := in.validate()
	if err != nil {
		return chat.Message{}, err
	}

	if authorID == recipientID {
		return chat.Message{}, &roomatch_errors.InvalidRecipientError{
			RecipientID: recipientID,
			Reason:      "cannot send a message to yourself",
		}
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

	recipient, err := s.lookupUser(ctx, recipientID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			return chat.Message{}, &roomatch_errors.InvalidRecipientError{
				RecipientID: recipientID,
				Reason:      "recipient does not exist",
			}
		}
		return chat.Message{}, err
	}
	if !recipient.IsEnabled() {
		return chat.Message{}, &roomatch_errors.InvalidRecipientError{
			RecipientID: recipientID,
			Reason:      "recipient account is not enabled",
		}
	}

	conv, err := s.findOrCreateConversation(ctx, authorID, recipientID)
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

	err = s.transact(ctx, func(svc *PrivateChatService) error {
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

// Delete removes a conversation and cascades its messages. Deleting a
// conversation that is already gone is a no-op success.
func (s *PrivateChatService) Delete(ctx context.Context, conversationID uuid.UUID) error {
	err := s.convs.Delete(ctx, conversationID)
	if err != nil && !errors.Is(err, roomatch_errors.ErrNotFound) {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateConversation(ctx, conversationID)
	}
	return nil
}

// DeleteAll removes every private conversation.
func (s *PrivateChatService) DeleteAll(ctx context.Context) error {
	return s.convs.DeleteAllByKind(ctx, chat.KindPrivate)
}

// Count returns the number of private conversations.
func (s *PrivateChatService) Count(ctx context.Context) (int64, error) {
	return s.convs.CountByKind(ctx, chat.KindPrivate)
}

func (s *PrivateChatService) findOrCreateConversation(ctx context.Context, a, b uuid.UUID) (chat.Conversation, error) {
	conv, err := s.convs.FindPrivate(ctx, a, b)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, roomatch_errors.ErrNotFound) {
		return chat.Conversation{}, err
	}

	fresh := chat.NewPrivateConversation(a, b)
	cerr := s.convs.Create(ctx, &fresh)
	if cerr == nil {
		return fresh, nil
	}
	if !errors.Is(cerr, roomatch_errors.ErrAlreadyExists) {
		return chat.Conversation{}, cerr
	}
	// a concurrent first message won the insert; append to that row
	return s.convs.FindPrivate(ctx, a, b)
}

// lookupUser resolves an account for the eligibility checks, preferring the
// short-lived status cache over a database read.
func (s *PrivateChatService) lookupUser(ctx context.Context, id uuid.UUID) (user.User, error) {
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

func (s *PrivateChatService) checkParent(ctx context.Context, parentID, conversationID uuid.UUID) error {
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
