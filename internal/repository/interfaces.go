package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"roomatch/internal/domain/chat"
	"roomatch/internal/domain/group"
	"roomatch/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetAllUsers(ctx context.Context, page, limit int) ([]user.User, int64, error)
	Update(ctx context.Context, u user.User) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GroupRepository interface {
	Create(ctx context.Context, g *group.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (group.Group, error)
	GetUserGroups(ctx context.Context, userID uuid.UUID, page, limit int) ([]group.Group, int64, error)
	Update(ctx context.Context, g group.Group) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddInvitee(ctx context.Context, inv *group.Invitee) error
	RemoveInvitee(ctx context.Context, groupID, userID uuid.UUID) error
	GetInvitees(ctx context.Context, groupID uuid.UUID) ([]group.Invitee, error)
	IsInvitee(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, c *chat.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Conversation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByKind(ctx context.Context, kind string) error
	CountByKind(ctx context.Context, kind string) (int64, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	FindPrivate(ctx context.Context, userA, userB uuid.UUID) (chat.Conversation, error)
	FindByGroup(ctx context.Context, groupID uuid.UUID) (chat.Conversation, error)
	GetUserConversations(ctx context.Context, userID uuid.UUID, page, limit int) ([]chat.Conversation, int64, error)

	CreateMessage(ctx context.Context, m *chat.Message) error
	GetMessageByID(ctx context.Context, id uuid.UUID) (chat.Message, error)
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]chat.Message, int64, error)
	CountMessages(ctx context.Context, conversationID uuid.UUID) (int64, error)
}
