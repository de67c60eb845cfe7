package services

import (
	"context"

	"roomatch/internal/domain/chat"
	"roomatch/internal/domain/user"
	"roomatch/internal/redis"

	"github.com/google/uuid"
)

// Cache is the slice of the Redis store the services read and invalidate.
// Implemented by *redis.CacheStore; a nil cache disables caching. All cache
// errors are ignored by callers, the database stays authoritative.
type Cache interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*redis.UserCache, error)
	SetUserFromEntity(ctx context.Context, u *user.User) error
	InvalidateUser(ctx context.Context, userID uuid.UUID) error

	GetConversation(ctx context.Context, conversationID uuid.UUID) (*redis.ConversationCache, error)
	SetConversationFromEntity(ctx context.Context, conv *chat.Conversation) error
	InvalidateConversation(ctx context.Context, conversationID uuid.UUID) error

	GetMessageCount(ctx context.Context, conversationID uuid.UUID) (int64, error)
	SetMessageCount(ctx context.Context, conversationID uuid.UUID, count int64) error
}
