package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roomatch/internal/domain/chat"
	"roomatch/internal/domain/user"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - user:{user_id} - 5m TTL, account status cache for eligibility checks
// - conversation:{conv_id} - 5m TTL, metadata cache
// - conversation:{conv_id}:count - 1m TTL, message count

// CacheConfig contains configuration for caching
type CacheConfig struct {
	UserTTL         time.Duration
	ConversationTTL time.Duration
	CountTTL        time.Duration
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		UserTTL:         5 * time.Minute,
		ConversationTTL: 5 * time.Minute,
		CountTTL:        time.Minute,
	}
}

// CacheStore handles caching in Redis
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	return &CacheStore{
		client: client,
		config: config,
	}
}

// --- User Cache ---

// UserCache holds the account fields the chat layer reads on every post.
type UserCache struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Status string    `json:"status"`
}

// GetUser retrieves a user from cache; a miss returns (nil, nil).
func (c *CacheStore) GetUser(ctx context.Context, userID uuid.UUID) (*UserCache, error) {
	key := fmt.Sprintf("user:%s", userID.String())
	data, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u UserCache
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetUserFromEntity stores a user from the domain entity
func (c *CacheStore) SetUserFromEntity(ctx context.Context, u *user.User) error {
	cached := UserCache{
		ID:     u.ID,
		Email:  u.Email,
		Status: u.Status,
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("user:%s", u.ID.String())
	return c.client.Set(ctx, key, data, c.config.UserTTL).Err()
}

// InvalidateUser removes a user from cache
func (c *CacheStore) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	key := fmt.Sprintf("user:%s", userID.String())
	return c.client.Del(ctx, key).Err()
}

// --- Conversation Cache ---

// ConversationCache represents cached conversation metadata
type ConversationCache struct {
	ID                  uuid.UUID     `json:"id"`
	Kind                string        `json:"kind"`
	FirstParticipantID  uuid.NullUUID `json:"first_participant_id,omitempty"`
	SecondParticipantID uuid.NullUUID `json:"second_participant_id,omitempty"`
	GroupID             uuid.NullUUID `json:"group_id,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Entity rebuilds the domain conversation from the cached metadata.
func (cc *ConversationCache) Entity() chat.Conversation {
	return chat.Conversation{
		ID:                  cc.ID,
		Kind:                cc.Kind,
		FirstParticipantID:  cc.FirstParticipantID,
		SecondParticipantID: cc.SecondParticipantID,
		GroupID:             cc.GroupID,
		CreatedAt:           cc.CreatedAt,
		UpdatedAt:           cc.UpdatedAt,
	}
}

// GetConversation retrieves a conversation from cache; a miss returns (nil, nil).
func (c *CacheStore) GetConversation(ctx context.Context, conversationID uuid.UUID) (*ConversationCache, error) {
	key := fmt.Sprintf("conversation:%s", conversationID.String())
	data, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var conv ConversationCache
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// SetConversationFromEntity stores a conversation from the domain entity
func (c *CacheStore) SetConversationFromEntity(ctx context.Context, conv *chat.Conversation) error {
	cached := ConversationCache{
		ID:                  conv.ID,
		Kind:                conv.Kind,
		FirstParticipantID:  conv.FirstParticipantID,
		SecondParticipantID: conv.SecondParticipantID,
		GroupID:             conv.GroupID,
		CreatedAt:           conv.CreatedAt,
		UpdatedAt:           conv.UpdatedAt,
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("conversation:%s", conv.ID.String())
	return c.client.Set(ctx, key, data, c.config.ConversationTTL).Err()
}

// InvalidateConversation removes a conversation and its counters from cache
func (c *CacheStore) InvalidateConversation(ctx context.Context, conversationID uuid.UUID) error {
	keys := []string{
		fmt.Sprintf("conversation:%s", conversationID.String()),
		fmt.Sprintf("conversation:%s:count", conversationID.String()),
	}
	return c.client.Del(ctx, keys...).Err()
}

// GetMessageCount returns the cached message count, or -1 on a miss.
func (c *CacheStore) GetMessageCount(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	key := fmt.Sprintf("conversation:%s:count", conversationID.String())
	count, err := c.client.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return count, nil
}

// SetMessageCount caches the message count for a conversation
func (c *CacheStore) SetMessageCount(ctx context.Context, conversationID uuid.UUID, count int64) error {
	key := fmt.Sprintf("conversation:%s:count", conversationID.String())
	return c.client.Set(ctx, key, count, c.config.CountTTL).Err()
}

// --- Utility Methods ---

// Ping checks if Redis is available
func (c *CacheStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// FlushAll clears all cache (use with caution!)
func (c *CacheStore) FlushAll(ctx context.Context) error {
	return c.client.FlushAll(ctx).Err()
}
