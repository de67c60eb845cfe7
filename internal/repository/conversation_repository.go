package repository

import (
	"context"
	"errors"
	"time"

	"roomatch/internal/domain/chat"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *chat.Conversation) error {
	res := r.db.WithContext(ctx).Omit("Messages").Create(c)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return roomatch_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, roomatch_errors.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&chat.Conversation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return roomatch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) DeleteAllByKind(ctx context.Context, kind string) error {
	return r.db.WithContext(ctx).
		Delete(&chat.Conversation{}, "kind = ?", kind).Error
}

func (r *PostgresConversationRepository) CountByKind(ctx context.Context, kind string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("kind = ?", kind).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresConversationRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return roomatch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) FindPrivate(ctx context.Context, userA, userB uuid.UUID) (chat.Conversation, error) {
	first, second := chat.PairKey(userA, userB)

	var c chat.Conversation
	err := r.db.WithContext(ctx).
		Where("kind = ? AND first_participant_id = ? AND second_participant_id = ?",
			chat.KindPrivate, first, second).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, roomatch_errors.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) FindByGroup(ctx context.Context, groupID uuid.UUID) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.db.WithContext(ctx).
		Where("kind = ? AND group_id = ?", chat.KindGroup, groupID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, roomatch_errors.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetUserConversations(ctx context.Context, userID uuid.UUID, page, limit int) ([]chat.Conversation, int64, error) {
	var conversations []chat.Conversation
	var total int64

	q := r.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("kind = ? AND (first_participant_id = ? OR second_participant_id = ?)",
			chat.KindPrivate, userID, userID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&conversations).Error; err != nil {
		return nil, 0, err
	}

	return conversations, total, nil
}

func (r *PostgresConversationRepository) CreateMessage(ctx context.Context, m *chat.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return roomatch_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetMessageByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	var m chat.Message
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Message{}, roomatch_errors.ErrNotFound
		}
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PostgresConversationRepository) GetConversationMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]chat.Message, int64, error) {
	var messages []chat.Message
	var total int64

	q := r.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("conversation_id = ?", conversationID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *PostgresConversationRepository) CountMessages(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
