package repository

import (
	"context"
	"errors"

	"roomatch/internal/domain/group"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresGroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) Create(ctx context.Context, g *group.Group) error {
	res := r.db.WithContext(ctx).Create(g)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return roomatch_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (group.Group, error) {
	var g group.Group
	err := r.db.WithContext(ctx).
		Preload("Invitees").
		Where("id = ?", id).
		First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group.Group{}, roomatch_errors.ErrNotFound
		}
		return group.Group{}, err
	}
	return g, nil
}

func (r *PostgresGroupRepository) GetUserGroups(ctx context.Context, userID uuid.UUID, page, limit int) ([]group.Group, int64, error) {
	var groups []group.Group
	var total int64

	subQuery := r.db.Model(&group.Invitee{}).
		Select("group_id").
		Where("user_id = ?", userID)

	q := r.db.WithContext(ctx).
		Model(&group.Group{}).
		Where("id IN (?)", subQuery)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.
		Preload("Invitees").
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&groups).Error; err != nil {
		return nil, 0, err
	}

	return groups, total, nil
}

func (r *PostgresGroupRepository) Update(ctx context.Context, g group.Group) error {
	res := r.db.WithContext(ctx).Save(&g)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return roomatch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).
		Model(&group.Group{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return roomatch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&group.Group{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return roomatch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) AddInvitee(ctx context.Context, inv *group.Invitee) error {
	res := r.db.WithContext(ctx).Create(inv)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return roomatch_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresGroupRepository) RemoveInvitee(ctx context.Context, groupID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&group.Invitee{}, "group_id = ? AND user_id = ?", groupID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return roomatch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) GetInvitees(ctx context.Context, groupID uuid.UUID) ([]group.Invitee, error) {
	var invitees []group.Invitee
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Find(&invitees).Error
	if err != nil {
		return nil, err
	}
	return invitees, nil
}

func (r *PostgresGroupRepository) IsInvitee(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&group.Invitee{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
