package services

import (
	"context"
	"time"

	"roomatch/internal/domain/user"
	"roomatch/internal/repository"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
)

// UserService exposes account reads and the status transitions the
// administration endpoints need. Messaging eligibility is read through
// IsEnabled/IsBanned.
type UserService struct {
	users repository.UserRepository
	cache Cache
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// SetCache attaches a best-effort Redis cache so account status changes drop
// the cached eligibility entry.
func (s *UserService) SetCache(cache Cache) {
	s.cache = cache
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if email == "" {
		return user.User{}, roomatch_errors.ErrInvalidInput
	}
	return s.users.GetByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context, page, limit int) ([]user.User, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.users.GetAllUsers(ctx, page, limit)
}

// IsEnabled reports whether the user can currently exchange messages.
func (s *UserService) IsEnabled(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsEnabled(), nil
}

// IsBanned reports whether the account was banned by an administrator.
func (s *UserService) IsBanned(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsBanned(), nil
}

func (s *UserService) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case user.StatusEnabled, user.StatusDisabled, user.StatusBanned, user.StatusVacation:
	default:
		return &roomatch_errors.ValidationError{Field: "status", Reason: "unknown status"}
	}
	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, id)
	}
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, u user.User) error {
	u.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, u.ID)
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, id)
	}
	return nil
}
