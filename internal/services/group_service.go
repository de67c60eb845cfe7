package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"roomatch/internal/domain/group"
	"roomatch/internal/repository"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
)

// GroupService manages roommate groups and their membership. The chat layer
// reads eligibility through IsAvailable/HasInvitee.
type GroupService struct {
	groups repository.GroupRepository
	chats  *GroupChatService
}

// NewGroupService wires the group manager; chats may be nil when conversation
// cleanup on group deletion is not wanted (tests).
func NewGroupService(groups repository.GroupRepository, chats *GroupChatService) *GroupService {
	return &GroupService{groups: groups, chats: chats}
}

type CreateGroupInput struct {
	Name        string
	Description string
	Budget      int64
}

func (s *GroupService) Create(ctx context.Context, creatorID uuid.UUID, in CreateGroupInput) (group.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return group.Group{}, &roomatch_errors.ValidationError{Field: "name", Reason: "must not be blank"}
	}

	now := time.Now()
	g := group.Group{
		ID:        uuid.New(),
		Name:      name,
		Status:    group.StatusOpened,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != "" {
		g.Description = sql.NullString{String: in.Description, Valid: true}
	}
	if in.Budget > 0 {
		g.Budget = sql.NullInt64{Int64: in.Budget, Valid: true}
	}

	if err := s.groups.Create(ctx, &g); err != nil {
		return group.Group{}, err
	}

	creator := &group.Invitee{
		GroupID:  g.ID,
		UserID:   creatorID,
		Role:     group.RoleCreator,
		JoinedAt: now,
	}
	if err := s.groups.AddInvitee(ctx, creator); err != nil {
		return group.Group{}, err
	}
	g.Invitees = []group.Invitee{*creator}

	return g, nil
}

func (s *GroupService) GetByID(ctx context.Context, id uuid.UUID) (group.Group, error) {
	return s.groups.GetByID(ctx, id)
}

func (s *GroupService) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]group.Group, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.groups.GetUserGroups(ctx, userID, page, limit)
}

// IsAvailable reports whether the group still accepts activity.
func (s *GroupService) IsAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return g.IsAvailable(), nil
}

// HasInvitee reports whether userID is a current member of the group.
func (s *GroupService) HasInvitee(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return s.groups.IsInvitee(ctx, groupID, userID)
}

// AddInvitee adds a member to an open group. Only current members may invite.
func (s *GroupService) AddInvitee(ctx context.Context, groupID, inviterID, userID uuid.UUID) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.IsAvailable() {
		return &roomatch_errors.InvalidParameterError{Parameter: "group", Reason: "group is closed"}
	}
	if !g.HasInvitee(inviterID) {
		return roomatch_errors.ErrForbidden
	}
	if g.HasInvitee(userID) {
		return roomatch_errors.ErrAlreadyExists
	}

	inv := &group.Invitee{
		GroupID:  groupID,
		UserID:   userID,
		Role:     group.RoleMember,
		JoinedAt: time.Now(),
	}
	return s.groups.AddInvitee(ctx, inv)
}

// RemoveInvitee removes a member. Members may leave on their own; removing
// someone else requires the creator role.
func (s *GroupService) RemoveInvitee(ctx context.Context, groupID, actorID, userID uuid.UUID) error {
	if actorID != userID {
		g, err := s.groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		actorIsCreator := false
		for _, inv := range g.Invitees {
			if inv.UserID == actorID && inv.Role == group.RoleCreator {
				actorIsCreator = true
				break
			}
		}
		if !actorIsCreator {
			return roomatch_errors.ErrForbidden
		}
	}
	return s.groups.RemoveInvitee(ctx, groupID, userID)
}

// SetStatus opens or closes a group. Only the creator may do this.
func (s *GroupService) SetStatus(ctx context.Context, groupID, actorID uuid.UUID, status string) error {
	switch status {
	case group.StatusOpened, group.StatusClosed:
	default:
		return &roomatch_errors.ValidationError{Field: "status", Reason: "unknown status"}
	}

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.CreatedBy != actorID {
		return roomatch_errors.ErrForbidden
	}
	return s.groups.UpdateStatus(ctx, groupID, status)
}

// Delete removes the group and, when a chat service is wired, its
// conversation and messages.
func (s *GroupService) Delete(ctx context.Context, groupID, actorID uuid.UUID) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			return nil
		}
		return err
	}
	if g.CreatedBy != actorID {
		return roomatch_errors.ErrForbidden
	}

	if s.chats != nil {
		conv, err := s.chats.FindOne(ctx, groupID)
		if err == nil {
			if err := s.chats.Delete(ctx, conv.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, roomatch_errors.ErrNotFound) {
			return err
		}
	}

	return s.groups.Delete(ctx, groupID)
}
