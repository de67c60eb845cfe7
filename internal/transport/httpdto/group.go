package httpdto

import (
	"time"

	"roomatch/internal/domain/group"
)

type GroupDTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	Budget      int64        `json:"budget,omitempty"`
	CreatedBy   string       `json:"created_by"`
	Invitees    []InviteeDTO `json:"invitees,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type InviteeDTO struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// FromGroup is the single entity-to-DTO mapping for groups.
func FromGroup(g group.Group) GroupDTO {
	dto := GroupDTO{
		ID:        g.ID.String(),
		Name:      g.Name,
		Status:    g.Status,
		CreatedBy: g.CreatedBy.String(),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
	if g.Description.Valid {
		dto.Description = g.Description.String
	}
	if g.Budget.Valid {
		dto.Budget = g.Budget.Int64
	}
	for _, inv := range g.Invitees {
		dto.Invitees = append(dto.Invitees, InviteeDTO{
			UserID:   inv.UserID.String(),
			Role:     inv.Role,
			JoinedAt: inv.JoinedAt,
		})
	}
	return dto
}

func FromGroups(groups []group.Group) []GroupDTO {
	out := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, FromGroup(g))
	}
	return out
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Budget      int64  `json:"budget,omitempty"`
}

type InviteRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type GroupStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
