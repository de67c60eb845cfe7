package group

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Group statuses
const (
	StatusOpened = "OPENED"
	StatusClosed = "CLOSED"
)

// Invitee roles
const (
	RoleCreator = "CREATOR"
	RoleMember  = "MEMBER"
)

// Group represents the groups table: a set of users searching for a place
// together.
type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Description sql.NullString
	Status      string `gorm:"type:group_status;not null;default:'OPENED'"`
	Budget      sql.NullInt64
	CreatedBy   uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships
	Invitees []Invitee `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// Invitee represents the group_invitees table: current membership of a group.
type Invitee struct {
	GroupID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_group_invitees_user"`
	Role     string    `gorm:"type:invitee_role;not null;default:'MEMBER'"`
	JoinedAt time.Time
}

func (Group) TableName() string {
	return "groups"
}

func (Invitee) TableName() string {
	return "group_invitees"
}

// IsAvailable reports whether the group still accepts activity.
func (g Group) IsAvailable() bool {
	return g.Status == StatusOpened
}

// HasInvitee reports whether userID is a current member of the group.
// Invitees must be loaded.
func (g Group) HasInvitee(userID uuid.UUID) bool {
	for _, inv := range g.Invitees {
		if inv.UserID == userID {
			return true
		}
	}
	return false
}
