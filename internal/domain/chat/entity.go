package chat

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Conversation kinds
const (
	KindPrivate = "PRIVATE"
	KindGroup   = "GROUP"
)

// Conversation represents the conversations table. A PRIVATE conversation
// links exactly two users; a GROUP conversation belongs to exactly one group.
// The participant pair is stored normalized (first < second by byte order) so
// the composite unique index holds one row per unordered pair.
type Conversation struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Kind                string        `gorm:"type:conversation_kind;not null"`
	FirstParticipantID  uuid.NullUUID `gorm:"type:uuid;uniqueIndex:idx_conversations_pair"`
	SecondParticipantID uuid.NullUUID `gorm:"type:uuid;uniqueIndex:idx_conversations_pair"`
	GroupID             uuid.NullUUID `gorm:"type:uuid;uniqueIndex:idx_conversations_group"`
	CreatedAt           time.Time
	UpdatedAt           time.Time `gorm:"index:idx_conversations_updated,sort:desc"`

	// Relationships
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// Message represents the messages table. Rows are never updated after
// insert; they disappear only through the conversation cascade.
type Message struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID     `gorm:"type:uuid;not null;index:idx_messages_conversation"`
	AuthorID       uuid.UUID     `gorm:"type:uuid;not null"`
	Content        string        `gorm:"type:text;not null"`
	ParentID       uuid.NullUUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Message) TableName() string {
	return "messages"
}

// PairKey orders two participant ids into the canonical (first, second)
// storage order, so lookups and the unique index are independent of which
// side initiated the conversation.
func PairKey(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

// NewPrivateConversation builds an empty conversation between two users with
// the pair stored in canonical order.
func NewPrivateConversation(a, b uuid.UUID) Conversation {
	first, second := PairKey(a, b)
	now := time.Now()
	return Conversation{
		ID:                  uuid.New(),
		Kind:                KindPrivate,
		FirstParticipantID:  uuid.NullUUID{UUID: first, Valid: true},
		SecondParticipantID: uuid.NullUUID{UUID: second, Valid: true},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// NewGroupConversation builds an empty conversation owned by a group.
func NewGroupConversation(groupID uuid.UUID) Conversation {
	now := time.Now()
	return Conversation{
		ID:        uuid.New(),
		Kind:      KindGroup,
		GroupID:   uuid.NullUUID{UUID: groupID, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasParticipant reports whether userID is one side of a private
// conversation.
func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	return (c.FirstParticipantID.Valid && c.FirstParticipantID.UUID == userID) ||
		(c.SecondParticipantID.Valid && c.SecondParticipantID.UUID == userID)
}

// OtherParticipant returns the peer of userID in a private conversation, or
// uuid.Nil when userID is not a participant.
func (c Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.FirstParticipantID.Valid && c.FirstParticipantID.UUID == userID {
		if c.SecondParticipantID.Valid {
			return c.SecondParticipantID.UUID
		}
		return uuid.Nil
	}
	if c.SecondParticipantID.Valid && c.SecondParticipantID.UUID == userID {
		if c.FirstParticipantID.Valid {
			return c.FirstParticipantID.UUID
		}
	}
	return uuid.Nil
}
