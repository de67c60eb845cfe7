package httpdto

import (
	"time"

	"roomatch/internal/domain/chat"
)

type ConversationDTO struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	ParticipantIDs []string  `json:"participant_ids,omitempty"`
	GroupID        string    `json:"group_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FromConversation is the single entity-to-DTO mapping for conversations.
func FromConversation(c chat.Conversation) ConversationDTO {
	dto := ConversationDTO{
		ID:        c.ID.String(),
		Kind:      c.Kind,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.FirstParticipantID.Valid && c.SecondParticipantID.Valid {
		dto.ParticipantIDs = []string{
			c.FirstParticipantID.UUID.String(),
			c.SecondParticipantID.UUID.String(),
		}
	}
	if c.GroupID.Valid {
		dto.GroupID = c.GroupID.UUID.String()
	}
	return dto
}

func FromConversations(convos []chat.Conversation) []ConversationDTO {
	out := make([]ConversationDTO, 0, len(convos))
	for _, c := range convos {
		out = append(out, FromConversation(c))
	}
	return out
}
