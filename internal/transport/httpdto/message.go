package httpdto

import (
	"time"

	"roomatch/internal/domain/chat"
)

type MessageDTO struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AuthorID       string    `json:"author_id"`
	Content        string    `json:"content"`
	ParentID       string    `json:"parent_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FromMessage is the single entity-to-DTO mapping for messages.
func FromMessage(m chat.Message) MessageDTO {
	dto := MessageDTO{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		AuthorID:       m.AuthorID.String(),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
	if m.ParentID.Valid {
		dto.ParentID = m.ParentID.UUID.String()
	}
	return dto
}

func FromMessages(msgs []chat.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, FromMessage(m))
	}
	return out
}

type CreateMessageRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parent_id,omitempty"`
}
