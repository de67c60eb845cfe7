package services

import (
	"strings"

	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
)

const maxContentLength = 4000

// MessageInput is the raw message payload handed to the chat services.
// ParentID, when set, marks the message as a reply to an earlier message in
// the same conversation.
type MessageInput struct {
	Content  string
	ParentID uuid.NullUUID
}

// validate returns the trimmed content or a ValidationError.
func (in MessageInput) validate() (string, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return "", &roomatch_errors.ValidationError{Field: "content", Reason: "must not be blank"}
	}
	if len(content) > maxContentLength {
		return "", &roomatch_errors.ValidationError{Field: "content", Reason: "too long"}
	}
	return content, nil
}

// Pagination defaults shared by the list operations.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
