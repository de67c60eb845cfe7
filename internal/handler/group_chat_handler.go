package handler

import (
	"errors"
	"net/http"

	"roomatch/internal/services"
	"roomatch/internal/transport/httpdto"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GroupChatHandler struct {
	chats  *services.GroupChatService
	groups *services.GroupService
}

func NewGroupChatHandler(chats *services.GroupChatService, groups *services.GroupService) *GroupChatHandler {
	return &GroupChatHandler{chats: chats, groups: groups}
}

// ListMessages returns the group's messages oldest-first. Only members may
// read.
func (h *GroupChatHandler) ListMessages(c *gin.Context) {
	_, groupID, ok := h.memberOrAbort(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	msgs, total, err := h.chats.ListMessages(c.Request.Context(), groupID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(
		httpdto.NewPage(httpdto.FromMessages(msgs), total, page, limit)))
}

// CountMessages returns the group's total message count.
func (h *GroupChatHandler) CountMessages(c *gin.Context) {
	_, groupID, ok := h.memberOrAbort(c)
	if !ok {
		return
	}

	count, err := h.chats.CountMessages(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"count": count}))
}

// CreateMessage posts a message from the current user to the group.
func (h *GroupChatHandler) CreateMessage(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	in := services.MessageInput{Content: req.Content}
	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid parent id", "INVALID_REQUEST"))
			return
		}
		in.ParentID = uuid.NullUUID{UUID: parentID, Valid: true}
	}

	msg, err := h.chats.CreateMessage(c.Request.Context(), userID, groupID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}

// DeleteConversation removes the group's conversation. Creator only; a group
// with no conversation yet succeeds.
func (h *GroupChatHandler) DeleteConversation(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group id", "INVALID_REQUEST"))
		return
	}

	g, err := h.groups.GetByID(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if g.CreatedBy != userID {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("creator only", "FORBIDDEN"))
		return
	}

	conv, err := h.chats.FindOne(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
			return
		}
		respondError(c, err)
		return
	}

	if err := h.chats.Delete(c.Request.Context(), conv.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *GroupChatHandler) memberOrAbort(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return uuid.Nil, uuid.Nil, false
	}
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group id", "INVALID_REQUEST"))
		return uuid.Nil, uuid.Nil, false
	}

	member, err := h.groups.HasInvitee(c.Request.Context(), groupID, userID)
	if err != nil {
		respondError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	if !member {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("not a member", "FORBIDDEN"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, groupID, true
}
