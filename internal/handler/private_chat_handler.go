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

type PrivateChatHandler struct {
	chats *services.PrivateChatService
}

func NewPrivateChatHandler(chats *services.PrivateChatService) *PrivateChatHandler {
	return &PrivateChatHandler{chats: chats}
}

// ListConversations returns the current user's private conversations, most
// recently active first.
func (h *PrivateChatHandler) ListConversations(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	page, limit := pageParams(c)
	items, total, err := h.chats.FindAll(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(
		httpdto.NewPage(httpdto.FromConversations(items), total, page, limit)))
}

// GetConversation returns the conversation between the current user and the
// peer named in the path.
func (h *PrivateChatHandler) GetConversation(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	peerID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	conv, err := h.chats.FindOne(c.Request.Context(), userID, peerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv)))
}

// ListMessages returns the messages exchanged with the peer, oldest-first.
func (h *PrivateChatHandler) ListMessages(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	peerID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	page, limit := pageParams(c)
	msgs, total, err := h.chats.ListMessages(c.Request.Context(), userID, peerID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(
		httpdto.NewPage(httpdto.FromMessages(msgs), total, page, limit)))
}

// CountMessages returns the total message count with the peer.
func (h *PrivateChatHandler) CountMessages(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	peerID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	count, err := h.chats.CountMessages(c.Request.Context(), userID, peerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"count": count}))
}

// CreateMessage posts a message from the current user to the peer.
func (h *PrivateChatHandler) CreateMessage(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	peerID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
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

	msg, err := h.chats.CreateMessage(c.Request.Context(), userID, peerID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}

// DeleteConversation removes a conversation the current user takes part in.
// Deleting one that is already gone succeeds.
func (h *PrivateChatHandler) DeleteConversation(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	conv, err := h.chats.Get(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, roomatch_errors.ErrNotFound) {
			c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
			return
		}
		respondError(c, err)
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("not a participant", "FORBIDDEN"))
		return
	}

	if err := h.chats.Delete(c.Request.Context(), conversationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
