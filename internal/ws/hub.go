package ws

import (
	"context"
	"encoding/json"
	"sync"

	"roomatch/internal/domain/chat"
	"roomatch/internal/services"
	"roomatch/internal/transport/httpdto"
	"roomatch/pkg/logger"

	"github.com/google/uuid"
)

const maxConnectionsPerUser = 10

// Event is the frame pushed to connected clients.
type Event struct {
	Type           string              `json:"type"`
	ConversationID string              `json:"conversation_id"`
	Message        *httpdto.MessageDTO `json:"message,omitempty"`
}

// Hub maintains the set of active clients and pushes newly created messages
// to the participants of the conversation they landed in. It implements
// services.Notifier.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	notify     chan notification
	groups     *services.GroupService
	log        *logger.Logger
	mu         sync.RWMutex
	stopChan   chan struct{}
}

type notification struct {
	conv chat.Conversation
	msg  chat.Message
}

func NewHub(groups *services.GroupService, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		notify:     make(chan notification, 256),
		groups:     groups,
		log:        log,
		stopChan:   make(chan struct{}),
	}
}

// Run processes registrations and notifications until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case n := <-h.notify:
			h.handleNotification(n)

		case <-h.stopChan:
			return
		}
	}
}

// Stop shuts down the hub and closes every connection.
func (h *Hub) Stop() {
	close(h.stopChan)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.removeClient(client)
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]bool)
}

// MessageCreated queues a freshly committed message for delivery. It never
// blocks; when the queue is full the event is dropped.
func (h *Hub) MessageCreated(conv chat.Conversation, msg chat.Message) {
	select {
	case h.notify <- notification{conv: conv, msg: msg}:
	default:
		if h.log != nil {
			h.log.Warnf("ws notify queue full, dropping message %s", msg.ID)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	if len(h.clients[client.userID]) >= maxConnectionsPerUser {
		for old := range h.clients[client.userID] {
			h.removeClient(old)
			delete(h.clients[client.userID], old)
			break
		}
	}
	h.clients[client.userID][client] = true

	go client.writePump()
	go client.readPump()
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.userID]; ok {
		if conns[client] {
			delete(conns, client)
			h.removeClient(client)
		}
		if len(conns) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	close(client.send)
	client.conn.Close()
}

func (h *Hub) handleNotification(n notification) {
	recipients := h.recipients(n.conv)
	if len(recipients) == 0 {
		return
	}

	dto := httpdto.FromMessage(n.msg)
	data, err := json.Marshal(Event{
		Type:           "message:new",
		ConversationID: n.conv.ID.String(),
		Message:        &dto,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range recipients {
		for client := range h.clients[userID] {
			select {
			case client.send <- data:
			default:
				if h.log != nil {
					h.log.Warnf("ws send buffer full for user %s", userID)
				}
			}
		}
	}
}

func (h *Hub) recipients(conv chat.Conversation) []uuid.UUID {
	switch conv.Kind {
	case chat.KindPrivate:
		var out []uuid.UUID
		if conv.FirstParticipantID.Valid {
			out = append(out, conv.FirstParticipantID.UUID)
		}
		if conv.SecondParticipantID.Valid {
			out = append(out, conv.SecondParticipantID.UUID)
		}
		return out
	case chat.KindGroup:
		if h.groups == nil || !conv.GroupID.Valid {
			return nil
		}
		g, err := h.groups.GetByID(context.Background(), conv.GroupID.UUID)
		if err != nil {
			if h.log != nil {
				h.log.Warnf("ws recipients lookup failed for group %s: %v", conv.GroupID.UUID, err)
			}
			return nil
		}
		out := make([]uuid.UUID, 0, len(g.Invitees))
		for _, inv := range g.Invitees {
			out = append(out, inv.UserID)
		}
		return out
	}
	return nil
}
