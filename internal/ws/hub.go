package ws

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

type message struct {
	userID uuid.UUID
	data   []byte
}

// Hub fans messages out to the connections of one user. Every map access
// happens on the Run goroutine except ClientCount.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	send       chan message
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		send:       make(chan message, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

// Run serves the hub until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			n := len(set)
			h.mutex.Unlock()
			h.logger.Printf("ws_connected user_id=%s user_clients=%d", client.userID, n)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case msg := <-h.send:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[msg.userID]))
			for c := range h.clients[msg.userID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.data:
				default:
					// Slow reader; drop the connection rather than block the hub.
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Printf("ws_disconnected user_id=%s user_clients=%d", client.userID, len(set))
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendToUser queues data for every connection of userID. It never blocks;
// a full queue drops the message.
func (h *Hub) SendToUser(userID uuid.UUID, data []byte) {
	if h == nil {
		return
	}
	select {
	case h.send <- message{userID: userID, data: data}:
	default:
		h.logger.Printf("ws_send_dropped user_id=%s reason=buffer_full", userID)
	}
}

// ClientCount returns the open connections of userID.
func (h *Hub) ClientCount(userID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID])
}
