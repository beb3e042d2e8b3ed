package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// Hub maps game ids to the connections subscribed to them. The hub lock only guards room lookup;
// membership and fan-out happen under the room's own lock.
type Hub struct {
	logger *slog.Logger

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "hub"),
		rooms:  make(map[string]*room),
	}
}

// Join - subscribes the client to its game's broadcast group.
func (that *Hub) Join(client *Client) {
	for {
		that.mu.Lock()
		r, ok := that.rooms[client.gameID]
		if !ok {
			r = &room{clients: make(map[*Client]struct{})}
			that.rooms[client.gameID] = r
		}
		that.mu.Unlock()

		r.mu.Lock()
		if r.closed {
			// emptied and dropped between lookup and lock
			r.mu.Unlock()
			continue
		}

		r.clients[client] = struct{}{}
		r.mu.Unlock()

		client.setState(StateSubscribed)
		return
	}
}

// Leave - removes the client; the room is dropped once empty.
func (that *Hub) Leave(client *Client) {
	that.mu.Lock()
	r, ok := that.rooms[client.gameID]
	that.mu.Unlock()

	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, client)
	if len(r.clients) > 0 || r.closed {
		return
	}

	r.closed = true

	that.mu.Lock()
	if that.rooms[client.gameID] == r {
		delete(that.rooms, client.gameID)
	}
	that.mu.Unlock()
}

// Deliver - sends the snapshot to every subscriber of its game on this instance.
func (that *Hub) Deliver(session *entity.Session) {
	that.mu.Lock()
	r, ok := that.rooms[session.ID]
	that.mu.Unlock()

	if !ok {
		return
	}

	data, err := json.Marshal(gameState(session))
	if err != nil {
		that.logger.Error("failed to marshal game state", "gameID", session.ID, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for client := range r.clients {
		client.sendVersioned(session.Version, data)
	}
}

// Publish - delivers locally; used when broadcasts do not go through Redis.
func (that *Hub) Publish(_ context.Context, session *entity.Session) error {
	that.Deliver(session)
	return nil
}

// Subscribers - number of connections subscribed to a game.
func (that *Hub) Subscribers(gameID string) int {
	that.mu.Lock()
	r, ok := that.rooms[gameID]
	that.mu.Unlock()

	if !ok {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.clients)
}
