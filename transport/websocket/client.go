package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

const writeWait = 10 * time.Second

// State of a single connection.
type State int

const (
	StateConnecting State = iota
	StateAuthenticated
	StateSubscribed
	StateClosed
)

func (that State) String() string {
	switch that {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateSubscribed:
		return "subscribed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client is one websocket connection subscribed to one game. player is nil for observers.
type Client struct {
	logger *slog.Logger

	conn   *websocket.Conn
	gameID string
	player *entity.Player

	mu          sync.Mutex
	state       State
	send        chan []byte
	lastVersion int64
}

func newClient(logger *slog.Logger, conn *websocket.Conn, gameID string, player *entity.Player, buffer int) *Client {
	client := &Client{
		conn:   conn,
		gameID: gameID,
		player: player,
		state:  StateConnecting,
		send:   make(chan []byte, buffer),
	}

	playerID := ""
	if player != nil {
		playerID = player.ID
		client.state = StateAuthenticated
	}

	client.logger = logger.With("gameID", gameID, "playerID", playerID)

	return client
}

func (that *Client) State() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

func (that *Client) setState(state State) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state != StateClosed {
		that.state = state
	}
}

// sendVersioned queues a snapshot unless a newer one was already queued.
func (that *Client) sendVersioned(version int64, data []byte) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if version <= that.lastVersion {
		return
	}

	if that.enqueueLocked(data) {
		that.lastVersion = version
	}
}

// sendSession queues the snapshot for this connection only.
func (that *Client) sendSession(session *entity.Session) {
	data, err := json.Marshal(gameState(session))
	if err != nil {
		that.logger.Error("failed to marshal game state", "error", err)
		return
	}

	that.sendVersioned(session.Version, data)
}

// sendResponse queues a message meant for this connection only.
func (that *Client) sendResponse(response Response) {
	data, err := json.Marshal(response)
	if err != nil {
		that.logger.Error("failed to marshal response", "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.enqueueLocked(data)
}

// enqueueLocked never blocks: a connection whose queue is full is closed.
func (that *Client) enqueueLocked(data []byte) bool {
	if that.state == StateClosed {
		return false
	}

	select {
	case that.send <- data:
		return true
	default:
		that.logger.Warn("send queue is full, closing connection")
		that.closeLocked()
		return false
	}
}

func (that *Client) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closeLocked()
}

func (that *Client) closeLocked() {
	if that.state == StateClosed {
		return
	}

	that.state = StateClosed
	close(that.send)
}

// writePump drains the send queue and keeps the connection alive with pings.
func (that *Client) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case message, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				that.logger.Debug("failed to write message", "error", err)
				that.close()
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				that.close()
				return
			}
		}
	}
}

// readPump handles inbound messages until the connection goes away.
func (that *Client) readPump(maxMessageSize int64, pongWait time.Duration, handle func(client *Client, data []byte)) {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Info("connection closed unexpectedly", "error", err)
			}

			return
		}

		handle(that, data)
	}
}
