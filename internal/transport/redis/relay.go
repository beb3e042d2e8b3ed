package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// Channel carries game snapshots between server instances.
const Channel = "games:events"

// Deliverer hands a snapshot to the connections of this instance.
type Deliverer interface {
	Deliver(session *entity.Session)
}

type envelope struct {
	GameID  string          `json:"game_id"`
	Session *entity.Session `json:"session"`
}

// Relay fans snapshots out through Redis pub/sub so every instance reaches its own subscribers.
type Relay struct {
	logger *slog.Logger

	client *redis.Client
	local  Deliverer
	ready  chan struct{}
}

func NewRelay(logger *slog.Logger, client *redis.Client, local Deliverer) *Relay {
	return &Relay{
		logger: logger.With("component", "relay"),
		client: client,
		local:  local,
		ready:  make(chan struct{}),
	}
}

func (that *Relay) Publish(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(envelope{GameID: session.ID, Session: session})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err = that.client.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish session: %w", err)
	}

	return nil
}

// Ready is closed once Run is subscribed.
func (that *Relay) Ready() <-chan struct{} {
	return that.ready
}

// Run - delivers every published snapshot locally until ctx is done.
func (that *Relay) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	sub := that.client.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", Channel, err)
	}

	close(that.ready)
	log.Info("relay subscribed", "channel", Channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var event envelope
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil || event.Session == nil {
				log.Error("dropping malformed event", "error", err)
				continue
			}

			that.local.Deliver(event.Session)
		}
	}
}
