package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	// GetMany - players keyed by id; unknown ids are left out.
	GetMany(ctx context.Context, ids ...string) (map[string]*entity.Player, error)
	// Leaderboard - a page of players ordered by rating, highest first, and the total count.
	Leaderboard(ctx context.Context, offset, limit int64) ([]*entity.Player, int64, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerKey(player.ID), playerJSON, 0)
		pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(player.Rating), Member: player.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	return readPlayer(ctx, that.client, id)
}

func (that *dbPlayer) GetMany(ctx context.Context, ids ...string) (map[string]*entity.Player, error) {
	players := make(map[string]*entity.Player, len(ids))

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			keys = append(keys, playerKey(id))
		}
	}

	if len(keys) == 0 {
		return players, nil
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var player entity.Player
		if err = json.Unmarshal([]byte(raw), &player); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player: %w", err)
		}

		players[player.ID] = &player
	}

	return players, nil
}

func (that *dbPlayer) Leaderboard(ctx context.Context, offset, limit int64) ([]*entity.Player, int64, error) {
	total, err := that.client.ZCard(ctx, leaderboardKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leaderboard: %w", err)
	}

	ids, err := that.client.ZRevRange(ctx, leaderboardKey, offset, offset+limit-1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	byID, err := that.GetMany(ctx, ids...)
	if err != nil {
		return nil, 0, err
	}

	players := make([]*entity.Player, 0, len(ids))
	for _, id := range ids {
		if player, ok := byID[id]; ok {
			players = append(players, player)
		}
	}

	return players, total, nil
}

func readPlayer(ctx context.Context, r reader, id string) (*entity.Player, error) {
	response, err := r.Get(ctx, playerKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	var player entity.Player
	if err = json.Unmarshal([]byte(response), &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &player, nil
}
