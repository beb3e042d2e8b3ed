package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// claimScanLimit bounds how many queue entries one claim inspects.
const claimScanLimit = 50

type GameRepository interface {
	// CreateForPlayer stores a new waiting game unless its creator already has an active one,
	// in which case that game is returned with created=false.
	CreateForPlayer(ctx context.Context, game *entity.Game) (*entity.Game, bool, error)
	FindActiveForPlayer(ctx context.Context, playerID string) (*entity.Game, error)
	// Claim atomically assigns playerID as player2 of the oldest claimable waiting game.
	Claim(ctx context.Context, playerID string, now time.Time) (*entity.Game, error)
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Moves(ctx context.Context, gameID string) ([]*entity.Move, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Game, error)
	// Apply runs fn against a consistent view of the game and commits everything it changed
	// in one transaction. An error from fn aborts without writing.
	Apply(ctx context.Context, gameID string, fn func(t *Transition) error) (*Transition, error)
}

// Transition is the mutable view handed to Apply.
type Transition struct {
	Game    *entity.Game
	Moves   []*entity.Move
	Player1 *entity.Player
	Player2 *entity.Player

	NewMove        *entity.Move
	RatingsChanged bool
}

func (that *Transition) AddMove(move *entity.Move) {
	that.NewMove = move
	that.Moves = append(that.Moves, move)
}

// Players - the loaded participants keyed by id.
func (that *Transition) Players() map[string]*entity.Player {
	players := make(map[string]*entity.Player, 2)
	for _, player := range []*entity.Player{that.Player1, that.Player2} {
		if player != nil {
			players[player.ID] = player
		}
	}

	return players
}

type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) CreateForPlayer(ctx context.Context, game *entity.Game) (*entity.Game, bool, error) {
	activeKey := activeGameKey(game.Player1ID)

	var (
		result  *entity.Game
		created bool
	)

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := activeGame(ctx, tx, game.Player1ID)
		if err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
			return err
		}

		if existing != nil {
			result, created = existing, false
			return nil
		}

		if err = game.CheckInvariants(); err != nil {
			return err
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("failed to marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)
			pipe.Set(ctx, activeKey, game.ID, 0)
			pipe.RPush(ctx, waitingQueueKey, game.ID)
			pipe.ZAdd(ctx, playerGamesKey(game.Player1ID), redis.Z{Score: score(game), Member: game.ID})
			return nil
		})
		if err != nil {
			return err
		}

		result, created = game, true
		return nil
	}, activeKey)
	if err != nil {
		return nil, false, txError("create game", err)
	}

	return result, created, nil
}

func (that *dbGame) FindActiveForPlayer(ctx context.Context, playerID string) (*entity.Game, error) {
	return activeGame(ctx, that.client, playerID)
}

// Claim - the queue itself is read unwatched: each candidate's game key is watched before it is read,
// so the claim conflicts only with writers of that game or of the claimer's active pointer.
func (that *dbGame) Claim(ctx context.Context, playerID string, now time.Time) (*entity.Game, error) {
	activeKey := activeGameKey(playerID)

	var claimed *entity.Game

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, activeKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check active game: %w", err)
		}

		if exists > 0 {
			return apperror.ErrActiveGameExists
		}

		ids, err := tx.LRange(ctx, waitingQueueKey, 0, claimScanLimit-1).Result()
		if err != nil {
			return fmt.Errorf("failed to read waiting queue: %w", err)
		}

		var stale []string
		for _, id := range ids {
			if err = tx.Watch(ctx, gameKey(id)).Err(); err != nil {
				return fmt.Errorf("failed to watch game: %w", err)
			}

			game, err := readGame(ctx, tx, id)
			if errors.Is(err, apperror.ErrGameNotFound) {
				stale = append(stale, id)
				continue
			}

			if err != nil {
				return err
			}

			if !game.IsWaiting() || game.Player2ID != "" {
				stale = append(stale, id)
				continue
			}

			if game.Player1ID == playerID {
				continue
			}

			claimed = game
			break
		}

		var gameJSON []byte
		if claimed != nil {
			claimed.Start(playerID, now)

			if err = claimed.CheckInvariants(); err != nil {
				return err
			}

			if gameJSON, err = json.Marshal(claimed); err != nil {
				return fmt.Errorf("failed to marshal game: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range stale {
				pipe.LRem(ctx, waitingQueueKey, 0, id)
			}

			if claimed == nil {
				return nil
			}

			pipe.Set(ctx, gameKey(claimed.ID), gameJSON, 0)
			pipe.LRem(ctx, waitingQueueKey, 1, claimed.ID)
			pipe.Set(ctx, activeKey, claimed.ID, 0)
			pipe.ZAdd(ctx, playerGamesKey(playerID), redis.Z{Score: score(claimed), Member: claimed.ID})
			return nil
		})
		if err != nil {
			return err
		}

		if claimed == nil {
			return apperror.ErrNoWaitingGame
		}

		return nil
	}, activeKey)
	if err != nil {
		return nil, txError("claim game", err)
	}

	return claimed, nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return readGame(ctx, that.client, id)
}

func (that *dbGame) Moves(ctx context.Context, gameID string) ([]*entity.Move, error) {
	return readMoves(ctx, that.client, gameID)
}

// ListByPlayer - games the player took part in, newest first.
func (that *dbGame) ListByPlayer(ctx context.Context, playerID string) ([]*entity.Game, error) {
	ids, err := that.client.ZRevRange(ctx, playerGamesKey(playerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list games of player: %w", err)
	}

	if len(ids) == 0 {
		return []*entity.Game{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, gameKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	games := make([]*entity.Game, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var game entity.Game
		if err = json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game: %w", err)
		}

		games = append(games, &game)
	}

	return games, nil
}

func (that *dbGame) Apply(ctx context.Context, gameID string, fn func(t *Transition) error) (*Transition, error) {
	var transition *Transition

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		game, err := readGame(ctx, tx, gameID)
		if err != nil {
			return err
		}

		moves, err := readMoves(ctx, tx, gameID)
		if err != nil {
			return err
		}

		transition = &Transition{Game: game, Moves: moves}

		participants := []string{game.Player1ID}
		if game.Player2ID != "" {
			participants = append(participants, game.Player2ID)
		}

		watched := make([]string, 0, len(participants))
		for _, id := range participants {
			watched = append(watched, playerKey(id))
		}

		if err = tx.Watch(ctx, watched...).Err(); err != nil {
			return fmt.Errorf("failed to watch players: %w", err)
		}

		if transition.Player1, err = readPlayerOrNil(ctx, tx, game.Player1ID); err != nil {
			return err
		}

		if game.Player2ID != "" {
			if transition.Player2, err = readPlayerOrNil(ctx, tx, game.Player2ID); err != nil {
				return err
			}
		}

		if err = fn(transition); err != nil {
			return err
		}

		return that.commit(ctx, tx, transition, participants)
	}, gameKey(gameID), movesKey(gameID))
	if err != nil {
		return nil, txError("apply transition", err)
	}

	return transition, nil
}

func (that *dbGame) commit(ctx context.Context, tx *redis.Tx, transition *Transition, participants []string) error {
	game := transition.Game

	if err := game.CheckInvariants(); err != nil {
		return err
	}

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	var moveJSON []byte
	if transition.NewMove != nil {
		if moveJSON, err = json.Marshal(transition.NewMove); err != nil {
			return fmt.Errorf("failed to marshal move: %w", err)
		}
	}

	type playerRecord struct {
		id     string
		rating int
		data   []byte
	}

	var players []playerRecord
	if transition.RatingsChanged {
		for _, player := range []*entity.Player{transition.Player1, transition.Player2} {
			if player == nil {
				return fmt.Errorf("failed to update ratings: %w", apperror.ErrPlayerNotFound)
			}

			data, err := json.Marshal(player)
			if err != nil {
				return fmt.Errorf("failed to marshal player: %w", err)
			}

			players = append(players, playerRecord{id: player.ID, rating: player.Rating, data: data})
		}
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)

		if moveJSON != nil {
			pipe.RPush(ctx, movesKey(game.ID), moveJSON)
		}

		for _, player := range players {
			pipe.Set(ctx, playerKey(player.id), player.data, 0)
			pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(player.rating), Member: player.id})
		}

		if game.IsFinished() {
			for _, id := range participants {
				pipe.Del(ctx, activeGameKey(id))
			}
		}

		return nil
	})

	return err
}

func activeGame(ctx context.Context, r reader, playerID string) (*entity.Game, error) {
	gameID, err := r.Get(ctx, activeGameKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}

	game, err := readGame(ctx, r, gameID)
	if err != nil {
		return nil, err
	}

	// a stale pointer is treated as no active game
	if !game.IsActive() || !game.HasPlayer(playerID) {
		return nil, apperror.ErrGameNotFound
	}

	return game, nil
}

func readGame(ctx context.Context, r reader, id string) (*entity.Game, error) {
	response, err := r.Get(ctx, gameKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var game entity.Game
	if err = json.Unmarshal([]byte(response), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

func readMoves(ctx context.Context, r reader, gameID string) ([]*entity.Move, error) {
	values, err := r.LRange(ctx, movesKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}

	moves := make([]*entity.Move, 0, len(values))
	for _, value := range values {
		var move entity.Move
		if err = json.Unmarshal([]byte(value), &move); err != nil {
			return nil, fmt.Errorf("failed to unmarshal move: %w", err)
		}

		moves = append(moves, &move)
	}

	return moves, nil
}

func readPlayerOrNil(ctx context.Context, r reader, id string) (*entity.Player, error) {
	player, err := readPlayer(ctx, r, id)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return nil, nil
	}

	return player, err
}

func score(game *entity.Game) float64 {
	return float64(game.CreatedAt.UnixMilli())
}

// txError - maps an aborted EXEC to ErrStoreConflict and wraps anything unexpected.
func txError(op string, err error) error {
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("failed to %s: %w", op, apperror.ErrStoreConflict)
	case isDomainError(err):
		return err
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		apperror.ErrGameNotFound,
		apperror.ErrPlayerNotFound,
		apperror.ErrInvalidState,
		apperror.ErrTurnViolation,
		apperror.ErrIllegalMove,
		apperror.ErrNoWaitingGame,
		apperror.ErrActiveGameExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
