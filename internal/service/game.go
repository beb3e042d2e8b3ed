package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
)

type GameService interface {
	GetGame(ctx context.Context, id string) (*entity.Session, error)
	ListGamesForPlayer(ctx context.Context, playerID string) ([]*entity.Session, error)
}

type gameRepo interface {
	CreateForPlayer(ctx context.Context, game *entity.Game) (*entity.Game, bool, error)
	FindActiveForPlayer(ctx context.Context, playerID string) (*entity.Game, error)
	Claim(ctx context.Context, playerID string, now time.Time) (*entity.Game, error)
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Moves(ctx context.Context, gameID string) ([]*entity.Move, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Game, error)
	Apply(ctx context.Context, gameID string, fn func(t *repository.Transition) error) (*repository.Transition, error)
}

type playerRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	GetMany(ctx context.Context, ids ...string) (map[string]*entity.Player, error)
	Leaderboard(ctx context.Context, offset, limit int64) ([]*entity.Player, int64, error)
}

// Notifier delivers a snapshot to every connection subscribed to its game.
type Notifier interface {
	Publish(ctx context.Context, session *entity.Session) error
}

type gameService struct {
	sessions sessionLoader
}

func NewGameService(gameRepo gameRepo, playerRepo playerRepo) GameService {
	return &gameService{
		sessions: sessionLoader{gameRepo: gameRepo, playerRepo: playerRepo},
	}
}

func (that *gameService) GetGame(ctx context.Context, id string) (*entity.Session, error) {
	game, err := that.sessions.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}

	return that.sessions.load(ctx, game)
}

// ListGamesForPlayer - every game the player took part in, newest first.
func (that *gameService) ListGamesForPlayer(ctx context.Context, playerID string) ([]*entity.Session, error) {
	games, err := that.sessions.gameRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games from storage: %w", err)
	}

	sessions := make([]*entity.Session, 0, len(games))
	for _, game := range games {
		session, err := that.sessions.load(ctx, game)
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, session)
	}

	return sessions, nil
}

type sessionLoader struct {
	gameRepo   gameRepo
	playerRepo playerRepo
}

func (that sessionLoader) load(ctx context.Context, game *entity.Game) (*entity.Session, error) {
	moves, err := that.gameRepo.Moves(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve moves from storage: %w", err)
	}

	players, err := that.playerRepo.GetMany(ctx, game.Player1ID, game.Player2ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve players from storage: %w", err)
	}

	return entity.NewSession(game, moves, players), nil
}
