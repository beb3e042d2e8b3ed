package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
)

// Outcome tells how a matchmaking call obtained its session.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeResumed Outcome = "resumed"
	OutcomeMatched Outcome = "matched"
)

type MatchmakingService interface {
	// CreateOrResumeGame returns the player's active game or opens a new waiting one.
	CreateOrResumeGame(ctx context.Context, player *entity.Player) (*entity.Session, Outcome, error)
	// JoinMatchmaking pairs the player with the oldest waiting game, falling back to CreateOrResumeGame.
	JoinMatchmaking(ctx context.Context, player *entity.Player) (*entity.Session, Outcome, error)
}

type matchmakingService struct {
	logger *slog.Logger

	sessions sessionLoader
	notifier Notifier
	ids      pkg.IDGenerator
	now      func() time.Time
}

func NewMatchmakingService(
	logger *slog.Logger,
	gameRepo gameRepo,
	playerRepo playerRepo,
	notifier Notifier,
	ids pkg.IDGenerator,
) MatchmakingService {
	return &matchmakingService{
		logger:   logger.With("component", "matchmaking"),
		sessions: sessionLoader{gameRepo: gameRepo, playerRepo: playerRepo},
		notifier: notifier,
		ids:      ids,
		now:      time.Now,
	}
}

func (that *matchmakingService) CreateOrResumeGame(ctx context.Context, player *entity.Player) (*entity.Session, Outcome, error) {
	game := entity.NewGame(that.ids.NewID(), player.ID, that.now().UTC())

	stored, created, err := that.sessions.gameRepo.CreateForPlayer(ctx, game)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create game: %w", err)
	}

	session, err := that.sessions.load(ctx, stored)
	if err != nil {
		return nil, "", err
	}

	if created {
		that.logger.Info("game created", "gameID", stored.ID, "playerID", player.ID)
		return session, OutcomeCreated, nil
	}

	return session, OutcomeResumed, nil
}

func (that *matchmakingService) JoinMatchmaking(ctx context.Context, player *entity.Player) (*entity.Session, Outcome, error) {
	log := that.logger.With("method", "JoinMatchmaking", "playerID", player.ID)

	active, err := that.sessions.gameRepo.FindActiveForPlayer(ctx, player.ID)
	if err == nil {
		session, err := that.sessions.load(ctx, active)
		if err != nil {
			return nil, "", err
		}

		return session, OutcomeResumed, nil
	}

	if !errors.Is(err, apperror.ErrGameNotFound) {
		return nil, "", fmt.Errorf("failed to find active game: %w", err)
	}

	game, err := that.sessions.gameRepo.Claim(ctx, player.ID, that.now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNoWaitingGame),
		errors.Is(err, apperror.ErrStoreConflict),
		errors.Is(err, apperror.ErrActiveGameExists):
		log.Debug("claim failed, falling back to create", "reason", err)
		return that.CreateOrResumeGame(ctx, player)
	default:
		return nil, "", fmt.Errorf("failed to claim game: %w", err)
	}

	session, err := that.sessions.load(ctx, game)
	if err != nil {
		return nil, "", err
	}

	log.Info("game matched", "gameID", game.ID, "opponentID", game.Player1ID)

	if err = that.notifier.Publish(ctx, session); err != nil {
		log.Error("failed to publish matched game", "gameID", game.ID, "error", err)
	}

	return session, OutcomeMatched, nil
}
