package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/rocketscienceinc/tictactoe-arena/internal/tictactoe"
)

type GamePlayService interface {
	// SubmitMove validates and applies one move. Fails with ErrGameNotFound, ErrInvalidState,
	// ErrTurnViolation, ErrIllegalMove or ErrStoreConflict.
	SubmitMove(ctx context.Context, gameID, playerID string, position int) (*entity.Session, error)
}

type gamePlayService struct {
	logger *slog.Logger

	gameRepo gameRepo
	ratings  *RatingUpdater
	notifier Notifier
	ids      pkg.IDGenerator
	now      func() time.Time
}

func NewGamePlayService(
	logger *slog.Logger,
	gameRepo gameRepo,
	ratings *RatingUpdater,
	notifier Notifier,
	ids pkg.IDGenerator,
) GamePlayService {
	return &gamePlayService{
		logger:   logger.With("component", "gameplay"),
		gameRepo: gameRepo,
		ratings:  ratings,
		notifier: notifier,
		ids:      ids,
		now:      time.Now,
	}
}

func (that *gamePlayService) SubmitMove(ctx context.Context, gameID, playerID string, position int) (*entity.Session, error) {
	log := that.logger.With("method", "SubmitMove", "gameID", gameID, "playerID", playerID)

	transition, err := that.gameRepo.Apply(ctx, gameID, func(t *repository.Transition) error {
		return that.applyMove(t, playerID, position)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit move: %w", err)
	}

	session := entity.NewSession(transition.Game, transition.Moves, transition.Players())

	if transition.Game.IsFinished() {
		log.Info("game finished", "result", transition.Game.Result, "winnerID", transition.Game.WinnerID)
	}

	if err = that.notifier.Publish(ctx, session); err != nil {
		log.Error("failed to publish move", "error", err)
	}

	return session, nil
}

func (that *gamePlayService) applyMove(t *repository.Transition, playerID string, position int) error {
	game := t.Game

	if !game.IsInProgress() {
		return apperror.ErrInvalidState
	}

	if game.CurrentTurn == "" || game.CurrentTurn != playerID {
		return apperror.ErrTurnViolation
	}

	row, col, err := tictactoe.PositionToCoords(position)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrIllegalMove, err)
	}

	if !tictactoe.IsLegalMove(game.Board, row, col) {
		return fmt.Errorf("%w: cell %d is taken", apperror.ErrIllegalMove, position)
	}

	now := that.now().UTC()

	game.Board[row][col] = game.MarkOf(playerID)
	t.AddMove(&entity.Move{
		ID:         that.ids.NewID(),
		GameID:     game.ID,
		PlayerID:   playerID,
		Position:   position,
		MoveNumber: len(t.Moves) + 1,
		CreatedAt:  now,
	})

	if winner := tictactoe.CheckWinner(game.Board); winner != entity.EmptyCell {
		winnerID := game.PlayerWithMark(winner)
		game.Finish(winnerID, now)

		if t.Player1 == nil || t.Player2 == nil {
			return fmt.Errorf("failed to rate game %s: %w", game.ID, apperror.ErrPlayerNotFound)
		}

		winnerPlayer, loserPlayer := t.Player1, t.Player2
		if winnerID == game.Player2ID {
			winnerPlayer, loserPlayer = t.Player2, t.Player1
		}

		that.ratings.ApplyWin(winnerPlayer, loserPlayer)
		t.RatingsChanged = true

		return nil
	}

	if tictactoe.IsFull(game.Board) {
		game.Finish("", now)

		if t.Player1 == nil || t.Player2 == nil {
			return fmt.Errorf("failed to rate game %s: %w", game.ID, apperror.ErrPlayerNotFound)
		}

		that.ratings.ApplyDraw(t.Player1, t.Player2)
		t.RatingsChanged = true

		return nil
	}

	game.PassTurn(now)

	return nil
}
