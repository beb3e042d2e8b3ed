package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

const (
	ResultNone       = ""
	ResultPlayer1Win = "player1_win"
	ResultPlayer2Win = "player2_win"
	ResultDraw       = "draw"
	ResultAbandoned  = "abandoned"
)

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

const BoardSize = 3

var (
	ErrInvalidMark       = errors.New("invalid mark")
	ErrUnknownGameStatus = errors.New("unknown game status")
	ErrBrokenInvariant   = errors.New("broken game invariant")
)

// Mark is the content of a single board cell. The empty cell is encoded as JSON null.
type Mark string

func (that Mark) MarshalJSON() ([]byte, error) {
	if that == EmptyCell {
		return []byte("null"), nil
	}

	return json.Marshal(string(that))
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*that = EmptyCell
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal mark: %w", err)
	}

	switch Mark(raw) {
	case PlayerX, PlayerO, EmptyCell:
		*that = Mark(raw)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMark, raw)
	}
}

// Board is the 3x3 grid, indexed [row][col].
type Board [BoardSize][BoardSize]Mark

type Game struct {
	ID          string     `json:"id"`
	Player1ID   string     `json:"player1_id"`
	Player2ID   string     `json:"player2_id,omitempty"`
	Board       Board      `json:"board"`
	CurrentTurn string     `json:"current_turn,omitempty"`
	Status      string     `json:"status"`
	WinnerID    string     `json:"winner_id,omitempty"`
	Result      string     `json:"result,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// NewGame - creates a waiting game owned by player1 with an empty board.
func NewGame(id, player1ID string, now time.Time) *Game {
	return &Game{
		ID:        id,
		Player1ID: player1ID,
		Status:    StatusWaiting,
		Result:    ResultNone,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// IsActive - the game still occupies its players' single active slot.
func (that *Game) IsActive() bool {
	return that.IsWaiting() || that.IsInProgress()
}

func (that *Game) HasPlayer(playerID string) bool {
	return playerID != "" && (that.Player1ID == playerID || that.Player2ID == playerID)
}

// MarkOf - the symbol a participant plays with: player1 is always X.
func (that *Game) MarkOf(playerID string) Mark {
	switch playerID {
	case that.Player1ID:
		return PlayerX
	case that.Player2ID:
		return PlayerO
	default:
		return EmptyCell
	}
}

// PlayerWithMark - inverse of MarkOf.
func (that *Game) PlayerWithMark(mark Mark) string {
	switch mark {
	case PlayerX:
		return that.Player1ID
	case PlayerO:
		return that.Player2ID
	default:
		return ""
	}
}

// Opponent - the other participant, empty while the game is waiting.
func (that *Game) Opponent(playerID string) string {
	if playerID == that.Player1ID {
		return that.Player2ID
	}

	return that.Player1ID
}

// Start - the claim edge: waiting -> in_progress with player1 to move first.
func (that *Game) Start(player2ID string, now time.Time) {
	that.Player2ID = player2ID
	that.CurrentTurn = that.Player1ID
	that.Status = StatusInProgress
	that.touch(now)
}

// Finish - the terminal edge. An empty winnerID means a draw.
func (that *Game) Finish(winnerID string, now time.Time) {
	that.Status = StatusFinished
	that.CurrentTurn = ""
	that.WinnerID = winnerID

	switch winnerID {
	case "":
		that.Result = ResultDraw
	case that.Player1ID:
		that.Result = ResultPlayer1Win
	default:
		that.Result = ResultPlayer2Win
	}

	finishedAt := now
	that.FinishedAt = &finishedAt
	that.touch(now)
}

// PassTurn - hands the move to the other participant.
func (that *Game) PassTurn(now time.Time) {
	that.CurrentTurn = that.Opponent(that.CurrentTurn)
	that.touch(now)
}

// CheckInvariants - validates the status/participant relationships of the record.
// The store refuses to write a game that fails it.
func (that *Game) CheckInvariants() error {
	switch that.Status {
	case StatusWaiting:
		if that.Player2ID != "" || that.CurrentTurn != "" {
			return fmt.Errorf("%w: waiting game %s has an opponent or a turn", ErrBrokenInvariant, that.ID)
		}
	case StatusInProgress:
		if that.Player2ID == "" {
			return fmt.Errorf("%w: game %s in progress without player2", ErrBrokenInvariant, that.ID)
		}
		if that.CurrentTurn != that.Player1ID && that.CurrentTurn != that.Player2ID {
			return fmt.Errorf("%w: game %s has turn of a non participant", ErrBrokenInvariant, that.ID)
		}
	case StatusFinished:
		switch that.Result {
		case ResultPlayer1Win, ResultPlayer2Win:
			if that.WinnerID == "" {
				return fmt.Errorf("%w: game %s won without winner", ErrBrokenInvariant, that.ID)
			}
		case ResultDraw, ResultAbandoned:
			if that.WinnerID != "" {
				return fmt.Errorf("%w: game %s has winner and result %s", ErrBrokenInvariant, that.ID, that.Result)
			}
		default:
			return fmt.Errorf("%w: finished game %s without result", ErrBrokenInvariant, that.ID)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}

	return nil
}

func (that *Game) touch(now time.Time) {
	that.UpdatedAt = now
	that.Version++
}
