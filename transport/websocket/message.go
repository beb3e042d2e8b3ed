package websocket

import (
	"errors"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

const (
	ActionMakeMove = "make_move"

	TypeGameState = "game_state"
	TypeError     = "error"
)

const (
	msgNotAuthenticated = "not authenticated"
	msgMalformed        = "malformed message"
	msgUnknownAction    = "unknown action"
	msgPositionRequired = "position is required"
	msgInternal         = "internal error"
)

type Request struct {
	Action   string `json:"action"`
	Position *int   `json:"position,omitempty"`
}

type Response struct {
	Type    string          `json:"type"`
	Game    *entity.Session `json:"game,omitempty"`
	Message string          `json:"message,omitempty"`
}

func gameState(session *entity.Session) Response {
	return Response{Type: TypeGameState, Game: session}
}

func errorResponse(message string) Response {
	return Response{Type: TypeError, Message: message}
}

// userMessage maps a move failure to the text shown to the player. Unknown failures are not exposed.
func userMessage(err error) string {
	for _, known := range []error{
		apperror.ErrGameNotFound,
		apperror.ErrInvalidState,
		apperror.ErrTurnViolation,
		apperror.ErrIllegalMove,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	if errors.Is(err, apperror.ErrStoreConflict) {
		return "game was updated concurrently, try again"
	}

	return msgInternal
}
