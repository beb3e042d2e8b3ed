package apperror

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")

	ErrInvalidState  = errors.New("game is not in progress")
	ErrTurnViolation = errors.New("it's not your turn")
	ErrIllegalMove   = errors.New("illegal move")

	// ErrStoreConflict - an atomic update lost the race against a concurrent writer.
	ErrStoreConflict = errors.New("concurrent update conflict")

	ErrNoWaitingGame    = errors.New("no waiting game to claim")
	ErrActiveGameExists = errors.New("player already has an active game")

	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrUnknownPlayer = errors.New("unknown player")
)

// IsAuthFailure reports whether err came from identity verification.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrUnknownPlayer)
}
