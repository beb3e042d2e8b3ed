package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// AuthService verifies the identity tokens issued by the account subsystem.
type AuthService interface {
	Identify(ctx context.Context, token string) (*entity.Player, error)
}

type playerFinder interface {
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

type authServiceImpl struct {
	secretKey  string
	playerRepo playerFinder
	now        func() time.Time
}

func NewAuthService(secretKey string, playerRepo playerFinder) AuthService {
	return &authServiceImpl{
		secretKey:  secretKey,
		playerRepo: playerRepo,
		now:        time.Now,
	}
}

// Identify - resolves a token to a known player. Fails with ErrTokenInvalid, ErrTokenExpired or ErrUnknownPlayer.
func (that *authServiceImpl) Identify(ctx context.Context, token string) (*entity.Player, error) {
	if token == "" {
		return nil, apperror.ErrTokenInvalid
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(that.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(that.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired
		}

		return nil, fmt.Errorf("%w: %w", apperror.ErrTokenInvalid, err)
	}

	playerID := claims.UserID
	if playerID == "" {
		playerID = claims.Subject
	}

	if playerID == "" {
		return nil, fmt.Errorf("%w: no player id claim", apperror.ErrTokenInvalid)
	}

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return nil, apperror.ErrUnknownPlayer
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}
