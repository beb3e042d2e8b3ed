package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/testing/tokens"
)

const testSecret = "test-secret"

func TestAuthService_Identify(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		f := newFixture(t)
		auth := NewAuthService(testSecret, f.playerRepo)

		// Given: a token issued for alice
		token := tokens.Issue(t, testSecret, f.alice.ID, time.Now().Add(time.Hour))

		// When: it is verified
		player, err := auth.Identify(f.ctx, token)

		// Then: alice is returned
		require.NoError(t, err)
		assert.Equal(t, f.alice, player)
	})

	t.Run("subject claim only", func(t *testing.T) {
		f := newFixture(t)
		auth := NewAuthService(testSecret, f.playerRepo)

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": f.bob.ID,
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		player, err := auth.Identify(f.ctx, token)

		require.NoError(t, err)
		assert.Equal(t, f.bob.ID, player.ID)
	})

	t.Run("user_id claim only", func(t *testing.T) {
		f := newFixture(t)
		auth := NewAuthService(testSecret, f.playerRepo)

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": f.carol.ID,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		player, err := auth.Identify(f.ctx, token)

		require.NoError(t, err)
		assert.Equal(t, f.carol.ID, player.ID)
	})

	t.Run("no expiry", func(t *testing.T) {
		f := newFixture(t)
		auth := NewAuthService(testSecret, f.playerRepo)

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": f.alice.ID,
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = auth.Identify(f.ctx, token)

		require.ErrorIs(t, err, apperror.ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newFixture(t)
		auth := NewAuthService(testSecret, f.playerRepo)

		// Given: a token that expired an hour ago
		token := tokens.Issue(t, testSecret, f.alice.ID, time.Now().Add(-time.Hour))

		// When: it is verified
		_, err := auth.Identify(f.ctx, token)

		// Then: it is reported as expired
		require.ErrorIs(t, err, apperror.ErrTokenExpired)
	})

	t.Run("wrong signature", func(t *testing.T) {
		f := newFixture(t)

		token := tokens.Issue(t, "other-secret", f.alice.ID, time.Now().Add(time.Hour))

		_, err := NewAuthService(testSecret, f.playerRepo).Identify(f.ctx, token)

		require.ErrorIs(t, err, apperror.ErrTokenInvalid)
	})

	t.Run("garbage and empty tokens", func(t *testing.T) {
		f := newFixture(t)
		auth := NewAuthService(testSecret, f.playerRepo)

		for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
			_, err := auth.Identify(f.ctx, token)
			require.ErrorIs(t, err, apperror.ErrTokenInvalid, "token %q", token)
			assert.True(t, apperror.IsAuthFailure(err))
		}
	})

	t.Run("unknown player", func(t *testing.T) {
		f := newFixture(t)
		auth := NewAuthService(testSecret, f.playerRepo)

		token := tokens.Issue(t, testSecret, "ghost", time.Now().Add(time.Hour))

		_, err := auth.Identify(f.ctx, token)

		require.ErrorIs(t, err, apperror.ErrUnknownPlayer)
	})
}
