package rest

import (
	"context"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
)

type contextKey string

const playerContextKey contextKey = "player"

// authenticate - resolves the Bearer token into a player and stores it in the request context.
func (that *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := pkg.BearerToken(r)
		if token == "" {
			that.writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		player, err := that.auth.Identify(r.Context(), token)
		if err != nil {
			if apperror.IsAuthFailure(err) {
				that.writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			that.logger.Error("failed to identify player", "error", err)
			that.writeError(w, http.StatusInternalServerError, msgInternal)
			return
		}

		ctx := context.WithValue(r.Context(), playerContextKey, player)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerFromContext(ctx context.Context) *entity.Player {
	player, _ := ctx.Value(playerContextKey).(*entity.Player)
	return player
}
