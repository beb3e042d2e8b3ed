package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
)

type identifier interface {
	Identify(ctx context.Context, token string) (*entity.Player, error)
}

type gameService interface {
	GetGame(ctx context.Context, id string) (*entity.Session, error)
	ListGamesForPlayer(ctx context.Context, playerID string) ([]*entity.Session, error)
}

type matchmakingService interface {
	CreateOrResumeGame(ctx context.Context, player *entity.Player) (*entity.Session, service.Outcome, error)
	JoinMatchmaking(ctx context.Context, player *entity.Player) (*entity.Session, service.Outcome, error)
}

type playerService interface {
	Profile(ctx context.Context, id string) (*service.Profile, error)
	Leaderboard(ctx context.Context, page, pageSize int) (*service.LeaderboardPage, error)
}

type Server struct {
	logger *slog.Logger
	cors   config.CORS

	auth        identifier
	games       gameService
	matchmaking matchmakingService
	players     playerService
}

func New(
	logger *slog.Logger,
	corsConf config.CORS,
	auth identifier,
	games gameService,
	matchmaking matchmakingService,
	players playerService,
) *Server {
	return &Server{
		logger:      logger.With("component", "rest"),
		cors:        corsConf,
		auth:        auth,
		games:       games,
		matchmaking: matchmaking,
		players:     players,
	}
}

// Router - the HTTP routes, all under /api/v1.
func (that *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   that.cors.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", PingHandler)
		r.Get("/leaderboard", that.leaderboard)

		r.Group(func(r chi.Router) {
			r.Use(that.authenticate)

			r.Post("/games", that.createGame)
			r.Post("/games/matchmaking", that.joinMatchmaking)
			r.Get("/games/my", that.myGames)
			r.Get("/games/{gameID}", that.getGame)

			r.Get("/players/me", that.me)
		})
	})

	return router
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
