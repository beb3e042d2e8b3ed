package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type identifier interface {
	Identify(ctx context.Context, token string) (*entity.Player, error)
}

type gameGetter interface {
	GetGame(ctx context.Context, id string) (*entity.Session, error)
}

type moveSubmitter interface {
	SubmitMove(ctx context.Context, gameID, playerID string, position int) (*entity.Session, error)
}

type Server struct {
	logger *slog.Logger
	cfg    config.WebSocket

	hub      *Hub
	auth     identifier
	games    gameGetter
	gameplay moveSubmitter

	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, cfg config.WebSocket, hub *Hub, auth identifier, games gameGetter, gameplay moveSubmitter) *Server {
	return &Server{
		logger:   logger.With("component", "websocket"),
		cfg:      cfg,
		hub:      hub,
		auth:     auth,
		games:    games,
		gameplay: gameplay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// browsers connect from the web client origin; identity comes from the token
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router - the realtime routes.
func (that *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ws/games/{gameID}", that.serveGame)

	return router
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
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

func (that *Server) pongWait() time.Duration {
	return that.cfg.PingPeriod * 10 / 9
}
