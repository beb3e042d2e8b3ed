package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
	"github.com/rocketscienceinc/tictactoe-arena/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-arena/transport/rest"
	"github.com/rocketscienceinc/tictactoe-arena/transport/websocket"
)

// RunApp - runs the application until SIGINT/SIGTERM or the first server failure.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	gameRepo := repository.NewGameRepository(redisStorage.Connection)

	hub := websocket.NewHub(logger)

	var relay *redis.Relay
	var notifier service.Notifier = hub
	if conf.Broadcast.Mode == config.BroadcastRedis {
		relay = redis.NewRelay(logger, redisStorage.Connection, hub)
		notifier = relay
	}

	ids := pkg.NewUUIDGenerator()
	ratings := service.NewRatingUpdater(conf.Rating)

	authService := service.NewAuthService(conf.JWTSecretKey, playerRepo)
	gameService := service.NewGameService(gameRepo, playerRepo)
	playerService := service.NewPlayerService(playerRepo)
	matchmakingService := service.NewMatchmakingService(logger, gameRepo, playerRepo, notifier, ids)
	gamePlayService := service.NewGamePlayService(logger, gameRepo, ratings, notifier, ids)

	restServer := rest.New(logger, conf.CORS, authService, gameService, matchmakingService, playerService)
	wsServer := websocket.New(logger, conf.WebSocket, hub, authService, gameService, gamePlayService)

	group, groupCtx := errgroup.WithContext(ctx)

	if relay != nil {
		group.Go(func() error {
			log.Info("Starting broadcast relay", "channel", redis.Channel)
			return relay.Run(groupCtx)
		})
	}

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := restServer.Start(groupCtx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}

		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
