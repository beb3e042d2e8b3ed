package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
)

// serveGame - authenticates, upgrades and subscribes a connection to one game.
func (that *Server) serveGame(writer http.ResponseWriter, req *http.Request) {
	gameID := chi.URLParam(req, "gameID")
	log := that.logger.With("method", "serveGame", "gameID", gameID)

	player, ok := that.authenticate(writer, req)
	if !ok {
		return
	}

	if _, err := that.games.GetGame(req.Context(), gameID); err != nil {
		if errors.Is(err, apperror.ErrGameNotFound) {
			http.Error(writer, "game not found", http.StatusNotFound)
			return
		}

		log.Error("failed to get game", "error", err)
		http.Error(writer, msgInternal, http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		// the upgrader already replied
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(that.logger, conn, gameID, player, that.cfg.SendBuffer)
	go client.writePump(that.cfg.PingPeriod)

	that.hub.Join(client)
	defer func() {
		that.hub.Leave(client)
		client.close()
		client.logger.Info("connection closed")
	}()

	client.logger.Info("connection subscribed", "observer", player == nil)

	// loaded after joining so no broadcast falls between the snapshot and the subscription
	session, err := that.games.GetGame(req.Context(), gameID)
	if err != nil {
		client.logger.Error("failed to load snapshot", "error", err)
		client.sendResponse(errorResponse(msgInternal))
		return
	}

	client.sendSession(session)

	baseCtx := context.WithoutCancel(req.Context())
	client.readPump(that.cfg.MaxMessageSize, that.pongWait(), func(client *Client, data []byte) {
		that.handleMessage(baseCtx, client, data)
	})
}

// authenticate - resolves the connection's player. A nil player with ok=true is a read-only observer.
func (that *Server) authenticate(writer http.ResponseWriter, req *http.Request) (*entity.Player, bool) {
	token := pkg.BearerToken(req)
	if token == "" {
		if that.cfg.AllowObservers {
			return nil, true
		}

		http.Error(writer, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}

	player, err := that.auth.Identify(req.Context(), token)
	if err != nil {
		if apperror.IsAuthFailure(err) {
			http.Error(writer, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return nil, false
		}

		that.logger.Error("failed to identify player", "error", err)
		http.Error(writer, msgInternal, http.StatusInternalServerError)
		return nil, false
	}

	return player, true
}

func (that *Server) handleMessage(baseCtx context.Context, client *Client, data []byte) {
	var request Request
	if err := json.Unmarshal(data, &request); err != nil {
		client.sendResponse(errorResponse(msgMalformed))
		return
	}

	switch request.Action {
	case ActionMakeMove:
		that.handleMakeMove(baseCtx, client, request)
	default:
		client.sendResponse(errorResponse(msgUnknownAction))
	}
}

// handleMakeMove - the move outlives the connection: its context is detached from the socket.
func (that *Server) handleMakeMove(baseCtx context.Context, client *Client, request Request) {
	if client.player == nil {
		client.sendResponse(errorResponse(msgNotAuthenticated))
		return
	}

	if request.Position == nil {
		client.sendResponse(errorResponse(msgPositionRequired))
		return
	}

	ctx, cancel := context.WithTimeout(baseCtx, that.cfg.MoveTimeout)
	defer cancel()

	// on success the snapshot reaches the whole group, sender included, through the notifier
	if _, err := that.gameplay.SubmitMove(ctx, client.gameID, client.player.ID, *request.Position); err != nil {
		message := userMessage(err)
		if message == msgInternal {
			client.logger.Error("failed to submit move", "error", err)
		}

		client.sendResponse(errorResponse(message))
	}
}
