package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
)

func (that *Server) createGame(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())

	session, outcome, err := that.matchmaking.CreateOrResumeGame(r.Context(), player)
	if err != nil {
		that.writeServiceError(w, "createGame", err)
		return
	}

	that.writeJSON(w, outcomeStatus(outcome), session)
}

func (that *Server) joinMatchmaking(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())

	session, outcome, err := that.matchmaking.JoinMatchmaking(r.Context(), player)
	if err != nil {
		that.writeServiceError(w, "joinMatchmaking", err)
		return
	}

	that.writeJSON(w, outcomeStatus(outcome), session)
}

func (that *Server) getGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.games.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeServiceError(w, "getGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *Server) myGames(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())

	sessions, err := that.games.ListGamesForPlayer(r.Context(), player.ID)
	if err != nil {
		that.writeServiceError(w, "myGames", err)
		return
	}

	that.writeJSON(w, http.StatusOK, sessions)
}

func (that *Server) me(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())

	profile, err := that.players.Profile(r.Context(), player.ID)
	if err != nil {
		that.writeServiceError(w, "me", err)
		return
	}

	that.writeJSON(w, http.StatusOK, profile)
}

func (that *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := intQuery(r, "page", 1)
	if err != nil {
		that.writeError(w, http.StatusBadRequest, "page must be a number")
		return
	}

	pageSize, err := intQuery(r, "page_size", service.DefaultPageSize)
	if err != nil {
		that.writeError(w, http.StatusBadRequest, "page_size must be a number")
		return
	}

	result, err := that.players.Leaderboard(r.Context(), page, pageSize)
	if err != nil {
		that.writeServiceError(w, "leaderboard", err)
		return
	}

	that.writeJSON(w, http.StatusOK, result)
}

// outcomeStatus - 201 only when a new game was opened.
func outcomeStatus(outcome service.Outcome) int {
	if outcome == service.OutcomeCreated {
		return http.StatusCreated
	}

	return http.StatusOK
}

func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}
