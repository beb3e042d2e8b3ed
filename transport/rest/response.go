package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const msgInternal = "internal error"

type errorBody struct {
	Error string `json:"error"`
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, errorBody{Error: message})
}

// writeServiceError maps a service failure to its status code. Unknown failures are logged, not exposed.
func (that *Server) writeServiceError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound),
		errors.Is(err, apperror.ErrPlayerNotFound):
		that.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrStoreConflict),
		errors.Is(err, apperror.ErrActiveGameExists):
		that.writeError(w, http.StatusConflict, err.Error())
	case apperror.IsAuthFailure(err):
		that.writeError(w, http.StatusUnauthorized, err.Error())
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
