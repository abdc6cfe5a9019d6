package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dinemenu/internal/itemcard"
	"github.com/dukerupert/dinemenu/internal/menu"
	"github.com/dukerupert/dinemenu/internal/scrollsync"
	"github.com/dukerupert/dinemenu/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorStatus maps a session error to an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownItem),
		errors.Is(err, session.ErrUnknownCategory),
		errors.Is(err, scrollsync.ErrUnknownSection):
		return http.StatusNotFound
	case errors.Is(err, itemcard.ErrUnknownVariety),
		errors.Is(err, itemcard.ErrVarietied),
		errors.Is(err, itemcard.ErrNotVarietied):
		return http.StatusBadRequest
	case errors.Is(err, itemcard.ErrUnavailable),
		errors.Is(err, session.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	case errors.Is(err, menu.ErrNetwork),
		errors.Is(err, menu.ErrMalformed),
		errors.Is(err, menu.ErrNoData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	if errors.Is(err, menu.ErrNetwork) || errors.Is(err, menu.ErrMalformed) || errors.Is(err, menu.ErrNoData) {
		return menu.BannerMessage(err)
	}
	return err.Error()
}

func (h *SessionHandler) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("session event", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": errorMessage(err)})
}

func logOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
