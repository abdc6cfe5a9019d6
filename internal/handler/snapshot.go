package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/dinemenu/internal/store"
)

type SnapshotHandler struct {
	store  *store.SnapshotStore
	logger *slog.Logger
}

func NewSnapshotHandler(s *store.SnapshotStore, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{store: s, logger: logOrDefault(logger)}
}

// List handles GET /api/restaurants/{id}/snapshots?limit=n.
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	snaps, err := h.store.List(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.logger.Error("list snapshots", "restaurant", r.PathValue("id"), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list snapshots"})
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}
