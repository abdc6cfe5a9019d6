package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/dinemenu/internal/browse"
	"github.com/dukerupert/dinemenu/internal/scrollsync"
	"github.com/dukerupert/dinemenu/internal/session"
)

type SessionHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewSessionHandler(m *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: m, logger: logOrDefault(logger)}
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return s, true
}

type createSessionRequest struct {
	RestaurantID string `json:"restaurant_id"`
}

// Create opens a page session and starts loading the menu.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.RestaurantID = strings.TrimSpace(req.RestaurantID)
	if req.RestaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	s := h.sessions.Create(r.Context(), req.RestaurantID)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":    s.ID,
		"state": s.State(),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// Delete unmounts the page.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Close(r.PathValue("id")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type filterRequest struct {
	CategoryID *string `json:"category_id"`
	Query      *string `json:"query"`
	Diet       *string `json:"diet"`
}

// Filter applies any of category, query and diet, in that order.
func (h *SessionHandler) Filter(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.CategoryID != nil {
		if err := s.SelectCategory(*req.CategoryID); err != nil {
			h.writeError(w, err)
			return
		}
	}
	if req.Query != nil {
		if err := s.SetQuery(*req.Query); err != nil {
			h.writeError(w, err)
			return
		}
	}
	if req.Diet != nil {
		if err := s.SetDiet(browse.ParseDietFilter(*req.Diet)); err != nil {
			h.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) ToggleVeg(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*session.Session).ToggleVeg)
}

func (h *SessionHandler) ToggleNonVeg(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*session.Session).ToggleNonVeg)
}

func (h *SessionHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := fn(s); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

type itemRequest struct {
	Variety  string          `json:"variety"`
	Quantity json.RawMessage `json:"quantity"`
}

// decodeOptional decodes a JSON body when one was sent.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ItemAction handles tap, increment, decrement and collapse on a card.
func (h *SessionHandler) ItemAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		var req itemRequest
		if err := decodeOptional(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}

		itemID := r.PathValue("item_id")
		var (
			res session.ItemResult
			err error
		)
		switch action {
		case "tap":
			res, err = s.Tap(itemID)
		case "increment":
			res, err = s.Increment(itemID, req.Variety)
		case "decrement":
			res, err = s.Decrement(itemID, req.Variety)
		case "collapse":
			res, err = s.Collapse(itemID)
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown action"})
			return
		}
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// SetQuantity applies a typed quantity. The quantity may be a JSON number
// or a numeric string; an empty string clears the line.
func (h *SessionHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	n, err := parseQuantity(req.Quantity)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be a whole number"})
		return
	}

	res, err := s.SetQuantity(r.PathValue("item_id"), req.Variety, n)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseQuantity(raw json.RawMessage) (int, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, errors.New("missing quantity")
	}
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
	}
	return strconv.Atoi(text)
}

func (h *SessionHandler) Cart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Cart())
}

type scrollRequest struct {
	Y              float64                 `json:"y"`
	ViewportHeight float64                 `json:"viewport_height"`
	Sections       []scrollsync.SectionBox `json:"sections"`
	Tabs           []scrollsync.TabBox     `json:"tabs"`
	StripWidth     float64                 `json:"strip_width"`
	StripScroll    float64                 `json:"strip_scroll"`
}

// Scroll takes a scroll or resize report.
func (h *SessionHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req scrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	err := s.Scroll(session.ScrollInput{
		Position:    scrollsync.Position{Y: req.Y, ViewportHeight: req.ViewportHeight},
		Sections:    req.Sections,
		Tabs:        req.Tabs,
		StripWidth:  req.StripWidth,
		StripScroll: req.StripScroll,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ScrollState())
}

func (h *SessionHandler) ScrollEnd(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.ScrollEnd(); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ScrollState())
}

// ClickTab returns the scroll target of a section tab.
func (h *SessionHandler) ClickTab(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	cmd, err := s.ClickTab(r.PathValue("section_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

func (h *SessionHandler) AnimationComplete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.AnimationComplete(); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ScrollState())
}
