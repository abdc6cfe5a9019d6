package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/dinemenu/internal/config"
	"github.com/dukerupert/dinemenu/internal/database"
	"github.com/dukerupert/dinemenu/internal/menu/menutest"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	api := menutest.NewServer(t, http.StatusOK, menutest.Payload)

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Load(config.New())
	cfg.MenuAPIURL = api.URL
	cfg.RateLimit = "1000-M"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(db, cfg, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(srv.Sessions().Stop)
	return srv.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&out)
	}
	return rec, out
}

func waitReady(t *testing.T, h http.Handler, id string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, view := do(t, h, "GET", "/api/sessions/"+id, "")
		if view["state"] != "loading" {
			return view
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session never left loading")
	return nil
}

func TestHealth(t *testing.T) {
	h := setupServer(t)
	rec, body := do(t, h, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestSessionFlow(t *testing.T) {
	h := setupServer(t)

	rec, created := do(t, h, "POST", "/api/sessions", `{"restaurant_id": "spice-route"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("create status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("missing session id")
	}
	base := "/api/sessions/" + id

	view := waitReady(t, h, id)
	if view["state"] != "ready" {
		t.Fatalf("state = %v, want ready", view["state"])
	}

	// Category switch
	rec, view = do(t, h, "PUT", base+"/filter", `{"category_id": "cat-drinks"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("filter status = %d", rec.Code)
	}
	if filter := view["filter"].(map[string]any); filter["category_id"] != "cat-drinks" {
		t.Errorf("category = %v, want cat-drinks", filter["category_id"])
	}

	// Varietied item
	do(t, h, "PUT", base+"/filter", `{"category_id": "cat-food"}`)
	rec, _ = do(t, h, "POST", base+"/items/it-soup/tap", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("tap status = %d: %s", rec.Code, rec.Body.String())
	}
	do(t, h, "POST", base+"/items/it-soup/increment", `{"variety": "Small"}`)
	rec, res := do(t, h, "PUT", base+"/items/it-soup/quantity", `{"variety": "Small", "quantity": "2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("quantity status = %d: %s", rec.Code, rec.Body.String())
	}
	cart := res["cart"].(map[string]any)
	if cart["total_item_count"] != float64(2) {
		t.Errorf("total_item_count = %v, want 2", cart["total_item_count"])
	}
	if cart["total_amount"] != "180" {
		t.Errorf("total_amount = %v, want 180", cart["total_amount"])
	}

	rec, _ = do(t, h, "PUT", base+"/items/it-soup/quantity", `{"variety": "Small", "quantity": "lots"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric quantity status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec, _ = do(t, h, "POST", base+"/items/it-lime/tap", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("inactive item status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec, _ = do(t, h, "GET", base+"/cart", "")
	if rec.Code != http.StatusOK {
		t.Errorf("cart status = %d", rec.Code)
	}

	// Scroll sync
	rec, scroll := do(t, h, "POST", base+"/scroll", `{"y": 600, "sections": [{"id": "sub-starters", "top": 100}, {"id": "sub-soups", "top": 800}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("scroll status = %d: %s", rec.Code, rec.Body.String())
	}
	if scroll["active_section_id"] != "sub-soups" {
		t.Errorf("active = %v, want sub-soups", scroll["active_section_id"])
	}
	rec, cmd := do(t, h, "POST", base+"/tabs/sub-starters", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("tab status = %d", rec.Code)
	}
	if cmd["section_id"] != "sub-starters" {
		t.Errorf("section = %v, want sub-starters", cmd["section_id"])
	}
	_, scroll = do(t, h, "POST", base+"/scroll/animation-complete", "")
	if scroll["phase"] != "idle" {
		t.Errorf("phase = %v, want idle", scroll["phase"])
	}

	rec, _ = do(t, h, "POST", base+"/tabs/sub-missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown tab status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// Unmount
	rec, _ = do(t, h, "DELETE", base, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec, _ = do(t, h, "GET", base, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	h := setupServer(t)

	rec, _ := do(t, h, "POST", "/api/sessions", `{"restaurant_id": "  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec, _ = do(t, h, "POST", "/api/sessions", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec, _ = do(t, h, "GET", "/api/sessions/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSnapshotsRecordedOnFetch(t *testing.T) {
	h := setupServer(t)

	rec, _ := do(t, h, "GET", "/menu/spice-route", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("menu page status = %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/restaurants/spice-route/snapshots", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var snaps []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&snaps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snaps) != 1 || snaps[0]["title"] != "Spice Route" {
		t.Errorf("snapshots = %v, want one Spice Route snapshot", snaps)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := setupServer(t)
	do(t, h, "GET", "/menu/spice-route", "")

	rec, _ := do(t, h, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `dinemenu_menu_fetches_total{outcome="ok"} 1`) {
		t.Error("fetch counter missing from metrics output")
	}
}
