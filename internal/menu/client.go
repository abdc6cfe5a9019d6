package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dukerupert/dinemenu/internal/model"
)

// Config holds menu API client configuration.
type Config struct {
	BaseURL      string
	AssetBaseURL string
	Timeout      time.Duration
}

// Recorder is notified of every successfully fetched document.
type Recorder interface {
	Record(ctx context.Context, doc *model.MenuDocument) error
}

// Outcome labels used when reporting fetches.
const (
	OutcomeOK        = "ok"
	OutcomeNetwork   = "network_error"
	OutcomeMalformed = "malformed"
	OutcomeNoData    = "no_data"
)

// Client fetches restaurant menus from the menu API. It never retries;
// a failed fetch is reported to the caller as-is.
type Client struct {
	cfg      Config
	http     *resty.Client
	recorder Recorder
	observe  func(outcome string, elapsed time.Duration)
	logger   *slog.Logger
}

// NewClient creates a menu client. recorder may be nil.
func NewClient(cfg Config, recorder Recorder, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.AssetBaseURL == "" {
		cfg.AssetBaseURL = DefaultAssetBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{cfg: cfg, http: hc, recorder: recorder, logger: logger}
}

// OnFetch registers a callback invoked after every fetch with its outcome.
func (c *Client) OnFetch(fn func(outcome string, elapsed time.Duration)) {
	c.observe = fn
}

// FetchMenu fetches and normalizes the menu of one restaurant.
func (c *Client) FetchMenu(ctx context.Context, restaurantID string) (*model.MenuDocument, error) {
	start := time.Now()
	doc, err := c.fetch(ctx, restaurantID)
	if c.observe != nil {
		c.observe(outcomeOf(err), time.Since(start))
	}
	if err != nil {
		c.logger.Warn("menu fetch failed", "restaurant", restaurantID, "error", err)
		return nil, err
	}

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, doc); err != nil {
			c.logger.Error("record menu snapshot", "restaurant", restaurantID, "error", err)
		}
	}
	c.logger.Debug("menu fetched",
		"restaurant", restaurantID,
		"categories", len(doc.Categories),
		"items", len(doc.Items),
		"duration", time.Since(start),
	)
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, restaurantID string) (*model.MenuDocument, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, &NoDataError{Reason: "restaurant identifier is required"}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("restaurant", restaurantID).
		Get("/menu/{restaurant}")
	if err != nil {
		return nil, &NetworkError{RestaurantID: restaurantID, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &NetworkError{
			RestaurantID: restaurantID,
			StatusCode:   resp.StatusCode(),
			Err:          fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	payload, err := decodeResponse(resp.Body())
	if err != nil {
		return nil, &MalformedDataError{RestaurantID: restaurantID, Err: err}
	}
	if payload.Body == nil || payload.Body.MenuItems == nil {
		status := strings.ToLower(payload.ResponseStatus.Status)
		if status != "" && status != "success" {
			return nil, &NoDataError{RestaurantID: restaurantID, Reason: "menu API reported " + payload.ResponseStatus.Message}
		}
		return nil, &NoDataError{RestaurantID: restaurantID, Reason: "response carries no menu"}
	}

	doc := payload.Body.MenuItems.toDocument(restaurantID, c.cfg.AssetBaseURL)
	if len(doc.Categories) == 0 && len(doc.Items) == 0 {
		return nil, &NoDataError{RestaurantID: restaurantID, Reason: "menu is empty"}
	}
	return doc, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNoData):
		return OutcomeNoData
	case errors.Is(err, ErrMalformed):
		return OutcomeMalformed
	default:
		return OutcomeNetwork
	}
}
