package menu

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/dinemenu/internal/menu/menutest"
	"github.com/dukerupert/dinemenu/internal/model"
)

type fakeRecorder struct {
	docs []*model.MenuDocument
	err  error
}

func (r *fakeRecorder) Record(_ context.Context, doc *model.MenuDocument) error {
	r.docs = append(r.docs, doc)
	return r.err
}

func newTestClient(t *testing.T, status int, body string) (*Client, *fakeRecorder) {
	t.Helper()
	srv := menutest.NewServer(t, status, body)
	rec := &fakeRecorder{}
	c := NewClient(Config{BaseURL: srv.URL, AssetBaseURL: "https://assets.example.com/"}, rec, nil)
	return c, rec
}

func TestFetchMenu(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, menutest.Payload)

	doc, err := c.FetchMenu(context.Background(), "spice-route")
	require.NoError(t, err)

	assert.Equal(t, "spice-route", doc.RestaurantID)
	assert.Equal(t, "Spice Route", doc.Title)
	assert.Equal(t, "https://assets.example.com/icons/spice.png", doc.IconURL)

	require.Len(t, doc.Categories, 2, "unpublished category dropped")
	assert.Equal(t, "cat-food", doc.Categories[0].ID)
	assert.Equal(t, "11:00", doc.Categories[0].OpenTime)
	assert.Equal(t, "https://assets.example.com/cats/food.png", doc.Categories[0].ImageURL)
	assert.Equal(t, "https://cdn.example.com/drinks.png", doc.Categories[1].ImageURL)

	require.Len(t, doc.SubCategories, 4)
	assert.Equal(t, "", doc.SubCategories[1].ImageURL)

	ids := make([]string, 0, len(doc.Items))
	for _, it := range doc.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"it-paneer", "it-burger", "it-wings", "it-soup", "it-lime", "it-stray"}, ids)

	require.Len(t, rec.docs, 1)
	assert.Same(t, doc, rec.docs[0])
}

func TestFetchMenuItemFields(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, menutest.Payload)
	doc, err := c.FetchMenu(context.Background(), "spice-route")
	require.NoError(t, err)

	paneer, _ := doc.Item("it-paneer")
	assert.Equal(t, model.DietVeg, paneer.Diet)
	assert.True(t, paneer.ChefRecommended)
	assert.Equal(t, "https://assets.example.com/items/paneer.jpg", paneer.ImageURL)
	assert.Equal(t, "220", paneer.PriceLabel())

	burger, _ := doc.Item("it-burger")
	assert.Equal(t, model.DietVeg, burger.Diet, "diet parsing is case-insensitive")
	assert.Equal(t, "", burger.ImageURL)
	assert.True(t, burger.Pricing.DisplayPrice().Equal(decimal.NewFromInt(150)))

	wings, _ := doc.Item("it-wings")
	assert.Equal(t, model.DietNonVeg, wings.Diet)
	assert.Equal(t, "//img.example.com/wings.jpg", wings.ImageURL)
	assert.Equal(t, "https://assets.example.com/videos/wings.mp4", wings.VideoURL)
	assert.Equal(t, "260.5", wings.PriceLabel())

	soup, _ := doc.Item("it-soup")
	assert.Equal(t, model.DietUnspecified, soup.Diet)
	require.Len(t, soup.Varieties(), 3)
	assert.Equal(t, "Starting from 90", soup.PriceLabel())

	lime, _ := doc.Item("it-lime")
	assert.False(t, lime.Active)
}

func TestFetchMenuErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		id     string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{}`, "r1", ErrNetwork},
		{"not found", http.StatusNotFound, `not found`, "r1", ErrNetwork},
		{"not json", http.StatusOK, `<html>oops</html>`, "r1", ErrMalformed},
		{"wrong shape", http.StatusOK, `{"body": {"menuitems": {"items": {"oops": true}}}}`, "r1", ErrMalformed},
		{"bad price", http.StatusOK, `{"body": {"menuitems": {"items": [{"_id": "a", "price": "abc"}]}}}`, "r1", ErrMalformed},
		{"missing body", http.StatusOK, `{"responseStatus": {"status": "failure", "message": "unknown restaurant"}}`, "r1", ErrNoData},
		{"empty menu", http.StatusOK, `{"body": {"menuitems": {"title": "x", "categories": [], "items": []}}}`, "r1", ErrNoData},
		{"nothing published", http.StatusOK, `{"body": {"menuitems": {"title": "x", "categories": [{"_id": "c", "category": "Food", "publish": false}], "items": [{"_id": "i", "itemName": "Dal", "price": "10", "subCategory_id": "s", "publish": false}]}}}`, "r1", ErrNoData},
		{"empty identifier", http.StatusOK, menutest.Payload, "  ", ErrNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, tt.status, tt.body)
			doc, err := c.FetchMenu(context.Background(), tt.id)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, rec.docs)
		})
	}
}

func TestFetchMenuNamelessVarieties(t *testing.T) {
	body := `{"body": {"menuitems": {"title": "x",
		"categories": [{"_id": "c", "category": "Food"}],
		"subCategories": [{"_id": "s", "subCategory": "Soups", "category_id": "c"}],
		"items": [{"_id": "soup", "itemName": "Soup", "price": "", "subCategory_id": "s", "varietyArr": [{"name": " ", "price": "90"}, {"price": "120"}]}]}}}`
	c, _ := newTestClient(t, http.StatusOK, body)

	doc, err := c.FetchMenu(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.False(t, doc.Items[0].Active, "an item whose varieties were all dropped cannot be ordered")
}

func TestFetchMenuNetworkErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadGateway, `{}`)
	_, err := c.FetchMenu(context.Background(), "r1")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadGateway, netErr.StatusCode)
	assert.Equal(t, "r1", netErr.RestaurantID)
}

func TestFetchMenuTransportFailure(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil, nil)
	_, err := c.FetchMenu(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestFetchMenuDoesNotRetry(t *testing.T) {
	srv := menutest.NewServer(t, http.StatusServiceUnavailable, `{}`)
	c := NewClient(Config{BaseURL: srv.URL}, nil, nil)

	_, err := c.FetchMenu(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, int64(1), srv.Hits.Load())
}

func TestFetchMenuReportsOutcome(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"body": {}}`)
	var outcomes []string
	c.OnFetch(func(outcome string, _ time.Duration) { outcomes = append(outcomes, outcome) })

	c.FetchMenu(context.Background(), "r1")
	c.FetchMenu(context.Background(), "")
	assert.Equal(t, []string{OutcomeNoData, OutcomeNoData}, outcomes)
}

func TestRecorderFailureDoesNotFailFetch(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, menutest.Payload)
	rec.err = errors.New("disk full")

	doc, err := c.FetchMenu(context.Background(), "spice-route")
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestBannerMessage(t *testing.T) {
	assert.Contains(t, BannerMessage(&NetworkError{Err: errors.New("x")}), "couldn't reach")
	assert.Contains(t, BannerMessage(&MalformedDataError{Err: errors.New("x")}), "could not be read")
	assert.Contains(t, BannerMessage(&NoDataError{Reason: "x"}), "no menu")
	assert.Contains(t, BannerMessage(errors.New("other")), "Something went wrong")
}
