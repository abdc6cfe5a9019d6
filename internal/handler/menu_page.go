package handler

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dukerupert/dinemenu/internal/browse"
	"github.com/dukerupert/dinemenu/internal/menu"
	"github.com/dukerupert/dinemenu/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// MenuFetcher loads a restaurant menu.
type MenuFetcher interface {
	FetchMenu(ctx context.Context, restaurantID string) (*model.MenuDocument, error)
}

// MenuPageHandler renders the menu page server side for clients that do
// not run the session API.
type MenuPageHandler struct {
	fetcher   MenuFetcher
	templates *template.Template
	logger    *slog.Logger
}

func NewMenuPageHandler(fetcher MenuFetcher, logger *slog.Logger) *MenuPageHandler {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"dietClass": dietClass,
	}).ParseFS(templateFS, "templates/*.html"))
	return &MenuPageHandler{fetcher: fetcher, templates: tmpl, logger: logOrDefault(logger)}
}

type tabLink struct {
	Name     string
	URL      string
	Selected bool
}

type menuPage struct {
	RestaurantID string
	Title        string
	IconURL      string
	Error        string
	Tabs         []tabLink
	CategoryID   string
	Query        string
	Diet         browse.DietFilter
	VegURL       string
	NonVegURL    string
	Sections     []browse.Section
	Filtered     bool
}

// Menu handles GET /menu/{restaurant}?category=&q=&diet=.
func (h *MenuPageHandler) Menu(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.PathValue("restaurant")
	page := menuPage{RestaurantID: restaurantID}

	doc, err := h.fetcher.FetchMenu(r.Context(), restaurantID)
	if err != nil {
		page.Error = menu.BannerMessage(err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		h.execute(w, page)
		return
	}

	q := r.URL.Query()
	view := browse.NewViewState(doc)
	if c := q.Get("category"); c != "" {
		if _, ok := doc.Category(c); !ok {
			http.Error(w, "unknown category", http.StatusNotFound)
			return
		}
		view.SelectCategory(c)
	}
	view.SetQuery(q.Get("q"))
	view.SetDiet(browse.ParseDietFilter(q.Get("diet")))

	page.Title = doc.Title
	page.IconURL = doc.IconURL
	page.CategoryID = view.CategoryID
	page.Query = view.Query
	page.Diet = view.Diet
	page.Sections = view.Apply(doc)
	page.Filtered = strings.TrimSpace(view.Query) != "" || view.Diet != browse.DietAll
	for _, c := range browse.Tabs(doc) {
		page.Tabs = append(page.Tabs, tabLink{
			Name:     c.Name,
			URL:      pageURL(restaurantID, c.ID, view.Query, view.Diet),
			Selected: c.ID == view.CategoryID,
		})
	}
	veg, nonVeg := view, view
	veg.ToggleVeg()
	nonVeg.ToggleNonVeg()
	page.VegURL = pageURL(restaurantID, view.CategoryID, view.Query, veg.Diet)
	page.NonVegURL = pageURL(restaurantID, view.CategoryID, view.Query, nonVeg.Diet)

	h.render(w, page)
}

func pageURL(restaurantID, categoryID, query string, diet browse.DietFilter) string {
	v := url.Values{}
	v.Set("category", categoryID)
	if query != "" {
		v.Set("q", query)
	}
	if diet != browse.DietAll {
		v.Set("diet", string(diet))
	}
	return "/menu/" + url.PathEscape(restaurantID) + "?" + v.Encode()
}

func dietClass(d model.Diet) string {
	switch d {
	case model.DietVeg:
		return "veg"
	case model.DietNonVeg:
		return "non-veg"
	default:
		return ""
	}
}

func (h *MenuPageHandler) render(w http.ResponseWriter, page menuPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.execute(w, page)
}

func (h *MenuPageHandler) execute(w http.ResponseWriter, page menuPage) {
	if err := h.templates.ExecuteTemplate(w, "menu.html", page); err != nil {
		h.logger.Error("template error", "restaurant", page.RestaurantID, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
