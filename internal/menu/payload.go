package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/dinemenu/internal/model"
)

type apiResponse struct {
	ResponseStatus struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"responseStatus"`
	Body *struct {
		MenuItems *apiMenu `json:"menuitems"`
	} `json:"body"`
}

type apiMenu struct {
	Title         string           `json:"title"`
	IconURL       string           `json:"cloudinary_Iconurl"`
	Categories    []apiCategory    `json:"categories"`
	SubCategories []apiSubCategory `json:"subCategories"`
	Items         []apiItem        `json:"items"`
}

type apiCategory struct {
	ID        string  `json:"_id"`
	Name      string  `json:"category"`
	ImageURL  string  `json:"cloudinary_url"`
	Publish   *bool   `json:"publish"`
	IsActive  *bool   `json:"isActive"`
	OpenTime  *string `json:"openTime"`
	CloseTime *string `json:"closeTime"`
}

type apiSubCategory struct {
	ID         string `json:"_id"`
	Name       string `json:"subCategory"`
	CategoryID string `json:"category_id"`
	ImageURL   string `json:"cloudinary_url"`
}

type apiItem struct {
	ID            string       `json:"_id"`
	Name          string       `json:"itemName"`
	Description   string       `json:"description"`
	Price         flexDecimal  `json:"price"`
	Type          string       `json:"type"`
	Image         string       `json:"image"`
	Video         string       `json:"video"`
	SubCategoryID string       `json:"subCategory_id"`
	Publish       *bool        `json:"publish"`
	Varieties     []apiVariety `json:"varietyArr"`
	ChefRecommend bool         `json:"chefRecommend"`
	IsActive      *bool        `json:"isActive"`
}

type apiVariety struct {
	Name         string      `json:"name"`
	Price        flexDecimal `json:"price"`
	Type         string      `json:"type"`
	VarietyName  string      `json:"varietyName"`
	VarietyPrice flexDecimal `json:"varietyPrice"`
	VarietyType  string      `json:"varietyType"`
}

// flexDecimal accepts a JSON number, a quoted decimal, an empty string or null.
type flexDecimal struct {
	decimal.Decimal
	set bool
}

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	s := string(b)
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("price %s: %w", s, err)
		}
		s = strings.TrimSpace(unq)
	}
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("price %q: %w", s, err)
	}
	f.Decimal = d
	f.set = true
	return nil
}

func decodeResponse(data []byte) (*apiResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func parseDiet(s string) model.Diet {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "veg":
		return model.DietVeg
	case "nonveg", "non-veg", "non veg", "non_veg":
		return model.DietNonVeg
	default:
		return model.DietUnspecified
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func stringOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (v apiVariety) toModel() model.Variety {
	out := model.Variety{Name: strings.TrimSpace(v.Name), Price: v.Price.Decimal, Type: v.Type}
	if out.Name == "" {
		out.Name = strings.TrimSpace(v.VarietyName)
	}
	if !v.Price.set {
		out.Price = v.VarietyPrice.Decimal
	}
	if out.Type == "" {
		out.Type = v.VarietyType
	}
	return out
}

// toDocument converts the wire payload, dropping unpublished entries and
// nameless varieties, and normalizing asset URLs.
func (m *apiMenu) toDocument(restaurantID, assetBase string) *model.MenuDocument {
	doc := &model.MenuDocument{
		RestaurantID: restaurantID,
		Title:        m.Title,
		IconURL:      NormalizeAssetURL(assetBase, m.IconURL),
	}

	for _, c := range m.Categories {
		if !boolOr(c.Publish, true) {
			continue
		}
		doc.Categories = append(doc.Categories, model.Category{
			ID:        c.ID,
			Name:      c.Name,
			ImageURL:  NormalizeAssetURL(assetBase, c.ImageURL),
			OpenTime:  stringOr(c.OpenTime),
			CloseTime: stringOr(c.CloseTime),
			Active:    boolOr(c.IsActive, true),
		})
	}

	for _, s := range m.SubCategories {
		doc.SubCategories = append(doc.SubCategories, model.SubCategory{
			ID:         s.ID,
			Name:       s.Name,
			CategoryID: s.CategoryID,
			ImageURL:   NormalizeAssetURL(assetBase, s.ImageURL),
		})
	}

	for _, it := range m.Items {
		if !boolOr(it.Publish, true) {
			continue
		}
		var varieties []model.Variety
		for _, v := range it.Varieties {
			mv := v.toModel()
			if mv.Name == "" {
				continue
			}
			varieties = append(varieties, mv)
		}
		active := boolOr(it.IsActive, true)
		if len(it.Varieties) > 0 && len(varieties) == 0 {
			// Every variety was nameless; nothing can be ordered.
			active = false
		}
		doc.Items = append(doc.Items, model.MenuItem{
			ID:              it.ID,
			Name:            it.Name,
			Description:     it.Description,
			SubCategoryID:   it.SubCategoryID,
			Diet:            parseDiet(it.Type),
			ImageURL:        NormalizeAssetURL(assetBase, it.Image),
			VideoURL:        NormalizeAssetURL(assetBase, it.Video),
			Pricing:         model.NewPricing(it.Price.Decimal, varieties),
			ChefRecommended: it.ChefRecommend,
			Active:          active,
		})
	}

	return doc
}
