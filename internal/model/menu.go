package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Diet is the dietary marking of a menu item.
type Diet string

const (
	DietUnspecified Diet = ""
	DietVeg         Diet = "veg"
	DietNonVeg      Diet = "non_veg"
)

// MenuDocument is one restaurant's menu as fetched from the menu API.
// It is never modified after construction; a re-fetch replaces it.
type MenuDocument struct {
	RestaurantID  string        `json:"restaurant_id"`
	Title         string        `json:"title"`
	IconURL       string        `json:"icon_url"`
	Categories    []Category    `json:"categories"`
	SubCategories []SubCategory `json:"sub_categories"`
	Items         []MenuItem    `json:"items"`
}

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	OpenTime  string `json:"open_time,omitempty"`
	CloseTime string `json:"close_time,omitempty"`
	Active    bool   `json:"active"`
}

type SubCategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	ImageURL   string `json:"image_url"`
}

type Variety struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Type  string          `json:"type,omitempty"`
}

// Pricing is either Simple or Varietied.
type Pricing interface {
	// DisplayPrice is the price shown on the item card.
	DisplayPrice() decimal.Decimal
	isPricing()
}

// Simple is a single price for the whole item.
type Simple struct {
	Price decimal.Decimal
}

func (p Simple) DisplayPrice() decimal.Decimal { return p.Price }
func (Simple) isPricing()                       {}

// Varietied prices an item per variety. Varieties is never empty; use
// NewPricing to build one.
type Varietied struct {
	Varieties []Variety
}

// DisplayPrice returns the cheapest variety price.
func (p Varietied) DisplayPrice() decimal.Decimal {
	lowest := p.Varieties[0].Price
	for _, v := range p.Varieties[1:] {
		if v.Price.LessThan(lowest) {
			lowest = v.Price
		}
	}
	return lowest
}

// Variety looks up a variety by name.
func (p Varietied) Variety(name string) (Variety, bool) {
	for _, v := range p.Varieties {
		if v.Name == name {
			return v, true
		}
	}
	return Variety{}, false
}

func (Varietied) isPricing() {}

// NewPricing returns Varietied when varieties is non-empty, Simple otherwise.
// The item's own price is advisory once varieties exist.
func NewPricing(price decimal.Decimal, varieties []Variety) Pricing {
	if len(varieties) == 0 {
		return Simple{Price: price}
	}
	vs := make([]Variety, len(varieties))
	copy(vs, varieties)
	return Varietied{Varieties: vs}
}

type MenuItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	SubCategoryID   string  `json:"sub_category_id"`
	Diet            Diet    `json:"diet"`
	ImageURL        string  `json:"image_url,omitempty"`
	VideoURL        string  `json:"video_url,omitempty"`
	Pricing         Pricing `json:"-"`
	ChefRecommended bool    `json:"chef_recommended"`
	Active          bool    `json:"active"`
}

// PriceLabel renders the card price, e.g. "120" or "Starting from 90".
func (i MenuItem) PriceLabel() string {
	if i.Pricing == nil {
		return ""
	}
	p := i.Pricing.DisplayPrice().String()
	if _, ok := i.Pricing.(Varietied); ok {
		return "Starting from " + p
	}
	return p
}

// Varieties returns the item's varieties, or nil for simple items.
func (i MenuItem) Varieties() []Variety {
	if v, ok := i.Pricing.(Varietied); ok {
		return v.Varieties
	}
	return nil
}

// Category returns the category with the given id.
func (d *MenuDocument) Category(id string) (Category, bool) {
	for _, c := range d.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Item returns the item with the given id.
func (d *MenuDocument) Item(id string) (MenuItem, bool) {
	for _, it := range d.Items {
		if it.ID == id {
			return it, true
		}
	}
	return MenuItem{}, false
}

// MarshalJSON flattens Pricing into display_price, price_label and varieties.
func (i MenuItem) MarshalJSON() ([]byte, error) {
	type plain MenuItem
	out := struct {
		plain
		DisplayPrice *decimal.Decimal `json:"display_price,omitempty"`
		PriceLabel   string           `json:"price_label"`
		Varieties    []Variety        `json:"varieties,omitempty"`
	}{plain: plain(i), PriceLabel: i.PriceLabel(), Varieties: i.Varieties()}
	if i.Pricing != nil {
		p := i.Pricing.DisplayPrice()
		out.DisplayPrice = &p
	}
	return json.Marshal(out)
}
