// Package browse builds the filtered menu view: which subcategories and
// items of the selected category are shown for a search query and a diet
// filter.
package browse

import (
	"strings"

	"github.com/dukerupert/dinemenu/internal/model"
)

// DietFilter restricts the shown items by diet.
type DietFilter string

const (
	DietAll        DietFilter = "all"
	DietVegOnly    DietFilter = "veg_only"
	DietNonVegOnly DietFilter = "non_veg_only"
)

// ParseDietFilter maps user input to a DietFilter; unknown values mean all.
func ParseDietFilter(s string) DietFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "veg", "veg_only", "vegonly":
		return DietVegOnly
	case "non_veg", "non-veg", "nonveg", "non_veg_only", "nonvegonly":
		return DietNonVegOnly
	default:
		return DietAll
	}
}

// Matches reports whether an item of diet d passes the filter. Veg-only
// keeps unspecified items.
func (f DietFilter) Matches(d model.Diet) bool {
	switch f {
	case DietVegOnly:
		return d == model.DietVeg || d == model.DietUnspecified
	case DietNonVegOnly:
		return d == model.DietNonVeg
	default:
		return true
	}
}

// Section is one rendered subcategory with its visible items.
type Section struct {
	SubCategory model.SubCategory `json:"sub_category"`
	Items       []model.MenuItem  `json:"items"`
}

// Filter projects doc onto the sections visible for the selected category.
//
// A non-empty query (trimmed, case-insensitive) keeps items whose name or
// description contains it and the diet filter is not applied. Otherwise the
// diet filter applies. In both cases sections left without items are
// dropped. Source ordering is preserved and doc is never modified.
func Filter(doc *model.MenuDocument, categoryID, query string, diet DietFilter) []Section {
	if doc == nil {
		return []Section{}
	}
	if _, ok := doc.Category(categoryID); !ok {
		return []Section{}
	}

	index := make(map[string]int)
	sections := []Section{}
	for _, sc := range doc.SubCategories {
		if sc.CategoryID != categoryID {
			continue
		}
		if _, dup := index[sc.ID]; dup {
			continue
		}
		index[sc.ID] = len(sections)
		sections = append(sections, Section{SubCategory: sc, Items: []model.MenuItem{}})
	}

	q := strings.ToLower(strings.TrimSpace(query))
	for _, it := range doc.Items {
		i, ok := index[it.SubCategoryID]
		if !ok {
			continue
		}
		switch {
		case q != "":
			if !matchesQuery(it, q) {
				continue
			}
		case diet != "" && diet != DietAll:
			if !diet.Matches(it.Diet) {
				continue
			}
		}
		sections[i].Items = append(sections[i].Items, it)
	}

	if q == "" && (diet == "" || diet == DietAll) {
		return sections
	}

	kept := sections[:0]
	for _, s := range sections {
		if len(s.Items) > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}

func matchesQuery(it model.MenuItem, q string) bool {
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Description), q)
}

// Tabs returns the category tab strip in document order.
func Tabs(doc *model.MenuDocument) []model.Category {
	if doc == nil {
		return nil
	}
	tabs := make([]model.Category, len(doc.Categories))
	copy(tabs, doc.Categories)
	return tabs
}
