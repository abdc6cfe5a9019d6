package browse

import (
	"github.com/dukerupert/dinemenu/internal/model"
)

// ViewState is the filter state owned by one menu page.
type ViewState struct {
	CategoryID string     `json:"category_id"`
	Query      string     `json:"query"`
	Diet       DietFilter `json:"diet"`
}

// NewViewState selects the first category of doc with no search or diet
// filter.
func NewViewState(doc *model.MenuDocument) ViewState {
	vs := ViewState{Diet: DietAll}
	if doc != nil && len(doc.Categories) > 0 {
		vs.CategoryID = doc.Categories[0].ID
	}
	return vs
}

// SelectCategory switches the category and clears the search query. The diet
// filter is kept.
func (v *ViewState) SelectCategory(id string) {
	v.CategoryID = id
	v.Query = ""
}

func (v *ViewState) SetQuery(q string) {
	v.Query = q
}

// ToggleVeg enables veg-only, clearing non-veg-only; toggling it again
// returns to all.
func (v *ViewState) ToggleVeg() {
	if v.Diet == DietVegOnly {
		v.Diet = DietAll
		return
	}
	v.Diet = DietVegOnly
}

// ToggleNonVeg enables non-veg-only, clearing veg-only; toggling it again
// returns to all.
func (v *ViewState) ToggleNonVeg() {
	if v.Diet == DietNonVegOnly {
		v.Diet = DietAll
		return
	}
	v.Diet = DietNonVegOnly
}

func (v *ViewState) SetDiet(d DietFilter) {
	v.Diet = d
}

// Apply runs Filter with the current state.
func (v ViewState) Apply(doc *model.MenuDocument) []Section {
	return Filter(doc, v.CategoryID, v.Query, v.Diet)
}
