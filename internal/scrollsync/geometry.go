package scrollsync

import "math"

// SectionBox is a rendered menu section. Top is relative to the document.
type SectionBox struct {
	ID  string  `json:"id"`
	Top float64 `json:"top"`
}

// TabBox is one tab in the horizontally scrolling tab strip.
type TabBox struct {
	ID    string  `json:"id"`
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Layout holds the fixed chrome above the content.
type Layout struct {
	HeaderHeight float64
	TabBarHeight float64
}

// OffsetLine is the viewport y below which content is not hidden by the
// header and tab bar.
func (l Layout) OffsetLine() float64 {
	return l.HeaderHeight + l.TabBarHeight
}

// ClosestSection returns the section whose top edge, at scroll position
// scrollY, is nearest to offsetLine. Ties go to the earliest section.
func ClosestSection(sections []SectionBox, scrollY, offsetLine float64) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	for _, s := range sections {
		d := math.Abs(s.Top - scrollY - offsetLine)
		if d < bestDist {
			best, bestDist = s.ID, d
		}
	}
	return best, best != ""
}

// RevealTab returns the strip scroll offset that shows tab id. A fully
// visible tab keeps the current offset; otherwise the tab is centered,
// clamped to the strip's scrollable range.
func RevealTab(tabs []TabBox, stripWidth, stripScroll float64, id string) float64 {
	var target *TabBox
	contentWidth := 0.0
	for i := range tabs {
		if tabs[i].ID == id {
			target = &tabs[i]
		}
		contentWidth = math.Max(contentWidth, tabs[i].Left+tabs[i].Width)
	}
	if target == nil || stripWidth <= 0 {
		return stripScroll
	}
	if target.Left >= stripScroll && target.Left+target.Width <= stripScroll+stripWidth {
		return stripScroll
	}

	x := target.Left + target.Width/2 - stripWidth/2
	maxX := math.Max(0, contentWidth-stripWidth)
	return math.Min(math.Max(0, x), maxX)
}
