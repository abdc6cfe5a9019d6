// Package scrollsync keeps the section tab strip and the scrolled content
// of a menu page in step.
//
// A tab click starts a programmatic scroll; until its animation completes
// (or the settle delay passes) scroll positions do not move the active tab.
package scrollsync

import (
	"errors"
	"math"
	"time"
)

// DefaultSettleDelay ends a programmatic scroll whose animation never
// reported completion.
const DefaultSettleDelay = 1000 * time.Millisecond

var ErrUnknownSection = errors.New("unknown section")

type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseUserScrolling Phase = "user_scrolling"
	PhaseProgrammatic  Phase = "programmatic_scrolling"
)

// ScrollCommand tells the page where to animate after a tab click.
type ScrollCommand struct {
	SectionID string  `json:"section_id"`
	ContentY  float64 `json:"content_y"`
	TabStripX float64 `json:"tab_strip_x"`
}

// State is a snapshot of the controller.
type State struct {
	ActiveSectionID string  `json:"active_section_id"`
	Phase           Phase   `json:"phase"`
	TabStripX       float64 `json:"tab_strip_x"`
}

// Controller tracks the active section. It is driven by events that carry
// their own timestamp and is not safe for concurrent use.
type Controller struct {
	layout   Layout
	settle   time.Duration
	phase    Phase
	settleAt time.Time
	active   string

	sections   []SectionBox
	tabs       []TabBox
	stripWidth float64
	stripX     float64

	lastY    float64
	scrolled bool
}

func NewController(layout Layout, settle time.Duration) *Controller {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Controller{layout: layout, settle: settle, phase: PhaseIdle}
}

// Phase returns the phase at time now.
func (c *Controller) Phase(now time.Time) Phase {
	c.expire(now)
	return c.phase
}

func (c *Controller) Active() string { return c.active }

func (c *Controller) State(now time.Time) State {
	c.expire(now)
	return State{ActiveSectionID: c.active, Phase: c.phase, TabStripX: c.stripX}
}

// SetSections replaces the rendered section layout, e.g. after a filter
// change. The active section is re-evaluated: outside a programmatic
// scroll it is recomputed from the last position, and it falls back to the
// first section if it is no longer rendered. Reports whether it changed.
func (c *Controller) SetSections(sections []SectionBox, now time.Time) bool {
	c.expire(now)
	c.sections = append(c.sections[:0:0], sections...)
	prev := c.active

	if c.phase != PhaseProgrammatic && c.scrolled {
		if id, ok := ClosestSection(c.sections, c.lastY, c.layout.OffsetLine()); ok {
			c.active = id
		}
	}
	if !c.hasSection(c.active) {
		c.active = ""
		if len(c.sections) > 0 {
			c.active = c.sections[0].ID
		}
	}
	if c.active != prev {
		c.stripX = RevealTab(c.tabs, c.stripWidth, c.stripX, c.active)
		return true
	}
	return false
}

// SetTabs records the tab strip layout and its current scroll offset.
func (c *Controller) SetTabs(tabs []TabBox, stripWidth, stripX float64) {
	c.tabs = append(c.tabs[:0:0], tabs...)
	c.stripWidth = stripWidth
	c.stripX = stripX
}

// ClickTab activates a section immediately and starts a programmatic
// scroll towards it.
func (c *Controller) ClickTab(id string, now time.Time) (ScrollCommand, error) {
	box, ok := c.section(id)
	if !ok {
		return ScrollCommand{}, ErrUnknownSection
	}
	c.active = id
	c.phase = PhaseProgrammatic
	c.settleAt = now.Add(c.settle)
	c.stripX = RevealTab(c.tabs, c.stripWidth, c.stripX, id)

	return ScrollCommand{
		SectionID: id,
		ContentY:  math.Max(0, box.Top-c.layout.OffsetLine()),
		TabStripX: c.stripX,
	}, nil
}

// AnimationComplete ends a programmatic scroll.
func (c *Controller) AnimationComplete() {
	if c.phase == PhaseProgrammatic {
		c.phase = PhaseIdle
	}
}

// Observe handles a scroll position. It is ignored during a programmatic
// scroll. Reports whether the active section changed.
func (c *Controller) Observe(scrollY float64, now time.Time) bool {
	c.expire(now)
	if c.phase == PhaseProgrammatic {
		return false
	}
	c.phase = PhaseUserScrolling
	c.lastY = scrollY
	c.scrolled = true

	id, ok := ClosestSection(c.sections, scrollY, c.layout.OffsetLine())
	if !ok || id == c.active {
		return false
	}
	c.active = id
	c.stripX = RevealTab(c.tabs, c.stripWidth, c.stripX, id)
	return true
}

// ScrollEnd ends a user scroll.
func (c *Controller) ScrollEnd(now time.Time) {
	c.expire(now)
	if c.phase == PhaseUserScrolling {
		c.phase = PhaseIdle
	}
}

func (c *Controller) expire(now time.Time) {
	if c.phase == PhaseProgrammatic && !now.Before(c.settleAt) {
		c.phase = PhaseIdle
	}
}

func (c *Controller) section(id string) (SectionBox, bool) {
	for _, s := range c.sections {
		if s.ID == id {
			return s, true
		}
	}
	return SectionBox{}, false
}

func (c *Controller) hasSection(id string) bool {
	_, ok := c.section(id)
	return ok
}
