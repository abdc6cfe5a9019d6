package scrollsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Header 60 + tab bar 40: the offset line sits at y=100 in the viewport.
func newTestController() *Controller {
	c := NewController(Layout{HeaderHeight: 60, TabBarHeight: 40}, time.Second)
	c.SetTabs([]TabBox{
		{ID: "starters", Left: 0, Width: 100},
		{ID: "mains", Left: 100, Width: 100},
		{ID: "desserts", Left: 200, Width: 100},
		{ID: "drinks", Left: 300, Width: 100},
	}, 200, 0)
	c.SetSections([]SectionBox{
		{ID: "starters", Top: 100},
		{ID: "mains", Top: 600},
		{ID: "desserts", Top: 1200},
		{ID: "drinks", Top: 1800},
	}, t0)
	return c
}

func TestInitialActiveIsFirstSection(t *testing.T) {
	c := newTestController()
	assert.Equal(t, "starters", c.Active())
	assert.Equal(t, PhaseIdle, c.Phase(t0))
}

func TestObserveTracksClosestSection(t *testing.T) {
	c := newTestController()

	assert.False(t, c.Observe(100, t0), "starters still closest")
	assert.Equal(t, PhaseUserScrolling, c.Phase(t0))

	assert.True(t, c.Observe(480, t0))
	assert.Equal(t, "mains", c.Active())

	assert.True(t, c.Observe(1750, t0))
	assert.Equal(t, "drinks", c.Active())
	assert.Equal(t, 200.0, c.State(t0).TabStripX, "tab strip scrolled to reveal the active tab")

	c.ScrollEnd(t0)
	assert.Equal(t, PhaseIdle, c.Phase(t0))
}

func TestClosestSectionTieGoesToFirst(t *testing.T) {
	sections := []SectionBox{{ID: "a", Top: 50}, {ID: "b", Top: 150}}
	id, ok := ClosestSection(sections, 0, 100)
	require.True(t, ok)
	assert.Equal(t, "a", id)

	_, ok = ClosestSection(nil, 0, 100)
	assert.False(t, ok)
}

func TestTabClickSuppressesScrollUpdates(t *testing.T) {
	c := newTestController()

	cmd, err := c.ClickTab("desserts", t0)
	require.NoError(t, err)
	assert.Equal(t, "desserts", cmd.SectionID)
	assert.Equal(t, 1100.0, cmd.ContentY)
	assert.Equal(t, 150.0, cmd.TabStripX)
	assert.Equal(t, "desserts", c.Active(), "active is set before the animation runs")
	assert.Equal(t, PhaseProgrammatic, c.Phase(t0))

	// The animation passes through mains; those positions are ignored.
	assert.False(t, c.Observe(500, t0.Add(200*time.Millisecond)))
	assert.False(t, c.Observe(800, t0.Add(400*time.Millisecond)))
	assert.Equal(t, "desserts", c.Active())

	// After the settle delay scroll-driven updates resume.
	assert.True(t, c.Observe(500, t0.Add(time.Second)))
	assert.Equal(t, "mains", c.Active())
}

func TestAnimationCompleteEndsProgrammaticScroll(t *testing.T) {
	c := newTestController()
	_, err := c.ClickTab("drinks", t0)
	require.NoError(t, err)

	c.AnimationComplete()
	assert.Equal(t, PhaseIdle, c.Phase(t0))
	assert.True(t, c.Observe(0, t0.Add(10*time.Millisecond)))
	assert.Equal(t, "starters", c.Active())
}

func TestClickUnknownTab(t *testing.T) {
	c := newTestController()
	_, err := c.ClickTab("nope", t0)
	assert.ErrorIs(t, err, ErrUnknownSection)
	assert.Equal(t, PhaseIdle, c.Phase(t0))
}

func TestSetSectionsReevaluates(t *testing.T) {
	c := newTestController()
	c.Observe(1150, t0)
	require.Equal(t, "desserts", c.Active())

	// A filter removed desserts; the page reflowed.
	changed := c.SetSections([]SectionBox{
		{ID: "starters", Top: 100},
		{ID: "drinks", Top: 700},
	}, t0)
	assert.True(t, changed)
	assert.Equal(t, "drinks", c.Active())

	changed = c.SetSections(nil, t0)
	assert.True(t, changed)
	assert.Equal(t, "", c.Active())
}

func TestSetSectionsDuringProgrammaticScrollKeepsTarget(t *testing.T) {
	c := newTestController()
	_, err := c.ClickTab("mains", t0)
	require.NoError(t, err)

	changed := c.SetSections([]SectionBox{
		{ID: "starters", Top: 100},
		{ID: "mains", Top: 650},
	}, t0.Add(100*time.Millisecond))
	assert.False(t, changed)
	assert.Equal(t, "mains", c.Active())
}

func TestRevealTab(t *testing.T) {
	tabs := []TabBox{
		{ID: "a", Left: 0, Width: 100},
		{ID: "b", Left: 100, Width: 100},
		{ID: "c", Left: 200, Width: 100},
		{ID: "d", Left: 300, Width: 100},
	}
	assert.Equal(t, 0.0, RevealTab(tabs, 200, 0, "b"), "visible tab keeps offset")
	assert.Equal(t, 150.0, RevealTab(tabs, 200, 0, "c"))
	assert.Equal(t, 200.0, RevealTab(tabs, 200, 0, "d"), "clamped to the scrollable range")
	assert.Equal(t, 0.0, RevealTab(tabs, 200, 200, "a"))
	assert.Equal(t, 37.0, RevealTab(tabs, 200, 37, "missing"))
}
