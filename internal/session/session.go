// Package session runs the server side of one open menu page: it loads the
// menu, holds the filter, cart, card and scroll state, and applies the
// page's UI events one at a time.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/dinemenu/internal/browse"
	"github.com/dukerupert/dinemenu/internal/cart"
	"github.com/dukerupert/dinemenu/internal/itemcard"
	"github.com/dukerupert/dinemenu/internal/menu"
	"github.com/dukerupert/dinemenu/internal/model"
	"github.com/dukerupert/dinemenu/internal/scrollsync"
)

var (
	ErrNotReady        = errors.New("menu is not loaded")
	ErrClosed          = errors.New("session is closed")
	ErrUnknownItem     = errors.New("unknown item")
	ErrUnknownCategory = errors.New("unknown category")
)

// State is the load state of a session.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
	StateClosed  State = "closed"
)

// Fetcher loads a restaurant menu.
type Fetcher interface {
	FetchMenu(ctx context.Context, restaurantID string) (*model.MenuDocument, error)
}

// Notifier pushes session changes to the page.
type Notifier interface {
	Notify(session, entity, action string, extra map[string]any)
}

// Options tune the page geometry and timing of a session.
type Options struct {
	Layout             scrollsync.Layout
	SettleDelay        time.Duration
	Debounce           time.Duration
	FilterBarThreshold float64
	Now                func() time.Time
}

// ScrollInput is one scroll or resize report from the page. Sections and
// Tabs are optional; when present they replace the known layout.
type ScrollInput struct {
	Position    scrollsync.Position
	Sections    []scrollsync.SectionBox
	Tabs        []scrollsync.TabBox
	StripWidth  float64
	StripScroll float64
}

// ItemResult is returned by every card event.
type ItemResult struct {
	Card itemcard.State `json:"card"`
	Cart cart.Summary   `json:"cart"`
}

// View is a full snapshot of the page state.
type View struct {
	ID              string                    `json:"id"`
	RestaurantID    string                    `json:"restaurant_id"`
	State           State                     `json:"state"`
	Error           string                    `json:"error,omitempty"`
	Title           string                    `json:"title,omitempty"`
	IconURL         string                    `json:"icon_url,omitempty"`
	Tabs            []model.Category          `json:"tabs"`
	Filter          browse.ViewState          `json:"filter"`
	Sections        []browse.Section          `json:"sections"`
	Cards           map[string]itemcard.State `json:"cards"`
	Cart            cart.Summary              `json:"cart"`
	Scroll          scrollsync.State          `json:"scroll"`
	HeaderVisible   bool                      `json:"header_visible"`
	FilterBarPinned bool                      `json:"filter_bar_pinned"`
}

type event struct {
	entity, action string
	extra          map[string]any
}

// Session is one open menu page. All methods are safe for concurrent use;
// events are applied in the order they acquire the session lock.
type Session struct {
	ID           string
	RestaurantID string

	mu       sync.Mutex
	state    State
	err      error
	doc      *model.MenuDocument
	view     browse.ViewState
	sections []browse.Section
	boxes    []scrollsync.SectionBox
	cart     *cart.Cart
	cards    map[string]*itemcard.Card
	lastSeen time.Time
	pending  []event

	scroll    *scrollsync.Controller
	positions scrollsync.Observable
	header    *scrollsync.HeaderVisibility
	filterBar *scrollsync.FilterBarVisibility
	debounce  *scrollsync.Debouncer[scrollsync.Position]

	fetcher  Fetcher
	notifier Notifier
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
	logger   *slog.Logger
}

// New creates a session in the loading state. Call Start to fetch the menu.
func New(id, restaurantID string, fetcher Fetcher, notifier Notifier, opts Options, logger *slog.Logger) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		ID:           id,
		RestaurantID: restaurantID,
		state:        StateLoading,
		cart:         cart.New(),
		cards:        make(map[string]*itemcard.Card),
		scroll:       scrollsync.NewController(opts.Layout, opts.SettleDelay),
		header:       scrollsync.NewHeaderVisibility(opts.Layout.HeaderHeight),
		filterBar:    &scrollsync.FilterBarVisibility{Threshold: opts.FilterBarThreshold},
		fetcher:      fetcher,
		notifier:     notifier,
		now:          opts.Now,
		done:         make(chan struct{}),
		logger:       logger.With("session", id, "restaurant", restaurantID),
	}
	s.lastSeen = s.now()

	s.cart.Subscribe(func(sum cart.Summary) {
		s.emit("cart", "updated", map[string]any{
			"total_item_count": sum.TotalItemCount,
			"total_amount":     sum.TotalAmount.String(),
		})
	})

	// Subscription order is the order concerns see each position.
	s.positions.Subscribe(func(p scrollsync.Position) {
		if s.scroll.Observe(p.Y, p.At) {
			s.emitScroll()
		}
	})
	s.positions.Subscribe(func(p scrollsync.Position) {
		if s.header.Observe(p) {
			s.emit("header", visibility(s.header.Visible(), "shown", "hidden"), nil)
		}
	})
	s.positions.Subscribe(func(p scrollsync.Position) {
		if s.filterBar.Observe(p) {
			s.emit("filter_bar", visibility(s.filterBar.Pinned(), "pinned", "unpinned"), nil)
		}
	})

	if opts.Debounce > 0 {
		s.debounce = scrollsync.NewDebouncer(opts.Debounce, s.settleScroll)
	}
	return s
}

func visibility(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}

// Start fetches the menu in the background. The fetch is cancelled by
// Close or when ctx ends.
func (s *Session) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		defer cancel()

		doc, err := s.fetcher.FetchMenu(ctx, s.RestaurantID)

		s.mu.Lock()
		if s.state != StateLoading {
			s.mu.Unlock()
			s.logger.Debug("discarding menu load result", "state", s.state)
			return
		}
		if err != nil {
			s.state = StateFailed
			s.err = err
			s.emit("session", "failed", map[string]any{"error": menu.BannerMessage(err)})
		} else {
			s.state = StateReady
			s.doc = doc
			s.view = browse.NewViewState(doc)
			s.refilter()
			s.emit("session", "ready", nil)
		}
		s.flushLocked()
	}()
}

// Done is closed once the menu load has finished or been abandoned.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close unmounts the page. An in-flight fetch is cancelled and its result
// is never applied.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	if s.cancel != nil {
		s.cancel()
	}
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.emit("session", "closed", nil)
	s.flushLocked()
}

// State returns the load state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the load error of a failed session.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LastSeen returns the time the page last read or changed the session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Document returns the loaded menu, or nil.
func (s *Session) Document() *model.MenuDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// View returns a snapshot of the page.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()

	v := View{
		ID:              s.ID,
		RestaurantID:    s.RestaurantID,
		State:           s.state,
		Tabs:            []model.Category{},
		Filter:          s.view,
		Sections:        []browse.Section{},
		Cards:           map[string]itemcard.State{},
		Cart:            s.cart.Summary(),
		Scroll:          s.scroll.State(s.now()),
		HeaderVisible:   s.header.Visible(),
		FilterBarPinned: s.filterBar.Pinned(),
	}
	if s.err != nil {
		v.Error = menu.BannerMessage(s.err)
	}
	if s.doc == nil {
		return v
	}
	v.Title = s.doc.Title
	v.IconURL = s.doc.IconURL
	v.Tabs = browse.Tabs(s.doc)
	v.Sections = s.sections
	for _, sec := range s.sections {
		for _, it := range sec.Items {
			v.Cards[it.ID] = s.card(it).State()
		}
	}
	return v
}

// Cart returns the cart summary.
func (s *Session) Cart() cart.Summary {
	s.Touch()
	return s.cart.Summary()
}

// Touch marks the session as in use.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// SelectCategory switches the category tab and clears the search query.
func (s *Session) SelectCategory(id string) error {
	return s.apply(func() error {
		if _, ok := s.doc.Category(id); !ok {
			return ErrUnknownCategory
		}
		s.view.SelectCategory(id)
		s.boxes = nil
		return nil
	})
}

// SetQuery changes the search query.
func (s *Session) SetQuery(q string) error {
	return s.apply(func() error {
		s.view.SetQuery(q)
		return nil
	})
}

func (s *Session) SetDiet(d browse.DietFilter) error {
	return s.apply(func() error {
		s.view.SetDiet(d)
		return nil
	})
}

func (s *Session) ToggleVeg() error {
	return s.apply(func() error {
		s.view.ToggleVeg()
		return nil
	})
}

func (s *Session) ToggleNonVeg() error {
	return s.apply(func() error {
		s.view.ToggleNonVeg()
		return nil
	})
}

// apply runs a filter change and recomputes the rendered sections.
func (s *Session) apply(fn func() error) error {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.refilter()
	s.emit("filter", "changed", map[string]any{
		"category_id": s.view.CategoryID,
		"query":       s.view.Query,
		"diet":        string(s.view.Diet),
	})
	s.flushLocked()
	return nil
}

// refilter recomputes sections and hands the controller the sections that
// are still rendered. Sections without a reported position sit at the top
// until the page reports the reflowed layout.
func (s *Session) refilter() {
	s.sections = s.view.Apply(s.doc)

	known := make(map[string]float64, len(s.boxes))
	for _, b := range s.boxes {
		known[b.ID] = b.Top
	}
	boxes := make([]scrollsync.SectionBox, 0, len(s.sections))
	for _, sec := range s.sections {
		boxes = append(boxes, scrollsync.SectionBox{ID: sec.SubCategory.ID, Top: known[sec.SubCategory.ID]})
	}
	s.boxes = boxes
	if s.scroll.SetSections(boxes, s.now()) {
		s.emitScroll()
	}
}

// Tap presses the card's ADD/SELECT button.
func (s *Session) Tap(itemID string) (ItemResult, error) {
	return s.withCard(itemID, (*itemcard.Card).Tap)
}

// Collapse closes a card's variety panel.
func (s *Session) Collapse(itemID string) (ItemResult, error) {
	return s.withCard(itemID, func(c *itemcard.Card) error {
		c.Collapse()
		return nil
	})
}

// Increment adds one of a simple item, or of variety when it is set.
func (s *Session) Increment(itemID, variety string) (ItemResult, error) {
	return s.withCard(itemID, func(c *itemcard.Card) error {
		if variety != "" {
			return c.IncrementVariety(variety)
		}
		return c.Increment()
	})
}

// Decrement removes one of a simple item, or of variety when it is set.
func (s *Session) Decrement(itemID, variety string) (ItemResult, error) {
	return s.withCard(itemID, func(c *itemcard.Card) error {
		if variety != "" {
			return c.DecrementVariety(variety)
		}
		return c.Decrement()
	})
}

// SetQuantity sets a typed quantity; negatives become zero.
func (s *Session) SetQuantity(itemID, variety string, n int) (ItemResult, error) {
	return s.withCard(itemID, func(c *itemcard.Card) error {
		if variety != "" {
			return c.SetVarietyQuantity(variety, n)
		}
		return c.SetQuantity(n)
	})
}

func (s *Session) withCard(itemID string, fn func(*itemcard.Card) error) (ItemResult, error) {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return ItemResult{}, err
	}
	it, ok := s.doc.Item(itemID)
	if !ok {
		s.mu.Unlock()
		return ItemResult{}, ErrUnknownItem
	}
	c := s.card(it)
	if err := fn(c); err != nil {
		s.mu.Unlock()
		return ItemResult{}, err
	}
	res := ItemResult{Card: c.State(), Cart: s.cart.Summary()}
	s.emit("card", "updated", map[string]any{"item_id": itemID, "mode": string(res.Card.Mode), "total": res.Card.Total})
	s.flushLocked()
	return res, nil
}

func (s *Session) card(it model.MenuItem) *itemcard.Card {
	c, ok := s.cards[it.ID]
	if !ok {
		c = itemcard.New(it, s.cart)
		s.cards[it.ID] = c
	}
	return c
}

// Scroll reports a page scroll position, optionally with a new layout.
// With debouncing enabled the position is applied once the burst settles.
func (s *Session) Scroll(in ScrollInput) error {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	now := s.now()
	if in.Position.At.IsZero() {
		in.Position.At = now
	}
	if in.Tabs != nil {
		s.scroll.SetTabs(in.Tabs, in.StripWidth, in.StripScroll)
	}
	if in.Sections != nil {
		s.boxes = append(s.boxes[:0:0], in.Sections...)
		if s.scroll.SetSections(s.boxes, now) {
			s.emitScroll()
		}
	}
	if s.debounce == nil {
		s.positions.Publish(in.Position)
		s.flushLocked()
		return nil
	}
	s.flushLocked()
	s.debounce.Offer(in.Position)
	return nil
}

// settleScroll applies the last position of a debounced burst and ends
// the user scroll.
func (s *Session) settleScroll(p scrollsync.Position) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return
	}
	s.positions.Publish(p)
	s.scroll.ScrollEnd(s.now())
	s.flushLocked()
}

// ScrollEnd reports that the user stopped scrolling.
func (s *Session) ScrollEnd() error {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.scroll.ScrollEnd(s.now())
	s.flushLocked()
	return nil
}

// ClickTab activates a section tab and returns where the page should
// animate to.
func (s *Session) ClickTab(sectionID string) (scrollsync.ScrollCommand, error) {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return scrollsync.ScrollCommand{}, err
	}
	cmd, err := s.scroll.ClickTab(sectionID, s.now())
	if err != nil {
		s.mu.Unlock()
		return scrollsync.ScrollCommand{}, err
	}
	s.emitScroll()
	s.flushLocked()
	return cmd, nil
}

// AnimationComplete reports the end of a tab-click scroll animation.
func (s *Session) AnimationComplete() error {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.scroll.AnimationComplete()
	s.flushLocked()
	return nil
}

// ScrollState returns the scroll sync state.
func (s *Session) ScrollState() scrollsync.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll.State(s.now())
}

func (s *Session) readyLocked() error {
	s.lastSeen = s.now()
	switch s.state {
	case StateReady:
		return nil
	case StateClosed:
		return ErrClosed
	case StateFailed:
		return s.err
	default:
		return ErrNotReady
	}
}

func (s *Session) emitScroll() {
	st := s.scroll.State(s.now())
	s.emit("scroll", "active_changed", map[string]any{
		"active_section_id": st.ActiveSectionID,
		"tab_strip_x":       st.TabStripX,
	})
}

// emit queues a notification. Called with s.mu held.
func (s *Session) emit(entity, action string, extra map[string]any) {
	s.pending = append(s.pending, event{entity: entity, action: action, extra: extra})
}

// flushLocked releases s.mu and delivers queued notifications outside it.
func (s *Session) flushLocked() {
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	if s.notifier == nil {
		return
	}
	for _, e := range events {
		s.notifier.Notify(s.ID, e.entity, e.action, e.extra)
	}
}
