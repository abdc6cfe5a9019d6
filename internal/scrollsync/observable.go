package scrollsync

import "time"

// Position is one observed page scroll position.
type Position struct {
	Y              float64   `json:"y"`
	ViewportHeight float64   `json:"viewport_height"`
	At             time.Time `json:"at"`
}

type subscriber struct {
	id int
	fn func(Position)
}

// Observable is the single scroll position stream of a page. Every
// concern that reacts to scrolling (tab sync, header, filter bar)
// subscribes here instead of listening on its own; subscribers run in
// subscription order. Not safe for concurrent use.
type Observable struct {
	subs   []subscriber
	nextID int
	last   Position
}

// Subscribe registers fn and returns a function that removes it.
func (o *Observable) Subscribe(fn func(Position)) func() {
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers p to every subscriber.
func (o *Observable) Publish(p Position) {
	o.last = p
	subs := append([]subscriber(nil), o.subs...)
	for _, s := range subs {
		s.fn(p)
	}
}

// Last returns the most recently published position.
func (o *Observable) Last() Position { return o.last }

// HeaderVisibility hides the page header while scrolling down past it and
// shows it again on any upward scroll or near the top.
type HeaderVisibility struct {
	Height  float64
	visible bool
	lastY   float64
}

func NewHeaderVisibility(height float64) *HeaderVisibility {
	return &HeaderVisibility{Height: height, visible: true}
}

func (h *HeaderVisibility) Visible() bool { return h.visible }

// Observe updates visibility and reports whether it changed.
func (h *HeaderVisibility) Observe(p Position) bool {
	prev := h.visible
	switch {
	case p.Y <= h.Height:
		h.visible = true
	case p.Y > h.lastY:
		h.visible = false
	case p.Y < h.lastY:
		h.visible = true
	}
	h.lastY = p.Y
	return h.visible != prev
}

// FilterBarVisibility pins the search and diet bar once the page has
// scrolled past Threshold.
type FilterBarVisibility struct {
	Threshold float64
	pinned    bool
}

func (f *FilterBarVisibility) Pinned() bool { return f.pinned }

// Observe updates the pinned state and reports whether it changed.
func (f *FilterBarVisibility) Observe(p Position) bool {
	prev := f.pinned
	f.pinned = p.Y >= f.Threshold
	return f.pinned != prev
}
