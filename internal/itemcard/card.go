// Package itemcard holds the add/remove interaction of one menu item card.
package itemcard

import (
	"errors"
	"fmt"

	"github.com/dukerupert/dinemenu/internal/cart"
	"github.com/dukerupert/dinemenu/internal/model"
)

var (
	ErrUnavailable    = errors.New("item is not available")
	ErrUnknownVariety = errors.New("unknown variety")
	ErrNotVarietied   = errors.New("item has no varieties")
	ErrVarietied      = errors.New("item has varieties; pick one")
)

// Sink receives every quantity change of a card.
type Sink interface {
	Update(l cart.Line) cart.Summary
}

// Mode is the visible state of a card's add control.
type Mode string

const (
	// ModeCollapsed shows the ADD (or SELECT for varietied items) button.
	ModeCollapsed Mode = "collapsed"
	// ModeExpanded shows the variety panel.
	ModeExpanded Mode = "expanded"
	// ModeCounting shows the -/+ stepper of a simple item.
	ModeCounting Mode = "counting"
)

// Card is the interaction state of one rendered item. Each card owns its
// quantities and reports every change to the sink.
type Card struct {
	item     model.MenuItem
	sink     Sink
	expanded bool
	qty      map[string]int // variety name -> quantity; "" for simple items
}

func New(item model.MenuItem, sink Sink) *Card {
	return &Card{item: item, sink: sink, qty: make(map[string]int)}
}

// State is the externally visible card state.
type State struct {
	ItemID     string         `json:"item_id"`
	Mode       Mode           `json:"mode"`
	Action     string         `json:"action"`
	Total      int            `json:"total"`
	Quantities map[string]int `json:"quantities,omitempty"`
	Available  bool           `json:"available"`
}

func (c *Card) Item() model.MenuItem { return c.item }

func (c *Card) varietied() (model.Varietied, bool) {
	v, ok := c.item.Pricing.(model.Varietied)
	return v, ok
}

// Mode reports the card's current mode.
func (c *Card) Mode() Mode {
	if _, ok := c.varietied(); ok {
		if c.expanded {
			return ModeExpanded
		}
		return ModeCollapsed
	}
	if c.qty[""] > 0 {
		return ModeCounting
	}
	return ModeCollapsed
}

// Total is the sum of the card's quantities across varieties.
func (c *Card) Total() int {
	n := 0
	for _, q := range c.qty {
		n += q
	}
	return n
}

// Quantity returns the quantity of one variety ("" for simple items).
func (c *Card) Quantity(variety string) int {
	return c.qty[variety]
}

func (c *Card) State() State {
	s := State{
		ItemID:    c.item.ID,
		Mode:      c.Mode(),
		Action:    "ADD",
		Total:     c.Total(),
		Available: c.item.Active,
	}
	if v, ok := c.varietied(); ok {
		s.Action = "SELECT"
		s.Quantities = make(map[string]int, len(v.Varieties))
		for _, vr := range v.Varieties {
			s.Quantities[vr.Name] = c.qty[vr.Name]
		}
	}
	return s
}

// Tap handles the ADD/SELECT button: varietied items open the variety
// panel, simple items start at quantity one.
func (c *Card) Tap() error {
	if !c.item.Active {
		return ErrUnavailable
	}
	if _, ok := c.varietied(); ok {
		c.expanded = true
		return nil
	}
	if c.qty[""] == 0 {
		c.set("", 1)
	}
	return nil
}

// Collapse closes the variety panel. Quantities are kept.
func (c *Card) Collapse() {
	c.expanded = false
}

// Increment adds one to a simple item.
func (c *Card) Increment() error {
	if err := c.checkSimple(); err != nil {
		return err
	}
	c.set("", c.qty[""]+1)
	return nil
}

// Decrement removes one from a simple item; at zero the card collapses.
func (c *Card) Decrement() error {
	if err := c.checkSimple(); err != nil {
		return err
	}
	if c.qty[""] == 0 {
		return nil
	}
	c.set("", c.qty[""]-1)
	return nil
}

// SetQuantity sets a simple item's quantity; negatives clamp to zero.
func (c *Card) SetQuantity(n int) error {
	if err := c.checkSimple(); err != nil {
		return err
	}
	if n < 0 {
		n = 0
	}
	c.set("", n)
	return nil
}

func (c *Card) IncrementVariety(name string) error {
	if err := c.checkVariety(name); err != nil {
		return err
	}
	c.set(name, c.qty[name]+1)
	return nil
}

func (c *Card) DecrementVariety(name string) error {
	if err := c.checkVariety(name); err != nil {
		return err
	}
	if c.qty[name] == 0 {
		return nil
	}
	c.set(name, c.qty[name]-1)
	return nil
}

// SetVarietyQuantity sets one variety's quantity; negatives clamp to zero.
func (c *Card) SetVarietyQuantity(name string, n int) error {
	if err := c.checkVariety(name); err != nil {
		return err
	}
	if n < 0 {
		n = 0
	}
	c.set(name, n)
	return nil
}

func (c *Card) checkSimple() error {
	if !c.item.Active {
		return ErrUnavailable
	}
	if _, ok := c.varietied(); ok {
		return ErrVarietied
	}
	return nil
}

func (c *Card) checkVariety(name string) error {
	if !c.item.Active {
		return ErrUnavailable
	}
	v, ok := c.varietied()
	if !ok {
		return ErrNotVarietied
	}
	if _, ok := v.Variety(name); !ok {
		return fmt.Errorf("%w %q", ErrUnknownVariety, name)
	}
	return nil
}

func (c *Card) set(variety string, n int) {
	if n == 0 {
		delete(c.qty, variety)
	} else {
		c.qty[variety] = n
	}

	l := cart.Line{
		Key:         cart.LineKey{ItemID: c.item.ID, Variety: variety},
		Quantity:    n,
		DisplayName: c.item.Name,
	}
	if v, ok := c.varietied(); ok {
		vr, _ := v.Variety(variety)
		l.UnitPrice = vr.Price
		l.DisplayName = c.item.Name + " (" + vr.Name + ")"
	} else if c.item.Pricing != nil {
		l.UnitPrice = c.item.Pricing.DisplayPrice()
	}
	if c.sink != nil {
		c.sink.Update(l)
	}
}
