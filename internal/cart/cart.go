// Package cart tallies the quantities a diner has picked on a menu page.
package cart

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

// LineKey identifies one quantity counter: an item, or one variety of an item.
type LineKey struct {
	ItemID  string `json:"item_id"`
	Variety string `json:"variety,omitempty"`
}

func (k LineKey) String() string {
	if k.Variety == "" {
		return k.ItemID
	}
	return k.ItemID + "::" + k.Variety
}

// Line is one cart entry.
type Line struct {
	Key         LineKey         `json:"key"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DisplayName string          `json:"display_name"`
}

// Amount is Quantity × UnitPrice.
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Summary is a snapshot of the cart with its derived totals.
type Summary struct {
	Lines          []Line          `json:"lines"`
	TotalItemCount int             `json:"total_item_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// Cart maps line keys to quantities. Lines with quantity zero are removed,
// never kept.
type Cart struct {
	mu          sync.Mutex
	lines       map[LineKey]Line
	order       []LineKey
	subscribers []func(Summary)
}

func New() *Cart {
	return &Cart{lines: make(map[LineKey]Line)}
}

// Subscribe registers fn to receive the summary after every update.
func (c *Cart) Subscribe(fn func(Summary)) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Update sets the quantity of one line. Negative quantities are clamped to
// zero; zero removes the line; a positive quantity inserts or replaces it.
// Totals are recomputed from every line on each call.
func (c *Cart) Update(l Line) Summary {
	c.mu.Lock()
	if l.Quantity < 0 {
		l.Quantity = 0
	}
	_, exists := c.lines[l.Key]
	switch {
	case l.Quantity == 0 && exists:
		delete(c.lines, l.Key)
		c.removeFromOrder(l.Key)
	case l.Quantity > 0:
		if !exists {
			c.order = append(c.order, l.Key)
		}
		c.lines[l.Key] = l
	}
	sum := c.summaryLocked()
	subs := slices.Clone(c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(sum)
	}
	return sum
}

// Quantity returns the current quantity for key, zero if absent.
func (c *Cart) Quantity(key LineKey) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines[key].Quantity
}

// Summary returns the current cart snapshot.
func (c *Cart) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaryLocked()
}

// Clear empties the cart and notifies subscribers.
func (c *Cart) Clear() Summary {
	c.mu.Lock()
	c.lines = make(map[LineKey]Line)
	c.order = nil
	sum := c.summaryLocked()
	subs := slices.Clone(c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(sum)
	}
	return sum
}

func (c *Cart) removeFromOrder(key LineKey) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cart) summaryLocked() Summary {
	sum := Summary{Lines: make([]Line, 0, len(c.order)), TotalAmount: decimal.Zero}
	for _, k := range c.order {
		l := c.lines[k]
		sum.Lines = append(sum.Lines, l)
		sum.TotalItemCount += l.Quantity
		sum.TotalAmount = sum.TotalAmount.Add(l.Amount())
	}
	return sum
}
