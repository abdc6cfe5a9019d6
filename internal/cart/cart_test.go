package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(item, variety string, qty int, price string) Line {
	return Line{Key: LineKey{ItemID: item, Variety: variety}, Quantity: qty, UnitPrice: dec(price), DisplayName: item}
}

func assertTotals(t *testing.T, s Summary) {
	t.Helper()
	count := 0
	amount := decimal.Zero
	for _, l := range s.Lines {
		count += l.Quantity
		amount = amount.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	assert.Equal(t, count, s.TotalItemCount)
	assert.True(t, amount.Equal(s.TotalAmount), "amount %s != %s", amount, s.TotalAmount)
}

func TestUpdateTotals(t *testing.T) {
	c := New()

	steps := []Line{
		line("paneer", "", 1, "220"),
		line("paneer", "", 3, "220"),
		line("soup", "Small", 2, "90"),
		line("wings", "", 1, "260.50"),
		line("paneer", "", 0, "220"),
		line("soup", "Large", 1, "120"),
		line("wings", "", -4, "260.50"),
	}
	for _, l := range steps {
		assertTotals(t, c.Update(l))
	}

	s := c.Summary()
	assert.Equal(t, 3, s.TotalItemCount)
	assert.True(t, dec("300").Equal(s.TotalAmount))
}

func TestZeroRemovesLine(t *testing.T) {
	c := New()
	c.Update(line("paneer", "", 2, "220"))
	s := c.Update(line("paneer", "", 0, "220"))

	assert.Empty(t, s.Lines)
	assert.Equal(t, 0, s.TotalItemCount)
	assert.True(t, s.TotalAmount.IsZero())
	assert.Equal(t, 0, c.Quantity(LineKey{ItemID: "paneer"}))
}

func TestReAddUsesFreshPrice(t *testing.T) {
	c := New()
	c.Update(line("paneer", "", 2, "220"))
	c.Update(line("paneer", "", 0, "220"))
	s := c.Update(line("paneer", "", 1, "199"))

	require.Len(t, s.Lines, 1)
	assert.True(t, dec("199").Equal(s.Lines[0].UnitPrice))
	assert.True(t, dec("199").Equal(s.TotalAmount))
}

func TestNegativeClampsToZero(t *testing.T) {
	c := New()
	s := c.Update(line("paneer", "", -1, "220"))
	assert.Empty(t, s.Lines)
	assert.Equal(t, 0, s.TotalItemCount)
}

func TestVarietiesAreIndependentLines(t *testing.T) {
	c := New()
	c.Update(line("soup", "Small", 2, "90"))
	s := c.Update(line("soup", "Large", 0, "120"))

	require.Len(t, s.Lines, 1)
	assert.Equal(t, "soup::Small", s.Lines[0].Key.String())
	assert.True(t, dec("180").Equal(s.TotalAmount))
	assert.Equal(t, 0, c.Quantity(LineKey{ItemID: "soup", Variety: "Large"}))
}

func TestLinesKeepInsertionOrder(t *testing.T) {
	c := New()
	c.Update(line("a", "", 1, "1"))
	c.Update(line("b", "", 1, "1"))
	c.Update(line("c", "", 1, "1"))
	c.Update(line("a", "", 5, "1"))
	s := c.Update(line("b", "", 0, "1"))

	require.Len(t, s.Lines, 2)
	assert.Equal(t, "a", s.Lines[0].Key.ItemID)
	assert.Equal(t, 5, s.Lines[0].Quantity)
	assert.Equal(t, "c", s.Lines[1].Key.ItemID)
}

func TestSubscribeReceivesEveryUpdate(t *testing.T) {
	c := New()
	var got []int
	c.Subscribe(func(s Summary) { got = append(got, s.TotalItemCount) })

	c.Update(line("a", "", 1, "10"))
	c.Update(line("a", "", 2, "10"))
	c.Update(line("a", "", 0, "10"))
	c.Clear()

	assert.Equal(t, []int{1, 2, 0, 0}, got)
}

func TestSubscribeFromCallback(t *testing.T) {
	c := New()
	var late []int
	c.Subscribe(func(Summary) {
		c.Subscribe(func(s Summary) { late = append(late, s.TotalItemCount) })
	})

	c.Update(line("a", "", 1, "10"))
	assert.Empty(t, late, "subscriber added during delivery sees the next update")

	c.Update(line("a", "", 3, "10"))
	c.Clear()
	assert.Equal(t, []int{3, 0, 0}, late)
}

func TestLineKeyString(t *testing.T) {
	assert.Equal(t, "item-1", LineKey{ItemID: "item-1"}.String())
	assert.Equal(t, "item-1::Large", LineKey{ItemID: "item-1", Variety: "Large"}.String())
}
