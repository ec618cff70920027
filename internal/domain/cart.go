package domain

import "github.com/shopspring/decimal"

// CartLine is one entry of the cart. Title and Price are copied from the
// product when the line is created and are not re-synced afterwards.
type CartLine struct {
	ProductID  string
	Title      string
	Price      decimal.Decimal
	Quantity   int
	CheckedOut bool
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Lines []CartLine
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total sums the line totals, each rounded to cents first.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal().Round(2))
	}
	return total.Round(2)
}

// FormatMoney renders an amount with exactly two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
