package view

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const EmptyCartPlaceholder = "Your cart is empty."

type CartLineView struct {
	ProductID   string `json:"id"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Total       string `json:"total"`
	CheckedOut  bool   `json:"checkedOut"`
	CanDecrease bool   `json:"canDecrease"`
	CanIncrease bool   `json:"canIncrease"`
}

type CartView struct {
	Lines       []CartLineView `json:"lines"`
	ItemCount   int            `json:"itemCount"`
	GrandTotal  string         `json:"grandTotal"`
	Empty       bool           `json:"empty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Visible     bool           `json:"visible"`
}

// StockLookup reports the current stock of a product, if it is still in
// the catalog.
type StockLookup func(productID string) (int, bool)

// RenderCart projects cart lines into display rows. Checked out lines are
// read-only; increase is offered only while the line is below the live stock.
func RenderCart(lines []domain.CartLine, stockOf StockLookup, visible bool) CartView {
	v := CartView{
		Lines:      make([]CartLineView, 0, len(lines)),
		GrandTotal: domain.FormatMoney(decimal.Zero),
		Visible:    visible,
	}
	if len(lines) == 0 {
		v.Empty = true
		v.Placeholder = EmptyCartPlaceholder
		return v
	}

	total := decimal.Zero
	for _, l := range lines {
		lineTotal := l.LineTotal().Round(2)
		total = total.Add(lineTotal)

		row := CartLineView{
			ProductID:  l.ProductID,
			Title:      l.Title,
			Price:      domain.FormatMoney(l.Price),
			Quantity:   l.Quantity,
			Total:      domain.FormatMoney(lineTotal),
			CheckedOut: l.CheckedOut,
		}
		if !l.CheckedOut {
			row.CanDecrease = true
			if stockOf != nil {
				if stock, ok := stockOf(l.ProductID); ok {
					row.CanIncrease = l.Quantity < stock
				}
			}
		}
		v.Lines = append(v.Lines, row)
		v.ItemCount += l.Quantity
	}
	v.GrandTotal = domain.FormatMoney(total)
	return v
}
