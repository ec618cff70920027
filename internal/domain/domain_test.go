package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotal(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{ProductID: "1", Price: decimal.NewFromInt(20), Quantity: 2},
		{ProductID: "2", Price: decimal.RequireFromString("0.335"), Quantity: 1},
	}}

	assert.Equal(t, "40.34", FormatMoney(c.Total()))
	assert.False(t, c.IsEmpty())
	assert.True(t, Cart{}.IsEmpty())
	assert.Equal(t, "0.00", FormatMoney(Cart{}.Total()))
}

func TestLineTotal(t *testing.T) {
	l := CartLine{Price: decimal.RequireFromString("19.99"), Quantity: 3}
	assert.True(t, l.LineTotal().Equal(decimal.RequireFromString("59.97")))
}

func TestProduct(t *testing.T) {
	p := Product{ID: "1"}
	assert.Equal(t, PlaceholderThumbnail, p.ThumbnailOrPlaceholder())
	assert.False(t, p.InStock())

	p.Thumbnail = "https://cdn.example/1.png"
	p.Stock = 1
	assert.Equal(t, "https://cdn.example/1.png", p.ThumbnailOrPlaceholder())
	assert.True(t, p.InStock())
}
