package domain

import "github.com/shopspring/decimal"

// PlaceholderThumbnail is shown for products that come without an image.
const PlaceholderThumbnail = "https://via.placeholder.com/150"

type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Brand       string
	Rating      float64
	Thumbnail   string
	Tags        []string
}

func (p Product) ThumbnailOrPlaceholder() string {
	if p.Thumbnail == "" {
		return PlaceholderThumbnail
	}
	return p.Thumbnail
}

func (p Product) InStock() bool {
	return p.Stock > 0
}
