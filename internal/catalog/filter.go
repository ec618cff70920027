package catalog

import (
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Search keeps products whose title, description or brand contains term,
// or which carry a tag containing it. Matching ignores case. A blank term
// returns the input unchanged.
func Search(products []domain.Product, term string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return products
	}

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matches(p, needle) {
			result = append(result, p)
		}
	}
	return result
}

func matches(p domain.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Filter keeps products of the requested category (when set) whose price
// lies within [MinPrice, MaxPrice].
func Filter(products []domain.Product, criteria domain.FilterCriteria) []domain.Product {
	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if criteria.Category != "" && p.Category != criteria.Category {
			continue
		}
		if p.Price.LessThan(criteria.MinPrice) {
			continue
		}
		if criteria.MaxPrice != nil && p.Price.GreaterThan(*criteria.MaxPrice) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// Apply composes Search and Filter in one pass over the catalog.
func Apply(products []domain.Product, criteria domain.FilterCriteria) []domain.Product {
	return Filter(Search(products, criteria.SearchTerm), criteria)
}

// Categories lists the distinct categories in first-seen order.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// PriceBounds returns the lowest and highest price. Both are zero for an
// empty catalog.
func PriceBounds(products []domain.Product) (decimal.Decimal, decimal.Decimal) {
	if len(products) == 0 {
		return decimal.Zero, decimal.Zero
	}
	lo, hi := products[0].Price, products[0].Price
	for _, p := range products[1:] {
		lo = decimal.Min(lo, p.Price)
		hi = decimal.Max(hi, p.Price)
	}
	return lo, hi
}
