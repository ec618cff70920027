package domain

import "github.com/shopspring/decimal"

// FilterCriteria narrows the catalog. A nil MaxPrice means no upper bound.
type FilterCriteria struct {
	SearchTerm string
	Category   string
	MinPrice   decimal.Decimal
	MaxPrice   *decimal.Decimal
}
