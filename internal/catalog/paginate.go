package catalog

import (
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// DefaultItemsPerPage is used when no page size was chosen.
const DefaultItemsPerPage = 10

var ErrInvalidPageSize = errors.New("items per page must be positive")

// Paginate returns the products of the 1-based page. Out of range pages
// yield an empty slice.
func Paginate(products []domain.Product, page, pageSize int) []domain.Product {
	if page < 1 || pageSize < 1 || len(products) == 0 {
		return []domain.Product{}
	}
	// Compare before multiplying so huge pages cannot wrap around.
	if page-1 > (len(products)-1)/pageSize {
		return []domain.Product{}
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(products)-start)
	return products[start:end]
}

// PageCount is ceil(total/pageSize).
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

type PageState struct {
	CurrentPage  int
	ItemsPerPage int
}

func NewPageState(itemsPerPage int) PageState {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return PageState{CurrentPage: 1, ItemsPerPage: itemsPerPage}
}

func (s PageState) TotalPages(total int) int {
	return PageCount(total, s.ItemsPerPage)
}

// SetItemsPerPage changes the page size and goes back to the first page.
func (s *PageState) SetItemsPerPage(n int) error {
	if n < 1 {
		return ErrInvalidPageSize
	}
	s.ItemsPerPage = n
	s.CurrentPage = 1
	return nil
}

// GoTo moves to page, clamped into [1, max(1, TotalPages(total))].
func (s *PageState) GoTo(page, total int) {
	last := max(1, s.TotalPages(total))
	s.CurrentPage = min(max(page, 1), last)
}

func (s *PageState) Next(total int) {
	s.GoTo(s.CurrentPage+1, total)
}

func (s *PageState) Prev(total int) {
	s.GoTo(s.CurrentPage-1, total)
}

// Page slices products according to the current state.
func (s PageState) Page(products []domain.Product) []domain.Product {
	return Paginate(products, s.CurrentPage, s.ItemsPerPage)
}
