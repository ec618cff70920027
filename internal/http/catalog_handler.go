package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Shop is the storefront surface the handlers drive.
type Shop interface {
	Refresh(ctx context.Context) error
	Available() bool
	SetCriteria(criteria domain.FilterCriteria)
	SetItemsPerPage(n int) error
	GoToPage(page int) int
	NextPage() int
	PrevPage() int
	CatalogView() view.CatalogView

	SelectProduct(id string) error
	AdjustSelection(id string, delta int) (int, error)
	ConfirmSelection(ctx context.Context, id string) error

	IncreaseLine(ctx context.Context, id string) error
	DecreaseLine(ctx context.Context, id string) error
	ClearCart(ctx context.Context)
	Checkout(ctx context.Context) error
	ToggleCart() bool
	CartView() view.CartView
}

type SelectionResponse struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type CatalogHandler struct {
	responder
	shop    Shop
	timeout time.Duration
}

func NewCatalogHandler(shop Shop, timeout time.Duration, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		responder: responder{logger: logger},
		shop:      shop,
		timeout:   timeout,
	}
}

// GetCatalog applies the query string to the view state and returns the
// resulting page. Parameters that are absent leave the state as it was.
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Search and filter settings
	if hasAny(q.Has, "search", "category", "min", "max") {
		criteria, err := parseCriteria(q.Get)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
			return
		}
		h.shop.SetCriteria(criteria)
	}

	// Page size first, it resets the page
	if q.Has("per_page") {
		n, err := strconv.Atoi(q.Get("per_page"))
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_argument", "per_page must be an integer")
			return
		}
		if err := h.shop.SetItemsPerPage(n); err != nil {
			h.handleError(w, r, err)
			return
		}
	}

	// Page number, clamped by the storefront
	if q.Has("page") {
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_argument", "page must be an integer")
			return
		}
		h.shop.GoToPage(page)
	}

	h.respondCatalog(w)
}

func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// Fetch the catalog again
	if err := h.shop.Refresh(ctx); err != nil {
		h.respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, h.shop.CatalogView())
}

func (h *CatalogHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	h.shop.NextPage()
	h.respondCatalog(w)
}

func (h *CatalogHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	h.shop.PrevPage()
	h.respondCatalog(w)
}

func (h *CatalogHandler) respondCatalog(w http.ResponseWriter) {
	if !h.shop.Available() {
		h.respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", "catalog is not available")
		return
	}
	h.respondJSON(w, http.StatusOK, h.shop.CatalogView())
}

func (h *CatalogHandler) Select(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.shop.SelectProduct(id); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, SelectionResponse{ID: id, Quantity: 1})
}

func (h *CatalogHandler) Increase(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, 1)
}

func (h *CatalogHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, -1)
}

func (h *CatalogHandler) adjust(w http.ResponseWriter, r *http.Request, delta int) {
	id := chi.URLParam(r, "id")
	q, err := h.shop.AdjustSelection(id, delta)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, SelectionResponse{ID: id, Quantity: q})
}

func (h *CatalogHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// Card goes back to idle whatever the result
	if err := h.shop.ConfirmSelection(ctx, chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, h.shop.CartView())
}

func hasAny(has func(string) bool, keys ...string) bool {
	for _, k := range keys {
		if has(k) {
			return true
		}
	}
	return false
}

// parseCriteria builds criteria from the query. Absent bounds mean no bound.
func parseCriteria(get func(string) string) (domain.FilterCriteria, error) {
	c := domain.FilterCriteria{
		SearchTerm: get("search"),
		Category:   get("category"),
	}
	if s := get("min"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return c, errInvalidPrice("min", s)
		}
		c.MinPrice = d
	}
	if s := get("max"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return c, errInvalidPrice("max", s)
		}
		c.MaxPrice = &d
	}
	return c, nil
}

func errInvalidPrice(param, value string) error {
	return fmt.Errorf("%s: %q is not a valid price", param, value)
}
