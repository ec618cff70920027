package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartHandler struct {
	responder
	shop    Shop
	timeout time.Duration
}

func NewCartHandler(shop Shop, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		responder: responder{logger: logger},
		shop:      shop,
		timeout:   timeout,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.shop.CartView())
}

func (h *CartHandler) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context) error {
		return h.shop.IncreaseLine(ctx, chi.URLParam(r, "id"))
	})
}

func (h *CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context) error {
		return h.shop.DecreaseLine(ctx, chi.URLParam(r, "id"))
	})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context) error {
		h.shop.ClearCart(ctx)
		return nil
	})
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.shop.Checkout)
}

func (h *CartHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.shop.ToggleCart()
	h.respondJSON(w, http.StatusOK, h.shop.CartView())
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// Run the cart operation
	if err := op(ctx); err != nil {
		h.handleError(w, r, err)
		return
	}

	// Respond with the re-rendered cart
	h.respondJSON(w, http.StatusOK, h.shop.CartView())
}
