package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/productsource"
	"github.com/fjod/go_cart/storefront/internal/storefront"
	"github.com/fjod/go_cart/storefront/internal/view"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type responder struct {
	logger *zap.Logger
}

func (rs responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (rs responder) respondError(w http.ResponseWriter, status int, code, message string) {
	rs.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps storefront errors to HTTP status codes.
func (rs responder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var httpStatus int
	var code string
	var fetchErr *productsource.FetchError

	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		httpStatus, code = http.StatusConflict, "out_of_stock"
	case errors.Is(err, cart.ErrEmptyCart):
		httpStatus, code = http.StatusConflict, "empty_cart"
	case errors.Is(err, cart.ErrCheckedOut):
		httpStatus, code = http.StatusConflict, "checked_out"
	case errors.Is(err, view.ErrCardIdle):
		httpStatus, code = http.StatusConflict, "card_idle"
	case errors.Is(err, storefront.ErrProductNotFound), errors.Is(err, cart.ErrLineNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrInvalidPageSize), errors.Is(err, cart.ErrInvalidQuantity):
		httpStatus, code = http.StatusBadRequest, "invalid_argument"
	case errors.As(err, &fetchErr):
		httpStatus, code = http.StatusServiceUnavailable, "catalog_unavailable"
	default:
		rs.logger.Error("unhandled error",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err))
		rs.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	rs.respondError(w, httpStatus, code, err.Error())
}
