// Package respond maps domain errors to HTTP responses so every handler
// returns the same status for the same failure.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/thepoolshop/shopkeep/internal/customer"
	"github.com/thepoolshop/shopkeep/internal/invoice"
	"github.com/thepoolshop/shopkeep/internal/product"
)

// JSON writes v as an application/json response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Product   string `json:"product,omitempty"`
	Available int    `json:"available,omitempty"`
	Requested int    `json:"requested,omitempty"`
}

// Error writes err with the status its kind maps to. Unknown errors are
// logged and reported as a plain 500.
func Error(w http.ResponseWriter, err error) {
	var validationErr *product.ValidationError
	if errors.As(err, &validationErr) {
		JSON(w, http.StatusBadRequest, errorResponse{
			Error: validationErr.Error(),
			Field: validationErr.Field,
		})

		return
	}

	var stockErr *product.InsufficientStockError
	if errors.As(err, &stockErr) {
		JSON(w, http.StatusConflict, errorResponse{
			Error:     stockErr.Error(),
			Product:   stockErr.Name,
			Available: stockErr.Available,
			Requested: stockErr.Requested,
		})

		return
	}

	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, invoice.ErrNotFound),
		errors.Is(err, invoice.ErrItemNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, product.ErrDuplicateSKU),
		errors.Is(err, invoice.ErrNumberTaken),
		errors.Is(err, invoice.ErrInvoicePaid):
		JSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, invoice.ErrNoItems),
		errors.Is(err, invoice.ErrInvalidQuantity):
		JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
