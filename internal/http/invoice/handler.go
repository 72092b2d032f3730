package invoice

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/auth"
	"github.com/thepoolshop/shopkeep/internal/http/respond"
	"github.com/thepoolshop/shopkeep/internal/invoice"
)

// Shop is the identity block printed on receipts.
type Shop struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

type Handler struct {
	svc  *invoice.Service
	shop Shop
}

func NewHandler(svc *invoice.Service, shop Shop) *Handler {
	return &Handler{svc: svc, shop: shop}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Get("/{id}/receipt", h.receipt)
	r.Post("/{id}/items", h.addItem)
	r.Delete("/{id}/items/{itemID}", h.removeItem)
	r.Post("/{id}/finalize", h.finalize)
}

type itemRequest struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type createInvoiceRequest struct {
	CustomerID *uuid.UUID       `json:"customer_id,omitempty"`
	Notes      string           `json:"notes"`
	TaxRate    *decimal.Decimal `json:"tax_rate,omitempty"`
	Items      []itemRequest    `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items := make([]invoice.ItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoice.ItemParams{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		CustomerID: req.CustomerID,
		Notes:      req.Notes,
		TaxRate:    req.TaxRate,
		Items:      items,
	}, auth.Actor(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{
		Search: r.URL.Query().Get("search"),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		st := invoice.Status(s)
		filter.Status = &st
	}

	invoices, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invoices))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, summaryResponse{
		PaidCount:    sum.PaidCount,
		UnpaidCount:  sum.UnpaidCount,
		TotalRevenue: sum.TotalRevenue,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, receiptResponse{
		Shop: shopResponse{
			Name:    h.shop.Name,
			Address: h.shop.Address,
			Phone:   h.shop.Phone,
			Email:   h.shop.Email,
		},
		Invoice: toResponse(inv),
	})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.AddItem(r.Context(), id, invoice.ItemParams{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.FinalizeAndPay(r.Context(), id, auth.Actor(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}
