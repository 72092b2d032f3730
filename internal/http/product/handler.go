package product

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/auth"
	"github.com/thepoolshop/shopkeep/internal/http/respond"
	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/product"
)

type Handler struct {
	svc     *product.Service
	history *ledger.Service
}

func NewHandler(svc *product.Service, history *ledger.Service) *Handler {
	return &Handler{svc: svc, history: history}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/categories", h.categories)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.deactivate)
	r.Get("/{id}/history", h.stockHistory)
	r.Post("/{id}/stock/add", h.addStock)
	r.Post("/{id}/stock/remove", h.removeStock)
	r.Post("/{id}/stock/set", h.setStock)
}

type createProductRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.Create(r.Context(), product.CreateParams{
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Quantity:          req.Quantity,
		CostPrice:         req.CostPrice,
		SellingPrice:      req.SellingPrice,
		LowStockThreshold: req.LowStockThreshold,
	}, auth.Actor(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := product.ListFilter{
		Search:          q.Get("search"),
		Category:        q.Get("category"),
		LowStock:        q.Get("low_stock") == "true",
		OutOfStock:      q.Get("out_of_stock") == "true",
		IncludeInactive: q.Get("include_inactive") == "true",
	}

	products, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(products))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, categories)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

type updateProductRequest struct {
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Category          *string          `json:"category,omitempty"`
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}

	if req.Description != nil {
		p.Description = *req.Description
	}

	if req.Category != nil {
		p.Category = *req.Category
	}

	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}

	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}

	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}

	if err := h.svc.Update(r.Context(), p); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stockHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entries, err := h.history.History(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toEntryResponseList(entries))
}

type stockChangeRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

type stockOp func(r *http.Request, id uuid.UUID, req stockChangeRequest) (*product.Product, error)

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
	h.stockChange(w, r, func(r *http.Request, id uuid.UUID, req stockChangeRequest) (*product.Product, error) {
		return h.svc.AddStock(r.Context(), id, req.Quantity, req.Note, auth.Actor(r.Context()))
	})
}

func (h *Handler) removeStock(w http.ResponseWriter, r *http.Request) {
	h.stockChange(w, r, func(r *http.Request, id uuid.UUID, req stockChangeRequest) (*product.Product, error) {
		return h.svc.RemoveStock(r.Context(), id, req.Quantity, req.Note, auth.Actor(r.Context()))
	})
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	h.stockChange(w, r, func(r *http.Request, id uuid.UUID, req stockChangeRequest) (*product.Product, error) {
		return h.svc.SetStock(r.Context(), id, req.Quantity, req.Note, auth.Actor(r.Context()))
	})
}

func (h *Handler) stockChange(w http.ResponseWriter, r *http.Request, op stockOp) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req stockChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := op(r, id, req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}
