package customer

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/customer"
	"github.com/thepoolshop/shopkeep/internal/http/respond"
)

type Handler struct {
	svc *customer.Service
}

func NewHandler(svc *customer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type customerResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Address      string          `json:"address,omitempty"`
	InvoiceCount int             `json:"invoice_count"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toResponse(c *customer.Customer) customerResponse {
	return customerResponse{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		InvoiceCount: c.InvoiceCount,
		TotalSpent:   c.TotalSpent,
		CreatedAt:    c.CreatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), customer.CreateParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = toResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if req.Name != "" {
		c.Name = req.Name
	}

	c.Email = req.Email
	c.Phone = req.Phone
	c.Address = req.Address

	if err := h.svc.Update(r.Context(), c); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
