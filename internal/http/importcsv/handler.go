package importcsv

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/auth"
	"github.com/thepoolshop/shopkeep/internal/http/respond"
	"github.com/thepoolshop/shopkeep/internal/importer"
	"github.com/thepoolshop/shopkeep/internal/product"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.parse)
	r.Post("/confirm", h.confirm)
}

type rowDTO struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type parseResponse struct {
	Rows []rowDTO `json:"rows"`
}

type confirmRequest struct {
	Rows []rowDTO `json:"rows"`
}

type rowErrorDTO struct {
	SKU    string `json:"sku"`
	Reason string `json:"reason"`
}

type confirmResponse struct {
	Created int           `json:"created"`
	Failed  []rowErrorDTO `json:"failed,omitempty"`
}

// parse reads the uploaded price list and returns the rows for review.
// Nothing is persisted until the client posts the reviewed rows back to
// confirm.
func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := h.svc.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := parseResponse{Rows: make([]rowDTO, 0, len(rows))}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, toRowDTO(row))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	rows := make([]product.CreateParams, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, product.CreateParams{
			SKU:               row.SKU,
			Name:              row.Name,
			Category:          row.Category,
			Quantity:          row.Quantity,
			CostPrice:         row.CostPrice,
			SellingPrice:      row.SellingPrice,
			LowStockThreshold: row.LowStockThreshold,
		})
	}

	result, err := h.svc.Confirm(r.Context(), rows, auth.Actor(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := confirmResponse{Created: result.Created}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, rowErrorDTO{SKU: f.SKU, Reason: f.Reason})
	}

	respond.JSON(w, http.StatusCreated, resp)
}

func toRowDTO(p product.CreateParams) rowDTO {
	return rowDTO{
		SKU:               p.SKU,
		Name:              p.Name,
		Category:          p.Category,
		Quantity:          p.Quantity,
		CostPrice:         p.CostPrice,
		SellingPrice:      p.SellingPrice,
		LowStockThreshold: p.LowStockThreshold,
	}
}
