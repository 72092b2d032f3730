package report

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thepoolshop/shopkeep/internal/http/respond"
	"github.com/thepoolshop/shopkeep/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/sales", h.sales)
	r.Get("/stock", h.stock)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDashboardResponse(d))
}

// sales defaults to the last 7 days when no period is given.
func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	end := time.Now()
	start := end.AddDate(0, 0, -7)

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			start = t
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			// Include the whole end day.
			end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}

	rep, err := h.svc.Sales(r.Context(), start, end)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if r.URL.Query().Get("export") == "csv" {
		writeCSV(w, fmt.Sprintf("sales_%s.csv", end.Format("20060102")), func(w http.ResponseWriter) error {
			return report.WriteSalesCSV(w, rep)
		})

		return
	}

	respond.JSON(w, http.StatusOK, toSalesResponse(rep))
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Stock(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	if r.URL.Query().Get("export") == "csv" {
		writeCSV(w, fmt.Sprintf("stock_%s.csv", time.Now().Format("20060102")), func(w http.ResponseWriter) error {
			return report.WriteStockCSV(w, rep)
		})

		return
	}

	respond.JSON(w, http.StatusOK, toStockResponse(rep))
}

func writeCSV(w http.ResponseWriter, filename string, write func(http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := write(w); err != nil {
		respond.Error(w, err)
	}
}
