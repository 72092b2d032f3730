package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/internal/auth"
	"github.com/thepoolshop/shopkeep/internal/config"
	"github.com/thepoolshop/shopkeep/internal/customer"
	customerStore "github.com/thepoolshop/shopkeep/internal/customer/store"
	"github.com/thepoolshop/shopkeep/internal/database"
	shopHTTP "github.com/thepoolshop/shopkeep/internal/http"
	customerHandler "github.com/thepoolshop/shopkeep/internal/http/customer"
	importHandler "github.com/thepoolshop/shopkeep/internal/http/importcsv"
	invoiceHandler "github.com/thepoolshop/shopkeep/internal/http/invoice"
	productHandler "github.com/thepoolshop/shopkeep/internal/http/product"
	reportHandler "github.com/thepoolshop/shopkeep/internal/http/report"
	sessionHandler "github.com/thepoolshop/shopkeep/internal/http/session"
	"github.com/thepoolshop/shopkeep/internal/importer"
	"github.com/thepoolshop/shopkeep/internal/invoice"
	invoiceStore "github.com/thepoolshop/shopkeep/internal/invoice/store"
	"github.com/thepoolshop/shopkeep/internal/ledger"
	ledgerStore "github.com/thepoolshop/shopkeep/internal/ledger/store"
	"github.com/thepoolshop/shopkeep/internal/product"
	productStore "github.com/thepoolshop/shopkeep/internal/product/store"
	"github.com/thepoolshop/shopkeep/internal/report"
	reportStore "github.com/thepoolshop/shopkeep/internal/report/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	taxRate, err := decimal.NewFromString(cfg.Invoice.TaxRate)
	if err != nil {
		slog.Error("invalid tax rate", "value", cfg.Invoice.TaxRate, "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		authService     = auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.AdminUser, cfg.Auth.AdminPassword, cfg.Auth.TokenTTL, nil)
		productService  = product.NewService(productStore.New(db))
		ledgerService   = ledger.NewService(ledgerStore.New(db))
		customerService = customer.NewService(customerStore.New(db))
		invoiceService  = invoice.NewService(invoiceStore.New(db), productService, taxRate, nil)
		reportService   = report.NewService(reportStore.New(db), nil)
		importService   = importer.NewService(productService)
	)

	var (
		sessionH  = sessionHandler.NewHandler(authService)
		productH  = productHandler.NewHandler(productService, ledgerService)
		customerH = customerHandler.NewHandler(customerService)
		invoiceH  = invoiceHandler.NewHandler(invoiceService, invoiceHandler.Shop{
			Name:    cfg.Shop.Name,
			Address: cfg.Shop.Address,
			Phone:   cfg.Shop.Phone,
			Email:   cfg.Shop.Email,
		})
		reportH = reportHandler.NewHandler(reportService)
		importH = importHandler.NewHandler(importService)
	)

	router := shopHTTP.New(authService, cfg.Server.AllowedOrigins,
		sessionH, productH, customerH, invoiceH, reportH, importH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * time.Minute,
	}

	slog.Info("starting server", "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
