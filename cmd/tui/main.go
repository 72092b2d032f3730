package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/thepoolshop/shopkeep/cmd/tui/internal/view"
	"github.com/thepoolshop/shopkeep/internal/config"
	"github.com/thepoolshop/shopkeep/internal/database"
	"github.com/thepoolshop/shopkeep/internal/invoice"
	invoiceStore "github.com/thepoolshop/shopkeep/internal/invoice/store"
	"github.com/thepoolshop/shopkeep/internal/product"
	productStore "github.com/thepoolshop/shopkeep/internal/product/store"
)

type model struct {
	productService *product.Service
	invoiceService *invoice.Service
	actor          string

	currentView View

	productsView view.ProductsModel
	invoicesView view.InvoicesModel
}

type View int

const (
	ViewMenu     View = 0
	ViewProducts View = 1
	ViewInvoices View = 2
)

func initialModel() model {
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

	productSvc := product.NewService(productStore.New(db))
	invoiceSvc := invoice.NewService(invoiceStore.New(db), productSvc, taxRate, nil)
	actor := cfg.Auth.AdminUser

	return model{
		productService: productSvc,
		invoiceService: invoiceSvc,
		actor:          actor,
		currentView:    ViewMenu,
		productsView:   view.NewProductsModel(productSvc, actor),
		invoicesView:   view.NewInvoicesModel(invoiceSvc, actor),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewProducts
				m.productsView = view.NewProductsModel(m.productService, m.actor)

				return m, m.productsView.Init()
			case "2":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.invoiceService, m.actor)

				return m, m.invoicesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewProducts:
		var newModel tea.Model
		newModel, cmd = m.productsView.Update(msg)
		m.productsView = newModel.(view.ProductsModel)
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Shopkeep TUI\n\n" +
				"1. Products & Stock\n" +
				"2. Invoices\n\n" +
				"q. Quit",
		)
	case ViewProducts:
		return m.productsView.View()
	case ViewInvoices:
		return m.invoicesView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
