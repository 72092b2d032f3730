package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/thepoolshop/shopkeep/internal/product"
)

type productsState int

const (
	productsStateBrowse productsState = iota
	productsStateRestock
)

type ProductsModel struct {
	CommonModel
	productSvc *product.Service
	actor      string

	state    productsState
	table    table.Model
	products []*product.Product
	form     *huh.Form

	lowStockOnly bool
	loading      bool
	err          error
	status       string

	// Form bindings
	formQty  string
	formNote string
}

func NewProductsModel(productSvc *product.Service, actor string) ProductsModel {
	columns := []table.Column{
		{Title: "SKU", Width: 12},
		{Title: "Name", Width: 32},
		{Title: "Category", Width: 14},
		{Title: "Qty", Width: 6},
		{Title: "Price", Width: 10},
		{Title: "Stock", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ProductsModel{
		productSvc: productSvc,
		actor:      actor,
		table:      t,
	}
}

func (m ProductsModel) Title() string { return "Products" }
func (m ProductsModel) ShortHelp() string {
	if m.state == productsStateRestock {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: restock | l: low stock filter | r: refresh"
}

func (m ProductsModel) Init() tea.Cmd {
	return m.loadProductsCmd()
}

func (m ProductsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProductsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.products = msg.products
		m.refreshTable()

		return m, nil

	case restockMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Restocked %s to %d units", msg.name, msg.quantity)
		}

		m.state = productsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadProductsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case productsStateBrowse:
		return m.updateBrowse(msg)
	case productsStateRestock:
		return m.updateRestock(msg)
	}

	return m, nil
}

func (m ProductsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadProductsCmd()
		case "l":
			m.lowStockOnly = !m.lowStockOnly
			return m, m.loadProductsCmd()
		case "a":
			return m.enterRestockMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProductsModel) enterRestockMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return m, nil
	}

	m.formQty = ""
	m.formNote = "Restock"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("quantity").
				Title("Quantity to add").
				Value(&m.formQty).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number")
					}

					return nil
				}),

			huh.NewInput().
				Key("note").
				Title("Note").
				Value(&m.formNote),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = productsStateRestock
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProductsModel) updateRestock(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = productsStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.restockCmd()
}

func (m ProductsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading products...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	filterLabel := "All"
	if m.lowStockOnly {
		filterLabel = "Low stock"
	}

	header := fmt.Sprintf("Filter: [l] %s", activeStyle(filterLabel))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == productsStateRestock && m.form != nil {
		idx := m.table.Cursor()

		name := ""
		if idx >= 0 && idx < len(m.products) {
			name = m.products[idx].Name
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Restock\n\n%s\n\n%s", name, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func stockLabel(p *product.Product) string {
	switch {
	case p.Quantity == 0:
		return "OUT"
	case p.IsLowStock():
		return "LOW"
	default:
		return "OK"
	}
}

func (m *ProductsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		rows = append(rows, table.Row{
			p.SKU,
			p.Name,
			p.Category,
			strconv.Itoa(p.Quantity),
			FormatMoney(p.SellingPrice),
			stockLabel(p),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadProductsMsg struct {
	products []*product.Product
	err      error
}

func (m ProductsModel) loadProductsCmd() tea.Cmd {
	filter := product.ListFilter{LowStock: m.lowStockOnly}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := m.productSvc.List(ctx, filter)

		return loadProductsMsg{products: products, err: err}
	}
}

type restockMsg struct {
	name     string
	quantity int
	err      error
}

func (m ProductsModel) restockCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return nil
	}

	p := m.products[idx]
	qty, _ := strconv.Atoi(strings.TrimSpace(m.formQty))
	note := m.formNote

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.productSvc.AddStock(ctx, p.ID, qty, note, m.actor)
		if err != nil {
			return restockMsg{err: err}
		}

		return restockMsg{name: updated.Name, quantity: updated.Quantity}
	}
}
