package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/thepoolshop/shopkeep/internal/invoice"
)

type invoicesState int

const (
	invoicesStateBrowse invoicesState = iota
	invoicesStateConfirm
)

type InvoicesModel struct {
	CommonModel
	invoiceSvc *invoice.Service
	actor      string

	state    invoicesState
	table    table.Model
	invoices []*invoice.Invoice
	form     *huh.Form

	draftsOnly bool
	loading    bool
	err        error
	status     string

	formConfirm bool
}

func NewInvoicesModel(invoiceSvc *invoice.Service, actor string) InvoicesModel {
	columns := []table.Column{
		{Title: "Number", Width: 18},
		{Title: "Date", Width: 12},
		{Title: "Customer", Width: 24},
		{Title: "Status", Width: 8},
		{Title: "Total", Width: 10},
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

	return InvoicesModel{
		invoiceSvc: invoiceSvc,
		actor:      actor,
		table:      t,
	}
}

func (m InvoicesModel) Title() string { return "Invoices" }
func (m InvoicesModel) ShortHelp() string {
	if m.state == invoicesStateConfirm {
		return "Confirm | Esc: cancel"
	}

	return "Esc: back | f: finalize & pay | d: drafts filter | r: refresh"
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.loadInvoicesCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case finalizeMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Invoice %s paid", msg.number)
		}

		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadInvoicesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case invoicesStateBrowse:
		return m.updateBrowse(msg)
	case invoicesStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadInvoicesCmd()
		case "d":
			m.draftsOnly = !m.draftsOnly
			return m, m.loadInvoicesCmd()
		case "f":
			return m.enterConfirmMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoicesModel) enterConfirmMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return m, nil
	}

	inv := m.invoices[idx]
	if inv.Status == invoice.StatusPaid {
		m.status = fmt.Sprintf("Invoice %s is already paid", inv.Number)
		return m, nil
	}

	m.formConfirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Finalize %s for %s?", inv.Number, FormatMoney(inv.TotalAmount))).
				Description("Stock will be decremented and the invoice marked paid.").
				Value(&m.formConfirm),
		),
	).WithWidth(52).WithShowHelp(false)

	m.state = invoicesStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoicesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = invoicesStateBrowse
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

	if !m.formConfirm {
		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.finalizeCmd()
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	filterLabel := "All"
	if m.draftsOnly {
		filterLabel = "Drafts"
	}

	header := fmt.Sprintf("Filter: [d] %s", activeStyle(filterLabel))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == invoicesStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(56).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *InvoicesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		customer := inv.CustomerName
		if customer == "" {
			customer = "Walk-in"
		}

		rows = append(rows, table.Row{
			inv.Number,
			FormatDate(inv.CreatedAt),
			customer,
			string(inv.Status),
			FormatMoney(inv.TotalAmount),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoicesModel) loadInvoicesCmd() tea.Cmd {
	filter := invoice.ListFilter{}
	if m.draftsOnly {
		st := invoice.StatusDraft
		filter.Status = &st
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invoices, err := m.invoiceSvc.List(ctx, filter)

		return loadInvoicesMsg{invoices: invoices, err: err}
	}
}

type finalizeMsg struct {
	number string
	err    error
}

func (m InvoicesModel) finalizeCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return nil
	}

	id := m.invoices[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.invoiceSvc.FinalizeAndPay(ctx, id, m.actor)
		if err != nil {
			return finalizeMsg{err: err}
		}

		return finalizeMsg{number: inv.Number}
	}
}
