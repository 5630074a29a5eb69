// Package tui provides a terminal UI using bubbletea
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xinguang/stockdeck/pkg/model"
	"github.com/xinguang/stockdeck/pkg/tracker"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("78")).
		Background(lipgloss.Color("236")).
		Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// refreshDoneMsg signals that a refresh attempt has resolved.
type refreshDoneMsg struct{}

// AppModel represents the TUI state. It is strictly reactive: it reads
// tracker snapshots and triggers refreshes, nothing else.
type AppModel struct {
	tracker *tracker.Tracker
	table   table.Model
	spin    spinner.Model
	width   int
	height  int
	ready   bool
}

// NewAppModel creates a new TUI model over the tracker.
func NewAppModel(tr *tracker.Tracker) *AppModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	tbl := table.New(
		table.WithColumns(stockColumns(60)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).BorderBottom(true)
	st.Selected = st.Selected.Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	tbl.SetStyles(st)

	m := &AppModel{
		tracker: tr,
		table:   tbl,
		spin:    sp,
	}
	m.reloadRows()
	return m
}

// Init implements tea.Model
func (m *AppModel) Init() tea.Cmd {
	return m.spin.Tick
}

// Update implements tea.Model
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			// The tracker flips to Waiting synchronously, so the very next
			// render shows the in-flight state.
			done := m.tracker.Refresh(context.Background())
			return m, func() tea.Msg {
				<-done
				return refreshDoneMsg{}
			}
		}

	case refreshDoneMsg:
		m.reloadRows()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(stockColumns(m.width))
		m.table.SetHeight(maxInt(3, m.height-4))
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m *AppModel) View() string {
	if !m.ready {
		return "loading..."
	}

	title := titleStyle.Render("stockdeck") + helpStyle.Render(
		fmt.Sprintf("updated %s", m.tracker.LastUpdateDisplay()))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.table.View(),
		m.statusLine(),
		helpStyle.Render("r refresh • q quit"),
	)
}

func (m *AppModel) statusLine() string {
	st := m.tracker.Status()
	switch st.Phase {
	case tracker.PhaseWaiting:
		return statusStyle.Render(fmt.Sprintf("%s fetching…", m.spin.View()))
	case tracker.PhaseSucceeded:
		return okStyle.Render(fmt.Sprintf("✓ %d stocks in %s",
			len(st.Symbols), st.Elapsed.Round(time.Millisecond)))
	case tracker.PhaseFailed:
		return failedStyle.Render("✗ " + st.Message)
	default:
		return statusStyle.Render("press r to refresh")
	}
}

func (m *AppModel) reloadRows() {
	stocks := m.tracker.Stocks()
	rows := make([]table.Row, 0, len(stocks))
	for _, s := range stocks {
		rows = append(rows, stockRow(s))
	}
	m.table.SetRows(rows)
}

func stockRow(s model.TrackedStock) table.Row {
	price := "—"
	change := ""
	if cur, ok := s.CurrentPrice(); ok {
		price = "$" + cur.StringFixed(2)
		if n := len(s.History); n >= 2 {
			delta := cur.Sub(s.History[n-2].Amount)
			switch delta.Sign() {
			case 1:
				change = upStyle.Render("▲ " + delta.StringFixed(2))
			case -1:
				change = downStyle.Render("▼ " + delta.Abs().StringFixed(2))
			default:
				change = "= 0.00"
			}
		}
	}
	return table.Row{s.Symbol, price, change, fmt.Sprintf("%d", len(s.History))}
}

func stockColumns(width int) []table.Column {
	sym := maxInt(8, width/4)
	return []table.Column{
		{Title: "Symbol", Width: sym},
		{Title: "Price", Width: 12},
		{Title: "Change", Width: 12},
		{Title: "Ticks", Width: 6},
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run starts the TUI and blocks until the user quits.
func Run(tr *tracker.Tracker) error {
	p := tea.NewProgram(NewAppModel(tr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
