package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-castle/internal/registry"
	"github.com/vovakirdan/tui-castle/internal/storage"
)

const (
	minWidthForDetail = 90 // Below this the run detail panel is hidden
	detailWidth       = 26
	maxRuns           = 100
)

// RunOrder selects how the scoreboard ranks runs.
type RunOrder int

const (
	OrderBest RunOrder = iota
	OrderRecent
)

func (o RunOrder) String() string {
	if o == OrderRecent {
		return "recent"
	}
	return "best"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Mode  key.Binding
	Order key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Mode, k.Order, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Mode, k.Order}, {k.Back, k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Mode:  key.NewBinding(key.WithKeys("tab", "left", "right", "h", "l"), key.WithHelp("tab", "mode")),
		Order: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "best/recent")),
		Back:  key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardModel lists the stored castle runs of one mode.
type ScoreboardModel struct {
	modes  []registry.GameInfo
	mode   int
	order  RunOrder
	store  *storage.Store
	runs   []storage.RunRecord
	table  table.Model
	help   help.Model
	keys   ScoreboardKeyMap
	width  int
	height int

	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a scoreboard showing the best runs of the
// first registered mode.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		modes:  registry.List(),
		store:  store,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.newTable()
	m.reload()
	return m
}

var runColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "Score", Width: 7},
	{Title: "Height", Width: 6},
	{Title: "Parts", Width: 5},
	{Title: "Perfect", Width: 7},
	{Title: "Outcome", Width: 9},
	{Title: "Date", Width: 12},
}

func (m *ScoreboardModel) tableWidth() int {
	w := m.width - 4
	if m.showDetail() {
		w -= detailWidth + 4
	}
	return w
}

func (m *ScoreboardModel) showDetail() bool {
	return m.width >= minWidthForDetail
}

func (m *ScoreboardModel) newTable() table.Model {
	cols := append([]table.Column(nil), runColumns...)
	// Perfect and Parts go first on narrow terminals.
	for _, drop := range []string{"Perfect", "Parts", "Date"} {
		if columnsWidth(cols) <= m.tableWidth() {
			break
		}
		cols = withoutColumn(cols, drop)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func columnsWidth(cols []table.Column) int {
	w := 0
	for _, c := range cols {
		w += c.Width + 2
	}
	return w
}

func withoutColumn(cols []table.Column, title string) []table.Column {
	out := cols[:0]
	for _, c := range cols {
		if c.Title != title {
			out = append(out, c)
		}
	}
	return out
}

// ModeID returns the mode whose runs are shown.
func (m ScoreboardModel) ModeID() string {
	if len(m.modes) == 0 {
		return ""
	}
	return m.modes[m.mode].ID
}

// Order returns the current ranking.
func (m ScoreboardModel) Order() RunOrder {
	return m.order
}

// Runs returns the runs currently listed.
func (m ScoreboardModel) Runs() []storage.RunRecord {
	return m.runs
}

// reload fetches runs for the current mode and order.
func (m *ScoreboardModel) reload() {
	m.runs = nil
	if m.store != nil && len(m.modes) > 0 {
		var (
			runs []storage.RunRecord
			err  error
		)
		if m.order == OrderRecent {
			runs, err = m.store.RecentRuns(m.ModeID(), maxRuns)
		} else {
			runs, err = m.store.TopRuns(m.ModeID(), maxRuns)
		}
		if err == nil {
			m.runs = runs
		}
	}

	cols := m.table.Columns()
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		rows[i] = runRow(i+1, r, cols)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// runRow formats a run for the given column set.
func runRow(rank int, r storage.RunRecord, cols []table.Column) table.Row {
	row := make(table.Row, 0, len(cols))
	for _, c := range cols {
		var cell string
		switch c.Title {
		case "#":
			cell = fmt.Sprintf("%d", rank)
		case "Score":
			cell = fmt.Sprintf("%d", r.Score)
		case "Height":
			cell = fmt.Sprintf("L%d", r.Height)
		case "Parts":
			cell = fmt.Sprintf("%d", r.PartsPlaced)
		case "Perfect":
			cell = fmt.Sprintf("%d", r.PerfectCount)
		case "Outcome":
			cell = r.Outcome
		case "Date":
			cell = r.CreatedAt.Format("Jan 02 15:04")
		}
		row = append(row, cell)
	}
	return row
}

// Init implements tea.Model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Mode):
			if n := len(m.modes); n > 0 {
				step := 1
				if k := msg.String(); k == "left" || k == "h" {
					step = n - 1
				}
				m.mode = (m.mode + step) % n
				m.reload()
			}
			return m, nil
		case key.Matches(msg, m.keys.Order):
			m.order = (m.order + 1) % 2
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.newTable()
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	boardTabStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	boardActiveStyle = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Padding(0, 1)
	boardDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	title := "BEST CASTLES"
	if m.order == OrderRecent {
		title = "RECENT CASTLES"
	}
	b.WriteString(centerText(boardTitleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n\n")

	body := boardBoxStyle.Render(m.renderTable())
	if m.showDetail() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", boardBoxStyle.Render(m.renderDetail()))
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, body))
	b.WriteString("\n")
	b.WriteString(boardDimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m ScoreboardModel) renderTabs() string {
	tabs := make([]string, len(m.modes))
	for i, g := range m.modes {
		if i == m.mode {
			tabs[i] = boardActiveStyle.Render(g.Title)
		} else {
			tabs[i] = boardTabStyle.Render(g.Title)
		}
	}
	return strings.Join(tabs, " ")
}

func (m ScoreboardModel) renderTable() string {
	if len(m.runs) == 0 {
		return boardDimStyle.Italic(true).Padding(2, 4).
			Render("No castles built yet.\nPlace a spire to get on the board!")
	}
	return m.table.View()
}

// renderDetail describes the highlighted run.
func (m ScoreboardModel) renderDetail() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) {
		return boardDimStyle.Width(detailWidth).Render("No run selected")
	}
	r := m.runs[i]

	lines := []string{
		boardTitleStyle.Render(fmt.Sprintf("Run %s", shortRunID(r.RunID))),
		"",
		fmt.Sprintf("Score      %d", r.Score),
		fmt.Sprintf("Height     L%d", r.Height),
		fmt.Sprintf("Parts      %d", r.PartsPlaced),
		fmt.Sprintf("Perfect    %d", r.PerfectCount),
		fmt.Sprintf("Wrong      %d", r.WrongCount),
		fmt.Sprintf("Best combo %d", r.BestCombo),
		fmt.Sprintf("Collapses  %d", r.Collapses),
		fmt.Sprintf("Outcome    %s", r.Outcome),
		fmt.Sprintf("Time       %s", r.Duration.Round(time.Second)),
	}
	if r.Preset != "" {
		lines = append(lines, fmt.Sprintf("Preset     %s", r.Preset))
	}
	return lipgloss.NewStyle().Width(detailWidth).Render(strings.Join(lines, "\n"))
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}
