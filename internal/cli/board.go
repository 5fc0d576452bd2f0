package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/pkg/models"
)

// boardColumns are the statuses shown on the board, left to right.
var boardColumns = []models.Status{
	models.StatusOpen,
	models.StatusInProgress,
	models.StatusBlocked,
}

type boardCard struct {
	shortID  string
	title    string
	priority models.Priority
	ready    bool
}

type boardModel struct {
	activeColumn int
	cursor       []int
	width        int
	height       int

	columns  map[models.Status][]boardCard
	activity *boardActivity

	loading bool
	err     error
}

type boardActivity struct {
	created int
	closed  int
	logged  int
}

// boardLoadedMsg carries loaded data back to the model.
type boardLoadedMsg struct {
	columns  map[models.Status][]boardCard
	activity *boardActivity
	err      error
}

var (
	boardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeColumnStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				MarginBottom(1)

	cursorStyle    = lipgloss.NewStyle().Reverse(true)
	readyCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	waitCardStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boardHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBoardModel() boardModel {
	return boardModel{
		cursor:  make([]int, len(boardColumns)),
		columns: make(map[models.Status][]boardCard),
		loading: true,
	}
}

func (m boardModel) Init() tea.Cmd {
	return loadBoard
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.activeColumn = (m.activeColumn + 1) % len(boardColumns)
			return m, nil
		case "shift+tab", "left", "h":
			m.activeColumn = (m.activeColumn - 1 + len(boardColumns)) % len(boardColumns)
			return m, nil
		case "down", "j":
			if n := len(m.columns[boardColumns[m.activeColumn]]); m.cursor[m.activeColumn] < n-1 {
				m.cursor[m.activeColumn]++
			}
			return m, nil
		case "up", "k":
			if m.cursor[m.activeColumn] > 0 {
				m.cursor[m.activeColumn]--
			}
			return m, nil
		case "r":
			m.loading = true
			return m, loadBoard
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.columns = msg.columns
		m.activity = msg.activity
		m.err = nil
		for i, st := range boardColumns {
			if n := len(m.columns[st]); m.cursor[i] >= n {
				m.cursor[i] = max(n-1, 0)
			}
		}
		return m, nil
	}

	return m, nil
}

func (m boardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := boardTitleStyle.Render(" bt board ")
	help := boardHelpStyle.Render("tab/←→: column | ↑↓: select | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading tasks...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	colWidth := (m.width-2)/len(boardColumns) - 4
	if colWidth < 20 {
		colWidth = 20
	}
	panels := make([]string, len(boardColumns))
	for i := range boardColumns {
		style := columnStyle
		if i == m.activeColumn {
			style = activeColumnStyle
		}
		panels[i] = style.Width(colWidth).Render(m.renderColumn(i, colWidth))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	if m.width-2 < len(boardColumns)*24 {
		body = lipgloss.JoinVertical(lipgloss.Left, panels...)
	}

	footer := help
	if m.activity != nil {
		footer = fmt.Sprintf("  Last 7 days: %d created, %d closed, %d log entries\n\n%s",
			m.activity.created, m.activity.closed, m.activity.logged, help)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, footer)
}

func (m boardModel) renderColumn(i, width int) string {
	status := boardColumns[i]
	cards := m.columns[status]

	var b strings.Builder
	b.WriteString(columnHeaderStyle.Render(fmt.Sprintf("%s (%d)", status, len(cards))))
	b.WriteString("\n")
	if len(cards) == 0 {
		b.WriteString("No tasks.")
		return b.String()
	}

	for j, c := range cards {
		line := truncateRunes(fmt.Sprintf("%s %-8s %s", c.shortID, c.priority, c.title), width)
		style := waitCardStyle
		if c.ready {
			style = readyCardStyle
		}
		if i == m.activeColumn && j == m.cursor[i] {
			style = cursorStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func truncateRunes(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// loadBoard reads active tasks, ordered as bt next would pick them, and
// the last week of activity when the event log is enabled.
func loadBoard() tea.Msg {
	result := boardLoadedMsg{columns: make(map[models.Status][]boardCard)}

	all, err := Tasks.ListAll()
	if err != nil {
		result.err = fmt.Errorf("loading tasks: %w", err)
		return result
	}
	resolver, err := shortIDs()
	if err != nil {
		result.err = err
		return result
	}
	statuses := models.StatusIndex(all)

	var active []models.Entry
	for _, e := range all {
		if e.Status.IsActive() {
			active = append(active, e)
		}
	}
	core.SortForNext(active)
	for _, e := range active {
		result.columns[e.Status] = append(result.columns[e.Status], boardCard{
			shortID:  resolver.Shortest(e.Task.ID),
			title:    e.Task.Title,
			priority: e.Task.Priority,
			ready:    models.IsReady(e, statuses),
		})
	}

	if MetricsCalc != nil {
		m, err := MetricsCalc.Calculate(time.Now().UTC().AddDate(0, 0, -7))
		if err != nil {
			result.err = fmt.Errorf("loading activity: %w", err)
			return result
		}
		result.activity = &boardActivity{created: m.TasksCreated, closed: m.TasksClosed, logged: m.LogEntries}
	}
	return result
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive board of active tasks",
	Long: `Launch an interactive terminal board with one column per active
status. Green tasks are ready, red ones wait on a blocker.

Switch columns with Tab, move with the arrow keys, refresh with r, quit
with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		p := tea.NewProgram(newBoardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
