package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sitecanvas/pkg/viewmode"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

const historySize = 6

// StepsModel is the bubbletea model of the step browser. It drives a real
// view-mode controller over an in-memory location, so every key press shows
// the transition and the fragment it writes.
type StepsModel struct {
	ctrl   *viewmode.Controller
	loc    *viewmode.MemoryLocation
	log    *transitions
	Cursor int
}

// transitions is shared by every copy of the model.
type transitions struct {
	lines []string
	last  []viewmode.Change
}

// NewStepsModel mounts a controller on a location holding fragment.
func NewStepsModel(fragment string) StepsModel {
	m := StepsModel{
		ctrl: viewmode.NewController(),
		loc:  viewmode.NewMemoryLocation(fragment),
		log:  &transitions{},
	}
	m.ctrl.OnChange(m.log.record)
	m.ctrl.Mount(m.loc)
	m.Cursor = int(m.ctrl.Mode())
	return m
}

// Mode returns the active step.
func (m StepsModel) Mode() viewmode.Mode { return m.ctrl.Mode() }

func (m StepsModel) Init() tea.Cmd { return nil }

func (m StepsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.ctrl.Unmount()
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(viewmode.Modes)-1 {
			m.Cursor++
		}
	case "enter":
		m.ctrl.Request(viewmode.Modes[m.Cursor])
	case "b":
		// simulate the browser back button: the fragment changes externally
		if prev := m.previous(); prev.Valid() {
			m.loc.Navigate(prev.Fragment())
			m.Cursor = int(m.ctrl.Mode())
		}
	}
	return m, nil
}

func (t *transitions) record(ch viewmode.Change) {
	t.lines = append(t.lines, fmt.Sprintf("%s %s %s (%s)", ch.From, iconArrow, ch.To, ch.Origin))
	t.last = append(t.last, ch)
	if len(t.lines) > historySize {
		t.lines = t.lines[len(t.lines)-historySize:]
		t.last = t.last[len(t.last)-historySize:]
	}
}

// previous returns the step the last transition came from.
func (m StepsModel) previous() viewmode.Mode {
	if len(m.log.last) == 0 {
		return viewmode.Mode(-1)
	}
	return m.log.last[len(m.log.last)-1].From
}

func (m StepsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Editor Steps"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ enter step  b back  q quit"))
	b.WriteString("\n\n")

	active := m.ctrl.Mode()
	rows := make([][]string, 0, len(viewmode.Modes))
	for i, mode := range viewmode.Modes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, mode.String(), mode.Fragment(), yesNo(mode.Preview()), yesNo(mode.Iteration()), nextSteps(mode)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Step", "Fragment", "Preview", "Canvas", "Next").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if row == m.Cursor {
				base = base.Bold(true)
			}
			if row < len(viewmode.Modes) && viewmode.Modes[row] == active {
				return base.Foreground(colorGreen)
			}
			return base.Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  location %s  ·  %d fragment writes", m.loc.Fragment(), m.loc.Writes())))
	b.WriteString("\n")
	for _, line := range m.log.lines {
		b.WriteString("  " + listDimStyle.Render(line) + "\n")
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return iconSuccess
	}
	return ""
}

func nextSteps(m viewmode.Mode) string {
	next := viewmode.Next(m)
	names := make([]string, len(next))
	for i, n := range next {
		names[i] = n.String()
	}
	return strings.Join(names, ", ")
}
