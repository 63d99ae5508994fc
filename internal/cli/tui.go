package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle       = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// TraceModel - Interactive refinement viewer
// =============================================================================

// TraceModel is the bubbletea model that steps through refinement
// generations. The table lists every generation; the panel below it shows
// the selected partition and the cells that split to produce it.
type TraceModel struct {
	Steps  []traceStep
	Cursor int
	Height int
	Offset int
}

// NewTraceModel creates a viewer positioned at the initial partition.
func NewTraceModel(steps []traceStep) TraceModel {
	return TraceModel{Steps: steps, Height: 12}
}

func (m TraceModel) Init() tea.Cmd {
	return nil
}

func (m TraceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k", "left", "h":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j", "right", "l":
			if m.Cursor < len(m.Steps)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = len(m.Steps) - 1
			m.Offset = max(0, m.Cursor-m.Height+1)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 3)
	}
	return m, nil
}

func (m TraceModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Refinement Trace"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Steps))
	b.WriteString(traceTable(m.Steps[m.Offset:end], m.Cursor-m.Offset).Render())
	b.WriteString("\n\n")

	if len(m.Steps) > 0 {
		step := m.Steps[m.Cursor]
		b.WriteString(listSelectedStyle.Render(step.Partition))
		b.WriteString("\n")
		if step.Generation == 0 {
			b.WriteString(listNormalStyle.Render("initial partition"))
			b.WriteString("\n")
		}
		for _, s := range step.Splits {
			b.WriteString(listNormalStyle.Render(fmt.Sprintf("  cell %d split into %v", s.Cell, s.Sizes)))
			b.WriteString("\n")
		}
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("\n  [%d/%d]", m.Cursor+1, len(m.Steps))))

	return b.String()
}

// headerRow is the row index lipgloss passes to StyleFunc for headers.
const headerRow = -1

// traceTable renders steps as a table. Row selected, if in range, is
// highlighted.
func traceTable(steps []traceStep, selected int) *table.Table {
	rows := make([][]string, len(steps))
	for i, s := range steps {
		splits := "—"
		if len(s.Splits) > 0 {
			parts := make([]string, len(s.Splits))
			for j, sp := range s.Splits {
				parts[j] = fmt.Sprintf("%d→%v", sp.Cell, sp.Sizes)
			}
			splits = strings.Join(parts, " ")
		}
		rows[i] = []string{fmt.Sprint(s.Generation), fmt.Sprint(s.Cells), splits, s.Partition}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Gen", "Cells", "Splits", "Partition").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return headerStyle
			case row == selected:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 3:
				return listNormalStyle
			}
			return listDimStyle
		})
}
