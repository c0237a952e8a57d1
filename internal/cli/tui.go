package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdkit/libmerge/pkg/corners"
	"github.com/pdkit/libmerge/pkg/liberty"
	"github.com/pdkit/libmerge/pkg/manifest"
)

// isInteractive reports whether stdin is a terminal. The corner picker
// only makes sense there; in pipes and CI the listing is printed instead.
func isInteractive() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// =============================================================================
// CornerListModel - Interactive corner selection
// =============================================================================

// cornerRow is one selectable corner in the picker.
type cornerRow struct {
	name     string
	have     liberty.TimingType
	desc     string
	eligible bool // corner data covers the requested output variant
}

// CornerListModel is the bubbletea model for interactive corner selection.
// Corners whose data does not cover the requested output variant are shown
// dimmed and cannot be picked.
type CornerListModel struct {
	Rows      []cornerRow
	Output    liberty.TimingType
	Cursor    int
	Picked    map[int]bool
	Confirmed bool
	Height    int
	Offset    int
}

// NewCornerListModel builds the picker rows from the discovered library
// and the optional manifest descriptions.
func NewCornerListModel(lib *corners.Library, man *manifest.Manifest, output liberty.TimingType) CornerListModel {
	names := lib.SortedCorners()
	rows := make([]cornerRow, 0, len(names))
	for _, name := range names {
		have := lib.Corners[name]
		rows = append(rows, cornerRow{
			name:     name,
			have:     have,
			desc:     man.Description(name),
			eligible: have.Contains(output),
		})
	}
	return CornerListModel{
		Rows:   rows,
		Output: output,
		Picked: make(map[int]bool),
		Height: 15,
	}
}

// Selected returns the picked corner names in display order. When the
// user confirmed without toggling anything, the cursor row counts as
// picked.
func (m CornerListModel) Selected() []string {
	if !m.Confirmed {
		return nil
	}
	var names []string
	for i, row := range m.Rows {
		if m.Picked[i] {
			names = append(names, row.name)
		}
	}
	if len(names) == 0 && m.Cursor < len(m.Rows) && m.Rows[m.Cursor].eligible {
		names = append(names, m.Rows[m.Cursor].name)
	}
	return names
}

func (m CornerListModel) Init() tea.Cmd {
	return nil
}

func (m CornerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if m.Rows[m.Cursor].eligible {
				m.Picked[m.Cursor] = !m.Picked[m.Cursor]
			}
		case "a":
			all := true
			for i, row := range m.Rows {
				if row.eligible && !m.Picked[i] {
					all = false
				}
			}
			for i, row := range m.Rows {
				if row.eligible {
					m.Picked[i] = !all
				}
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CornerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Corners"))
	b.WriteString(StyleDim.Render("  (output: " + m.Output.String() + ")"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		mark := "[ ]"
		if m.Picked[i] {
			mark = "[x]"
		}
		if !row.eligible {
			mark = " · "
		}

		annotation := row.have.Describe()
		rows = append(rows, []string{cursor, mark, row.name, row.have.Names(), annotation, row.desc})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Corner", "Variants", "", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			r := m.Rows[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col >= 4 {
				base = base.Foreground(colorDim)
			}

			switch {
			case !r.eligible:
				return base.Foreground(colorDim)
			case isCurrent && m.Picked[actualIdx]:
				return base.Foreground(colorGreen).Bold(true)
			case isCurrent:
				return base.Bold(true)
			case m.Picked[actualIdx]:
				return base.Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	picked := 0
	for i := range m.Rows {
		if m.Picked[i] {
			picked++
		}
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]  %d picked", m.Cursor+1, len(m.Rows), picked)))

	return b.String()
}

// =============================================================================
// Picker entry point
// =============================================================================

// pickCorners runs the interactive corner picker and returns the chosen
// corner names. An empty slice means the user quit without confirming.
func pickCorners(lib *corners.Library, man *manifest.Manifest, output liberty.TimingType) ([]string, error) {
	m := NewCornerListModel(lib, man, output)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	fm, ok := finalModel.(CornerListModel)
	if !ok {
		return nil, nil
	}
	return fm.Selected(), nil
}
