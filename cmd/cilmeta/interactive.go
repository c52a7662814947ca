package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cilforge/cilmeta"
	"github.com/cilforge/cilmeta/cil"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const rowsPerPage = 20

type browserState int

const (
	stateSelectTable browserState = iota
	stateViewRows
	stateJumpRow
)

type browserModel struct {
	filename string
	err      error
	img      *cil.Image

	tables   []cil.TableID
	selected int

	state  browserState
	offset uint32
	jump   textinput.Model
}

func newBrowserModel(filename string) *browserModel {
	jump := textinput.New()
	jump.Prompt = "row: "
	jump.Placeholder = "1"
	jump.Width = 10
	return &browserModel{filename: filename, state: stateSelectTable, jump: jump}
}

type imageLoadedMsg struct {
	err    error
	img    *cil.Image
	tables []cil.TableID
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadImage
}

func (m *browserModel) loadImage() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return imageLoadedMsg{err: err}
	}
	img, err := cil.Open(cilmeta.NewMemoryBackend(data))
	if err != nil {
		return imageLoadedMsg{err: err}
	}
	var tables []cil.TableID
	for _, id := range cil.AllTableIDs() {
		if img.Tables.RowCount(id) > 0 {
			tables = append(tables, id)
		}
	}
	return imageLoadedMsg{img: img, tables: tables}
}

func (m *browserModel) currentTable() cil.TableID {
	return m.tables[m.selected]
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateJumpRow {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.state = stateViewRows
				return m, nil
			case "enter":
				m.state = stateViewRows
				if rid, err := strconv.ParseUint(m.jump.Value(), 10, 32); err == nil && rid >= 1 {
					total := m.img.Tables.RowCount(m.currentTable())
					if uint32(rid) > total {
						rid = uint64(total)
					}
					m.offset = uint32(rid) - 1
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.jump, cmd = m.jump.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			switch m.state {
			case stateSelectTable:
				if m.selected > 0 {
					m.selected--
				}
			case stateViewRows:
				if m.offset > 0 {
					m.offset--
				}
			}

		case "down", "j":
			switch m.state {
			case stateSelectTable:
				if m.selected < len(m.tables)-1 {
					m.selected++
				}
			case stateViewRows:
				if m.offset+rowsPerPage < m.img.Tables.RowCount(m.currentTable()) {
					m.offset++
				}
			}

		case "pgup":
			if m.state == stateViewRows {
				if m.offset > rowsPerPage {
					m.offset -= rowsPerPage
				} else {
					m.offset = 0
				}
			}

		case "pgdown":
			if m.state == stateViewRows {
				total := m.img.Tables.RowCount(m.currentTable())
				if m.offset+2*rowsPerPage < total {
					m.offset += rowsPerPage
				} else if total > rowsPerPage {
					m.offset = total - rowsPerPage
				}
			}

		case "enter":
			if m.state == stateSelectTable && len(m.tables) > 0 {
				m.state = stateViewRows
				m.offset = 0
			}

		case "g":
			if m.state == stateViewRows {
				m.state = stateJumpRow
				m.jump.SetValue("")
				m.jump.Focus()
			}

		case "esc":
			if m.state == stateViewRows {
				m.state = stateSelectTable
			}
		}

	case imageLoadedMsg:
		m.err = msg.err
		m.img = msg.img
		m.tables = msg.tables
	}

	return m, nil
}

// rowSummary renders one raw row for the browser, resolving name columns
// through the strings heap where the kind carries one.
func (m *browserModel) rowSummary(row cil.Row) string {
	name := func(off uint32) string {
		s, err := m.img.Strings.Get(off)
		if err != nil {
			return fmt.Sprintf("<bad string 0x%X>", off)
		}
		return s
	}
	switch r := row.(type) {
	case *cil.ModuleRaw:
		return fmt.Sprintf("name=%s", name(r.Name))
	case *cil.TypeRefRaw:
		return fmt.Sprintf("name=%s ns=%s scope=%s[%d]", name(r.Name), name(r.Namespace), r.ResolutionScope.Tag, r.ResolutionScope.Row)
	case *cil.TypeDefRaw:
		return fmt.Sprintf("name=%s ns=%s flags=0x%X fields@%d methods@%d", name(r.Name), name(r.Namespace), r.Flags, r.FieldList, r.MethodList)
	case *cil.FieldRaw:
		return fmt.Sprintf("name=%s flags=0x%X sig@0x%X", name(r.Name), r.Flags, r.Signature)
	case *cil.MethodDefRaw:
		return fmt.Sprintf("name=%s rva=0x%X flags=0x%X params@%d", name(r.Name), r.RVA, r.Flags, r.ParamList)
	case *cil.ParamRaw:
		return fmt.Sprintf("name=%s seq=%d", name(r.Name), r.Sequence)
	case *cil.MemberRefRaw:
		return fmt.Sprintf("name=%s class=%s[%d]", name(r.Name), r.Class.Tag, r.Class.Row)
	case *cil.ModuleRefRaw:
		return fmt.Sprintf("name=%s", name(r.Name))
	case *cil.AssemblyRaw:
		return fmt.Sprintf("name=%s version=%d.%d.%d.%d", name(r.Name), r.MajorVersion, r.MinorVersion, r.BuildNumber, r.RevisionNumber)
	case *cil.AssemblyRefRaw:
		return fmt.Sprintf("name=%s version=%d.%d.%d.%d", name(r.Name), r.MajorVersion, r.MinorVersion, r.BuildNumber, r.RevisionNumber)
	default:
		return fmt.Sprintf("%+v", row)
	}
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.img == nil {
		return "Loading image..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Metadata Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectTable:
		b.WriteString("Select a table:\n\n")
		for i, id := range m.tables {
			line := fmt.Sprintf("0x%02X %-24s %s", uint8(id), tableStyle.Render(id.String()),
				countStyle.Render(fmt.Sprintf("%d rows", m.img.Tables.RowCount(id))))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateViewRows, stateJumpRow:
		id := m.currentTable()
		total := m.img.Tables.RowCount(id)
		b.WriteString(fmt.Sprintf("%s (%d rows)\n\n", tableStyle.Render(id.String()), total))
		end := m.offset + rowsPerPage
		if end > total {
			end = total
		}
		for rid := m.offset + 1; rid <= end; rid++ {
			row, err := m.img.Tables.Row(cil.NewToken(id, rid))
			if err != nil {
				b.WriteString(errorStyle.Render(fmt.Sprintf("%06d %v", rid, err)))
			} else {
				b.WriteString(fmt.Sprintf("%06d  %s", rid, m.rowSummary(row)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateJumpRow {
			b.WriteString(m.jump.View())
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("enter jump • esc cancel"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ scroll • pgup/pgdn page • g goto • esc back • q quit"))
		}
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newBrowserModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
