package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Entry is one selectable demo/preset pair.
type Entry struct {
	Demo, Preset string
}

func (e Entry) String() string { return e.Demo + "/" + e.Preset }

const (
	stateMenu = iota
	stateSim
)

// Menu lists demo presets and opens the live view on the chosen one. Esc
// in the live view returns to the list.
type Menu struct {
	state   int
	cursor  int
	entries []Entry
	open    func(Entry) BuildFunc
	opts    Options
	live    Model
	err     error
}

func NewMenu(entries []Entry, open func(Entry) BuildFunc, opts Options) Menu {
	return Menu{entries: entries, open: open, opts: opts}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.state = stateMenu
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) == 0 {
			return m, nil
		}
		live, err := NewModel(m.open(m.entries[m.cursor]), m.opts)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.live = live
		m.state = stateSim
		return m, live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}
	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("CLOTHSIM") + "\n\n")
	last := ""
	for i, e := range m.entries {
		if e.Demo != last {
			b.WriteString(yellow.Render(e.Demo) + "\n")
			last = e.Demo
		}
		line := fmt.Sprintf("  %s", e.Preset)
		if i == m.cursor {
			b.WriteString(white.Bold(true).Render("> "+strings.TrimSpace(line)) + "\n")
		} else {
			b.WriteString(dim.Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n" + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("↑↓ select  enter open  esc back  q quit"))
	return b.String()
}

// RunMenu opens the preset picker full screen.
func RunMenu(entries []Entry, open func(Entry) BuildFunc, opts Options) error {
	_, err := tea.NewProgram(NewMenu(entries, open, opts), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
