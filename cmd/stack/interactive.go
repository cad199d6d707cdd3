package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxHistory = 12

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	handleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

type historyEntry struct {
	input  string
	output string
	failed bool
}

type interactiveModel struct {
	sh      *shell
	history []historyEntry
	input   textinput.Model
	recall  int
}

func newInteractiveModel(sh *shell) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "push 1 42"
	ti.Prompt = promptStyle.Render("stack> ")
	ti.Width = 40
	ti.Focus()

	return &interactiveModel{sh: sh, input: ti, recall: -1}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			m.recall = -1
			if line == "" {
				return m, nil
			}
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			m.exec(line)
			return m, nil

		case "up":
			m.recallHistory(1)
			return m, nil

		case "down":
			m.recallHistory(-1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) exec(line string) {
	out, err := m.sh.Exec(line)
	entry := historyEntry{input: line, output: out}
	switch {
	case err != nil:
		entry.output = "error: " + message(err)
		entry.failed = true
	case strings.HasPrefix(out, "error: "):
		entry.failed = true
	}

	m.history = append(m.history, entry)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

// recallHistory walks previous inputs; delta 1 goes back in time.
func (m *interactiveModel) recallHistory(delta int) {
	if len(m.history) == 0 {
		return
	}
	next := m.recall + delta
	if next < 0 {
		m.recall = -1
		m.input.SetValue("")
		return
	}
	if next >= len(m.history) {
		return
	}
	m.recall = next
	m.input.SetValue(m.history[len(m.history)-1-next].input)
	m.input.CursorEnd()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	cfg := m.sh.stacks.Config()
	b.WriteString(titleStyle.Render("Stack Shell"))
	b.WriteString(fmt.Sprintf(" module %q, capacity %d\n\n", cfg.ModuleName, cfg.Capacity))

	for _, e := range m.history {
		b.WriteString(helpStyle.Render("> " + e.input))
		b.WriteString("\n")
		if e.output == "" {
			continue
		}
		if e.failed {
			b.WriteString(errorStyle.Render(e.output))
		} else {
			b.WriteString(resultStyle.Render(e.output))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.stacksPanel())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • help commands • esc quit"))

	return b.String()
}

func (m *interactiveModel) stacksPanel() string {
	handles := m.sh.stacks.Handles()
	if len(handles) == 0 {
		return panelStyle.Render(helpStyle.Render("no stacks"))
	}

	capacity := m.sh.stacks.Config().Capacity
	lines := make([]string, 0, len(handles))
	for _, h := range handles {
		n, err := m.sh.stacks.Len(h)
		if err != nil {
			continue
		}
		top := "empty"
		if v, err := m.sh.stacks.Peek(h); err == nil {
			top = fmt.Sprintf("top %d", v)
		}
		lines = append(lines, fmt.Sprintf("%s %3d/%d  %s",
			handleStyle.Render(fmt.Sprintf("#%d", h)), n, capacity, top))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func runInteractive(sh *shell) error {
	p := tea.NewProgram(newInteractiveModel(sh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
