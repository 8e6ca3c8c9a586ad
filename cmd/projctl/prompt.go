package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errPromptCancelled = errors.New("cancelled")

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("63")).
			Bold(true).
			Padding(0, 1)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Padding(0, 1)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)
)

type promptKeys struct {
	Prev    key.Binding
	Next    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var keys = promptKeys{
	Prev:    key.NewBinding(key.WithKeys("left", "up", "h", "k", "shift+tab"), key.WithHelp("←", "prev")),
	Next:    key.NewBinding(key.WithKeys("right", "down", "l", "j", "tab"), key.WithHelp("→", "next")),
	Confirm: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

// choiceModel asks which way to resolve a duplicate project.
type choiceModel struct {
	title    string
	message  string
	choices  []string
	cursor   int
	chosen   string
	quitting bool
}

func newChoiceModel(title, message string, choices []string) choiceModel {
	return choiceModel{title: title, message: message, choices: choices}
}

func (m choiceModel) Init() tea.Cmd { return nil }

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(km, keys.Prev):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Next):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Confirm):
		if len(m.choices) > 0 {
			m.chosen = m.choices[m.cursor]
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m choiceModel) View() string {
	if m.quitting || m.chosen != "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	buttons := make([]string, len(m.choices))
	for i, c := range m.choices {
		if i == m.cursor {
			buttons[i] = selectedStyle.Render(choiceLabel(c))
		} else {
			buttons[i] = choiceStyle.Render(choiceLabel(c))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	b.WriteString(footerStyle.Render(fmt.Sprintf("\n%s %s  %s %s  %s %s",
		keys.Next.Help().Key, keys.Next.Help().Desc,
		keys.Confirm.Help().Key, keys.Confirm.Help().Desc,
		keys.Quit.Help().Key, keys.Quit.Help().Desc)))

	return containerStyle.Render(b.String())
}

func choiceLabel(c string) string {
	switch c {
	case "switch":
		return "Switch to existing"
	case "duplicate":
		return "Add duplicate"
	}
	return c
}

// promptChoice runs the interactive prompt and returns the selected choice.
func promptChoice(title, message string, choices []string, opts ...tea.ProgramOption) (string, error) {
	final, err := tea.NewProgram(newChoiceModel(title, message, choices), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	m := final.(choiceModel)
	if m.chosen == "" {
		return "", errPromptCancelled
	}
	return m.chosen, nil
}
