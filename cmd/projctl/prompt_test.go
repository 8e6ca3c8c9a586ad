package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestChoiceModel_Navigate(t *testing.T) {
	m := newChoiceModel("Duplicate project", "", []string{"switch", "duplicate"})
	assert.Equal(t, 0, m.cursor)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(choiceModel)
	assert.Equal(t, 1, m.cursor)
	assert.Nil(t, cmd)

	// Cursor stops at the last choice
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(choiceModel)
	assert.Equal(t, 1, m.cursor)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = updated.(choiceModel)
	assert.Equal(t, 0, m.cursor)
}

func TestChoiceModel_Confirm(t *testing.T) {
	m := newChoiceModel("Duplicate project", "", []string{"switch", "duplicate"})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	updated, cmd := updated.(choiceModel).Update(tea.KeyMsg{Type: tea.KeyEnter})

	m = updated.(choiceModel)
	assert.Equal(t, "duplicate", m.chosen)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestChoiceModel_Quit(t *testing.T) {
	m := newChoiceModel("Duplicate project", "", []string{"switch", "duplicate"})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	m = updated.(choiceModel)
	assert.True(t, m.quitting)
	assert.Empty(t, m.chosen)
	assert.NotNil(t, cmd)
}

func TestChoiceModel_View(t *testing.T) {
	m := newChoiceModel("Duplicate project", "A project with these details exists", []string{"switch", "duplicate"})
	view := m.View()
	assert.Contains(t, view, "Duplicate project")
	assert.Contains(t, view, "A project with these details exists")
	assert.Contains(t, view, "Switch to existing")
	assert.Contains(t, view, "Add duplicate")
}

func TestChoiceModel_IgnoresOtherMessages(t *testing.T) {
	m := newChoiceModel("t", "", []string{"switch"})
	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, m, updated.(choiceModel))
	assert.Nil(t, cmd)
}
