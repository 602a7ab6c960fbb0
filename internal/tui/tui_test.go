package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

func sampleBrowser() browser {
	return browser{findings: []model.Finding{
		{DetectorID: "SOL-003", File: "src/lib.rs", Line: 3, Name: "integer-overflow", Message: "m1"},
		{DetectorID: "CW-001", File: "src/contract.rs", Line: 8, Name: "integer-overflow", Message: "m2"},
	}}
}

func TestCursorMovesAndClamps(t *testing.T) {
	b := sampleBrowser()

	m, _ := b.Update(tea.KeyMsg{Type: tea.KeyDown})
	b = m.(browser)
	assert.Equal(t, 1, b.cursor)

	m, _ = b.Update(tea.KeyMsg{Type: tea.KeyDown})
	b = m.(browser)
	assert.Equal(t, 1, b.cursor, "cursor clamps at the last finding")

	m, _ = b.Update(tea.KeyMsg{Type: tea.KeyUp})
	b = m.(browser)
	assert.Equal(t, 0, b.cursor)

	m, _ = b.Update(tea.KeyMsg{Type: tea.KeyUp})
	b = m.(browser)
	assert.Equal(t, 0, b.cursor, "cursor clamps at the first finding")
}

func TestQuitKeys(t *testing.T) {
	b := sampleBrowser()
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := b.Update(key)
		assert.NotNil(t, cmd, "key %s should quit", key.String())
	}
}

func TestViewShowsSelection(t *testing.T) {
	b := sampleBrowser()
	out := b.View()
	assert.Contains(t, out, "rustdefend: 2 finding(s)")
	assert.Contains(t, out, "> SOL-003")
	assert.Contains(t, out, "m1")

	b.cursor = 1
	out = b.View()
	assert.Contains(t, out, "> CW-001")
	assert.Contains(t, out, "m2")
}
