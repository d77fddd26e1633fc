package viewer

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewEmptyUntilSized(t *testing.T) {
	m := NewModel("boletim_Ana.txt", "BOLETIM ESCOLAR\n")
	assert.Equal(t, "", m.View())

	_, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	out := m.View()
	assert.Contains(t, out, "boletim_Ana.txt")
	assert.Contains(t, out, "BOLETIM ESCOLAR")
	assert.Contains(t, out, "q quit")
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
	} {
		m := NewModel("r", "body")
		_, cmd := m.Update(key)
		require.NotNil(t, cmd, "key %s", key.String())
		assert.IsType(t, tea.QuitMsg{}, cmd(), "key %s", key.String())
	}
}

func TestLayoutReservesHeaderAndFooter(t *testing.T) {
	m := NewModel("r", "line")
	_, _ = m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Equal(t, 40, m.viewport.Width)
	assert.Less(t, m.viewport.Height, 10)
	assert.GreaterOrEqual(t, m.viewport.Height, 1)
}
