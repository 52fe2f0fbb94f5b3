package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickerKey(m pickerModel, key string) pickerModel {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(pickerModel)
}

func networkItems() []PickerItem {
	return []PickerItem{
		{Label: "ethereum", Value: "ethereum"},
		{Label: "sepolia", Value: "sepolia", Current: true},
		{Label: "holesky", Value: "holesky"},
	}
}

func TestPickerStartsOnCurrent(t *testing.T) {
	m := newPickerModel("Network", networkItems())
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "(current)")
}

func TestPickerNavigatesAndSelects(t *testing.T) {
	m := newPickerModel("Network", networkItems())
	m = pickerKey(m, "down")
	m = pickerKey(m, "down")
	assert.Equal(t, 2, m.cursor, "cursor should stop at the last item")

	m = pickerKey(m, "k")
	m = pickerKey(m, "k")
	m = pickerKey(m, "k")
	assert.Equal(t, 0, m.cursor, "cursor should stop at the first item")

	m = pickerKey(m, "enter")
	require.NotNil(t, m.selected)
	assert.Equal(t, "ethereum", m.selected.Value)
	assert.Empty(t, m.View())
}

func TestPickerCancel(t *testing.T) {
	m := pickerKey(newPickerModel("Wallet", networkItems()), "q")
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)

	m = pickerKey(newPickerModel("Wallet", networkItems()), "esc")
	assert.True(t, m.quitting)
}

func TestPickItemEmpty(t *testing.T) {
	_, err := PickItem("Wallet", nil)
	assert.ErrorIs(t, err, ErrNothingToPick)
}
