package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func keys(m tea.Model, msgs ...tea.KeyMsg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInputModel(t *testing.T) {
	tests := []struct {
		name      string
		start     InputModel
		msgs      []tea.KeyMsg
		want      string
		cancelled bool
	}{
		{
			name:  "typing",
			start: NewInput("Email", "", ""),
			msgs:  []tea.KeyMsg{runes("ad"), runes("min")},
			want:  "admin",
		},
		{
			name:  "default kept when empty",
			start: NewInput("Email", "", "admin@test.com"),
			msgs:  []tea.KeyMsg{{Type: tea.KeyCtrlU}},
			want:  "admin@test.com",
		},
		{
			name:  "backspace and cursor moves",
			start: NewInput("Name", "", "abc"),
			msgs: []tea.KeyMsg{
				{Type: tea.KeyLeft},
				{Type: tea.KeyBackspace},
				{Type: tea.KeyHome},
				runes("x"),
			},
			want: "xac",
		},
		{
			name:  "multibyte runes",
			start: NewInput("Name", "", ""),
			msgs:  []tea.KeyMsg{runes("Kɔfi"), {Type: tea.KeyBackspace}, {Type: tea.KeySpace}},
			want:  "Kɔf ",
		},
		{
			name:      "escape cancels",
			start:     NewInput("Name", "", ""),
			msgs:      []tea.KeyMsg{runes("a"), {Type: tea.KeyEsc}},
			want:      "a",
			cancelled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := keys(tt.start, tt.msgs...).(InputModel)
			assert.Equal(t, tt.want, m.Value())
			assert.Equal(t, tt.cancelled, m.Cancelled())
		})
	}
}

func TestPasswordIsMasked(t *testing.T) {
	m := keys(NewPassword("Password"), runes("s3cret")).(InputModel)
	assert.Equal(t, "s3cret", m.Value())
	assert.NotContains(t, m.View(), "s3cret")
	assert.Contains(t, m.View(), strings.Repeat(MaskChar, 6))

	done := keys(m, tea.KeyMsg{Type: tea.KeyEnter}).(InputModel)
	assert.NotContains(t, done.View(), "s3cret")
}

func TestConfirmModel(t *testing.T) {
	m := keys(NewConfirm("Complete?", false), runes("y")).(ConfirmModel)
	assert.True(t, m.Value())

	m = keys(NewConfirm("Complete?", true), tea.KeyMsg{Type: tea.KeyEnter}).(ConfirmModel)
	assert.True(t, m.Value())

	m = keys(NewConfirm("Complete?", true), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter}).(ConfirmModel)
	assert.False(t, m.Value())

	m = keys(NewConfirm("Complete?", true), tea.KeyMsg{Type: tea.KeyCtrlC}).(ConfirmModel)
	assert.True(t, m.Cancelled())
	assert.Empty(t, m.View())
}

func TestSelectModel(t *testing.T) {
	opts := []SelectOption{
		{Label: "Service requests", Value: "service_requests"},
		{Label: "Customers", Value: "customers"},
		{Label: "Invoices", Value: "invoices"},
	}

	m := keys(NewSelect("Export", opts), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter}).(SelectModel)
	opt, ok := m.Selected()
	assert.True(t, ok)
	assert.Equal(t, "invoices", opt.Value)

	m = keys(NewSelect("Export", opts), runes("q")).(SelectModel)
	_, ok = m.Selected()
	assert.False(t, ok)
	assert.True(t, m.Cancelled())
}

func TestTable(t *testing.T) {
	out := Table([]string{"ID", "Status"}, [][]string{{"1", "Pending"}, {"2", "Completed"}}, 1)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Completed")
}

func TestPageLine(t *testing.T) {
	assert.Equal(t, "3 total", pageLine(1, 1, 3))
	assert.Equal(t, "page 2 of 3 · 60 total", pageLine(2, 3, 60))
}
