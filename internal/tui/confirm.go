package tui

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no prompt.
type ConfirmModel struct {
	prompt       string
	defaultValue bool
	value        bool
	done         bool
	quitting     bool
}

func NewConfirm(prompt string, defaultValue bool) ConfirmModel {
	return ConfirmModel{prompt: prompt, defaultValue: defaultValue, value: defaultValue}
}

func (m ConfirmModel) Init() tea.Cmd { return nil }

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "y", "Y":
		m.value, m.done = true, true
		return m, tea.Quit
	case "n", "N":
		m.value, m.done = false, true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab":
		m.value = !m.value
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.quitting {
		return ""
	}
	answer := map[bool]string{true: "Yes", false: "No"}
	if m.done {
		return PromptStyle.Render(m.prompt) + " " + SuccessStyle.Render(answer[m.value])
	}

	yes, no := UnselectedStyle, UnselectedStyle
	if m.value {
		yes = SelectedStyle
	} else {
		no = SelectedStyle
	}

	var b strings.Builder
	b.WriteString(PromptStyle.Render(m.prompt))
	b.WriteString(" ")
	b.WriteString(yes.Render("Yes"))
	b.WriteString(MutedStyle.Render(" / "))
	b.WriteString(no.Render("No"))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("y/n select • ←/→ toggle • enter confirm"))
	return b.String()
}

func (m ConfirmModel) Value() bool { return m.value }

func (m ConfirmModel) Cancelled() bool { return m.quitting }

func RunConfirm(prompt string, defaultValue bool) (bool, error) {
	if !IsTTY() {
		var value bool
		if err := survey.AskOne(&survey.Confirm{Message: prompt, Default: defaultValue}, &value); err != nil {
			return false, err
		}
		return value, nil
	}
	m, err := run(NewConfirm(prompt, defaultValue))
	if err != nil {
		return false, err
	}
	return m.Value(), nil
}
