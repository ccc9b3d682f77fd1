package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	tea "github.com/charmbracelet/bubbletea"
)

type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// SelectModel picks one option from a short list.
type SelectModel struct {
	title    string
	options  []SelectOption
	cursor   int
	selected int
	quitting bool
}

func NewSelect(title string, options []SelectOption) SelectModel {
	return SelectModel{title: title, options: options, selected: -1}
}

func (m SelectModel) Init() tea.Cmd { return nil }

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m SelectModel) View() string {
	if m.quitting {
		return ""
	}
	if opt, ok := m.Selected(); ok {
		return PromptStyle.Render(m.title) + " " + SuccessStyle.Render(opt.Label)
	}

	var b strings.Builder
	b.WriteString(PromptStyle.Render(m.title))
	b.WriteString("\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(CursorStyle.Render(IconPointer + " "))
			b.WriteString(SelectedStyle.Render(opt.Label))
		} else {
			b.WriteString("  ")
			b.WriteString(UnselectedStyle.Render(opt.Label))
		}
		if opt.Description != "" {
			b.WriteString(MutedStyle.Render("  " + opt.Description))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("↑/↓ navigate • enter select • q quit"))
	return b.String()
}

// Selected returns the chosen option once the user confirmed one.
func (m SelectModel) Selected() (SelectOption, bool) {
	if m.quitting || m.selected < 0 || m.selected >= len(m.options) {
		return SelectOption{}, false
	}
	return m.options[m.selected], true
}

func (m SelectModel) Cancelled() bool { return m.quitting }

// RunSelect returns the Value of the chosen option.
func RunSelect(title string, options []SelectOption) (string, error) {
	if len(options) == 0 {
		return "", errors.New("nothing to select")
	}
	if !IsTTY() {
		return selectSurvey(title, options)
	}
	m, err := run(NewSelect(title, options))
	if err != nil {
		return "", err
	}
	opt, ok := m.Selected()
	if !ok {
		return "", ErrCancelled
	}
	return opt.Value, nil
}

func selectSurvey(title string, options []SelectOption) (string, error) {
	labels := make([]string, len(options))
	values := make(map[string]string, len(options))
	for i, opt := range options {
		label := opt.Label
		if opt.Description != "" {
			label = fmt.Sprintf("%s - %s", opt.Label, opt.Description)
		}
		labels[i] = label
		values[label] = opt.Value
	}

	var chosen string
	if err := survey.AskOne(&survey.Select{Message: title, Options: labels}, &chosen); err != nil {
		return "", err
	}
	return values[chosen], nil
}
