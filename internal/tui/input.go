package tui

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
	tea "github.com/charmbracelet/bubbletea"
)

// InputModel is a single-line text prompt. With masked set, typed runes render as MaskChar.
type InputModel struct {
	prompt       string
	placeholder  string
	value        []rune
	cursor       int
	masked       bool
	done         bool
	quitting     bool
	defaultValue string
}

func NewInput(prompt, placeholder, defaultValue string) InputModel {
	v := []rune(defaultValue)
	return InputModel{
		prompt:       prompt,
		placeholder:  placeholder,
		value:        v,
		cursor:       len(v),
		defaultValue: defaultValue,
	}
}

func NewPassword(prompt string) InputModel {
	return InputModel{prompt: prompt, masked: true}
}

func (m InputModel) Init() tea.Cmd { return nil }

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if m.cursor > 0 {
			m.value = append(m.value[:m.cursor-1:m.cursor-1], m.value[m.cursor:]...)
			m.cursor--
		}
	case tea.KeyDelete:
		if m.cursor < len(m.value) {
			m.value = append(m.value[:m.cursor:m.cursor], m.value[m.cursor+1:]...)
		}
	case tea.KeyLeft:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyRight:
		if m.cursor < len(m.value) {
			m.cursor++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		m.cursor = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		m.cursor = len(m.value)
	case tea.KeyCtrlU:
		m.value = append([]rune(nil), m.value[m.cursor:]...)
		m.cursor = 0
	case tea.KeyRunes, tea.KeySpace:
		runes := key.Runes
		if key.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		next := make([]rune, 0, len(m.value)+len(runes))
		next = append(next, m.value[:m.cursor]...)
		next = append(next, runes...)
		next = append(next, m.value[m.cursor:]...)
		m.value = next
		m.cursor += len(runes)
	}
	return m, nil
}

func (m InputModel) display(r []rune) string {
	if m.masked {
		return strings.Repeat(MaskChar, len(r))
	}
	return string(r)
}

func (m InputModel) View() string {
	if m.quitting {
		return ""
	}
	if m.done {
		return PromptStyle.Render(m.prompt) + " " + SuccessStyle.Render(m.display([]rune(m.Value())))
	}

	var b strings.Builder
	b.WriteString(PromptStyle.Render(m.prompt))
	b.WriteString(" ")
	if len(m.value) == 0 && m.placeholder != "" {
		b.WriteString(PlaceholderStyle.Render(m.placeholder))
	} else {
		b.WriteString(InputStyle.Render(m.display(m.value[:m.cursor])))
		b.WriteString(CursorStyle.Render("▌"))
		b.WriteString(InputStyle.Render(m.display(m.value[m.cursor:])))
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("enter confirm • esc cancel"))
	return b.String()
}

// Value is the typed text, or the default when nothing was typed.
func (m InputModel) Value() string {
	if len(m.value) == 0 {
		return m.defaultValue
	}
	return string(m.value)
}

func (m InputModel) Cancelled() bool { return m.quitting }

// RunInput asks for a line of text. Non-terminals fall back to survey.
func RunInput(prompt, placeholder, defaultValue string) (string, error) {
	if !IsTTY() {
		var value string
		q := &survey.Input{Message: prompt, Help: placeholder, Default: defaultValue}
		if err := survey.AskOne(q, &value); err != nil {
			return "", err
		}
		if value == "" {
			return defaultValue, nil
		}
		return value, nil
	}
	m, err := run(NewInput(prompt, placeholder, defaultValue))
	if err != nil {
		return "", err
	}
	return m.Value(), nil
}

// RunPassword asks for a secret without echoing it.
func RunPassword(prompt string) (string, error) {
	if !IsTTY() {
		var value string
		if err := survey.AskOne(&survey.Password{Message: prompt}, &value); err != nil {
			return "", err
		}
		return value, nil
	}
	m, err := run(NewPassword(prompt))
	if err != nil {
		return "", err
	}
	return m.Value(), nil
}
