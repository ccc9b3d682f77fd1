package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary   = lipgloss.Color("#FF79C6")
	ColorSecondary = lipgloss.Color("#8BE9FD")
	ColorSuccess   = lipgloss.Color("#50FA7B")
	ColorError     = lipgloss.Color("#FF5555")
	ColorWarning   = lipgloss.Color("#FFB86C")
	ColorMuted     = lipgloss.Color("#6272A4")
	ColorWhite     = lipgloss.Color("#F8F8F2")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorSecondary)

	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)

	SelectedStyle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	UnselectedStyle = lipgloss.NewStyle().Foreground(ColorWhite)
	CursorStyle     = lipgloss.NewStyle().Foreground(ColorPrimary)

	PromptStyle      = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	InputStyle       = lipgloss.NewStyle().Foreground(ColorWhite)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconPointer = "❯"
	MaskChar    = "•"
)

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func RenderSuccess(msg string) string {
	return SuccessStyle.Render(IconSuccess+" ") + msg
}

func RenderError(msg string) string {
	return ErrorStyle.Render(IconError+" ") + msg
}

func RenderWarning(msg string) string {
	return WarningStyle.Render(IconWarning+" ") + msg
}

func RenderInfo(msg string) string {
	return MutedStyle.Render(IconInfo+" ") + msg
}

// RenderKV renders an aligned "key: value" line for detail views.
func RenderKV(key string, value any) string {
	return MutedStyle.Render(fmt.Sprintf("%-18s", key+":")) + " " + fmt.Sprint(value)
}

// StatusStyle colours a service request status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "Completed":
		return SuccessStyle
	case "In Progress":
		return SubtitleStyle
	case "Pending":
		return WarningStyle
	default:
		return MutedStyle
	}
}
