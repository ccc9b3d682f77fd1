package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrCancelled = errors.New("cancelled")

// cancellable is implemented by every prompt model in this package.
type cancellable interface {
	tea.Model
	Cancelled() bool
}

// run drives m to completion and returns the final model.
func run[M cancellable](m M) (M, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		var zero M
		return zero, fmt.Errorf("prompt: %w", err)
	}
	result, ok := final.(M)
	if !ok {
		var zero M
		return zero, fmt.Errorf("unexpected model type %T", final)
	}
	if result.Cancelled() {
		return result, ErrCancelled
	}
	fmt.Println()
	return result, nil
}
