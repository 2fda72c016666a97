package form

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

// Run drives the form to completion and returns the FeedbackResult
// in-process. Closing the form without submitting yields the
// implicit-terminate default, never an error.
func Run(opts Options) (feedback.FeedbackResult, error) {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return feedback.FeedbackResult{}, fmt.Errorf("feedback form failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return feedback.FeedbackResult{}, fmt.Errorf("unexpected final model %T", final)
	}
	return m.Result(), nil
}
