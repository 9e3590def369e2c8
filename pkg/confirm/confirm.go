// Package confirm asks the user to approve a destructive action. The decision
// is returned to the caller, which acts on it directly; no callback is ever
// serialised or reconstructed.
package confirm

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Prompt describes the question shown to the user.
type Prompt struct {
	Title   string
	Message string
	Confirm string
	Cancel  string
}

// Confirmer returns true when the user approves the prompt.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// Func adapts a function to Confirmer.
type Func func(ctx context.Context, prompt Prompt) (bool, error)

// Confirm implements Confirmer.
func (f Func) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	if f == nil {
		return false, nil
	}
	return f(ctx, prompt)
}

// Always answers every prompt with the same decision.
func Always(decision bool) Confirmer {
	return Func(func(context.Context, Prompt) (bool, error) {
		return decision, nil
	})
}

// Survey prompts on the terminal.
type Survey struct {
	opts []survey.AskOpt
}

// NewSurvey constructs a terminal confirmer. Options are passed through to
// survey.AskOne (for example survey.WithStdio in tests).
func NewSurvey(opts ...survey.AskOpt) *Survey {
	return &Survey{opts: opts}
}

// Confirm implements Confirmer. An interrupt counts as a refusal.
func (s *Survey) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	message := prompt.Message
	if prompt.Title != "" {
		message = prompt.Title + ": " + message
	}
	var out bool
	question := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(question, &out, s.opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, nil
		}
		return false, err
	}
	return out, nil
}
