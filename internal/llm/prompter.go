// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
)

// Prompter asks a human for a completion.
type Prompter interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// SurveyPrompter prints the prompt and reads the answer in a terminal editor.
type SurveyPrompter struct {
	// Out receives the prompt text. Defaults to stderr.
	Out io.Writer
}

// Ask implements Prompter.
func (p *SurveyPrompter) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "---- prompt ----\n%s\n----------------\n", prompt)

	var answer string
	q := &survey.Multiline{Message: "Completion (finish with an empty line)"}
	if err := survey.AskOne(q, &answer); err != nil {
		return "", fmt.Errorf("reading completion: %w", err)
	}
	return answer, nil
}
