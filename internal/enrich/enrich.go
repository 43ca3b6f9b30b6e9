// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/internal/llm"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// DefaultPromptBudget is the prompt size, in characters, descriptions are
// shortened to fit.
const DefaultPromptBudget = 12000

// minTruncationFactor stops shortening once descriptions are nearly gone.
const minTruncationFactor = 0.05

var summaryPromptTmpl = template.Must(template.New("enrichment").Parse(`I will give you a list of genes{{if .Described}} together with descriptions of their functions{{end}}.
Perform a term enrichment test on these genes, i.e. tell me what the commonalities are in their function.
Make use of classification hierarchies when you do this.
Only report gene functions in common, not diseases.
{{if .Described}}{{range .Genes}}
###
Gene: {{.Symbol}}
{{.Description}}
{{end}}{{else}}
Here is the gene list: {{.List}}
{{end}}
===

Summarize the commonalities in the following format:
Summary: <a short summary of what the genes share>
Mechanism: <the biological mechanism that explains it>
Enriched Terms: <term1>; <term2>; <term3>
`))

// SummarizeOptions tunes one summary request.
type SummarizeOptions struct {
	// Descriptions maps gene symbols to function text included in the prompt.
	Descriptions map[string]string

	// PromptBudget caps the prompt length in characters. Zero uses the default.
	PromptBudget int
}

// Engine summarizes gene sets with a completion client.
type Engine struct {
	client *llm.Client
}

// NewEngine returns an enrichment engine on client.
func NewEngine(client *llm.Client) *Engine {
	return &Engine{client: client}
}

// Name returns the engine kind.
func (e *Engine) Name() string { return "enrichment" }

// ClientConfig returns the completion client configuration.
func (e *Engine) ClientConfig() *llm.Config { return e.client.Config() }

// Close releases the completion cache.
func (e *Engine) Close() error { return e.client.Close() }

// Summarize asks the model what the genes in gs have in common.
func (e *Engine) Summarize(ctx context.Context, gs types.GeneSet, opts SummarizeOptions) (*types.EnrichmentResult, error) {
	if len(gs.GeneSymbols) == 0 {
		return nil, fmt.Errorf("gene set %q is empty: %w", gs.Name, types.ErrInvalidArgument)
	}
	budget := opts.PromptBudget
	if budget <= 0 {
		budget = DefaultPromptBudget
	}

	prompt, factor, err := buildPrompt(gs, opts.Descriptions, budget)
	if err != nil {
		return nil, err
	}

	response, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	res := &types.EnrichmentResult{
		GeneSet:      gs,
		Model:        e.client.Model(),
		Prompt:       prompt,
		ResponseText: response,
	}
	if factor < 1.0 {
		res.TruncationFactor = &factor
	}
	res.Summary, res.Mechanism, res.TermStrings = parseResponse(response)
	return res, nil
}

type describedGene struct {
	Symbol      string
	Description string
}

// buildPrompt renders the prompt, shortening every description by the same
// factor until the prompt fits budget. The factor used is returned.
func buildPrompt(gs types.GeneSet, descriptions map[string]string, budget int) (string, float64, error) {
	factor := 1.0
	for {
		prompt, err := renderSummaryPrompt(gs, descriptions, factor)
		if err != nil {
			return "", 0, fmt.Errorf("rendering prompt: %w", err)
		}
		if len([]rune(prompt)) <= budget || len(descriptions) == 0 || factor <= minTruncationFactor {
			if factor < 1.0 {
				log.Debug().Float64("factor", factor).Int("budget", budget).Msg("shortened gene descriptions")
			}
			return prompt, factor, nil
		}
		factor *= 0.9
	}
}

func renderSummaryPrompt(gs types.GeneSet, descriptions map[string]string, factor float64) (string, error) {
	data := struct {
		Described bool
		Genes     []describedGene
		List      string
	}{
		Described: len(descriptions) > 0,
		List:      strings.Join(gs.GeneSymbols, "; "),
	}
	for _, sym := range gs.GeneSymbols {
		desc := descriptions[sym]
		if r := []rune(desc); factor < 1.0 && len(r) > 0 {
			desc = string(r[:int(float64(len(r))*factor)])
		}
		data.Genes = append(data.Genes, describedGene{Symbol: sym, Description: desc})
	}

	var buf bytes.Buffer
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parseResponse pulls the labelled sections out of a model answer. Lines
// after a label continue its section until the next label.
func parseResponse(response string) (summary, mechanism string, terms []string) {
	sections := map[string]*strings.Builder{}
	var current *strings.Builder
	for _, line := range strings.Split(response, "\n") {
		label, rest, ok := strings.Cut(line, ":")
		key := strings.ToLower(strings.TrimSpace(label))
		if ok && (key == "summary" || key == "mechanism" || key == "enriched terms") {
			current = &strings.Builder{}
			sections[key] = current
			current.WriteString(strings.TrimSpace(rest))
			continue
		}
		if current != nil && strings.TrimSpace(line) != "" {
			current.WriteString(" ")
			current.WriteString(strings.TrimSpace(line))
		}
	}

	get := func(k string) string {
		if b, ok := sections[k]; ok {
			return strings.TrimSpace(b.String())
		}
		return ""
	}
	summary, mechanism = get("summary"), get("mechanism")
	for _, t := range strings.Split(get("enriched terms"), ";") {
		if t = strings.Trim(strings.TrimSpace(t), "."); t != "" {
			terms = append(terms, t)
		}
	}
	return summary, mechanism, terms
}
