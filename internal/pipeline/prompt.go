// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-supervisor/pkg/types"
)

// Stage names, used for logging and metrics labels.
const (
	StageHypotheses  = "hypotheses"
	StageWebResearch = "web_research"
	StageAnalysis    = "analysis"
	StageReasoning   = "reasoning"
	StageEvaluation  = "evaluation"
	StageSummary     = "summary"
	StageConclusion  = "conclusion"
)

// noWebResults stands in for an empty search result list in the analysis prompt.
const noWebResults = "No web results available."

// promptSource holds one named template per model-backed stage. Each stage
// after analysis interpolates only the previous stage's output.
const promptSource = `
{{- define "hypotheses" -}}
Generate possible hypotheses based on: {{.Task}}
{{- end -}}

{{- define "analysis" -}}
Analyze the following hypotheses and web research:
Hypotheses:
{{.Hypotheses}}

Web Research:
{{webResults .Web}}
{{- end -}}

{{- define "reasoning" -}}
Provide logical reasoning based on this analysis:
{{.Previous}}
{{- end -}}

{{- define "evaluation" -}}
Evaluate different perspectives based on the reasoning:
{{.Previous}}
{{- end -}}

{{- define "summary" -}}
Summarize key insights from evaluation:
{{.Previous}}
{{- end -}}

{{- define "conclusion" -}}
Based on the summary, provide a structured conclusion:
{{.Previous}}
{{- end -}}
`

var prompts = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"webResults": formatWebResults}).
	Parse(promptSource))

// promptData carries every value a stage template may reference.
type promptData struct {
	Task       string
	Hypotheses string
	Web        []types.WebResult
	Previous   string
}

func renderPrompt(stage string, data promptData) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, stage, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", stage, err)
	}
	return b.String(), nil
}

// formatWebResults numbers each hit as "N. Title (Link)" with the snippet
// indented on the following line.
func formatWebResults(results []types.WebResult) string {
	if len(results) == 0 {
		return noWebResults
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s", i+1, r.Title, r.Link, r.Snippet)
	}
	return b.String()
}
