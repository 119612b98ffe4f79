package worker

import (
	"encoding/json"
	"strings"
	"text/template"

	"fitserver/internal/domain"
)

// RenderPrompt substitutes the job's input payload into the template's
// declared placeholders. Templates use Go text/template syntax with
// missingkey=error, so a payload missing a required field fails with
// a *domain.RenderError instead of rendering a hole.
func RenderPrompt(tpl *domain.PromptTemplate, payload json.RawMessage) (string, error) {
	vars := map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &vars); err != nil {
			return "", &domain.RenderError{Prompt: tpl.Name, Err: err}
		}
	}

	t, err := template.New(tpl.Name).Option("missingkey=error").Parse(tpl.Template)
	if err != nil {
		return "", &domain.RenderError{Prompt: tpl.Name, Err: err}
	}

	var buf strings.Builder
	if err := t.Execute(&buf, vars); err != nil {
		return "", &domain.RenderError{Prompt: tpl.Name, Err: err}
	}
	return buf.String(), nil
}
