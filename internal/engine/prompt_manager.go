package engine

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/sevigo/pr-warden/internal/core"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// PromptData is the type-safe input for rendering an action prompt.
type PromptData struct {
	Title             string
	Body              string
	Diff              string
	Question          string
	ExtraInstructions string
	Severity          string
}

// PromptManager holds one parsed template per action, loaded from the
// embedded prompts directory. File names follow `<action>.prompt`.
type PromptManager struct {
	prompts map[core.ActionKind]*template.Template
}

// NewPromptManager parses every embedded prompt template.
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{prompts: make(map[core.ActionKind]*template.Template)}

	files, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		action := core.ActionKind(strings.TrimSuffix(name, ".prompt"))
		if !action.IsValid() || action == core.ActionBatch {
			return nil, fmt.Errorf("prompt file %s does not match a supported action", name)
		}

		content, err := promptFiles.ReadFile("prompts/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt file %s: %w", name, err)
		}
		tmpl, err := template.New(name).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %s: %w", name, err)
		}
		pm.prompts[action] = tmpl
	}

	for _, required := range []core.ActionKind{core.ActionReview, core.ActionDescribe, core.ActionImprove, core.ActionDetectIssues, core.ActionAsk} {
		if _, ok := pm.prompts[required]; !ok {
			return nil, fmt.Errorf("missing prompt template for action %s", required)
		}
	}
	return pm, nil
}

// Render fills the action's template with the given data.
func (pm *PromptManager) Render(action core.ActionKind, data PromptData) (string, error) {
	tmpl, ok := pm.prompts[action]
	if !ok {
		return "", fmt.Errorf("no prompt template for action %s", action)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt for %s: %w", action, err)
	}
	return buf.String(), nil
}
