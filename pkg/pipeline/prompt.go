package pipeline

import (
	"strings"
	"text/template"

	"github.com/zen-systems/intentgate/pkg/orchestrator"
)

// DependencyOutput exposes an upstream task's output to prompt templates.
type DependencyOutput struct {
	ID   string
	Text string
}

type promptData struct {
	Request string
	Task    orchestrator.Task
	Profile orchestrator.Profile
	Tools   []string
	Deps    []DependencyOutput
}

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

// DefaultPromptText is the task prompt used unless a runner is given its
// own template.
const DefaultPromptText = `{{.Task.Description}}

Expected output: {{.Task.ExpectedOutput}}
{{- if .Tools}}

Available tools: {{join .Tools ", "}}
{{- end}}
{{- range .Deps}}

Output of {{.ID}}:
{{.Text}}
{{- end}}`

var defaultPrompt = template.Must(ParsePrompt(DefaultPromptText))

// ParsePrompt parses a task prompt template. Templates see .Request, .Task,
// .Profile, .Tools and .Deps, and may call join.
func ParsePrompt(text string) (*template.Template, error) {
	return template.New("prompt").Funcs(promptFuncs).Option("missingkey=zero").Parse(text)
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
