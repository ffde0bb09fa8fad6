package pipeline

import (
	"time"

	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/orchestrator"
)

// Result captures a plan execution.
type Result struct {
	RunID string                 `json:"run_id"`
	Tasks map[string]*TaskResult `json:"tasks"`
	// Order lists task IDs in execution order.
	Order []string `json:"order"`
	// Final is the ID of the task whose output answers the request.
	Final string `json:"final,omitempty"`
	// Raw is the final task's output.
	Raw string `json:"raw,omitempty"`
	// Output concatenates every task output, headed by task ID.
	Output string `json:"output,omitempty"`
}

// TaskResult captures one task's execution.
type TaskResult struct {
	ID       string               `json:"id"`
	Role     orchestrator.Role    `json:"role"`
	Prompt   string               `json:"prompt"`
	Text     string               `json:"text"`
	Model    string               `json:"model,omitempty"`
	Usage    *adapter.Usage       `json:"usage,omitempty"`
	Reports  []adapter.CallReport `json:"reports,omitempty"`
	Duration time.Duration        `json:"duration"`
}

// Text returns the raw final output, falling back to the combined output.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	if r.Raw != "" {
		return r.Raw
	}
	return r.Output
}

// Usage sums token usage across tasks.
func (r *Result) Usage() adapter.Usage {
	var total adapter.Usage
	if r == nil {
		return total
	}
	for _, t := range r.Tasks {
		if t.Usage == nil {
			continue
		}
		total.PromptTokens += t.Usage.PromptTokens
		total.CompletionTokens += t.Usage.CompletionTokens
		total.TotalTokens += t.Usage.TotalTokens
	}
	return total
}
