package router

import (
	"github.com/zen-systems/intentgate/pkg/intent"
	"github.com/zen-systems/intentgate/pkg/tools"
)

// Complexity is the estimated effort of executing a decision.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// ExecutionStrategy captures how a decision should be executed.
type ExecutionStrategy struct {
	ImmediateExecution  bool       `json:"immediate_execution"`
	NeedsConfirmation   bool       `json:"needs_confirmation"`
	NeedsClarification  bool       `json:"needs_clarification"`
	ParallelPossible    bool       `json:"parallel_possible"`
	EstimatedComplexity Complexity `json:"estimated_complexity"`
}

// Decision captures the full routing decision for one request. It is not
// modified after Decide returns it.
type Decision struct {
	ID                   string                `json:"id"`
	Classification       intent.Classification `json:"classification"`
	Parameters           intent.Parameters     `json:"parameters"`
	TaskType             string                `json:"task_type,omitempty"`
	SelectedTools        []string              `json:"selected_tools"`
	Tools                []tools.Handle        `json:"tools"`
	ToolSet              string                `json:"tool_set"`
	Strategy             ExecutionStrategy     `json:"execution_strategy"`
	RequiresConfirmation bool                  `json:"requires_confirmation"`
	Routing              intent.Routing        `json:"routing"`
}

// Complexity is a shortcut for d.Strategy.EstimatedComplexity.
func (d *Decision) Complexity() Complexity {
	return d.Strategy.EstimatedComplexity
}

// Input returns the raw request text.
func (d *Decision) Input() string {
	return d.Classification.Input
}
