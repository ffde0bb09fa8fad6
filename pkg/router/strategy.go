package router

import (
	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/intent"
	"github.com/zen-systems/intentgate/pkg/tools"
)

// EstimateComplexity applies the complexity rules in order: small file reads
// and writes are low, code work is medium, many tools or a complex search is
// high, and everything else is low.
func EstimateComplexity(op intent.OperationType, taskType string, toolCount, highToolCount int) Complexity {
	switch {
	case op == intent.OperationFile && (taskType == tools.TaskReadFile || taskType == tools.TaskCreateSingleFile):
		return ComplexityLow
	case op == intent.OperationCode || taskType == tools.TaskGenerateCode:
		return ComplexityMedium
	case toolCount > highToolCount || taskType == tools.TaskComplexSearch:
		return ComplexityHigh
	default:
		return ComplexityLow
	}
}

// NewStrategy derives the execution strategy from a classification and the
// resolved tools.
func NewStrategy(c intent.Classification, taskType string, toolCount int, t config.Thresholds) ExecutionStrategy {
	return ExecutionStrategy{
		ImmediateExecution:  c.Confidence >= t.Execute,
		NeedsConfirmation:   c.Confidence >= t.Confirm && c.Confidence < t.Execute,
		NeedsClarification:  c.Confidence < t.Confirm,
		ParallelPossible:    taskType == tools.TaskCreateMultipleFiles || taskType == tools.TaskComplexSearch,
		EstimatedComplexity: EstimateComplexity(c.OperationType, taskType, toolCount, t.HighComplexityToolCount),
	}
}
