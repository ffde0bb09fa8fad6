package metalogic

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Task type names used for time estimates.
const (
	TypeFileOperation   = "file_operation"
	TypeCodeGeneration  = "code_generation"
	TypeTestExecution   = "test_execution"
	TypeComplexAnalysis = "complex_analysis"
)

var urgentWords = []string{"urgent", "asap", "critical"}

var timeEstimates = map[string]string{
	TypeFileOperation:   "quick",
	TypeCodeGeneration:  "medium",
	TypeTestExecution:   "medium",
	TypeComplexAnalysis: "long",
}

// TaskSpec is a unit of work to prioritize.
type TaskSpec struct {
	ID              string `json:"id,omitempty" yaml:"id,omitempty"`
	Type            string `json:"type,omitempty" yaml:"type,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
	Blocking        bool   `json:"blocking,omitempty" yaml:"blocking,omitempty"`
	HasDependencies bool   `json:"has_dependencies,omitempty" yaml:"has_dependencies,omitempty"`
	Destructive     bool   `json:"destructive,omitempty" yaml:"destructive,omitempty"`
}

// PlannedTask is a TaskSpec with its execution plan.
type PlannedTask struct {
	TaskSpec
	Priority      float64 `json:"priority_score"`
	CanParallel   bool    `json:"can_parallel"`
	EstimatedTime string  `json:"estimated_time"`
	RiskLevel     string  `json:"risk_level"`
}

// Prioritize scores tasks and returns them highest priority first. Equal
// scores keep their input order.
func (r *Recorder) Prioritize(tasks []TaskSpec) []PlannedTask {
	planned := make([]PlannedTask, len(tasks))
	for i, t := range tasks {
		planned[i] = PlannedTask{
			TaskSpec:      t,
			Priority:      r.priority(t),
			CanParallel:   !t.HasDependencies,
			EstimatedTime: estimateTime(t.Type),
			RiskLevel:     assessRisk(t),
		}
	}
	sort.SliceStable(planned, func(i, j int) bool {
		return planned[i].Priority > planned[j].Priority
	})
	return planned
}

func (r *Recorder) priority(t TaskSpec) float64 {
	score := 0.5
	if t.Blocking {
		score += 0.3
	}
	if t.HasDependencies {
		score += 0.2
	}
	desc := strings.ToLower(t.Description)
	for _, w := range urgentWords {
		if strings.Contains(desc, w) {
			score += 0.2
			break
		}
	}
	if t.Type != "" && r.known(t.Type) {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func estimateTime(taskType string) string {
	if est, ok := timeEstimates[taskType]; ok {
		return est
	}
	return "medium"
}

func assessRisk(t TaskSpec) string {
	switch {
	case t.Destructive:
		return "high"
	case t.HasDependencies:
		return "medium"
	default:
		return "low"
	}
}

// TaskResult describes a finished task for self-evaluation.
type TaskResult struct {
	Success            bool     `json:"success"`
	StepsTaken         []string `json:"steps_taken,omitempty"`
	Output             string   `json:"output,omitempty"`
	EdgeCasesHandled   bool     `json:"edge_cases_handled,omitempty"`
	ExplanationMissing bool     `json:"explanation_missing,omitempty"`
}

// Evaluation scores a finished task against seven checkpoints.
type Evaluation struct {
	CompletedFully      bool    `json:"completed_fully"`
	UnnecessarySteps    bool    `json:"unnecessary_steps"`
	Conciseness         float64 `json:"conciseness"`
	ConventionsFollowed bool    `json:"conventions_followed"`
	EdgeCasesConsidered bool    `json:"edge_cases_considered"`
	Maintainable        bool    `json:"maintainable"`
	ClearCommunication  bool    `json:"clear_communication"`
	OverallScore        float64 `json:"overall_score"`
}

const maxReasonableSteps = 3

// SelfEvaluate scores a task result. OverallScore is the fraction of the
// seven checkpoints that passed.
func SelfEvaluate(res TaskResult) Evaluation {
	ev := Evaluation{
		CompletedFully:      res.Success,
		UnnecessarySteps:    len(res.StepsTaken) > maxReasonableSteps,
		Conciseness:         conciseness(res.Output),
		ConventionsFollowed: true,
		EdgeCasesConsidered: res.EdgeCasesHandled,
		Maintainable:        maintainable(res.Output),
		ClearCommunication:  !res.ExplanationMissing,
	}

	passed := 0
	for _, ok := range []bool{
		ev.CompletedFully,
		!ev.UnnecessarySteps,
		ev.Conciseness > 0.7,
		ev.ConventionsFollowed,
		ev.EdgeCasesConsidered,
		ev.Maintainable,
		ev.ClearCommunication,
	} {
		if ok {
			passed++
		}
	}
	ev.OverallScore = float64(passed) / 7.0
	return ev
}

func conciseness(output string) float64 {
	n := utf8.RuneCountInString(output)
	switch {
	case n < 100:
		return 0.5
	case n < 1000:
		return 1.0
	case n < 5000:
		return 0.8
	default:
		return 0.5
	}
}

func maintainable(output string) bool {
	return strings.Contains(output, "#") ||
		strings.Contains(output, "//") ||
		strings.Contains(output, `"""`) ||
		strings.Contains(output, "'''")
}
