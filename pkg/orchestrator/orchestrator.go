// Package orchestrator turns a routing decision into one of two execution
// shapes: a single generalist agent, or a plan/execute/report pipeline.
package orchestrator

import (
	"fmt"

	"github.com/zen-systems/intentgate/pkg/router"
	"github.com/zen-systems/intentgate/pkg/tools"
)

// Profile describes how an agent in a given role should behave.
type Profile struct {
	Title string
	Goal  string
}

var profiles = map[Role]Profile{
	RolePlanner: {
		Title: "Task Planner",
		Goal:  "Break down complex user requests into clear, actionable steps and coordinate the work of other agents",
	},
	RoleFileReader: {
		Title: "File Reader",
		Goal:  "Read files from the filesystem using available tools and extract relevant information",
	},
	RoleCodeAnalyst: {
		Title: "Code Analyst",
		Goal:  "Analyze code for quality, correctness, and adherence to requirements using available tools",
	},
	RoleReportWriter: {
		Title: "Report Writer",
		Goal:  "Create clear, comprehensive reports based on analysis from other agents",
	},
	RoleGeneralist: {
		Title: "Senior Software Engineer",
		Goal:  "Solve coding problems, analyze codebases, and build production-quality software using the available tools",
	},
}

// ProfileFor returns the profile of a role. Unknown roles get the generalist.
func ProfileFor(role Role) Profile {
	if p, ok := profiles[role]; ok {
		return p
	}
	return profiles[RoleGeneralist]
}

// NeedsMultiAgent reports whether a decision warrants the multi-agent shape.
func NeedsMultiAgent(c router.Complexity, taskType string) bool {
	switch {
	case c == router.ComplexityHigh || c == router.ComplexityMedium:
		return true
	case taskType == tools.TaskComplexSearch || taskType == tools.TaskAnalyzeCode:
		return true
	default:
		return false
	}
}

// Build maps a decision to a plan for model.
func Build(d *router.Decision, model string) *Plan {
	if NeedsMultiAgent(d.Complexity(), d.TaskType) {
		return buildMultiAgent(d, model)
	}
	return SingleAgentPlan(d, model)
}

// SingleAgentPlan builds the one-task plan regardless of complexity. It is
// also the simplified plan used when a multi-agent run fails.
func SingleAgentPlan(d *router.Decision, model string) *Plan {
	return &Plan{
		Type:  SingleAgent,
		Roles: []Role{RoleGeneralist},
		Tasks: []Task{{
			ID:             "answer",
			Description:    d.Input(),
			ExpectedOutput: "A direct answer to the request",
			Role:           RoleGeneralist,
		}},
		Tools:      d.Tools,
		Model:      model,
		Request:    d.Input(),
		DecisionID: d.ID,
	}
}

func buildMultiAgent(d *router.Decision, model string) *Plan {
	request := d.Input()
	executor := RoleCodeAnalyst
	if d.TaskType == tools.TaskReadFile {
		executor = RoleFileReader
	}

	return &Plan{
		Type:  MultiAgent,
		Roles: []Role{RolePlanner, RoleFileReader, RoleCodeAnalyst, RoleReportWriter},
		Tasks: []Task{
			{
				ID:             "plan",
				Description:    fmt.Sprintf("Analyze the request: %s\n\nBreak it down into steps and coordinate other agents.", request),
				ExpectedOutput: "A clear plan with steps for other agents",
				Role:           RolePlanner,
			},
			{
				ID:             "execute",
				Description:    fmt.Sprintf("Execute the plan for: %s\n\nUse available tools to complete the work.", request),
				ExpectedOutput: "Completed work based on the plan",
				Role:           executor,
				DependsOn:      []string{"plan"},
			},
			{
				ID:             "report",
				Description:    fmt.Sprintf("Create a comprehensive report for: %s\n\nSynthesize all information.", request),
				ExpectedOutput: "A clear, comprehensive report",
				Role:           RoleReportWriter,
				DependsOn:      []string{"plan", "execute"},
			},
		},
		Tools:      d.Tools,
		Model:      model,
		Request:    request,
		DecisionID: d.ID,
	}
}
