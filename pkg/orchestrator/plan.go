package orchestrator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zen-systems/intentgate/pkg/tools"
)

// Shape is the execution shape of a plan.
type Shape string

const (
	SingleAgent Shape = "single_agent"
	MultiAgent  Shape = "multi_agent"
)

// Role names an agent in a plan.
type Role string

const (
	RolePlanner      Role = "planner"
	RoleFileReader   Role = "file_reader"
	RoleCodeAnalyst  Role = "code_analyst"
	RoleReportWriter Role = "report_writer"
	RoleGeneralist   Role = "generalist"
)

// Task is one node of the plan's task graph.
type Task struct {
	ID             string   `json:"id" yaml:"id"`
	Description    string   `json:"description" yaml:"description"`
	ExpectedOutput string   `json:"expected_output" yaml:"expected_output"`
	Role           Role     `json:"role" yaml:"role"`
	DependsOn      []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Plan is the agent/task graph handed to the execution runtime.
type Plan struct {
	Type       Shape          `json:"type" yaml:"type"`
	Roles      []Role         `json:"roles" yaml:"roles"`
	Tasks      []Task         `json:"tasks" yaml:"tasks"`
	Tools      []tools.Handle `json:"tools,omitempty" yaml:"tools,omitempty"`
	Model      string         `json:"model,omitempty" yaml:"model,omitempty"`
	Request    string         `json:"request" yaml:"request"`
	DecisionID string         `json:"decision_id,omitempty" yaml:"decision_id,omitempty"`
}

// LoadPlan reads a plan from a YAML file and validates it.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks the plan shape and that every dependency refers to an
// earlier task.
func (p *Plan) Validate() error {
	if p.Type != SingleAgent && p.Type != MultiAgent {
		return fmt.Errorf("unknown plan type %q", p.Type)
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("plan must define at least one task")
	}

	roles := make(map[Role]struct{}, len(p.Roles))
	for _, r := range p.Roles {
		roles[r] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, task := range p.Tasks {
		if task.ID == "" {
			return fmt.Errorf("task id is required")
		}
		if _, ok := seen[task.ID]; ok {
			return fmt.Errorf("duplicate task id: %s", task.ID)
		}
		if task.Description == "" {
			return fmt.Errorf("task %s must have a description", task.ID)
		}
		if _, ok := roles[task.Role]; !ok {
			return fmt.Errorf("task %s assigned to undeclared role %s", task.ID, task.Role)
		}
		for _, dep := range task.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("task %s depends on %s, which does not precede it", task.ID, dep)
			}
		}
		seen[task.ID] = struct{}{}
	}
	return nil
}

// Final returns the last task, whose output is the plan's answer.
func (p *Plan) Final() Task {
	return p.Tasks[len(p.Tasks)-1]
}
