// Package pipeline executes orchestration plans against model adapters.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/orchestrator"
)

var (
	// ErrEmptyPlan is returned when there is nothing to run.
	ErrEmptyPlan = errors.New("plan has no tasks")
	// ErrNoAdapter is returned when no adapter serves the plan's model.
	ErrNoAdapter = errors.New("no adapter for model")
	// ErrNoAdapters is returned when the runner has no adapter at all.
	ErrNoAdapters = errors.New("no adapters configured")
)

// Runner executes plans task by task. Each task sees the outputs of the
// tasks it depends on.
type Runner struct {
	adapters    map[string]adapter.Adapter
	aliases     *config.ModelAliases
	retry       config.RetryConfig
	temperature float64
	fallback    string
	prompt      *template.Template
	logger      *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithAdapter registers an adapter under its name.
func WithAdapter(a adapter.Adapter) Option {
	return func(r *Runner) {
		if a != nil {
			r.adapters[a.Name()] = a
		}
	}
}

// WithAliases sets the alias table used to resolve models to providers.
func WithAliases(aliases *config.ModelAliases) Option {
	return func(r *Runner) {
		if aliases != nil {
			r.aliases = aliases
		}
	}
}

// WithRetry sets the retry policy for transient adapter errors.
func WithRetry(retry config.RetryConfig) Option {
	return func(r *Runner) {
		r.retry = retry
	}
}

// WithTemperature sets the sampling temperature sent with every request.
func WithTemperature(t float64) Option {
	return func(r *Runner) {
		r.temperature = t
	}
}

// WithFallbackModel names a model to try once the plan's model has failed.
func WithFallbackModel(model string) Option {
	return func(r *Runner) {
		r.fallback = model
	}
}

// WithPromptTemplate replaces the task prompt template.
func WithPromptTemplate(tmpl *template.Template) Option {
	return func(r *Runner) {
		if tmpl != nil {
			r.prompt = tmpl
		}
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner. At least one adapter must be registered
// before Run is called.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		adapters:    make(map[string]adapter.Adapter),
		aliases:     config.DefaultAliases(),
		retry:       config.RetryConfig{MaxRetries: 2, BaseBackoffMs: 200, MaxBackoffMs: 2000},
		temperature: 0.7,
		prompt:      defaultPrompt,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Adapters returns the sorted names of the registered adapters.
func (r *Runner) Adapters() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the alias table used to resolve models to providers.
func (r *Runner) Aliases() *config.ModelAliases {
	return r.aliases
}

// Run executes every task of plan in order. On failure the partial result
// is returned together with the error.
func (r *Runner) Run(ctx context.Context, plan *orchestrator.Plan) (*Result, error) {
	if plan == nil || len(plan.Tasks) == 0 {
		return nil, ErrEmptyPlan
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if len(r.adapters) == 0 {
		return nil, ErrNoAdapters
	}

	targets, err := r.targets(plan.Model)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID: uuid.NewString(),
		Tasks: make(map[string]*TaskResult, len(plan.Tasks)),
	}
	outputs := make(map[string]string, len(plan.Tasks))
	toolNames := make([]string, len(plan.Tools))
	for i, h := range plan.Tools {
		toolNames[i] = h.Name
	}

	for _, task := range plan.Tasks {
		start := time.Now()
		profile := orchestrator.ProfileFor(task.Role)

		prompt, err := renderPrompt(r.prompt, promptData{
			Request: plan.Request,
			Task:    task,
			Profile: profile,
			Tools:   toolNames,
			Deps:    dependencyOutputs(task, outputs),
		})
		if err != nil {
			return result, fmt.Errorf("task %s: render prompt: %w", task.ID, err)
		}

		req := adapter.Request{
			Messages: []adapter.Message{
				{Role: adapter.RoleSystem, Content: fmt.Sprintf("You are the %s. %s.", profile.Title, profile.Goal)},
				{Role: adapter.RoleUser, Content: prompt},
			},
			Temperature: r.temperature,
		}
		resp, reports, err := r.call(ctx, targets, req)

		tr := &TaskResult{
			ID:       task.ID,
			Role:     task.Role,
			Prompt:   prompt,
			Reports:  reports,
			Duration: time.Since(start),
		}
		result.Tasks[task.ID] = tr
		result.Order = append(result.Order, task.ID)

		if err != nil {
			r.logger.Warn("task failed",
				zap.String("run_id", result.RunID),
				zap.String("task", task.ID),
				zap.Error(err),
			)
			return result, fmt.Errorf("task %s: %w", task.ID, err)
		}

		tr.Text = resp.Text
		tr.Model = resp.Model
		tr.Usage = resp.Usage
		outputs[task.ID] = resp.Text

		r.logger.Debug("task completed",
			zap.String("run_id", result.RunID),
			zap.String("task", task.ID),
			zap.String("role", string(task.Role)),
			zap.String("model", resp.Model),
			zap.Duration("duration", tr.Duration),
		)
	}

	final := plan.Final()
	result.Final = final.ID
	result.Raw = outputs[final.ID]
	result.Output = joinOutputs(result.Order, outputs)

	r.logger.Info("plan executed",
		zap.String("run_id", result.RunID),
		zap.String("type", string(plan.Type)),
		zap.Int("tasks", len(plan.Tasks)),
	)
	return result, nil
}

// targets lists the adapters to try for model. The fallback model follows
// the primary one and stands in for it when no adapter serves the primary.
func (r *Runner) targets(model string) ([]callTarget, error) {
	var targets []callTarget
	primary, err := r.target(model)
	if err == nil {
		targets = append(targets, primary)
	}
	if r.fallback != "" {
		fb, fbErr := r.target(r.fallback)
		if fbErr == nil && (err != nil || fb.Adapter != primary.Adapter || fb.Model != primary.Model) {
			fb.Fallback = true
			targets = append(targets, fb)
		}
	}
	if len(targets) == 0 {
		return nil, err
	}
	if err != nil {
		r.logger.Warn("no adapter for plan model, using fallback",
			zap.String("model", model),
			zap.String("fallback", targets[0].Model),
		)
	}
	return targets, nil
}

// target resolves model to an adapter. A lone registered adapter serves
// every model.
func (r *Runner) target(model string) (callTarget, error) {
	model = r.aliases.Resolve(model)
	if provider := r.aliases.ProviderFor(model); provider != "" {
		if _, ok := r.adapters[provider]; ok {
			return callTarget{Adapter: provider, Model: model}, nil
		}
	}
	if len(r.adapters) == 1 {
		for name := range r.adapters {
			return callTarget{Adapter: name, Model: model}, nil
		}
	}
	return callTarget{}, fmt.Errorf("%w %q", ErrNoAdapter, model)
}

func dependencyOutputs(task orchestrator.Task, outputs map[string]string) []DependencyOutput {
	deps := make([]DependencyOutput, 0, len(task.DependsOn))
	for _, id := range task.DependsOn {
		deps = append(deps, DependencyOutput{ID: id, Text: outputs[id]})
	}
	return deps
}

func joinOutputs(order []string, outputs map[string]string) string {
	if len(order) == 1 {
		return outputs[order[0]]
	}
	var sb strings.Builder
	for i, id := range order {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "## %s\n\n%s", id, outputs[id])
	}
	return sb.String()
}
