package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/intent"
	"github.com/zen-systems/intentgate/pkg/tools"
)

var (
	// ErrEmptyRequest is returned when the request has no text.
	ErrEmptyRequest = errors.New("empty request")
	// ErrUnknownTaskType is returned when a task type is not in the matrix.
	ErrUnknownTaskType = errors.New("unknown task type")
)

// Engine composes the classifier, the tool matrix and the selector into a
// single routing decision.
type Engine struct {
	config     *config.RoutingConfig
	classifier *intent.Classifier
	provider   tools.Provider
	matrix     *tools.Matrix
	selector   *tools.Selector
	logger     *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClassifier replaces the default classifier, e.g. to attach a sink.
func WithClassifier(c *intent.Classifier) EngineOption {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithProvider sets the capability registry used to resolve tool sets.
func WithProvider(p tools.Provider) EngineOption {
	return func(e *Engine) {
		e.provider = p
	}
}

// NewEngine creates a decision engine. A nil cfg uses the defaults.
func NewEngine(cfg *config.RoutingConfig, opts ...EngineOption) *Engine {
	if cfg == nil {
		cfg = config.DefaultRoutingConfig()
	}
	e := &Engine{
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.classifier == nil {
		e.classifier = intent.NewClassifier(cfg)
	}
	if e.provider == nil {
		e.provider = tools.DefaultCatalog()
	}
	e.matrix = tools.NewMatrix(e.provider)
	e.selector = tools.NewSelector(e.provider, cfg.Selector.ConfidenceThreshold)
	return e
}

// Decide runs the request through classification, parameter extraction,
// task-type resolution and tool selection, and derives the execution
// strategy.
func (e *Engine) Decide(input string, ctx *intent.Context) (*Decision, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyRequest
	}

	cls := e.classifier.Classify(input, ctx)
	params := e.classifier.ExtractParameters(input, cls.Intent)
	taskType := e.matrix.TaskTypeFromOperation(cls.OperationType, cls.Input)

	var (
		setName string
		handles []tools.Handle
	)
	if taskType != "" {
		setName, handles = e.matrix.Resolve(taskType)
	} else {
		setName, handles = e.selector.Choose(input, e.config.Selector.MaxTools)
	}

	d := &Decision{
		ID:                   uuid.NewString(),
		Classification:       cls,
		Parameters:           params,
		TaskType:             taskType,
		SelectedTools:        tools.Names(handles),
		Tools:                handles,
		ToolSet:              setName,
		Strategy:             NewStrategy(cls, taskType, len(handles), e.config.Thresholds),
		RequiresConfirmation: cls.Confidence < e.config.Thresholds.Execute,
		Routing:              cls.Routing,
	}

	e.logger.Debug("routing decision",
		zap.String("id", d.ID),
		zap.String("intent", string(cls.Intent)),
		zap.Float64("confidence", cls.Confidence),
		zap.String("operation_type", string(cls.OperationType)),
		zap.String("task_type", taskType),
		zap.String("tool_set", setName),
		zap.Int("tool_count", len(handles)),
		zap.String("complexity", string(d.Strategy.EstimatedComplexity)),
		zap.String("routing", string(d.Routing)),
	)
	return d, nil
}

// Recommend returns the table row and resolved tools for a task type.
func (e *Engine) Recommend(taskType string) (tools.Recommendation, []tools.Handle, error) {
	if !e.matrix.Known(taskType) {
		return tools.Recommendation{}, nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, taskType)
	}
	return e.matrix.Recommendation(taskType), e.matrix.SelectToolsForTask(taskType), nil
}

// Analyze exposes the selector's keyword scoring for a prompt.
func (e *Engine) Analyze(prompt string) tools.Analysis {
	return e.selector.Analyze(prompt)
}

// TaskTypes lists the task types known to the matrix.
func (e *Engine) TaskTypes() []string {
	return e.matrix.TaskTypes()
}

// Classifier returns the classifier backing the engine.
func (e *Engine) Classifier() *intent.Classifier {
	return e.classifier
}

// Config returns the routing configuration in use.
func (e *Engine) Config() *config.RoutingConfig {
	return e.config
}
