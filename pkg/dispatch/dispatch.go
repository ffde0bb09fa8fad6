// Package dispatch is the request entry point: it decides, plans, executes,
// formats and records one request, triaging any failure on the way.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/format"
	"github.com/zen-systems/intentgate/pkg/intent"
	"github.com/zen-systems/intentgate/pkg/metalogic"
	"github.com/zen-systems/intentgate/pkg/orchestrator"
	"github.com/zen-systems/intentgate/pkg/pipeline"
	"github.com/zen-systems/intentgate/pkg/router"
	"github.com/zen-systems/intentgate/pkg/tools"
	"github.com/zen-systems/intentgate/pkg/triage"
)

// Components named in triage records.
const (
	ComponentRouter   = "router"
	ComponentPipeline = "pipeline"
	ComponentFormat   = "format"
)

// Executor runs a plan. *pipeline.Runner implements it.
type Executor interface {
	Run(ctx context.Context, plan *orchestrator.Plan) (*pipeline.Result, error)
}

// servingExecutor is an Executor that knows which providers it reaches.
// Without an explicit model router, plans only name models those providers
// serve.
type servingExecutor interface {
	Executor
	Adapters() []string
	Aliases() *config.ModelAliases
}

// Outcome is everything produced while handling one request.
type Outcome struct {
	Decision *router.Decision   `json:"decision,omitempty"`
	Plan     *orchestrator.Plan `json:"plan,omitempty"`
	Result   *pipeline.Result   `json:"result,omitempty"`
	Error    *triage.Record     `json:"error,omitempty"`
	Output   string             `json:"output"`
	// Retried is set when a failed multi-agent plan was re-run as a single
	// agent.
	Retried bool `json:"retried"`
}

// Dispatcher wires the decision engine to execution and output.
type Dispatcher struct {
	engine    *router.Engine
	models    *router.ModelRouter
	executor  Executor
	formatter *format.Formatter
	handler   *triage.Handler
	recorder  *metalogic.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExecutor sets the plan executor. Without one, Handle stops after
// planning and outputs the plan.
func WithExecutor(e Executor) Option {
	return func(d *Dispatcher) {
		d.executor = e
	}
}

// WithModelRouter sets the model router used to pick each plan's model.
func WithModelRouter(m *router.ModelRouter) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.models = m
		}
	}
}

// WithFormatter sets the output formatter.
func WithFormatter(f *format.Formatter) Option {
	return func(d *Dispatcher) {
		if f != nil {
			d.formatter = f
		}
	}
}

// WithHandler sets the failure handler.
func WithHandler(h *triage.Handler) Option {
	return func(d *Dispatcher) {
		if h != nil {
			d.handler = h
		}
	}
}

// WithRecorder sets the interaction recorder.
func WithRecorder(r *metalogic.Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a dispatcher around engine.
func New(engine *router.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine:    engine,
		formatter: format.NewFormatter(),
		handler:   triage.NewHandler(),
		recorder:  metalogic.NewRecorder(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.models == nil {
		prefs := engine.Config().Models
		if se, ok := d.executor.(servingExecutor); ok {
			d.models = router.NewModelRouter(prefs, se.Aliases(), router.WithProviders(se.Adapters()...))
		} else {
			d.models = router.NewModelRouter(prefs, nil)
		}
	}
	return d
}

// Recorder returns the interaction recorder.
func (d *Dispatcher) Recorder() *metalogic.Recorder {
	return d.recorder
}

// Handler returns the failure handler.
func (d *Dispatcher) Handler() *triage.Handler {
	return d.handler
}

// Handle processes one request. Failures are triaged and rendered into
// Outcome.Output; the returned error is the failure that could not be
// recovered from, if any.
func (d *Dispatcher) Handle(ctx context.Context, input string, ictx *intent.Context) (*Outcome, error) {
	start := d.now()
	out := &Outcome{}

	decision, err := d.engine.Decide(input, ictx)
	if err != nil {
		d.fail(out, err, ComponentRouter)
		d.record(out, start)
		return out, err
	}
	out.Decision = decision

	model := d.models.Route(input, d.models.Available())
	out.Plan = orchestrator.Build(decision, model)

	d.logger.Debug("request planned",
		zap.String("decision_id", decision.ID),
		zap.String("task_type", decision.TaskType),
		zap.String("complexity", string(decision.Complexity())),
		zap.String("plan", string(out.Plan.Type)),
		zap.String("model", model),
	)

	if d.executor == nil {
		err = d.render(out, out.Plan, format.JSON)
		d.record(out, start)
		return out, err
	}

	res, err := d.executor.Run(ctx, out.Plan)
	if err != nil {
		rec := d.handler.Handle(err, ComponentPipeline)
		if !rec.CanContinue || out.Plan.Type != orchestrator.MultiAgent || ctx.Err() != nil {
			d.report(out, rec)
			d.record(out, start)
			return out, err
		}

		d.logger.Info("retrying with a single agent",
			zap.String("decision_id", decision.ID),
			zap.String("failure", rec.ID),
		)
		out.Retried = true
		simple := orchestrator.SingleAgentPlan(decision, model)
		res, err = d.executor.Run(ctx, simple)
		if err != nil {
			d.fail(out, err, ComponentPipeline)
			d.record(out, start)
			return out, err
		}
		out.Plan = simple
	}
	out.Result = res

	err = d.render(out, res.Text(), format.Auto)
	d.record(out, start)
	return out, err
}

func (d *Dispatcher) render(out *Outcome, content any, f format.Format) error {
	text, err := d.formatter.Format(content, f, formatContext(out.Decision))
	if err != nil {
		d.fail(out, err, ComponentFormat)
		return err
	}
	out.Output = text
	return nil
}

func (d *Dispatcher) fail(out *Outcome, err error, component string) {
	d.report(out, d.handler.Handle(err, component))
}

func (d *Dispatcher) report(out *Outcome, rec triage.Record) {
	out.Error = &rec
	out.Output = format.FormatError(format.ErrorView{
		Severity:    string(rec.Severity),
		Message:     rec.Message,
		Location:    rec.Component,
		Suggestions: rec.Recovery.Strategy.Steps,
	})
}

func (d *Dispatcher) record(out *Outcome, start time.Time) {
	elapsed := d.now().Sub(start)
	in := metalogic.Interaction{
		Success:       out.Error == nil,
		ExecutionTime: &elapsed,
	}
	if out.Decision != nil {
		in.TaskType = out.Decision.TaskType
		in.OperationType = string(out.Decision.Classification.OperationType)
	}
	if out.Error != nil {
		in.ErrorKind = out.Error.Kind
	}
	d.recorder.RecordInteraction(in)
}

func formatContext(decision *router.Decision) *format.Context {
	if decision == nil {
		return nil
	}
	ctx := &format.Context{}
	if decision.TaskType == tools.TaskGenerateCode {
		ctx.RequestType = format.RequestCodeGeneration
	}
	if exts := decision.Parameters.FileExtensions; len(exts) > 0 {
		ctx.Language = languageFor(exts[0])
	}
	return ctx
}

var languages = map[string]string{
	".py":   "python",
	".go":   "go",
	".js":   "javascript",
	".ts":   "typescript",
	".java": "java",
	".rs":   "rust",
	".rb":   "ruby",
	".sh":   "bash",
	".md":   "markdown",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
}

func languageFor(ext string) string {
	return languages[ext]
}
