package dispatch

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/orchestrator"
	"github.com/zen-systems/intentgate/pkg/pipeline"
	"github.com/zen-systems/intentgate/pkg/router"
	"github.com/zen-systems/intentgate/pkg/tools"
	"github.com/zen-systems/intentgate/pkg/triage"
)

func newMockDispatcher(responses map[string]string) (*Dispatcher, *adapter.MockAdapter) {
	mock := adapter.NewMockAdapterWithResponses(responses, "")
	cfg := config.DefaultRoutingConfig()
	runner := pipeline.NewRunner(
		pipeline.WithAdapter(mock),
		pipeline.WithRetry(config.RetryConfig{}),
	)
	return New(router.NewEngine(cfg), WithExecutor(runner)), mock
}

func TestHandleSingleAgent(t *testing.T) {
	d, mock := newMockDispatcher(map[string]string{"Read app.py": "print('hi')"})

	out, err := d.Handle(context.Background(), "Read app.py", nil)
	require.NoError(t, err)

	assert.Nil(t, out.Error)
	assert.False(t, out.Retried)
	assert.Equal(t, tools.TaskReadFile, out.Decision.TaskType)
	assert.Equal(t, orchestrator.SingleAgent, out.Plan.Type)
	assert.Equal(t, "mock-1", out.Plan.Model)
	assert.Equal(t, "print('hi')", out.Output)
	assert.Len(t, mock.Calls(), 1)

	rec := d.Recorder()
	assert.Equal(t, 1, rec.PatternCount(tools.TaskReadFile))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Interactions().WithLabelValues(tools.TaskReadFile, "success")))
}

// namedAdapter serves mock replies under a provider name.
type namedAdapter struct {
	*adapter.MockAdapter
	name string
}

func (a namedAdapter) Name() string { return a.name }

func TestHandleRoutesToConfiguredProviders(t *testing.T) {
	openai := namedAdapter{adapter.NewMockAdapter(), "openai"}
	anthropic := namedAdapter{adapter.NewMockAdapter(), "anthropic"}
	runner := pipeline.NewRunner(
		pipeline.WithAdapter(openai),
		pipeline.WithAdapter(anthropic),
		pipeline.WithRetry(config.RetryConfig{}),
		pipeline.WithFallbackModel("gpt-4o-mini"),
	)
	d := New(router.NewEngine(config.DefaultRoutingConfig()), WithExecutor(runner))

	out, err := d.Handle(context.Background(), "Analyze the code in main.py for bugs and refactor it", nil)
	require.NoError(t, err)

	assert.Nil(t, out.Error)
	assert.False(t, out.Retried)
	assert.Equal(t, orchestrator.MultiAgent, out.Plan.Type)
	assert.Equal(t, "gpt-4.1", out.Plan.Model)
	assert.NotEmpty(t, out.Output)

	require.NotNil(t, out.Result)
	for _, id := range out.Result.Order {
		task := out.Result.Tasks[id]
		assert.Equal(t, "gpt-4.1", task.Model)
		require.Len(t, task.Reports, 1)
		assert.Equal(t, "openai", task.Reports[0].Adapter)
		assert.False(t, task.Reports[0].FallbackUsed)
	}
	assert.Len(t, openai.Calls(), 3)
	assert.Empty(t, anthropic.Calls())
}

func TestHandleSingleProviderGetsItsOwnModel(t *testing.T) {
	anthropic := namedAdapter{adapter.NewMockAdapter(), "anthropic"}
	runner := pipeline.NewRunner(pipeline.WithAdapter(anthropic), pipeline.WithRetry(config.RetryConfig{}))
	d := New(router.NewEngine(config.DefaultRoutingConfig()), WithExecutor(runner))

	out, err := d.Handle(context.Background(), "Read app.py", nil)
	require.NoError(t, err)

	calls := anthropic.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "claude-opus-4-20250514", calls[0].Model)
	assert.Equal(t, "claude-opus-4-20250514", out.Plan.Model)
}

func TestHandleCodeGenerationIsFenced(t *testing.T) {
	d, mock := newMockDispatcher(map[string]string{"Create a comprehensive report": "def f(): pass"})

	out, err := d.Handle(context.Background(), "Create a function in utils.py", nil)
	require.NoError(t, err)

	assert.Equal(t, tools.TaskGenerateCode, out.Decision.TaskType)
	assert.Equal(t, orchestrator.MultiAgent, out.Plan.Type)
	require.NotNil(t, out.Result)
	assert.Equal(t, []string{"plan", "execute", "report"}, out.Result.Order)
	assert.Equal(t, "```python\ndef f(): pass\n```", out.Output)
	assert.Len(t, mock.Calls(), 3)
}

func TestHandleWithoutExecutorOutputsPlan(t *testing.T) {
	d := New(router.NewEngine(nil))

	out, err := d.Handle(context.Background(), "Read app.py", nil)
	require.NoError(t, err)
	assert.Nil(t, out.Result)
	assert.True(t, strings.HasPrefix(out.Output, "{\n"))
	assert.Contains(t, out.Output, `"type": "single_agent"`)
}

func TestHandleEmptyRequest(t *testing.T) {
	d, _ := newMockDispatcher(nil)

	out, err := d.Handle(context.Background(), "   ", nil)
	require.ErrorIs(t, err, router.ErrEmptyRequest)

	assert.Nil(t, out.Decision)
	require.NotNil(t, out.Error)
	assert.Equal(t, triage.KindValue, out.Error.Kind)
	assert.Equal(t, triage.SeverityHigh, out.Error.Severity)
	assert.True(t, strings.HasPrefix(out.Output, "⚠️ **ERROR**"))
	assert.Contains(t, out.Output, "**Location:** `router`")
	assert.Equal(t, 1, d.Recorder().ErrorCount(triage.KindValue))
}

type fakeExecutor struct {
	errs  []error
	plans []*orchestrator.Plan
}

func (f *fakeExecutor) Run(_ context.Context, plan *orchestrator.Plan) (*pipeline.Result, error) {
	f.plans = append(f.plans, plan)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &pipeline.Result{RunID: "run", Raw: "done"}, nil
}

func TestHandleRetriesAsSingleAgent(t *testing.T) {
	exec := &fakeExecutor{errs: []error{&adapter.AdapterError{Status: 400, Err: errors.New("rejected")}}}
	d := New(router.NewEngine(nil), WithExecutor(exec))

	out, err := d.Handle(context.Background(), "Analyze the code in main.py for bugs and refactor it", nil)
	require.NoError(t, err)

	require.Len(t, exec.plans, 2)
	assert.Equal(t, orchestrator.MultiAgent, exec.plans[0].Type)
	assert.Equal(t, orchestrator.SingleAgent, exec.plans[1].Type)
	assert.True(t, out.Retried)
	assert.Equal(t, orchestrator.SingleAgent, out.Plan.Type)
	assert.Nil(t, out.Error)
	assert.Equal(t, "done", out.Output)

	history := d.Handler().History()
	require.Len(t, history, 1)
	assert.Equal(t, triage.KindRuntime, history[0].Kind)
	assert.True(t, history[0].CanContinue)
}

func TestHandleRetryFailsAgain(t *testing.T) {
	rejected := &adapter.AdapterError{Status: 400, Err: errors.New("rejected")}
	exec := &fakeExecutor{errs: []error{rejected, rejected}}
	d := New(router.NewEngine(nil), WithExecutor(exec))

	out, err := d.Handle(context.Background(), "Analyze the code in main.py for bugs and refactor it", nil)
	require.ErrorIs(t, err, rejected)

	assert.True(t, out.Retried)
	require.NotNil(t, out.Error)
	assert.Equal(t, triage.KindRuntime, out.Error.Kind)
	assert.Contains(t, out.Output, "**Suggestions:**\n- Retry with backoff")
	assert.Len(t, d.Handler().History(), 2)
}

func TestHandleCriticalFailureHalts(t *testing.T) {
	exec := &fakeExecutor{errs: []error{&fs.PathError{Op: "open", Path: "main.py", Err: fs.ErrPermission}}}
	d := New(router.NewEngine(nil), WithExecutor(exec))

	out, err := d.Handle(context.Background(), "Analyze the code in main.py for bugs and refactor it", nil)
	require.Error(t, err)

	assert.Len(t, exec.plans, 1)
	assert.False(t, out.Retried)
	require.NotNil(t, out.Error)
	assert.Equal(t, triage.SeverityCritical, out.Error.Severity)
	assert.False(t, out.Error.CanContinue)
	assert.True(t, strings.HasPrefix(out.Output, "❌ **CRITICAL ERROR**"))
	assert.Equal(t, 1, d.Recorder().ErrorCount(triage.KindOS))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Recorder().Interactions().WithLabelValues(tools.TaskAnalyzeCode, "failure")))
}

func TestHandleSingleAgentFailureIsNotRetried(t *testing.T) {
	exec := &fakeExecutor{errs: []error{&adapter.AdapterError{Status: 400, Err: errors.New("rejected")}}}
	d := New(router.NewEngine(nil), WithExecutor(exec))

	out, err := d.Handle(context.Background(), "Read app.py", nil)
	require.Error(t, err)
	assert.Len(t, exec.plans, 1)
	assert.False(t, out.Retried)
	assert.NotNil(t, out.Error)
}
