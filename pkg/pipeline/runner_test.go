package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/orchestrator"
	"github.com/zen-systems/intentgate/pkg/tools"
)

var noBackoff = config.RetryConfig{MaxRetries: 2, BaseBackoffMs: 0, MaxBackoffMs: 0}

func multiAgentPlan() *orchestrator.Plan {
	return &orchestrator.Plan{
		Type:  orchestrator.MultiAgent,
		Roles: []orchestrator.Role{orchestrator.RolePlanner, orchestrator.RoleCodeAnalyst, orchestrator.RoleReportWriter},
		Tasks: []orchestrator.Task{
			{ID: "plan", Description: "Plan the review", ExpectedOutput: "steps", Role: orchestrator.RolePlanner},
			{ID: "execute", Description: "Review the code", ExpectedOutput: "findings", Role: orchestrator.RoleCodeAnalyst, DependsOn: []string{"plan"}},
			{ID: "report", Description: "Write the report", ExpectedOutput: "report", Role: orchestrator.RoleReportWriter, DependsOn: []string{"plan", "execute"}},
		},
		Tools:   []tools.Handle{{Name: "Read", Category: tools.CategoryFileOperations}, {Name: "Grep"}},
		Model:   "mock-1",
		Request: "review main.go",
	}
}

func TestRunMultiAgentPlan(t *testing.T) {
	mock := adapter.NewMockAdapterWithResponses(map[string]string{
		"Plan the review":  "1. read 2. judge",
		"Review the code":  "looks fine",
		"Write the report": "All good.",
	}, "")
	r := NewRunner(WithAdapter(mock), WithRetry(noBackoff))

	res, err := r.Run(context.Background(), multiAgentPlan())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"plan", "execute", "report"}, res.Order)
	assert.Equal(t, "report", res.Final)
	assert.Equal(t, "All good.", res.Raw)
	assert.Equal(t, "All good.", res.Text())
	assert.Contains(t, res.Output, "## execute\n\nlooks fine")

	report := res.Tasks["report"].Prompt
	assert.Contains(t, report, "Available tools: Read, Grep")
	assert.Contains(t, report, "Output of plan:\n1. read 2. judge")
	assert.Contains(t, report, "Output of execute:\nlooks fine")
	assert.NotContains(t, res.Tasks["plan"].Prompt, "Output of")

	calls := mock.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "mock-1", calls[0].Model)
	assert.Equal(t, 0.7, calls[0].Temperature)
	assert.Contains(t, calls[2].System(), "Report Writer")
}

func TestRunRetriesTransientErrors(t *testing.T) {
	mock := adapter.NewMockAdapter()
	mock.FailNext(&adapter.AdapterError{Status: 503}, &adapter.AdapterError{Status: 429})
	r := NewRunner(WithAdapter(mock), WithRetry(noBackoff))

	plan := multiAgentPlan()
	res, err := r.Run(context.Background(), plan)
	require.NoError(t, err)

	reports := res.Tasks["plan"].Reports
	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Retries)
	assert.Empty(t, reports[0].Error)
	assert.Len(t, mock.Calls(), 5)
}

func TestRunStopsOnPermanentError(t *testing.T) {
	badRequest := &adapter.AdapterError{Status: 400, Err: errors.New("bad request")}
	stub := &scripted{name: "mock", errs: map[string]error{"Review the code": badRequest}}
	r := NewRunner(WithAdapter(stub), WithRetry(noBackoff))

	res, err := r.Run(context.Background(), multiAgentPlan())
	require.Error(t, err)
	assert.ErrorIs(t, err, badRequest)
	assert.Contains(t, err.Error(), "task execute")

	require.NotNil(t, res)
	assert.Equal(t, []string{"plan", "execute"}, res.Order)
	reports := res.Tasks["execute"].Reports
	require.Len(t, reports, 1)
	assert.Zero(t, reports[0].Retries)
	assert.Equal(t, "bad request", reports[0].Error)
	assert.Equal(t, 400, reports[0].Status)
	assert.Empty(t, res.Raw)
}

func TestRunFallsBackToSecondModel(t *testing.T) {
	primary := &scripted{name: "anthropic", fail: &adapter.AdapterError{Status: 500, Err: errors.New("down")}}
	mock := adapter.NewMockAdapter()
	r := NewRunner(
		WithAdapter(primary),
		WithAdapter(mock),
		WithRetry(config.RetryConfig{MaxRetries: 1}),
		WithFallbackModel("mock-1"),
	)

	plan := multiAgentPlan()
	plan.Model = "quality"
	res, err := r.Run(context.Background(), plan)
	require.NoError(t, err)

	reports := res.Tasks["plan"].Reports
	require.Len(t, reports, 2)
	assert.Equal(t, "anthropic", reports[0].Adapter)
	assert.Equal(t, "claude-sonnet-4-20250514", reports[0].Model)
	assert.Equal(t, 1, reports[0].Retries)
	assert.Equal(t, "down", reports[0].Error)
	assert.Equal(t, 500, reports[0].Status)
	assert.False(t, reports[0].FallbackUsed)
	assert.Equal(t, "mock", reports[1].Adapter)
	assert.True(t, reports[1].FallbackUsed)
}

func TestRunErrors(t *testing.T) {
	r := NewRunner(WithAdapter(adapter.NewMockAdapter()))

	_, err := r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyPlan)

	_, err = r.Run(context.Background(), &orchestrator.Plan{Type: orchestrator.SingleAgent})
	assert.ErrorIs(t, err, ErrEmptyPlan)

	_, err = NewRunner().Run(context.Background(), multiAgentPlan())
	assert.ErrorIs(t, err, ErrNoAdapters)

	two := NewRunner(WithAdapter(adapter.NewMockAdapter()), WithAdapter(&scripted{name: "openai"}))
	plan := multiAgentPlan()
	plan.Model = "gemini-2.0-pro"
	_, err = two.Run(context.Background(), plan)
	assert.ErrorIs(t, err, ErrNoAdapter)
}

func TestRunUsesFallbackWhenModelHasNoAdapter(t *testing.T) {
	openai := &scripted{name: "openai"}
	anthropic := &scripted{name: "anthropic"}
	r := NewRunner(
		WithAdapter(openai),
		WithAdapter(anthropic),
		WithRetry(noBackoff),
		WithFallbackModel("gpt-4o-mini"),
	)

	plan := multiAgentPlan()
	plan.Model = "glm-4.6"
	res, err := r.Run(context.Background(), plan)
	require.NoError(t, err)

	for _, id := range res.Order {
		reports := res.Tasks[id].Reports
		require.Len(t, reports, 1)
		assert.Equal(t, "openai", reports[0].Adapter)
		assert.Equal(t, "gpt-4o-mini", reports[0].Model)
		assert.True(t, reports[0].FallbackUsed)
		assert.Equal(t, "gpt-4o-mini", res.Tasks[id].Model)
	}
}

func TestRunCanceled(t *testing.T) {
	mock := adapter.NewMockAdapter()
	mock.FailNext(&adapter.AdapterError{Status: 503})
	r := NewRunner(WithAdapter(mock), WithRetry(config.RetryConfig{MaxRetries: 3, BaseBackoffMs: 1000, MaxBackoffMs: 1000}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, multiAgentPlan())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunCustomPrompt(t *testing.T) {
	tmpl, err := ParsePrompt(`[{{.Profile.Title}}] {{.Request}} / {{.Task.ID}}`)
	require.NoError(t, err)
	mock := adapter.NewMockAdapter()
	r := NewRunner(WithAdapter(mock), WithPromptTemplate(tmpl))

	plan := multiAgentPlan()
	res, err := r.Run(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "[Task Planner] review main.go / plan", res.Tasks["plan"].Prompt)
}

func TestComputeBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{3, time.Second},
		{8, time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, computeBackoff(200, 1000, tt.attempt))
	}
}

func TestResultText(t *testing.T) {
	var nilResult *Result
	assert.Equal(t, "", nilResult.Text())
	assert.Equal(t, "combined", (&Result{Output: "combined"}).Text())
	assert.Equal(t, "raw", (&Result{Raw: "raw", Output: "combined"}).Text())

	res := &Result{Tasks: map[string]*TaskResult{
		"a": {Usage: &adapter.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}},
		"b": {Usage: &adapter.Usage{PromptTokens: 4, CompletionTokens: 5, TotalTokens: 9}},
		"c": {},
	}}
	assert.Equal(t, adapter.Usage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12}, res.Usage())
}

// scripted fails every call with fail, or fails calls whose prompt contains
// a key of errs.
type scripted struct {
	name string
	fail error
	errs map[string]error
}

func (s *scripted) Name() string     { return s.name }
func (s *scripted) Models() []string { return nil }

func (s *scripted) Generate(_ context.Context, req adapter.Request) (*adapter.Response, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	prompt := req.LastUserMessage()
	for key, err := range s.errs {
		if strings.Contains(prompt, key) {
			return nil, err
		}
	}
	return &adapter.Response{Text: "ok", Adapter: s.name, Model: req.Model}, nil
}
