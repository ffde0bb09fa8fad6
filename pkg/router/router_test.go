package router

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/intent"
	"github.com/zen-systems/intentgate/pkg/tools"
)

func TestDecideScenarios(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		op           intent.OperationType
		taskType     string
		toolSet      string
		toolCount    int
		complexity   Complexity
		routing      intent.Routing
		confirmation bool
		parallel     bool
	}{
		{
			name:       "read a file",
			input:      "Read app.py",
			op:         intent.OperationFile,
			taskType:   tools.TaskReadFile,
			toolSet:    tools.SetFileOperations,
			toolCount:  3,
			complexity: ComplexityLow,
			routing:    intent.RouteExecute,
		},
		{
			name:         "analyze code",
			input:        "Analyze the code in main.py for bugs and refactor it",
			op:           intent.OperationCode,
			taskType:     tools.TaskAnalyzeCode,
			toolSet:      tools.SetCodeAnalysis,
			toolCount:    4,
			complexity:   ComplexityMedium,
			routing:      intent.RouteConfirm,
			confirmation: true,
		},
		{
			name:         "complex search",
			input:        "search everywhere for config",
			op:           intent.OperationSearch,
			taskType:     tools.TaskComplexSearch,
			toolSet:      tools.SetComprehensive,
			toolCount:    8,
			complexity:   ComplexityHigh,
			routing:      intent.RouteClarify,
			confirmation: true,
			parallel:     true,
		},
		{
			name:         "selector fallback",
			input:        "hello there",
			op:           intent.OperationNone,
			taskType:     "",
			toolSet:      tools.SetComprehensive,
			toolCount:    5,
			complexity:   ComplexityHigh,
			routing:      intent.RouteClarify,
			confirmation: true,
		},
	}

	e := NewEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Decide(tt.input, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.op, d.Classification.OperationType)
			assert.Equal(t, tt.taskType, d.TaskType)
			assert.Equal(t, tt.toolSet, d.ToolSet)
			assert.Len(t, d.Tools, tt.toolCount)
			assert.Equal(t, tools.Names(d.Tools), d.SelectedTools)
			assert.Equal(t, tt.complexity, d.Complexity())
			assert.Equal(t, tt.routing, d.Routing)
			assert.Equal(t, tt.confirmation, d.RequiresConfirmation)
			assert.Equal(t, tt.parallel, d.Strategy.ParallelPossible)
			assert.Equal(t, tt.input, d.Input())

			_, err = uuid.Parse(d.ID)
			assert.NoError(t, err)
		})
	}
}

func TestDecideExtractsParameters(t *testing.T) {
	d, err := NewEngine(nil).Decide("Read src/app.py", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app.py"}, d.Parameters.FilePaths)
	assert.Equal(t, "read", d.Parameters.Command)
	assert.True(t, d.Strategy.ImmediateExecution)
}

func TestDecideEmptyRequest(t *testing.T) {
	e := NewEngine(nil)
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := e.Decide(input, nil)
		assert.ErrorIs(t, err, ErrEmptyRequest)
	}
}

func TestDecideUsesSelectorMaxTools(t *testing.T) {
	cfg := config.DefaultRoutingConfig()
	cfg.Selector.MaxTools = 2

	d, err := NewEngine(cfg).Decide("hello there", nil)
	require.NoError(t, err)
	assert.Len(t, d.Tools, 2)
	assert.Equal(t, ComplexityLow, d.Complexity())
}

func TestDecideWithoutShell(t *testing.T) {
	e := NewEngine(nil, WithProvider(tools.DefaultCatalog().WithUnavailable(tools.ShellTool)))

	d, err := e.Decide("run the linter", nil)
	require.NoError(t, err)
	assert.Equal(t, tools.TaskRunCommands, d.TaskType)
	assert.Equal(t, tools.SetComprehensive, d.ToolSet)
	assert.NotEmpty(t, d.Tools)
	assert.NotContains(t, d.SelectedTools, tools.ShellTool)
}

func TestDecideRecordsClassifierHistory(t *testing.T) {
	var events []any
	cfg := config.DefaultRoutingConfig()
	c := intent.NewClassifier(cfg, intent.WithSink(sinkFunc(func(e any) { events = append(events, e) })))
	e := NewEngine(cfg, WithClassifier(c))

	_, err := e.Decide("Read app.py", nil)
	require.NoError(t, err)
	assert.Len(t, e.Classifier().History(), 1)
	assert.Len(t, events, 1)
}

func TestRecommend(t *testing.T) {
	e := NewEngine(nil)

	rec, handles, err := e.Recommend(tools.TaskGitOperations)
	require.NoError(t, err)
	assert.Equal(t, "bash", rec.Primary)
	assert.Equal(t, []string{tools.ShellTool}, tools.Names(handles))

	_, _, err = e.Recommend("juggle")
	assert.ErrorIs(t, err, ErrUnknownTaskType)

	assert.Len(t, e.TaskTypes(), 17)
}

type sinkFunc func(any)

func (f sinkFunc) Record(e any) { f(e) }
