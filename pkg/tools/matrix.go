package tools

import (
	"sort"
	"strings"

	"github.com/zen-systems/intentgate/pkg/intent"
)

// Task types understood by the matrix.
const (
	TaskCreateSingleFile    = "create_single_file"
	TaskCreateMultipleFiles = "create_multiple_files"
	TaskEditSingleFile      = "edit_single_file"
	TaskEditMultipleSpots   = "edit_multiple_spots"
	TaskReadFile            = "read_file"
	TaskDeleteFiles         = "delete_files"
	TaskSearchByName        = "search_by_name"
	TaskSearchByContent     = "search_by_content"
	TaskComplexSearch       = "complex_search"
	TaskGenerateCode        = "generate_code"
	TaskAnalyzeCode         = "analyze_code"
	TaskRunCommands         = "run_commands"
	TaskInstallPackages     = "install_packages"
	TaskTestExecution       = "test_execution"
	TaskWebResearch         = "web_research"
	TaskDocumentationLookup = "documentation_lookup"
	TaskGitOperations       = "git_operations"
)

// Recommendation is one row of the task-type table.
type Recommendation struct {
	Primary    string   `json:"primary"`
	Secondary  []string `json:"secondary,omitempty"`
	Conditions string   `json:"conditions"`
	ToolSet    string   `json:"tool_set"`
}

func (r Recommendation) usesShell() bool {
	if r.Primary == "bash" {
		return true
	}
	for _, s := range r.Secondary {
		if s == "bash" {
			return true
		}
	}
	return false
}

var taskTable = map[string]Recommendation{
	TaskCreateSingleFile:    {Primary: "write", Secondary: []string{"bash"}, Conditions: "Parent dir must exist", ToolSet: SetFileOperations},
	TaskCreateMultipleFiles: {Primary: "write", Secondary: []string{"bash"}, Conditions: "Related files", ToolSet: SetFileOperations},
	TaskEditSingleFile:      {Primary: "edit", Secondary: []string{"write"}, Conditions: "<5 changes", ToolSet: SetFileOperations},
	TaskEditMultipleSpots:   {Primary: "edit", Secondary: []string{"write"}, Conditions: "Same file", ToolSet: SetFileOperations},
	TaskReadFile:            {Primary: "read", Conditions: "Always use Read tool", ToolSet: SetFileOperations},
	TaskDeleteFiles:         {Primary: "bash", Conditions: "With confirmation", ToolSet: SetShellOperations},
	TaskSearchByName:        {Primary: "glob", Secondary: []string{"bash"}, Conditions: "Pattern matching", ToolSet: SetFileOperations},
	TaskSearchByContent:     {Primary: "grep", Secondary: []string{"bash"}, Conditions: "Text in files", ToolSet: SetFileOperations},
	TaskComplexSearch:       {Primary: "task", Secondary: []string{"glob", "grep"}, Conditions: "Multi-step exploration", ToolSet: SetComprehensive},
	TaskGenerateCode:        {Primary: "write", Secondary: []string{"code_interpreter"}, Conditions: "Code generation", ToolSet: SetCodeAnalysis},
	TaskAnalyzeCode:         {Primary: "read", Secondary: []string{"code_interpreter", "github_search"}, Conditions: "Code analysis", ToolSet: SetCodeAnalysis},
	TaskRunCommands:         {Primary: "bash", Conditions: "Check sandbox", ToolSet: SetShellOperations},
	TaskInstallPackages:     {Primary: "bash", Conditions: "Detect package manager", ToolSet: SetShellOperations},
	TaskTestExecution:       {Primary: "bash", Conditions: "Platform-appropriate", ToolSet: SetShellOperations},
	TaskWebResearch:         {Primary: "web_search", Secondary: []string{"web_fetch"}, Conditions: "Current information", ToolSet: SetWebResearch},
	TaskDocumentationLookup: {Primary: "web_fetch", Secondary: []string{"web_search"}, Conditions: "Library docs", ToolSet: SetWebResearch},
	TaskGitOperations:       {Primary: "bash", Conditions: "Follow git practices", ToolSet: SetShellOperations},
}

var comprehensiveRecommendation = Recommendation{
	Primary:    "comprehensive",
	Conditions: "General purpose",
	ToolSet:    SetComprehensive,
}

// capabilityTools maps abstract capability verbs to concrete tool names.
var capabilityTools = map[string]string{
	"write":            "FileWriterTool",
	"read":             "FileReadTool",
	"edit":             "FileReadTool",
	"bash":             ShellTool,
	"glob":             "DirectorySearchTool",
	"grep":             ShellTool,
	"code_interpreter": "CodeInterpreterTool",
	"github_search":    "GithubSearchTool",
	"web_search":       "SerperDevTool",
	"web_fetch":        "WebsiteSearchTool",
	"task":             SetComprehensive,
}

// ToolFor returns the concrete tool behind a capability verb, or "".
func ToolFor(capability string) string {
	return capabilityTools[capability]
}

// Matrix maps task types to tool sets.
type Matrix struct {
	provider Provider
}

// NewMatrix creates a matrix resolving tool sets through provider.
func NewMatrix(provider Provider) *Matrix {
	return &Matrix{provider: provider}
}

// Recommendation returns the table row for a task type. Unknown task types
// get the comprehensive recommendation.
func (m *Matrix) Recommendation(taskType string) Recommendation {
	if rec, ok := taskTable[taskType]; ok {
		return rec
	}
	return comprehensiveRecommendation
}

// Known reports whether taskType is in the table.
func (m *Matrix) Known(taskType string) bool {
	_, ok := taskTable[taskType]
	return ok
}

// TaskTypes returns every task type, sorted.
func (m *Matrix) TaskTypes() []string {
	types := make([]string, 0, len(taskTable))
	for t := range taskTable {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SelectToolsForTask resolves the task's tool set, appending the shell
// capability for bash tasks when the environment has it. The result is never
// empty: unknown task types and sets that resolve to nothing fall back to the
// comprehensive set.
func (m *Matrix) SelectToolsForTask(taskType string) []Handle {
	_, handles := m.Resolve(taskType)
	return handles
}

// Resolve is SelectToolsForTask that also names the tool set used.
func (m *Matrix) Resolve(taskType string) (string, []Handle) {
	rec, ok := taskTable[taskType]
	if !ok {
		return SetComprehensive, m.comprehensive()
	}

	handles, err := m.provider.ToolSet(rec.ToolSet)
	if err != nil {
		handles = nil
	}
	if rec.usesShell() && m.provider.Available(ShellTool) && !containsTool(handles, ShellTool) {
		handles = append(handles, Handle{Name: ShellTool, Category: CategoryShellOperations})
	}
	if len(handles) == 0 {
		return SetComprehensive, m.comprehensive()
	}
	return rec.ToolSet, handles
}

// TaskTypeFromOperation maps an operation type and the raw request to a task
// type, or "" when nothing matches.
func (m *Matrix) TaskTypeFromOperation(op intent.OperationType, input string) string {
	lower := strings.ToLower(input)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch op {
	case intent.OperationFile:
		switch {
		case has("read", "show", "view"):
			return TaskReadFile
		case has("write", "create", "make"):
			return TaskCreateSingleFile
		case has("edit", "modify", "update"):
			return TaskEditSingleFile
		case has("delete", "remove"):
			return TaskDeleteFiles
		case has("search", "find"):
			return TaskSearchByName
		}
	case intent.OperationCode:
		switch {
		case has("create", "generate"):
			return TaskGenerateCode
		case has("analyze", "review"):
			return TaskAnalyzeCode
		}
	case intent.OperationGit:
		return TaskGitOperations
	case intent.OperationSearch:
		switch {
		case has("grep", "content"):
			return TaskSearchByContent
		case has("glob", "pattern"):
			return TaskSearchByName
		default:
			return TaskComplexSearch
		}
	case intent.OperationTerminal:
		switch {
		case has("install", "package"):
			return TaskInstallPackages
		case has("test"):
			return TaskTestExecution
		default:
			return TaskRunCommands
		}
	}
	return ""
}

func (m *Matrix) comprehensive() []Handle {
	handles, _ := m.provider.ToolSet(SetComprehensive)
	return handles
}

func containsTool(handles []Handle, name string) bool {
	for _, h := range handles {
		if h.Name == name {
			return true
		}
	}
	return false
}
