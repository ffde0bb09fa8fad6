package intent

// Intent is the coarse classification of what kind of action a request represents.
type Intent string

const (
	IntentExplicitCommand Intent = "explicit"
	IntentImplicitRequest Intent = "implicit"
	IntentAmbiguous       Intent = "ambiguous"
	IntentInitialization  Intent = "init"
	IntentGeneration      Intent = "generation"
	IntentDebugging       Intent = "debugging"
	IntentTesting         Intent = "testing"
)

// OperationType is the domain a request acts on. The zero value means no
// indicator matched.
type OperationType string

const (
	OperationNone     OperationType = ""
	OperationFile     OperationType = "file_operation"
	OperationCode     OperationType = "code_operation"
	OperationGit      OperationType = "git_operation"
	OperationSearch   OperationType = "search"
	OperationTerminal OperationType = "terminal"
)

// Routing tells the caller how to proceed with a classified request.
type Routing string

const (
	RouteExecute Routing = "execute_immediately"
	RouteConfirm Routing = "confirm_with_preview"
	RouteClarify Routing = "present_options_menu"
)

// Context is optional caller-supplied environment information.
type Context struct {
	CurrentDirectory string   `json:"current_directory,omitempty" yaml:"current_directory,omitempty"`
	ProjectType      string   `json:"project_type,omitempty" yaml:"project_type,omitempty"`
	RecentOperations []string `json:"recent_operations,omitempty" yaml:"recent_operations,omitempty"`
}

// ContextInfo is the evaluated context attached to a classification.
type ContextInfo struct {
	HasContext       bool     `json:"has_context"`
	CurrentDirectory string   `json:"current_directory,omitempty"`
	ProjectType      string   `json:"project_type,omitempty"`
	RecentOperations []string `json:"recent_operations,omitempty"`
	FileExtensions   []string `json:"file_extensions,omitempty"`
	DetectedPaths    []string `json:"detected_paths,omitempty"`
}

// Classification is the immutable result of classifying one request.
type Classification struct {
	Intent                Intent        `json:"intent"`
	Confidence            float64       `json:"confidence"`
	OperationType         OperationType `json:"operation_type,omitempty"`
	Input                 string        `json:"input"`
	Context               ContextInfo   `json:"context"`
	RequiresClarification bool          `json:"requires_clarification"`
	Routing               Routing       `json:"routing"`
}

// Parameters are the regex-extracted arguments of a request.
type Parameters struct {
	FilePaths      []string `json:"file_paths,omitempty"`
	DirectoryPaths []string `json:"directory_paths,omitempty"`
	FileExtensions []string `json:"file_extensions,omitempty"`
	// Command is the matched verb group for explicit commands.
	Command string `json:"command,omitempty"`
	// SlashCommand is the first word after the command prefix, if any.
	SlashCommand string `json:"slash_command,omitempty"`
}
