package intent

import "regexp"

type verbPattern struct {
	name string
	re   *regexp.Regexp
}

// explicitPatterns are tested in order; the first match names the command.
var explicitPatterns = []verbPattern{
	{"create", regexp.MustCompile(`\b(create|make|new|add)\s+`)},
	{"read", regexp.MustCompile(`\b(read|show|display|view|open|cat)\s+`)},
	{"write", regexp.MustCompile(`\b(write|save|update|modify|edit|change)\s+`)},
	{"delete", regexp.MustCompile(`\b(delete|remove|rm|del)\s+`)},
	{"run", regexp.MustCompile(`\b(run|execute|start|launch)\s+`)},
	{"test", regexp.MustCompile(`\b(test|spec|check)\s+`)},
	{"init", regexp.MustCompile(`\b(init|initialize|setup|bootstrap)\s+`)},
	{"fix", regexp.MustCompile(`\b(fix|debug|repair|resolve)\s+`)},
}

var implicitPatterns = []verbPattern{
	{"need", regexp.MustCompile(`\b(need|want|require|should have)\s+`)},
	{"problem", regexp.MustCompile(`\b(problem|issue|error|bug|broken|not working)\s+`)},
	{"improve", regexp.MustCompile(`\b(improve|better|optimize|enhance|refactor)\s+`)},
	{"add", regexp.MustCompile(`\b(add|implement|include)\s+`)},
}

// Keyword fallbacks checked after the verb patterns, in order.
var keywordIntents = []struct {
	intent   Intent
	keywords []string
}{
	{IntentInitialization, []string{"init", "initialize", "setup"}},
	{IntentGeneration, []string{"create", "generate", "make", "new"}},
	{IntentDebugging, []string{"fix", "debug", "error", "bug"}},
	{IntentTesting, []string{"test", "spec", "check"}},
}

// operationIndicators are checked in order and the first list with a
// substring hit wins. Code indicators come before file indicators so that
// "analyze the code in main.py" is a code operation even though ".py" is a
// file indicator.
var operationIndicators = []struct {
	op         OperationType
	indicators []string
}{
	{OperationCode, []string{
		"code", "function", "class", "method", "component", "module",
		"programming", "implement", "generate", "create", "build",
	}},
	{OperationFile, []string{
		"file", "directory", "folder", "path", ".py", ".js", ".ts", ".md",
		".json", ".yaml", ".yml", ".txt", ".csv", "read", "write", "save",
	}},
	{OperationGit, []string{
		"git", "commit", "push", "pull", "branch", "merge", "rebase",
		"stash", "tag", "remote", "repository", "repo",
	}},
	{OperationSearch, []string{
		"search", "find", "grep", "glob", "look for", "locate",
		"where is", "show me", "list",
	}},
	{OperationTerminal, []string{"run", "execute", "command", "bash", "shell"}},
}

var (
	extensionPattern = regexp.MustCompile(`\.\w+`)
	filePathPattern  = regexp.MustCompile(`[\w/\\]+\.\w+`)
	dirPathPattern   = regexp.MustCompile(`[\w/\\]+/`)
)
