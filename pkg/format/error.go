package format

import (
	"fmt"
	"strings"
)

// ErrorView is the presentable part of a failure.
type ErrorView struct {
	Severity    string
	Message     string
	Location    string
	Suggestions []string
}

// FormatError renders a failure as markdown with a severity banner,
// location, message and suggested next steps.
func FormatError(e ErrorView) string {
	message := e.Message
	if message == "" {
		message = "Unknown error"
	}

	var sb strings.Builder
	switch e.Severity {
	case "critical":
		sb.WriteString("❌ **CRITICAL ERROR**\n\n")
	case "high":
		sb.WriteString("⚠️ **ERROR**\n\n")
	default:
		sb.WriteString("ℹ️ **WARNING**\n\n")
	}
	if e.Location != "" {
		fmt.Fprintf(&sb, "**Location:** `%s`\n\n", e.Location)
	}
	fmt.Fprintf(&sb, "**Message:** %s\n\n", message)
	if len(e.Suggestions) > 0 {
		sb.WriteString("**Suggestions:**\n")
		for _, s := range e.Suggestions {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}
	return sb.String()
}
