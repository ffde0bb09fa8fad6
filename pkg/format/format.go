// Package format renders results as code blocks, markdown, tables, JSON or
// plain text.
package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Format is an output representation.
type Format string

const (
	Auto      Format = ""
	Code      Format = "code"
	Markdown  Format = "markdown"
	Table     Format = "table"
	Plain     Format = "plain"
	JSON      Format = "json"
	MultiFile Format = "multi_file"
)

// Request types that select a format when none is given.
const (
	RequestCodeGeneration = "code_generation"
	RequestDocumentation  = "documentation"
	RequestDataDisplay    = "data_display"
)

const (
	defaultLanguage = "python"
	defaultMaxRows  = 20
	fence           = "```"
)

// ErrUnsupportedContent is returned when content cannot be rendered in the
// requested format.
var ErrUnsupportedContent = errors.New("unsupported content")

// Context carries hints for format selection.
type Context struct {
	RequestType string `json:"request_type,omitempty"`
	// Language tags fenced code blocks.
	Language string `json:"language,omitempty"`
}

// Records is a table with an explicit column order.
type Records struct {
	Columns []string
	Rows    []map[string]any
}

// Formatter renders content. The zero value is not usable; use NewFormatter.
type Formatter struct {
	language string
	maxRows  int
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithLanguage sets the code-block language used when the context has none.
func WithLanguage(lang string) Option {
	return func(f *Formatter) {
		if lang != "" {
			f.language = lang
		}
	}
}

// WithMaxRows caps table output.
func WithMaxRows(n int) Option {
	return func(f *Formatter) {
		if n > 0 {
			f.maxRows = n
		}
	}
}

// NewFormatter creates a formatter.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{language: defaultLanguage, maxRows: defaultMaxRows}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders content. An Auto format is inferred from ctx and the
// content's shape.
func (f *Formatter) Format(content any, format Format, ctx *Context) (string, error) {
	if format == Auto {
		format = Infer(content, ctx)
	}

	switch format {
	case Code:
		return f.code(content, ctx), nil
	case Markdown:
		return markdown(content), nil
	case Table:
		return f.table(content), nil
	case JSON:
		return toJSON(content)
	case MultiFile:
		return multiFile(content), nil
	case Plain:
		return plain(content), nil
	default:
		return "", fmt.Errorf("%w: format %q", ErrUnsupportedContent, format)
	}
}

// Infer picks a format: the context's request type first, then the
// content's shape, then plain text.
func Infer(content any, ctx *Context) Format {
	if ctx != nil {
		switch ctx.RequestType {
		case RequestCodeGeneration:
			return Code
		case RequestDocumentation:
			return Markdown
		case RequestDataDisplay:
			return Table
		}
	}
	if isCollection(content) {
		return JSON
	}
	if s, ok := content.(string); ok && strings.Contains(s, fence) {
		return Code
	}
	return Plain
}

func (f *Formatter) code(content any, ctx *Context) string {
	lang := f.language
	if ctx != nil && ctx.Language != "" {
		lang = ctx.Language
	}
	s := plain(content)
	if _, isString := content.(string); isString && strings.HasPrefix(s, fence) {
		return s
	}
	return fence + lang + "\n" + s + "\n" + fence
}

func markdown(content any) string {
	m, ok := stringMap(content)
	if !ok {
		return plain(content)
	}
	var sb strings.Builder
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(&sb, "## %s\n\n%v\n\n", k, m[k])
	}
	return sb.String()
}

func (f *Formatter) table(content any) string {
	columns, rows, ok := records(content)
	if !ok || len(columns) == 0 {
		return plain(content)
	}
	if len(rows) > f.maxRows {
		rows = rows[:f.maxRows]
	}

	var sb strings.Builder
	sb.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	sep := make([]string, len(columns))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows {
		values := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := row[col]; ok && v != nil {
				values[i] = fmt.Sprint(v)
			}
		}
		sb.WriteString("| " + strings.Join(values, " | ") + " |\n")
	}
	return sb.String()
}

func toJSON(content any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(content); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedContent, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func multiFile(content any) string {
	m, ok := stringMap(content)
	if !ok {
		return plain(content)
	}
	var sb strings.Builder
	sb.WriteString("# Generated Files\n\n")
	for _, path := range sortedKeys(m) {
		fmt.Fprintf(&sb, "## %s\n\n%s\n%v\n%s\n\n", path, fence, m[path], fence)
	}
	return sb.String()
}

func plain(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func isCollection(content any) bool {
	if content == nil {
		return false
	}
	if _, ok := content.([]byte); ok {
		return false
	}
	switch reflect.TypeOf(content).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	if _, ok := content.(Records); ok {
		return true
	}
	return false
}

func stringMap(content any) (map[string]any, bool) {
	switch m := content.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	}
	return nil, false
}

// records extracts table columns and rows. Maps have no order, so columns
// come from the sorted keys of the first row unless Records names them.
func records(content any) ([]string, []map[string]any, bool) {
	switch v := content.(type) {
	case Records:
		return v.Columns, v.Rows, true
	case *Records:
		if v == nil {
			return nil, nil, false
		}
		return v.Columns, v.Rows, true
	case []map[string]any:
		if len(v) == 0 {
			return nil, nil, false
		}
		return sortedKeys(v[0]), v, true
	case []map[string]string:
		if len(v) == 0 {
			return nil, nil, false
		}
		rows := make([]map[string]any, len(v))
		for i, r := range v {
			row := make(map[string]any, len(r))
			for k, val := range r {
				row[k] = val
			}
			rows[i] = row
		}
		return sortedKeys(rows[0]), rows, true
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := stringMap(item)
			if !ok {
				return nil, nil, false
			}
			rows = append(rows, m)
		}
		if len(rows) == 0 {
			return nil, nil, false
		}
		return sortedKeys(rows[0]), rows, true
	}
	return nil, nil, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
