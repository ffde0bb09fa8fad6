package format

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name    string
		content any
		ctx     *Context
		want    Format
	}{
		{"code generation request", "x = 1", &Context{RequestType: RequestCodeGeneration}, Code},
		{"documentation request", "text", &Context{RequestType: RequestDocumentation}, Markdown},
		{"data display request", "text", &Context{RequestType: RequestDataDisplay}, Table},
		{"map", map[string]any{"a": 1}, nil, JSON},
		{"slice", []string{"a"}, nil, JSON},
		{"fenced string", "see ```go\nx\n```", nil, Code},
		{"plain string", "hello", nil, Plain},
		{"unknown request type", "hello", &Context{RequestType: "other"}, Plain},
		{"bytes", []byte("raw"), nil, Plain},
		{"nil", nil, nil, Plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.content, tt.ctx))
		})
	}
}

func TestFormatJSONInferred(t *testing.T) {
	f := NewFormatter()

	out, err := f.Format(map[string]int{"a": 1, "b": 2}, Auto, nil)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}", out)
}

func TestFormatJSONUnsupported(t *testing.T) {
	f := NewFormatter()

	_, err := f.Format(map[string]any{"ch": make(chan int)}, JSON, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedContent))
}

func TestFormatUnknownFormat(t *testing.T) {
	_, err := NewFormatter().Format("x", Format("yaml"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}

func TestFormatCode(t *testing.T) {
	f := NewFormatter()

	out, err := f.Format("print('hi')", Code, nil)
	require.NoError(t, err)
	assert.Equal(t, "```python\nprint('hi')\n```", out)

	out, err = f.Format("fmt.Println()", Code, &Context{Language: "go"})
	require.NoError(t, err)
	assert.Equal(t, "```go\nfmt.Println()\n```", out)

	fenced := "```sh\nls\n```"
	out, err = f.Format(fenced, Code, nil)
	require.NoError(t, err)
	assert.Equal(t, fenced, out)

	out, err = NewFormatter(WithLanguage("rust")).Format("fn main() {}", Code, nil)
	require.NoError(t, err)
	assert.Equal(t, "```rust\nfn main() {}\n```", out)
}

func TestFormatMarkdown(t *testing.T) {
	out, err := NewFormatter().Format(map[string]any{"Usage": "run it", "About": "a tool"}, Markdown, nil)
	require.NoError(t, err)
	assert.Equal(t, "## About\n\na tool\n\n## Usage\n\nrun it\n\n", out)

	out, err = NewFormatter().Format("just text", Markdown, nil)
	require.NoError(t, err)
	assert.Equal(t, "just text", out)
}

func TestFormatTable(t *testing.T) {
	rows := []map[string]any{
		{"name": "app.py", "size": 120},
		{"name": "lib.py", "size": 42},
		{"name": "README.md"},
	}

	out, err := NewFormatter().Format(rows, Auto, &Context{RequestType: RequestDataDisplay})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, len(rows)+2)
	assert.Equal(t, "| name | size |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
	assert.Equal(t, "| app.py | 120 |", lines[2])
	assert.Equal(t, "| README.md |  |", lines[4])
}

func TestFormatTableTruncates(t *testing.T) {
	rows := make([]map[string]string, 30)
	for i := range rows {
		rows[i] = map[string]string{"n": fmt.Sprint(i)}
	}

	out, err := NewFormatter().Format(rows, Table, nil)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 22)
	assert.Equal(t, "| 19 |", lines[21])

	out, err = NewFormatter(WithMaxRows(5)).Format(rows, Table, nil)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 7)
}

func TestFormatTableExplicitColumns(t *testing.T) {
	rec := Records{
		Columns: []string{"tool", "category"},
		Rows: []map[string]any{
			{"tool": "Read", "category": "file_operations"},
		},
	}

	out, err := NewFormatter().Format(rec, Table, nil)
	require.NoError(t, err)
	assert.Equal(t, "| tool | category |\n| --- | --- |\n| Read | file_operations |\n", out)
}

func TestFormatTableFallsBackToPlain(t *testing.T) {
	out, err := NewFormatter().Format("not rows", Table, nil)
	require.NoError(t, err)
	assert.Equal(t, "not rows", out)
}

func TestFormatMultiFile(t *testing.T) {
	files := map[string]string{
		"src/main.py": "print(1)",
		"README.md":   "# hi",
	}

	out, err := NewFormatter().Format(files, MultiFile, nil)
	require.NoError(t, err)
	want := "# Generated Files\n\n" +
		"## README.md\n\n```\n# hi\n```\n\n" +
		"## src/main.py\n\n```\nprint(1)\n```\n\n"
	assert.Equal(t, want, out)
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		view ErrorView
		want string
	}{
		{
			name: "critical with location",
			view: ErrorView{Severity: "critical", Message: "disk corrupt", Location: "store"},
			want: "❌ **CRITICAL ERROR**\n\n**Location:** `store`\n\n**Message:** disk corrupt\n\n",
		},
		{
			name: "high with suggestions",
			view: ErrorView{Severity: "high", Message: "missing key", Suggestions: []string{"Retry", "Fallback"}},
			want: "⚠️ **ERROR**\n\n**Message:** missing key\n\n**Suggestions:**\n- Retry\n- Fallback\n",
		},
		{
			name: "default message",
			view: ErrorView{Severity: "low"},
			want: "ℹ️ **WARNING**\n\n**Message:** Unknown error\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatError(tt.view))
		})
	}
}
