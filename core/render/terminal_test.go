package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/parse"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terminal(t *testing.T, src string, opts TerminalOptions) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteTerminal(&buf, Render(parse.New().Parse(src), opts.Theme), opts))
	return buf.String()
}

func TestWriteTerminalPlain(t *testing.T) {
	src := "# Title\n\nSome **bold** text with a [link](https://example.com).\n\n" +
		"- one\n- [x] two\n\n3. three\n\n> quoted\n\n```go\nx := 1\n```\n"
	out := terminal(t, src, TerminalOptions{Width: 60, Profile: termenv.Ascii})

	assert.NotContains(t, out, "\x1b[", "ascii profile emits no escapes")
	for _, want := range []string{
		"# Title",
		"Some bold text with a link (https://example.com).",
		"- one",
		"- [x] two",
		"3. three",
		"│ quoted",
		"go",
		"  x := 1",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteTerminalTable(t *testing.T) {
	out := terminal(t, "| name | n |\n|---|---|\n| alpha | 1 |\n| b | 22 |\n", TerminalOptions{Width: 40, Profile: termenv.Ascii})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "name   n", strings.TrimRight(lines[0], " "))
	assert.Equal(t, strings.Repeat("─", 9), lines[1])
	assert.Equal(t, "alpha  1", lines[2])
	assert.Equal(t, "b      22", lines[3])
}

func TestWriteTerminalWraps(t *testing.T) {
	src := strings.Repeat("word ", 40) + "\n"
	out := terminal(t, src, TerminalOptions{Width: 30, Profile: termenv.Ascii})
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 30)
	}
}

func TestWriteTerminalColor(t *testing.T) {
	out := terminal(t, "```python\nprint(1)\n```\n", TerminalOptions{Width: 60, Profile: termenv.TrueColor, Theme: core.Dark})
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, ansi.Strip(out), "print(1)")
}

func TestWriteTerminalEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerminal(&buf, Render(parse.New().Parse(""), core.Light), TerminalOptions{}))
	assert.Empty(t, buf.String())
}

func TestWriteTerminalDeepNesting(t *testing.T) {
	quote := strings.Repeat("> ", 45)
	src := quote + "---\n" + quote + "\n" + quote + "text\n" + quote + "\n" + quote + "- item\n" + quote + "\n" +
		quote + "| a |\n" + quote + "|---|\n" + quote + "| 1 |\n"
	for _, width := range []int{20, 80} {
		out := terminal(t, src, TerminalOptions{Width: width, Profile: termenv.Ascii})
		assert.Contains(t, out, "│ ─")
		assert.Contains(t, out, "text")
		assert.Contains(t, out, "- item")
	}
}
