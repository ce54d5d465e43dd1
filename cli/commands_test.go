package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"golang.org/x/term"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// run parses args against the full command tree and runs the selected
// command with captured output.
func run(t *testing.T, args ...string) result {
	t.Helper()

	var cli Commands
	var stdout, stderr bytes.Buffer

	parser, err := kong.New(&cli,
		kong.Name("roclex"),
		kong.Writers(&stdout, &stderr),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
		kong.Bind(&cli.Globals),
	)
	assert.NoError(t, err)

	ctx, err := parser.Parse(args)
	assert.NoError(t, err)

	err = ctx.Run()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestTokensCmd(t *testing.T) {
	file := writeFile(t, "main.roc", "x = 1u8\n~")

	t.Run("Table", func(t *testing.T) {
		res := run(t, "tokens", file)
		assert.NoError(t, res.err)
		assert.Equal(t, "", res.stderr)

		lines := strings.Split(strings.TrimSuffix(res.stdout, "\n"), "\n")
		assert.Equal(t, []string{
			`Name.Variable   1:1  "x"`,
			`Whitespace      1:2  " "`,
			`Punctuation     1:3  "="`,
			`Whitespace      1:4  " "`,
			`Number.Integer  1:5  "1"`,
			`Number.Integer  1:6  "u8"`,
			`Whitespace      1:8  "\n"`,
			`Error           2:1  "~"`,
		}, lines)
	})

	t.Run("Coalesce", func(t *testing.T) {
		res := run(t, "tokens", "--coalesce", file)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, `Number.Integer  1:5  "1u8"`)
	})

	t.Run("Repr", func(t *testing.T) {
		res := run(t, "tokens", "--repr", file)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "lexer.Token{")
		assert.Contains(t, res.stdout, `Text: "u8"`)
	})

	t.Run("WarnsAboutUnassociatedFile", func(t *testing.T) {
		other := writeFile(t, "notes.txt", "x")
		res := run(t, "tokens", other)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stderr, "notes.txt does not look like a Roc file")
	})

	t.Run("MissingFile", func(t *testing.T) {
		var cli Commands
		parser, err := kong.New(&cli, kong.Exit(func(int) {}))
		assert.NoError(t, err)
		_, err = parser.Parse([]string{"tokens", filepath.Join(t.TempDir(), "missing.roc")})
		assert.Error(t, err)
	})
}

func TestHighlightCmd(t *testing.T) {
	file := writeFile(t, "main.roc", "x = \"a\"\n")

	t.Run("Terminal", func(t *testing.T) {
		res := run(t, "highlight", file)
		assert.NoError(t, res.err)
		assert.Equal(t, "x = \"a\"\n", res.stdout)
	})

	t.Run("TerminalLineNumbers", func(t *testing.T) {
		res := run(t, "highlight", "-n", file)
		assert.NoError(t, res.err)
		assert.Equal(t, "   1 │ x = \"a\"\n", res.stdout)
	})

	t.Run("HTML", func(t *testing.T) {
		res := run(t, "highlight", "--format=html", file)
		assert.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.stdout, `<pre class="roclex"><code>`))
		assert.Contains(t, res.stdout, `<span class="s">&#34;a&#34;</span>`)
		assert.NotContains(t, res.stdout, "<style>")
	})

	t.Run("HTMLStylesheet", func(t *testing.T) {
		res := run(t, "highlight", "--format=html", "--stylesheet", file)
		assert.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.stdout, "<style>\n"))
	})

	t.Run("JSONWithoutCoalescing", func(t *testing.T) {
		res := run(t, "highlight", "--format=json", "--no-coalesce", file)
		assert.NoError(t, res.err)
		assert.Equal(t, 8, strings.Count(res.stdout, `"kind"`))
	})

	t.Run("OutputFile", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "main.html")

		res := run(t, "highlight", "--format=html", "-o", out, file)
		assert.NoError(t, res.err)
		assert.Equal(t, "", res.stdout)
		assert.Contains(t, res.stderr, "Wrote")

		content, err := os.ReadFile(out)
		assert.NoError(t, err)
		assert.Contains(t, string(content), `<span class="nv">x</span>`)
	})

	t.Run("OutputFileExists", func(t *testing.T) {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			t.Skip("stdin is a terminal, the overwrite prompt would block")
		}
		out := writeFile(t, "main.html", "keep")

		res := run(t, "highlight", "-o", out, file)
		var cmdErr *CommandError
		assert.True(t, errors.As(res.err, &cmdErr))
		assert.Equal(t, 1, cmdErr.ExitCode())
		assert.Contains(t, res.stderr, "use --force to overwrite it")

		content, err := os.ReadFile(out)
		assert.NoError(t, err)
		assert.Equal(t, "keep", string(content))
	})

	t.Run("OutputFileForced", func(t *testing.T) {
		out := writeFile(t, "main.txt", "old")

		res := run(t, "highlight", "--force", "-o", out, file)
		assert.NoError(t, res.err)

		content, err := os.ReadFile(out)
		assert.NoError(t, err)
		assert.Equal(t, "x = \"a\"\n", string(content))
	})
}

func TestCheckCmd(t *testing.T) {
	t.Run("Clean", func(t *testing.T) {
		file := writeFile(t, "main.roc", "main =\n  x = 1\n")
		res := run(t, "check", file)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Check passed")
	})

	t.Run("UnrecognisedText", func(t *testing.T) {
		file := writeFile(t, "main.roc", "main =\n  x ~~ 1\n  y ~\n")
		res := run(t, "check", file)

		var cmdErr *CommandError
		assert.True(t, errors.As(res.err, &cmdErr))
		assert.Equal(t, 1, cmdErr.ExitCode())

		assert.Contains(t, res.stderr, file+`:2:5: unrecognised "~~"`)
		assert.Contains(t, res.stderr, file+`:3:5: unrecognised "~"`)
		assert.Contains(t, res.stderr, "2 unrecognised token(s) found")
		assert.Equal(t, "", res.stdout)
	})

	t.Run("Telemetry", func(t *testing.T) {
		file := writeFile(t, "main.roc", "x = 1\n")
		res := run(t, "--telemetry", "check", file)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stderr, "check main.roc")
		assert.Contains(t, res.stderr, "tokenize")
		assert.Contains(t, res.stderr, "tokens)")
	})
}

func TestWebCmdMissingFile(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("stdin is a terminal, the create prompt would block")
	}

	missing := filepath.Join(t.TempDir(), "missing.roc")
	res := run(t, "web", missing)
	assert.EqualError(t, res.err, "file does not exist: "+missing)

	_, err := os.Stat(missing)
	assert.True(t, os.IsNotExist(err))
}

func TestPromptYesNo(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("stdin is a terminal")
	}

	confirmed, err := promptYesNo("Continue?")
	assert.NoError(t, err)
	assert.False(t, confirmed)
}

func TestCommandError(t *testing.T) {
	err := NewCommandError(3)
	assert.Equal(t, 3, err.ExitCode())
	assert.EqualError(t, err, "command failed with exit code 3")
}
