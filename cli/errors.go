package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/roclex/lexer"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// CommandError signals a command failure with a specific exit code.
// Commands return this after handling all output (printing errors/warnings to stderr).
// Main centralizes exit handling instead of commands calling os.Exit directly.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.exitCode)
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// contextLines is how many lines before an error are shown with it.
const contextLines = 2

// ErrorRenderer renders Error tokens with terminal styling and source
// context.
type ErrorRenderer struct {
	lines []string
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source string) *ErrorRenderer {
	return &ErrorRenderer{lines: strings.Split(source, "\n")}
}

// Render formats a single Error token with the lines around it and a
// caret under the offending text.
func (r *ErrorRenderer) Render(tok lexer.Token) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(fmt.Sprintf("%s:%d:%d: unrecognised %q",
		tok.Pos.Filename, tok.Pos.Line, tok.Pos.Column, tok.Text)))
	buf.WriteString("\n\n")

	line := tok.Pos.Line - 1
	start := max(line-contextLines, 0)
	end := min(line+1, len(r.lines)-1)

	for i := start; i <= end; i++ {
		text := strings.TrimSuffix(r.lines[i], "\r")
		buf.WriteString(errContextStyle.Render(fmt.Sprintf("%4d │ ", i+1)))
		buf.WriteString(text)
		buf.WriteByte('\n')

		if i == line {
			buf.WriteString(errContextStyle.Render("     │ "))
			buf.WriteString(caretPadding(text, tok.Pos.Column-1))
			buf.WriteString(errCaretStyle.Render(strings.Repeat("^", caretWidth(tok.Text))))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// RenderAll formats multiple tokens, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(tokens []lexer.Token) string {
	var buf strings.Builder
	for i, tok := range tokens {
		buf.WriteString(r.Render(tok))

		if i < len(tokens)-1 {
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// caretPadding lines up with the first n characters of line as a terminal
// displays them. Tabs are kept so they expand the same way.
func caretPadding(line string, n int) string {
	var buf strings.Builder
	for _, r := range line {
		if n == 0 {
			break
		}
		n--
		if r == '\t' {
			buf.WriteByte('\t')
			continue
		}
		buf.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return buf.String()
}

func caretWidth(text string) int {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return max(runewidth.StringWidth(text), 1)
}
