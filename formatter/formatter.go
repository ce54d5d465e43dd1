// Package formatter renders a token stream for display: styled for a
// terminal, as HTML with one CSS class per token kind, or as JSON.
//
// Formatters only ever read the tokens, so rendering a stream and the
// scanner producing it never need to know about each other.
package formatter

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/robinvdvleuten/roclex/lexer"
	"github.com/robinvdvleuten/roclex/telemetry"
)

// Mode selects the output format.
type Mode int

const (
	ModeTerminal Mode = iota
	ModeHTML
	ModeJSON
)

var modeNames = map[Mode]string{
	ModeTerminal: "terminal",
	ModeHTML:     "html",
	ModeJSON:     "json",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the mode with the given name.
func ParseMode(name string) (Mode, error) {
	for mode, n := range modeNames {
		if strings.EqualFold(n, name) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown format %q (want terminal, html or json)", name)
}

// DefaultGutterWidth is the number of digits reserved for line numbers.
const DefaultGutterWidth = 4

// Formatter renders tokens.
type Formatter struct {
	Mode Mode

	// LineNumbers prefixes every line with its number. JSON output carries
	// positions already and ignores it.
	LineNumbers bool

	// Coalesce merges adjacent tokens of the same kind before rendering.
	Coalesce bool

	// Theme styles terminal output. Nil selects DefaultTheme.
	Theme Theme

	// ClassPrefix is prepended to every HTML class name.
	ClassPrefix string
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithMode sets the output format.
func WithMode(mode Mode) Option {
	return func(f *Formatter) {
		f.Mode = mode
	}
}

// WithLineNumbers enables line numbers.
func WithLineNumbers() Option {
	return func(f *Formatter) {
		f.LineNumbers = true
	}
}

// WithCoalesce enables or disables merging of adjacent same-kind tokens.
func WithCoalesce(coalesce bool) Option {
	return func(f *Formatter) {
		f.Coalesce = coalesce
	}
}

// WithTheme sets the terminal theme.
func WithTheme(theme Theme) Option {
	return func(f *Formatter) {
		f.Theme = theme
	}
}

// WithClassPrefix sets the HTML class name prefix.
func WithClassPrefix(prefix string) Option {
	return func(f *Formatter) {
		f.ClassPrefix = prefix
	}
}

// New creates a terminal formatter that coalesces tokens, adjusted by
// opts.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		Mode:     ModeTerminal,
		Coalesce: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Format renders tokens to w.
func (f *Formatter) Format(ctx context.Context, tokens iter.Seq[lexer.Token], w io.Writer) error {
	timer := telemetry.FromContext(ctx).Start("render " + f.Mode.String())
	defer timer.End()

	if f.Coalesce {
		tokens = lexer.Coalesce(tokens)
	}
	tokens = counted(tokens, timer)

	switch f.Mode {
	case ModeTerminal:
		return f.formatTerminal(tokens, w)
	case ModeHTML:
		return f.formatHTML(tokens, w)
	case ModeJSON:
		return f.formatJSON(tokens, w)
	default:
		return fmt.Errorf("unsupported format %s", f.Mode)
	}
}

func counted(tokens iter.Seq[lexer.Token], timer telemetry.Timer) iter.Seq[lexer.Token] {
	return func(yield func(lexer.Token) bool) {
		n := 0
		defer func() { timer.Tokens(n) }()
		for tok := range tokens {
			n++
			if !yield(tok) {
				return
			}
		}
	}
}

// lineWriter tracks line starts so a gutter can be written before each
// line.
type lineWriter struct {
	w       io.Writer
	line    int
	atStart bool
	gutter  func(line int) string
	err     error
}

func newLineWriter(w io.Writer, gutter func(int) string) *lineWriter {
	return &lineWriter{w: w, line: 1, atStart: true, gutter: gutter}
}

// write emits text, which must not contain a newline unless it is exactly
// "\n".
func (lw *lineWriter) write(text string) {
	if lw.err != nil || text == "" {
		return
	}
	if lw.atStart && lw.gutter != nil {
		_, lw.err = io.WriteString(lw.w, lw.gutter(lw.line))
		lw.atStart = false
		if lw.err != nil {
			return
		}
	}
	_, lw.err = io.WriteString(lw.w, text)
	if text == "\n" {
		lw.line++
		lw.atStart = true
	}
}

// eachLine calls fn for each newline-free segment of text and for each
// newline in between.
func eachLine(text string, fn func(segment string)) {
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			fn(text)
			return
		}
		fn(text[:i])
		fn("\n")
		text = text[i+1:]
	}
}
