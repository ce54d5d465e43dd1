package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/roclex/lexer"
)

// Theme maps token kinds to terminal styles. Kinds without an entry use
// the style of their parent kind, and are left plain when that is missing
// too.
type Theme map[lexer.Kind]lipgloss.Style

type color struct {
	light, dark string
	bold        bool
	italic      bool
}

var palette = map[lexer.Kind]color{
	lexer.Error:               {light: "#CD3131", dark: "#F44747", bold: true},
	lexer.Comment:             {light: "#008000", dark: "#6A9955", italic: true},
	lexer.String:              {light: "#A31515", dark: "#CE9178"},
	lexer.StringEscape:        {light: "#EE0000", dark: "#D7BA7D"},
	lexer.StringInterpolOpen:  {light: "#AF00DB", dark: "#C586C0"},
	lexer.StringInterpolClose: {light: "#AF00DB", dark: "#C586C0"},
	lexer.KeywordReserved:     {light: "#0000FF", dark: "#569CD6", bold: true},
	lexer.KeywordNamespace:    {light: "#AF00DB", dark: "#C586C0", bold: true},
	lexer.KeywordType:         {light: "#267F99", dark: "#4EC9B0"},
	lexer.NameFunction:        {light: "#795E26", dark: "#DCDCAA"},
	lexer.NameVariable:        {light: "#001080", dark: "#9CDCFE"},
	lexer.NameClass:           {light: "#267F99", dark: "#4EC9B0"},
	lexer.NumberInteger:       {light: "#098658", dark: "#B5CEA8"},
	lexer.NumberFloat:         {light: "#098658", dark: "#B5CEA8"},
	lexer.Punctuation:         {light: "#333333", dark: "#D4D4D4"},
}

// DefaultTheme builds the default theme for the given renderer, which
// decides whether colors are emitted at all.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	theme := make(Theme, len(palette))
	for kind, c := range palette {
		style := r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: c.light, Dark: c.dark})
		if c.bold {
			style = style.Bold(true)
		}
		if c.italic {
			style = style.Italic(true)
		}
		theme[kind] = style
	}
	return theme
}

// Style returns the style for kind, falling back to its parent kind.
func (t Theme) Style(kind lexer.Kind) (lipgloss.Style, bool) {
	if style, ok := t[kind]; ok {
		return style, true
	}
	style, ok := t[kind.Parent()]
	return style, ok
}

// WriteCSS writes a stylesheet for HTML output using the dark palette.
func WriteCSS(w io.Writer, classPrefix string) error {
	var b strings.Builder
	b.WriteString(".roclex { background: #1E1E1E; color: #D4D4D4; }\n")
	written := make(map[string]bool)
	for _, kind := range lexer.Kinds() {
		c, ok := palette[kind]
		if !ok || written[kind.Class()] {
			continue
		}
		written[kind.Class()] = true
		fmt.Fprintf(&b, ".roclex .%s%s { color: %s;", classPrefix, kind.Class(), c.dark)
		if c.bold {
			b.WriteString(" font-weight: bold;")
		}
		if c.italic {
			b.WriteString(" font-style: italic;")
		}
		b.WriteString(" }\n")
	}
	fmt.Fprintf(&b, ".roclex .%sln { color: #858585; user-select: none; }\n", classPrefix)

	_, err := io.WriteString(w, b.String())
	return err
}
