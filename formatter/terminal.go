package formatter

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/robinvdvleuten/roclex/lexer"
)

func (f *Formatter) formatTerminal(tokens iter.Seq[lexer.Token], w io.Writer) error {
	renderer := lipgloss.NewRenderer(w)
	plain := renderer.ColorProfile() == termenv.Ascii

	theme := f.Theme
	if theme == nil && !plain {
		theme = DefaultTheme(renderer)
	}

	// Resolve once; Render would otherwise expand tabs.
	styles := make(map[lexer.Kind]lipgloss.Style)
	for _, kind := range lexer.Kinds() {
		if style, ok := theme.Style(kind); ok {
			styles[kind] = style.TabWidth(lipgloss.NoTabConversion)
		}
	}

	var gutter func(int) string
	if f.LineNumbers {
		dim := renderer.NewStyle().Faint(true)
		gutter = func(line int) string {
			number := fmt.Sprintf("%*d │", DefaultGutterWidth, line)
			if plain {
				return number + " "
			}
			return dim.Render(number) + " "
		}
	}

	lw := newLineWriter(w, gutter)
	for tok := range tokens {
		style, styled := styles[tok.Kind]
		eachLine(tok.Text, func(segment string) {
			if !styled || segment == "\n" || strings.TrimSpace(segment) == "" {
				lw.write(segment)
				return
			}
			lw.write(style.Render(segment))
		})
		if lw.err != nil {
			return lw.err
		}
	}
	return lw.err
}
