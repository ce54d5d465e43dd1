package formatter

import (
	"fmt"
	"html"
	"io"
	"iter"

	"github.com/robinvdvleuten/roclex/lexer"
)

func (f *Formatter) formatHTML(tokens iter.Seq[lexer.Token], w io.Writer) error {
	if _, err := io.WriteString(w, `<pre class="roclex"><code>`); err != nil {
		return err
	}

	var gutter func(int) string
	if f.LineNumbers {
		gutter = func(line int) string {
			return fmt.Sprintf(`<span class="%sln">%*d </span>`, f.ClassPrefix, DefaultGutterWidth, line)
		}
	}

	lw := newLineWriter(w, gutter)
	for tok := range tokens {
		eachLine(tok.Text, func(segment string) {
			if segment == "" {
				return
			}
			if segment == "\n" || tok.Kind == lexer.Whitespace {
				lw.write(html.EscapeString(segment))
				return
			}
			lw.write(fmt.Sprintf(`<span class="%s%s">%s</span>`, f.ClassPrefix, tok.Kind.Class(), html.EscapeString(segment)))
		})
		if lw.err != nil {
			return lw.err
		}
	}
	if lw.err != nil {
		return lw.err
	}

	_, err := io.WriteString(w, "</code></pre>\n")
	return err
}
