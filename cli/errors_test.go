package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/roclex/lexer"
	"github.com/robinvdvleuten/roclex/roc"
)

func errorTokens(filename, source string) []lexer.Token {
	var errs []lexer.Token
	for tok := range lexer.Coalesce(roc.NewScanner(filename, source).All()) {
		if tok.Kind == lexer.Error {
			errs = append(errs, tok)
		}
	}
	return errs
}

func TestErrorRenderer(t *testing.T) {
	t.Run("ContextAndCaret", func(t *testing.T) {
		source := "a = 1\nb = 2\nc = 3\nd = ~~ 4\ne = 5\nf = 6\n"
		errs := errorTokens("main.roc", source)
		assert.Equal(t, 1, len(errs))

		out := NewErrorRenderer(source).Render(errs[0])
		assert.Equal(t, strings.Join([]string{
			`main.roc:4:5: unrecognised "~~"`,
			``,
			`   2 │ b = 2`,
			`   3 │ c = 3`,
			`   4 │ d = ~~ 4`,
			`     │     ^^`,
			`   5 │ e = 5`,
			``,
		}, "\n"), out)
	})

	t.Run("FirstLine", func(t *testing.T) {
		source := "~"
		errs := errorTokens("", source)
		out := NewErrorRenderer(source).Render(errs[0])
		assert.Contains(t, out, "   1 │ ~\n     │ ^\n")
		assert.NotContains(t, out, "   2 │")
	})

	t.Run("TabsAreKept", func(t *testing.T) {
		source := "main =\n\tx = ~y\n"
		errs := errorTokens("main.roc", source)
		out := NewErrorRenderer(source).Render(errs[0])
		assert.Contains(t, out, `main.roc:2:6: unrecognised "~"`)
		assert.Contains(t, out, "     │ \t    ^\n")
	})

	t.Run("WideCharacters", func(t *testing.T) {
		source := "x = \"日本\" ~"
		errs := errorTokens("", source)
		out := NewErrorRenderer(source).Render(errs[0])
		assert.Contains(t, out, "     │ "+strings.Repeat(" ", 11)+"^\n")
	})

	t.Run("RenderAll", func(t *testing.T) {
		source := "~\n~"
		errs := errorTokens("", source)
		assert.Equal(t, 2, len(errs))
		out := NewErrorRenderer(source).RenderAll(errs)
		assert.Equal(t, 2, strings.Count(out, "unrecognised"))
		assert.Contains(t, out, "\n\n:2:1:")
	})
}

func TestCaretWidth(t *testing.T) {
	assert.Equal(t, 1, caretWidth(""))
	assert.Equal(t, 1, caretWidth("\n"))
	assert.Equal(t, 2, caretWidth("~~\n~"))
	assert.Equal(t, 4, caretWidth("日本"))
}
