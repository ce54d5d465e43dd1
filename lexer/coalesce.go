package lexer

import (
	"iter"
	"strings"
)

// Coalesce merges runs of adjacent tokens of the same kind into a single
// token. String interiors are scanned a character at a time, which is
// rarely what a renderer wants.
func Coalesce(tokens iter.Seq[Token]) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		var (
			pending Token
			have    bool
			text    strings.Builder
		)

		flush := func() bool {
			if !have {
				return true
			}
			if text.Len() > 0 {
				pending.Text = text.String()
				text.Reset()
			}
			have = false
			return yield(pending)
		}

		for tok := range tokens {
			if have && tok.Kind == pending.Kind && tok.Pos.Offset == pending.Pos.Offset+pendingLen(pending, &text) {
				if text.Len() == 0 {
					text.WriteString(pending.Text)
				}
				text.WriteString(tok.Text)
				continue
			}
			if !flush() {
				return
			}
			pending, have = tok, true
		}
		flush()
	}
}

func pendingLen(pending Token, text *strings.Builder) int {
	if text.Len() > 0 {
		return text.Len()
	}
	return len(pending.Text)
}
