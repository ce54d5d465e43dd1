package formatter

import (
	"encoding/json"
	"io"
	"iter"

	"github.com/robinvdvleuten/roclex/lexer"
)

// JSONToken is the JSON representation of a token.
type JSONToken struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// NewJSONToken converts tok to its JSON representation.
func NewJSONToken(tok lexer.Token) JSONToken {
	return JSONToken{
		Kind:   tok.Kind.String(),
		Text:   tok.Text,
		Offset: tok.Pos.Offset,
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column,
	}
}

// formatJSON streams a JSON array with one object per line.
func (f *Formatter) formatJSON(tokens iter.Seq[lexer.Token], w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}

	sep := "\n"
	for tok := range tokens {
		data, err := json.Marshal(NewJSONToken(tok))
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		sep = ",\n"
	}

	_, err := io.WriteString(w, "\n]\n")
	return err
}
