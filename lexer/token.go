package lexer

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a lexical token.
type Kind uint8

const (
	Error Kind = iota

	Comment
	Whitespace

	// Strings
	String
	StringEscape
	StringInterpolOpen
	StringInterpolClose

	// Keywords
	KeywordReserved
	KeywordNamespace
	KeywordType

	// Names
	NameFunction
	NameVariable
	NameClass

	// Numbers
	NumberInteger
	NumberFloat

	Punctuation
)

var kindNames = map[Kind]string{
	Error:      "Error",
	Comment:    "Comment",
	Whitespace: "Whitespace",

	String:              "String",
	StringEscape:        "String.Escape",
	StringInterpolOpen:  "String.Interpol.Open",
	StringInterpolClose: "String.Interpol.Close",

	KeywordReserved:  "Keyword.Reserved",
	KeywordNamespace: "Keyword.Namespace",
	KeywordType:      "Keyword.Type",

	NameFunction: "Name.Function",
	NameVariable: "Name.Variable",
	NameClass:    "Name.Class",

	NumberInteger: "Number.Integer",
	NumberFloat:   "Number.Float",

	Punctuation: "Punctuation",
}

// Short class names, as used by HTML highlighters.
var kindClasses = map[Kind]string{
	Error:      "err",
	Comment:    "c",
	Whitespace: "w",

	String:              "s",
	StringEscape:        "se",
	StringInterpolOpen:  "si",
	StringInterpolClose: "si",

	KeywordReserved:  "kr",
	KeywordNamespace: "kn",
	KeywordType:      "kt",

	NameFunction: "nf",
	NameVariable: "nv",
	NameClass:    "nc",

	NumberInteger: "mi",
	NumberFloat:   "mf",

	Punctuation: "p",
}

var kindParents = map[Kind]Kind{
	StringEscape:        String,
	StringInterpolOpen:  String,
	StringInterpolClose: String,
	KeywordNamespace:    KeywordReserved,
	KeywordType:         KeywordReserved,
	NameClass:           NameVariable,
	NameFunction:        NameVariable,
	NumberFloat:         NumberInteger,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Class returns the short CSS class name for the kind.
func (k Kind) Class() string {
	return kindClasses[k]
}

// Parent returns the broader category of k, or k itself for top-level kinds.
// Themes use it to fall back from e.g. String.Escape to String.
func (k Kind) Parent() Kind {
	if p, ok := kindParents[k]; ok {
		return p
	}
	return k
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := Error; k <= Punctuation; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Token is a classified slice of the input.
//
// Pos.Offset is a byte offset into the input handed to the outermost
// Scanner, Pos.Line and Pos.Column are 1-indexed with columns counted in
// characters.
type Token struct {
	Kind Kind
	Text string
	Pos  lexer.Position
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Pos.Offset + len(t.Text)
}

// Len returns the length of the token in bytes.
func (t Token) Len() int {
	return len(t.Text)
}

func (t Token) String() string {
	return fmt.Sprintf("%s %d:%d %q", t.Kind, t.Pos.Line, t.Pos.Column, t.Text)
}
