// Package roc tokenizes source code of the Roc programming language for
// syntax highlighting.
//
// The rule table is built once when the package is initialized and shared
// by every scanner. Tokenizing never fails: input the rules do not cover
// comes out as Error tokens, one character at a time.
package roc

import (
	"iter"

	"github.com/robinvdvleuten/roclex/lexer"
)

// Config is the registration metadata for Roc sources.
var Config = lexer.Config{
	Name:      "Roc",
	Aliases:   []string{"roc"},
	Filenames: []string{"*.roc"},
	MimeTypes: []string{"text/x-roc"},
}

var (
	reservedWords = []string{
		"as", "crash", "dbg", "else", "expect", "expect-fx", "if", "import",
		"imports", "is", "then", "when", "app", "exposes", "exposing", "generates",
		"implements", "module", "package", "packages", "platform", "requires",
		"where", "with", "provides", "interface", "hosted", "to", "_",
	}

	punctuation = []string{"=", `\`, "->", "<-", ":=", ":", "&", "?"}

	builtinOps = []string{
		"%", "^", "!", "!=", "/", "//", "|>", ">", ">=", "-", "<", "<=", "==",
		"||", "*", "+", "&&",
	}
)

const (
	validName   = `[a-z_][a-zA-Z0-9_']*`
	specialName = `^main `
)

var table = lexer.MustBuild(Config, "root", lexer.States{
	"root": {
		{Pattern: `#.*`, Emit: lexer.Comment},
		{Pattern: `\s+`, Emit: lexer.Whitespace},
		{Pattern: `"`, Emit: lexer.String, Action: lexer.Push("doublequote")},

		// Module header and imports capture the path that follows.
		{Pattern: `^(\s*)(module)(\s*)`, Emit: lexer.ByGroups(lexer.Whitespace, lexer.KeywordNamespace, lexer.Whitespace), Action: lexer.Push("imports")},
		{Pattern: `^(\s*)(import)(\s*)`, Emit: lexer.ByGroups(lexer.Whitespace, lexer.KeywordNamespace, lexer.Whitespace), Action: lexer.Push("imports")},

		// A reserved word followed by ':' is a record field label.
		{Pattern: lexer.Words(``, `\b(?!:)`, reservedWords...), Emit: lexer.KeywordReserved},

		{Pattern: `@?[A-Z][a-zA-Z0-9_]*`, Emit: lexer.KeywordType},
		{Pattern: specialName, Emit: lexer.KeywordReserved},
		{Pattern: lexer.Words(``, ``, punctuation...), Emit: lexer.Punctuation},

		// Operators used as values, e.g. (+), then infix.
		{Pattern: lexer.Words(`\(`, `\)`, builtinOps...), Emit: lexer.NameFunction},
		{Pattern: lexer.Words(``, ``, builtinOps...), Emit: lexer.NameFunction},

		lexer.Include("numbers"),

		{Pattern: validName, Emit: lexer.NameVariable},
		{Pattern: `[,()\[\]{}]`, Emit: lexer.Punctuation},
	},

	"doublequote": {
		{Pattern: `(\$\()(.*?)(\))`, Emit: lexer.ByGroups(lexer.StringInterpolOpen, lexer.UsingSelf(), lexer.StringInterpolClose)},
		{Pattern: `\\u[0-9a-fA-F]{4}`, Emit: lexer.StringEscape},
		{Pattern: `\\[nrfvb\\"]`, Emit: lexer.StringEscape},
		{Pattern: `[^"]`, Emit: lexer.String},
		{Pattern: `"`, Emit: lexer.String, Action: lexer.Pop()},
	},

	"imports": {
		{Pattern: `\w+(\.\w+)*`, Emit: lexer.NameClass, Action: lexer.Pop()},
	},

	"numbers": {
		{Pattern: `_?\d+\.\d+(f(32|64))?`, Emit: lexer.NumberFloat},
		{Pattern: `_?\d+`, Emit: lexer.NumberInteger, Action: lexer.Push("int_lit")},
	},

	// Optional type suffix right after an integer literal.
	"int_lit": {
		{Pattern: `[ui](8|16|32|64|128)`, Emit: lexer.NumberInteger, Action: lexer.Pop()},
		{Pattern: `dec`, Emit: lexer.NumberInteger, Action: lexer.Pop()},
		lexer.Default(lexer.Pop()),
	},
})

// Table returns the shared Roc rule table.
func Table() *lexer.Table {
	return table
}

// Tokenize returns the tokens of src. Concatenating their text yields src.
func Tokenize(src string) iter.Seq[lexer.Token] {
	return table.Tokenize(src)
}

// NewScanner returns a scanner over src whose token positions carry
// filename.
func NewScanner(filename, src string) *lexer.Scanner {
	return table.Scanner(filename, src)
}
