package lexer

import (
	"iter"

	"github.com/alecthomas/participle/v2/lexer"
)

// Scanner produces the tokens of a single input. It is pull based and one
// shot: once exhausted it keeps reporting the end of input. Scanners are
// not safe for concurrent use, but any number of them may share a Table.
type Scanner struct {
	table *Table

	src     string
	runes   []rune
	offsets []int // Byte offset of each rune, plus len(src)
	base    lexer.Position

	pos   int   // Cursor, in runes
	stack []int // State indices, bottom is always the root
	queue []Token

	// Default rules applied since input was last consumed.
	defaults int

	// Position cache for the most recently resolved rune index.
	mark    int
	markPos lexer.Position
}

func startPosition(filename string) lexer.Position {
	return lexer.Position{Filename: filename, Line: 1, Column: 1}
}

func newScanner(t *Table, src string, base lexer.Position) *Scanner {
	runes := []rune(src)
	offsets := make([]int, 0, len(runes)+1)
	for i := range src {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(src))

	stack := make([]int, 1, 8)
	stack[0] = t.root

	return &Scanner{
		table:   t,
		src:     src,
		runes:   runes,
		offsets: offsets,
		base:    base,
		stack:   stack,
		markPos: base,
	}
}

// Next returns the next token, or false once the input is exhausted.
func (s *Scanner) Next() (Token, bool) {
	for len(s.queue) == 0 {
		if s.pos >= len(s.runes) {
			s.settle()
			return Token{}, false
		}
		s.step()
	}

	tok := s.queue[0]
	s.queue = s.queue[1:]
	return tok, true
}

// All returns the remaining tokens as a sequence. Stopping the iteration
// early leaves the scanner where it was, so a later call resumes there.
func (s *Scanner) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok, ok := s.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Stack returns the names of the states on the stack, bottom first.
func (s *Scanner) Stack() []string {
	names := make([]string, len(s.stack))
	for i, idx := range s.stack {
		names[i] = s.table.states[idx].name
	}
	return names
}

// step applies exactly one rule at the cursor, or recovers from the
// absence of one by consuming a single character.
func (s *Scanner) step() {
	st := &s.table.states[s.stack[len(s.stack)-1]]

	for i := range st.rules {
		r := &st.rules[i]
		if r.isDefault {
			if s.applyDefault(r) {
				return
			}
			break
		}

		m, err := r.re.FindRunesMatchStartingAt(s.runes, s.pos)
		if err != nil || m == nil || m.Index != s.pos || m.Length == 0 {
			continue
		}

		end := s.pos + m.Length
		r.emit.emit(s, m, s.pos, end)
		s.pos = end
		s.defaults = 0
		s.apply(r)
		return
	}

	s.defaults = 0

	if s.runes[s.pos] == '\n' && s.table.newlineReset {
		s.stack = s.stack[:1]
		s.enqueue(Whitespace, s.pos, s.pos+1)
		s.pos++
		return
	}

	s.enqueue(Error, s.pos, s.pos+1)
	s.pos++
}

// applyDefault applies a Default rule and reports whether the stack
// changed. Once the chain of defaults gets longer than the table allows,
// nothing is applied anymore.
func (s *Scanner) applyDefault(r *compiledRule) bool {
	if s.defaults >= s.table.defaultLimit {
		return false
	}

	depth, top := len(s.stack), s.stack[len(s.stack)-1]
	s.apply(r)
	if len(s.stack) == depth && s.stack[depth-1] == top {
		return false
	}

	s.defaults++
	return true
}

// settle applies the Default rules that fire at the end of input, so a
// state waiting for an optional suffix is left like anywhere else.
func (s *Scanner) settle() {
	for {
		rules := s.table.states[s.stack[len(s.stack)-1]].rules
		r := &rules[len(rules)-1]
		if !r.isDefault || !s.applyDefault(r) {
			return
		}
	}
}

func (s *Scanner) apply(r *compiledRule) {
	switch r.op {
	case opPush:
		s.stack = append(s.stack, r.target)
	case opPop, opPopIfNested:
		s.pop()
	case opPopPush:
		s.pop()
		s.stack = append(s.stack, r.target)
	}
}

func (s *Scanner) pop() {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

func (s *Scanner) enqueue(kind Kind, start, end int) {
	s.queue = append(s.queue, Token{
		Kind: kind,
		Text: s.src[s.offsets[start]:s.offsets[end]],
		Pos:  s.at(start),
	})
}

// at resolves the position of rune index i. Lookups are mostly
// increasing, so positions are computed from the last resolved index.
func (s *Scanner) at(i int) lexer.Position {
	if i < s.mark {
		s.mark, s.markPos = 0, s.base
	}
	for ; s.mark < i; s.mark++ {
		if s.runes[s.mark] == '\n' {
			s.markPos.Line++
			s.markPos.Column = 1
		} else {
			s.markPos.Column++
		}
	}

	pos := s.markPos
	pos.Offset = s.base.Offset + s.offsets[i]
	return pos
}
