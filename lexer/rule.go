package lexer

import (
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/exp/slices"
)

// Rule pairs a pattern with the tokens it produces and the state change it
// triggers. Rules of a state are tried in declaration order and the first
// match wins.
type Rule struct {
	// Pattern is matched at the cursor only. It may use lookahead, and ^
	// matches at the start of any line.
	Pattern string
	Emit    Emitter
	Action  Action

	include   string
	isDefault bool
}

// Include splices the rules of another state in place of this rule.
func Include(state string) Rule {
	return Rule{include: state}
}

// Default returns a rule that matches without consuming input. It only
// applies its action and must be the last rule of its state.
func Default(action Action) Rule {
	return Rule{Action: action, isDefault: true}
}

// Words builds an alternation matching any of the given literal words,
// longest first so that a word is never shadowed by one of its prefixes.
func Words(prefix, suffix string, words ...string) string {
	sorted := slices.Clone(words)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return len(b) - len(a)
	})
	for i, w := range sorted {
		sorted[i] = regexp2.Escape(w)
	}
	return prefix + "(?:" + strings.Join(sorted, "|") + ")" + suffix
}

type actionOp uint8

const (
	opNone actionOp = iota
	opPush
	opPop
	opPopPush
	opPopIfNested
)

// Action is the state stack mutation performed after a rule matched. The
// zero value leaves the stack untouched.
type Action struct {
	op    actionOp
	state string
}

// None leaves the state stack as it is.
func None() Action { return Action{} }

// Push enters the named state.
func Push(state string) Action { return Action{op: opPush, state: state} }

// Pop returns to the enclosing state. The root state is never popped.
func Pop() Action { return Action{op: opPop} }

// PopPush replaces the current state with the named one.
func PopPush(state string) Action { return Action{op: opPopPush, state: state} }

// PopIfNested pops only when the stack holds more than the root state.
func PopIfNested() Action { return Action{op: opPopIfNested} }

func (a Action) String() string {
	switch a.op {
	case opPush:
		return "push(" + a.state + ")"
	case opPop:
		return "pop"
	case opPopPush:
		return "pop+push(" + a.state + ")"
	case opPopIfNested:
		return "pop-if-nested"
	default:
		return "none"
	}
}

// Emitter produces tokens for (part of) a match. A Kind emits the whole
// span as a single token; ByGroups, Using and UsingSelf cover the rest.
type Emitter interface {
	emit(s *Scanner, m *regexp2.Match, start, end int)
}

func (k Kind) emit(s *Scanner, _ *regexp2.Match, start, end int) {
	s.enqueue(k, start, end)
}

type byGroups []Emitter

// ByGroups assigns one emitter per capture group of the pattern. Groups
// that did not participate or matched nothing emit no token. Matched text
// not covered by any group is emitted as Error.
func ByGroups(emitters ...Emitter) Emitter {
	return byGroups(emitters)
}

func (g byGroups) emit(s *Scanner, m *regexp2.Match, start, end int) {
	last := start
	for i, e := range g {
		group := m.GroupByNumber(i + 1)
		if group == nil || len(group.Captures) == 0 || group.Length == 0 {
			continue
		}
		gs, ge := group.Index, group.Index+group.Length
		if gs < last {
			// Nested inside an earlier group.
			continue
		}
		if gs > last {
			s.enqueue(Error, last, gs)
		}
		if e != nil {
			e.emit(s, m, gs, ge)
		} else {
			s.enqueue(Error, gs, ge)
		}
		last = ge
	}
	if last < end {
		s.enqueue(Error, last, end)
	}
}

type using struct {
	table *Table
}

// Using lexes the span with a fresh scanner over another table, starting
// from that table's root state.
func Using(table *Table) Emitter {
	return using{table: table}
}

// UsingSelf lexes the span with a fresh scanner over the table the
// current scanner runs on.
func UsingSelf() Emitter {
	return using{}
}

func (u using) emit(s *Scanner, _ *regexp2.Match, start, end int) {
	table := u.table
	if table == nil {
		table = s.table
	}
	child := newScanner(table, s.src[s.offsets[start]:s.offsets[end]], s.at(start))
	for tok := range child.All() {
		s.queue = append(s.queue, tok)
	}
}
