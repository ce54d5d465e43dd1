// Package lexer implements an ordered, stack-based regular expression
// tokenizer.
//
// A Table maps state names to ordered rule lists. A Scanner walks the input
// left to right, tries the rules of the state on top of its stack in
// declaration order and applies the first that matches at the cursor:
// tokens are emitted, the stack is pushed or popped and the cursor moves
// past the match. Input no rule matches is emitted one character at a time
// as Error tokens, so every input is covered and scanning always ends.
//
// Tables are validated once at construction and are immutable afterwards,
// so a single Table can back any number of concurrent Scanners.
//
// Example usage:
//
//	table := lexer.MustBuild(lexer.Config{Name: "Demo"}, "root", lexer.States{
//		"root": {
//			{Pattern: `\s+`, Emit: lexer.Whitespace},
//			{Pattern: `"`, Emit: lexer.String, Action: lexer.Push("string")},
//		},
//		"string": {
//			{Pattern: `[^"]+`, Emit: lexer.String},
//			{Pattern: `"`, Emit: lexer.String, Action: lexer.Pop()},
//		},
//	})
//
//	for tok := range table.Tokenize(`"hi" `) {
//		fmt.Println(tok)
//	}
package lexer

import (
	"fmt"
	"iter"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// States declares the rules of each named state.
type States map[string][]Rule

// Table is a compiled, immutable set of states.
type Table struct {
	config Config
	root   int
	states []state
	index  map[string]int

	newlineReset bool

	// defaultLimit bounds consecutive Default rules applied without
	// consuming input.
	defaultLimit int
}

type state struct {
	name  string
	rules []compiledRule
}

type compiledRule struct {
	pattern   string
	re        *regexp2.Regexp
	emit      Emitter
	op        actionOp
	target    int
	isDefault bool
}

// Option configures a Table.
type Option func(*buildOptions)

type buildOptions struct {
	newlineReset bool
	matchTimeout time.Duration
}

// WithNewlineReset makes a newline no rule matches reset the stack to the
// root state. The newline is emitted as Whitespace instead of Error.
func WithNewlineReset() Option {
	return func(o *buildOptions) {
		o.newlineReset = true
	}
}

// WithMatchTimeout bounds the time a single pattern may spend matching. A
// pattern that times out is treated as not matching.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *buildOptions) {
		o.matchTimeout = d
	}
}

// MustBuild is like Build but panics on a malformed table. It is meant for
// package-level tables.
func MustBuild(config Config, root string, states States, opts ...Option) *Table {
	t, err := Build(config, root, states, opts...)
	if err != nil {
		panic(fmt.Sprintf("lexer: %s: %v", config.Name, err))
	}
	return t
}

// Build validates and compiles a rule table. All defects are reported here
// as *ConfigError so scanning never has to deal with them.
func Build(config Config, root string, states States, opts ...Option) (*Table, error) {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if _, ok := states[root]; !ok {
		return nil, stateError(root, "root state is not defined")
	}

	names := maps.Keys(states)
	slices.Sort(names)

	t := &Table{
		config:       config,
		index:        make(map[string]int, len(names)),
		states:       make([]state, len(names)),
		newlineReset: o.newlineReset,
	}
	for i, name := range names {
		t.index[name] = i
	}
	t.root = t.index[root]

	for i, name := range names {
		rules, err := expand(states, name, nil)
		if err != nil {
			return nil, err
		}
		if len(rules) == 0 {
			return nil, stateError(name, "state has no rules")
		}

		compiled := make([]compiledRule, len(rules))
		for j, r := range rules {
			cr, err := t.compile(name, j, len(rules), r, o)
			if err != nil {
				return nil, err
			}
			compiled[j] = cr
		}
		t.states[i] = state{name: name, rules: compiled}
	}

	t.defaultLimit = 4*len(t.states) + 4
	if err := t.checkDefaults(); err != nil {
		return nil, err
	}

	return t, nil
}

// checkDefaults follows the Default rules from every state, assuming no
// other rule ever matches, and rejects chains that never hand control back
// to a rule that consumes input.
func (t *Table) checkDefaults() error {
	for i := range t.states {
		stack := []int{i}
		seen := map[string]bool{fmt.Sprint(stack): true}

	chain:
		for steps := 0; ; steps++ {
			top := stack[len(stack)-1]
			rules := t.states[top].rules
			r := &rules[len(rules)-1]
			if !r.isDefault {
				break
			}

			fail := func(reason string) error {
				return ruleError(t.states[top].name, len(rules)-1, "", reason, nil)
			}

			switch r.op {
			case opNone:
				return fail("default rule never changes the state stack")
			case opPop, opPopIfNested:
				if len(stack) == 1 {
					if top == t.root {
						return fail("default rule pops the root state")
					}
					// Control returns to whatever state entered this one.
					break chain
				}
				stack = stack[:len(stack)-1]
			case opPush:
				stack = append(stack, r.target)
			case opPopPush:
				stack[len(stack)-1] = r.target
			}

			key := fmt.Sprint(stack)
			if seen[key] || steps >= t.defaultLimit {
				return fail("default rules loop without consuming input")
			}
			seen[key] = true
		}
	}
	return nil
}

// expand flattens Include rules, rejecting unknown states and cycles.
func expand(states States, name string, visiting []string) ([]Rule, error) {
	if slices.Contains(visiting, name) {
		return nil, stateError(name, fmt.Sprintf("include cycle %v", append(visiting, name)))
	}
	visiting = append(visiting, name)

	var out []Rule
	for _, r := range states[name] {
		if r.include == "" {
			out = append(out, r)
			continue
		}
		if _, ok := states[r.include]; !ok {
			return nil, stateError(name, fmt.Sprintf("include of undefined state %q", r.include))
		}
		included, err := expand(states, r.include, visiting)
		if err != nil {
			return nil, err
		}
		out = append(out, included...)
	}
	return out, nil
}

func (t *Table) compile(stateName string, index, count int, r Rule, o buildOptions) (compiledRule, error) {
	cr := compiledRule{
		pattern:   r.Pattern,
		emit:      r.Emit,
		op:        r.Action.op,
		target:    -1,
		isDefault: r.isDefault,
	}

	if r.Action.op == opPush || r.Action.op == opPopPush {
		target, ok := t.index[r.Action.state]
		if !ok {
			return cr, ruleError(stateName, index, r.Pattern, fmt.Sprintf("%s targets undefined state", r.Action), nil)
		}
		cr.target = target
	}

	if r.isDefault {
		if index != count-1 {
			return cr, ruleError(stateName, index, "", "default rule must be the last rule of its state", nil)
		}
		return cr, nil
	}

	if r.Pattern == "" {
		return cr, ruleError(stateName, index, "", "empty pattern", nil)
	}
	if r.Emit == nil {
		return cr, ruleError(stateName, index, r.Pattern, "rule emits nothing", nil)
	}

	re, err := regexp2.Compile(`\G(?:`+r.Pattern+`)`, regexp2.Multiline)
	if err != nil {
		return cr, ruleError(stateName, index, r.Pattern, "invalid pattern", err)
	}
	if o.matchTimeout > 0 {
		re.MatchTimeout = o.matchTimeout
	}

	if empty, _ := re.MatchString(""); empty {
		return cr, ruleError(stateName, index, r.Pattern, "pattern matches the empty string", nil)
	}

	if groups, ok := r.Emit.(byGroups); ok {
		want := len(re.GetGroupNumbers()) - 1
		if len(groups) != want {
			return cr, ruleError(stateName, index, r.Pattern,
				fmt.Sprintf("ByGroups has %d emitters for %d groups", len(groups), want), nil)
		}
		for _, e := range groups {
			if _, nested := e.(byGroups); nested {
				return cr, ruleError(stateName, index, r.Pattern, "ByGroups cannot be nested", nil)
			}
		}
	}

	cr.re = re
	return cr, nil
}

// Config returns the registration metadata the table was built with.
func (t *Table) Config() Config {
	return t.config
}

// Root returns the name of the root state.
func (t *Table) Root() string {
	return t.states[t.root].name
}

// States returns the state names in sorted order.
func (t *Table) States() []string {
	names := make([]string, len(t.states))
	for i, s := range t.states {
		names[i] = s.name
	}
	return names
}

// Scanner returns a fresh scanner over src. The filename only ends up in
// token positions.
func (t *Table) Scanner(filename, src string) *Scanner {
	return newScanner(t, src, startPosition(filename))
}

// Tokenize returns the token sequence for src. Each call scans anew.
func (t *Table) Tokenize(src string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for tok := range t.Scanner("", src).All() {
			if !yield(tok) {
				return
			}
		}
	}
}
