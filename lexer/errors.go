package lexer

import (
	"fmt"
)

// ConfigError reports a malformed rule table. It is returned by Build,
// never produced while scanning.
type ConfigError struct {
	State   string
	Rule    int // Index within the state after includes are expanded, -1 for state-level errors
	Pattern string
	Reason  string
	Err     error
}

func (e *ConfigError) Error() string {
	location := fmt.Sprintf("state %q", e.State)
	if e.Rule >= 0 {
		location = fmt.Sprintf("state %q rule %d", e.State, e.Rule)
	}
	if e.Pattern != "" {
		location += fmt.Sprintf(" (%s)", e.Pattern)
	}

	msg := fmt.Sprintf("%s: %s", location, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func stateError(state, reason string) *ConfigError {
	return &ConfigError{State: state, Rule: -1, Reason: reason}
}

func ruleError(state string, index int, pattern, reason string, err error) *ConfigError {
	return &ConfigError{State: state, Rule: index, Pattern: pattern, Reason: reason, Err: err}
}
