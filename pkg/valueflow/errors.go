package valueflow

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a store lookup for a name that was never stored.
// It carries the full set of names that are available, so callers can feed
// the list back to whatever produced the bad reference.
type NotFoundError struct {
	// Name is the value name that was requested.
	Name string
	// Available is the sorted set of names currently in the store.
	Available []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("value %q not found. Available values: [%s]",
		e.Name, strings.Join(e.Available, ", "))
}

// SyntaxError indicates formula text that does not conform to the
// arithmetic grammar. No partial tree is ever produced.
type SyntaxError struct {
	// Formula is the offending formula text.
	Formula string
	// Pos is the rune offset where parsing failed.
	Pos int
	// Msg is the parser's diagnostic.
	Msg string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid formula syntax at offset %d: %s in %q", e.Pos, e.Msg, e.Formula)
}

// UndefinedVariableError indicates a formula that references identifiers
// that are neither stored values nor whitelisted functions.
type UndefinedVariableError struct {
	// Undefined is the sorted list of unknown identifiers.
	Undefined []string
	// Available is the sorted set of names the formula could have used.
	Available []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("formula uses undefined variables: [%s]. Available variables: [%s]",
		strings.Join(e.Undefined, ", "), strings.Join(e.Available, ", "))
}
