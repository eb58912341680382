package valueflow

import "sort"

// funcSpec describes a whitelisted function's accepted argument counts.
// maxArgs of -1 means no upper bound.
type funcSpec struct {
	minArgs int
	maxArgs int
}

// functions is the fixed whitelist. Nothing outside this table is callable:
// the grammar has no other way to invoke behavior, which is what makes
// executing externally generated formula text safe.
var functions = map[string]funcSpec{
	"abs":           {1, 1},
	"min":           {2, -1},
	"max":           {2, -1},
	"round":         {1, 2},
	"to_percentage": {1, 1},
	"in_millions":   {1, 1},
	"in_thousands":  {1, 1},
	"in_billions":   {1, 1},
}

// Formula is a validated expression tree, ready for execution.
// It retains the original text for provenance and error reporting.
type Formula struct {
	// Text is the formula's original surface syntax.
	Text string

	root   Node
	idents []string // referenced names, in first-reference order
}

// Identifiers returns the names the formula references, in the order of
// their first appearance, left to right.
func (f *Formula) Identifiers() []string {
	out := make([]string, len(f.idents))
	copy(out, f.idents)
	return out
}

// Validate parses formulaText and confirms every referenced identifier is
// either one of the available value names or a whitelisted function.
//
// Returns *SyntaxError for malformed text or a bad call arity, and
// *UndefinedVariableError when unknown identifiers remain. Validation fails
// fast: no partial tree is ever returned.
func Validate(formulaText string, available []string) (*Formula, error) {
	root, err := parse(formulaText)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}

	var idents []string
	seen := make(map[string]bool)
	undefined := make(map[string]bool)
	var arityErr error

	walk(root, func(n Node) bool {
		switch t := n.(type) {
		case *Ident:
			if !seen[t.Name] {
				seen[t.Name] = true
				idents = append(idents, t.Name)
			}
			if !known[t.Name] {
				undefined[t.Name] = true
			}
		case *CallExpr:
			spec, ok := functions[t.Func]
			if !ok {
				undefined[t.Func] = true
				return true
			}
			if len(t.Args) < spec.minArgs || (spec.maxArgs >= 0 && len(t.Args) > spec.maxArgs) {
				arityErr = &SyntaxError{
					Formula: formulaText,
					Msg:     "wrong number of arguments to " + t.Func,
				}
				return false
			}
		}
		return true
	})

	if arityErr != nil {
		return nil, arityErr
	}
	if len(undefined) > 0 {
		names := make([]string, 0, len(undefined))
		for name := range undefined {
			names = append(names, name)
		}
		sort.Strings(names)
		avail := make([]string, len(available))
		copy(avail, available)
		sort.Strings(avail)
		return nil, &UndefinedVariableError{Undefined: names, Available: avail}
	}

	return &Formula{Text: formulaText, root: root, idents: idents}, nil
}
