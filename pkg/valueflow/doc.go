/*
Package valueflow provides a scale-aware formula engine for multi-turn
numeric question answering.

# Overview

valueflow evaluates small arithmetic formulas over named values drawn from
earlier turns of a conversation or from an external knowledge source. The
formula text is untrusted: it is produced by an external generator, so it
is parsed into an explicit expression tree, checked against a whitelist of
values and functions, and evaluated in a closed numeric environment. Host
language evaluation is never used.

Every value carries a scale (Units, Thousands, Millions, Billions) and a
canonical magnitude in Units. Arithmetic always operates on the canonical
magnitude; scale is resolved for each result so chained calculations stay
dimensionally consistent across turns.

# Basic Usage

Store values and evaluate formulas through a Conversation:

	conv := valueflow.NewConversation()
	conv.RecordExtracted("net_sales_2001",
	    valueflow.NewValue(5363, valueflow.Millions, valueflow.SourceExtracted, "net sales in 2001"))
	conv.RecordExtracted("net_sales_2000",
	    valueflow.NewValue(7983, valueflow.Millions, valueflow.SourceExtracted, "net sales in 2000"))

	ctx := context.Background()
	change, err := conv.EvaluateTurn(ctx, "change_in_net_sales",
	    "net_sales_2001 - net_sales_2000")
	pct, err := conv.EvaluateTurn(ctx, "pct_change",
	    "to_percentage(change_in_net_sales / net_sales_2000)")

Or use the validator and executor directly:

	f, err := valueflow.Validate("a + b", []string{"a", "b"})
	if err != nil {
	    // *SyntaxError or *UndefinedVariableError
	}
	result, err := valueflow.Execute(f, bindings)

# Formula Grammar

Formulas support numeric literals, identifiers, the four arithmetic
operators, parentheses, and calls to a fixed function whitelist:

	abs, min, max, round, to_percentage,
	in_millions, in_thousands, in_billions

Nothing else parses. There are no loops, no user-defined functions, and no
string operations.

# Related Packages

  - phase: bounded retry with validation feedback for fallible stages
  - archive: end-of-conversation export of named values
  - config: settings loading from YAML/JSON
  - observability: structured logging and OpenTelemetry metrics
*/
package valueflow
