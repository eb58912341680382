package valueflow

// Scale resolution for calculated values. A formula's output scale is
// determined by the first matching rule, in priority order:
//
//  1. The formula applies in_millions/in_thousands/in_billions: the raw
//     result is already the display value in that scale (handled in
//     Execute via scaleTarget).
//  2. The formula applies to_percentage: Units. A percentage is a plain
//     number (1.3 means 1.3%).
//  3. The top-level operator is division and every operand shares one
//     non-Units scale: Units. A ratio of like-scaled values is
//     dimensionless.
//  4. Every operand shares exactly one scale: that scale.
//  5. The formula multiplies or divides mixed-scale operands: Units.
//  6. Mixed-scale addition or subtraction: the first referenced operand's
//     scale. This is a known approximation, not a correctness guarantee;
//     it is kept as-is because existing results depend on it.

// scaleTarget reports whether the formula applies a display-scale
// conversion, and to which scale. When several conversions appear, the
// priority is millions, then thousands, then billions.
func (f *Formula) scaleTarget() (Scale, bool) {
	conversions := []struct {
		fn    string
		scale Scale
	}{
		{"in_millions", Millions},
		{"in_thousands", Thousands},
		{"in_billions", Billions},
	}
	for _, c := range conversions {
		if f.containsCall(c.fn) {
			return c.scale, true
		}
	}
	return Units, false
}

func (f *Formula) containsCall(name string) bool {
	found := false
	walk(f.root, func(n Node) bool {
		if call, ok := n.(*CallExpr); ok && call.Func == name {
			found = true
			return false
		}
		return true
	})
	return found
}

func (f *Formula) containsOp(ops ...Op) bool {
	found := false
	walk(f.root, func(n Node) bool {
		if bin, ok := n.(*BinaryExpr); ok {
			for _, op := range ops {
				if bin.Op == op {
					found = true
					return false
				}
			}
		}
		return true
	})
	return found
}

func (f *Formula) topLevelOp() (Op, bool) {
	if bin, ok := f.root.(*BinaryExpr); ok {
		return bin.Op, true
	}
	return 0, false
}

// resolveScale applies rules 2-6 above. operands holds the scales of the
// values the formula references, in first-reference order.
func resolveScale(f *Formula, operands []Scale) Scale {
	unique := uniqueScales(operands)

	if f.containsCall("to_percentage") {
		return Units
	}
	if op, ok := f.topLevelOp(); ok && op == OpDiv && len(unique) == 1 && unique[0] != Units {
		return Units
	}
	if len(unique) == 1 {
		return unique[0]
	}
	if f.containsOp(OpMul, OpDiv) {
		return Units
	}
	if len(operands) > 0 {
		return operands[0]
	}
	return Units
}

func uniqueScales(operands []Scale) []Scale {
	seen := make(map[Scale]bool, len(operands))
	var unique []Scale
	for _, s := range operands {
		if !seen[s] {
			seen[s] = true
			unique = append(unique, s)
		}
	}
	return unique
}
