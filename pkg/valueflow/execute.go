package valueflow

import (
	"math"
	"sort"
)

// Execute evaluates a validated formula against the given value bindings.
//
// Evaluation is purely functional: each referenced ValueObject's canonical
// Value is projected into a flat numeric environment and the tree is walked
// recursively. The grammar admits nothing beyond arithmetic and whitelisted
// calls, so evaluation itself cannot fail; division by zero follows IEEE
// float semantics. The only error case is a binding missing for a name the
// formula references.
//
// The result's scale is resolved by resolveScale; see scale.go for the
// priority rules.
func Execute(f *Formula, bindings map[string]ValueObject) (ValueObject, error) {
	var missing []string
	for _, name := range f.idents {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		available := make([]string, 0, len(bindings))
		for name := range bindings {
			available = append(available, name)
		}
		sort.Strings(available)
		return ValueObject{}, &UndefinedVariableError{Undefined: missing, Available: available}
	}

	env := make(map[string]float64, len(f.idents))
	for _, name := range f.idents {
		env[name] = bindings[name].Value
	}

	raw := evalNode(f.root, env)

	// A conversion call makes the raw result the display value directly;
	// the canonical value is reconstructed from the target scale.
	if target, ok := f.scaleTarget(); ok {
		return ValueObject{
			Value:        raw * target.Factor(),
			DisplayValue: raw,
			Scale:        target,
			Source:       SourceCalculated,
			Description:  "result of " + f.Text,
		}, nil
	}

	operands := make([]Scale, len(f.idents))
	for i, name := range f.idents {
		operands[i] = bindings[name].Scale
	}
	out := resolveScale(f, operands)

	return ValueObject{
		Value:        raw,
		DisplayValue: raw / out.Factor(),
		Scale:        out,
		Source:       SourceCalculated,
		Description:  "result of " + f.Text,
	}, nil
}

func evalNode(n Node, env map[string]float64) float64 {
	switch t := n.(type) {
	case *NumberLit:
		return t.Value
	case *Ident:
		return env[t.Name]
	case *BinaryExpr:
		left := evalNode(t.Left, env)
		right := evalNode(t.Right, env)
		switch t.Op {
		case OpAdd:
			return left + right
		case OpSub:
			return left - right
		case OpMul:
			return left * right
		case OpDiv:
			return left / right
		}
	case *CallExpr:
		args := make([]float64, len(t.Args))
		for i, arg := range t.Args {
			args[i] = evalNode(arg, env)
		}
		return evalCall(t.Func, args)
	}
	panic("valueflow: unknown node kind")
}

func evalCall(name string, args []float64) float64 {
	switch name {
	case "abs":
		return math.Abs(args[0])
	case "min":
		m := args[0]
		for _, v := range args[1:] {
			m = math.Min(m, v)
		}
		return m
	case "max":
		m := args[0]
		for _, v := range args[1:] {
			m = math.Max(m, v)
		}
		return m
	case "round":
		if len(args) == 2 {
			shift := math.Pow(10, math.Trunc(args[1]))
			return math.Round(args[0]*shift) / shift
		}
		return math.Round(args[0])
	case "to_percentage":
		return args[0] * 100
	case "in_millions":
		return args[0] / Millions.Factor()
	case "in_thousands":
		return args[0] / Thousands.Factor()
	case "in_billions":
		return args[0] / Billions.Factor()
	}
	// Unreachable for a validated tree.
	panic("valueflow: call to unvalidated function " + name)
}
