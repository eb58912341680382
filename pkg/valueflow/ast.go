package valueflow

// Node is one node of a parsed formula's expression tree.
// Exactly four kinds exist: NumberLit, Ident, BinaryExpr, and CallExpr.
type Node interface {
	node()
}

// Op is a binary arithmetic operator.
type Op int

// The four supported operators.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

// String returns the operator's surface form.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return "?"
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// Ident is a reference to a named value.
type Ident struct {
	Name string
}

// BinaryExpr applies an arithmetic operator to two subtrees.
type BinaryExpr struct {
	Op    Op
	Left  Node
	Right Node
}

// CallExpr invokes a whitelisted function.
type CallExpr struct {
	Func string
	Args []Node
}

func (*NumberLit) node()  {}
func (*Ident) node()      {}
func (*BinaryExpr) node() {}
func (*CallExpr) node()   {}

// walk visits every node in the tree in depth-first, left-to-right order.
// Visiting stops early when fn returns false.
func walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	switch t := n.(type) {
	case *BinaryExpr:
		if !walk(t.Left, fn) {
			return false
		}
		return walk(t.Right, fn)
	case *CallExpr:
		for _, arg := range t.Args {
			if !walk(arg, fn) {
				return false
			}
		}
	}
	return true
}
