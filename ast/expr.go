package ast

// Expr is the discriminated union of the three expression shapes
// (spec.md §3, §9): CMP, AND/OR, and BOOLEAN. Implemented as an
// interface with an unexported marker method rather than a generic sum
// type, the way the teacher's Node/TerminalNode hierarchy discriminates
// AST shapes by interface (ast/node.go).
type Expr interface {
	isExpr()
}

// Cmp is a leaf comparison: symbol relop value[/mask], or a string
// equality/disequality. When Op is REF, Symbol and Value/Mask are
// unused and Str names a predicate awaiting expansion by the annotator.
type Cmp struct {
	Symbol Symbol
	Op     RelOp
	Value  Value128
	Mask   Value128
	Str    string
	IsStr  bool
}

func (*Cmp) isExpr() {}

// NewCmp builds a numeric comparison leaf.
func NewCmp(sym Symbol, op RelOp, value, mask Value128) *Cmp {
	return &Cmp{Symbol: sym, Op: op, Value: value, Mask: mask}
}

// NewStrCmp builds a string equality/disequality leaf.
func NewStrCmp(sym Symbol, op RelOp, s string) *Cmp {
	return &Cmp{Symbol: sym, Op: op, Str: s, IsStr: true}
}

// NewPredRef builds the transient "bare predicate reference" leaf the
// parser emits for a symbol mentioned with no relational operator
// (spec.md §4.3); the annotator must replace it (spec.md §4.4).
func NewPredRef(name string) *Cmp {
	return &Cmp{Op: REF, Str: name}
}

// And is a conjunction of two or more children, flattened: no child of
// And is itself an *And post-construction (spec.md §3 invariant 3).
type And struct{ Children []Expr }

func (*And) isExpr() {}

// Or is a disjunction of two or more children, flattened analogously.
type Or struct{ Children []Expr }

func (*Or) isExpr() {}

// Boolean is a literal true/false.
type Boolean bool

func (Boolean) isExpr() {}

const (
	True  = Boolean(true)
	False = Boolean(false)
)

// NewAnd builds a flattened conjunction. A single child collapses to
// itself; zero children is a programming error (callers always have
// >= 1 operand by construction).
func NewAnd(children ...Expr) Expr {
	flat := flattenInto(nil, children, opAnd)
	if len(flat) == 1 {
		return flat[0]
	}
	return &And{Children: flat}
}

// NewOr builds a flattened disjunction, collapsing a singleton the same
// way NewAnd does.
func NewOr(children ...Expr) Expr {
	flat := flattenInto(nil, children, opOr)
	if len(flat) == 1 {
		return flat[0]
	}
	return &Or{Children: flat}
}

type opKind int

const (
	opAnd opKind = iota
	opOr
)

func flattenInto(acc []Expr, children []Expr, kind opKind) []Expr {
	for _, c := range children {
		switch kind {
		case opAnd:
			if a, ok := c.(*And); ok {
				acc = flattenInto(acc, a.Children, kind)
				continue
			}
		case opOr:
			if o, ok := c.(*Or); ok {
				acc = flattenInto(acc, o.Children, kind)
				continue
			}
		}
		acc = append(acc, c)
	}
	return acc
}

// Clone performs a deep copy of an expression tree. The annotator uses
// this to expand a predicate or sub-field's defining/prerequisite
// expression by value rather than by reference (spec.md §5, §9): the
// symbol table's cached ASTs are never mutated or shared into the
// pipeline.
func Clone(e Expr) Expr {
	switch n := e.(type) {
	case *Cmp:
		cp := *n
		return &cp
	case *And:
		children := make([]Expr, len(n.Children))
		for i, c := range n.Children {
			children[i] = Clone(c)
		}
		return &And{Children: children}
	case *Or:
		children := make([]Expr, len(n.Children))
		for i, c := range n.Children {
			children[i] = Clone(c)
		}
		return &Or{Children: children}
	case Boolean:
		return n
	default:
		panic("ast: unknown Expr variant")
	}
}
