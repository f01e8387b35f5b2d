package ast

// Negate returns the logical negation of e, pushed all the way down to
// its leaves (De Morgan), so the AST never needs a NOT node (spec.md §3
// names CMP/AND/OR/BOOLEAN as the only variants). A predicate reference
// (REF) cannot be negated directly — its body is unknown until the
// annotator substitutes it — so negating one just flips it to the
// paired NREF tag for the annotator to resolve (spec.md §4.4).
func Negate(e Expr) Expr {
	switch n := e.(type) {
	case Boolean:
		return Boolean(!n)
	case *And:
		children := make([]Expr, len(n.Children))
		for i, c := range n.Children {
			children[i] = Negate(c)
		}
		return NewOr(children...)
	case *Or:
		children := make([]Expr, len(n.Children))
		for i, c := range n.Children {
			children[i] = Negate(c)
		}
		return NewAnd(children...)
	case *Cmp:
		switch n.Op {
		case REF:
			return &Cmp{Op: NREF, Str: n.Str}
		case NREF:
			return &Cmp{Op: REF, Str: n.Str}
		default:
			op, ok := n.Op.Negate()
			if !ok {
				panic("ast: cannot negate relational operator")
			}
			cp := *n
			cp.Op = op
			return &cp
		}
	default:
		panic("ast: unknown Expr variant")
	}
}
