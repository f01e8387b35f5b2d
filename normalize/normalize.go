// Package normalize implements component N (spec.md §4.6): it transforms
// an already-simplified expression into disjunctive normal form — an Or
// of And/Cmp/Boolean disjuncts, with every And-of-Or crushed away and
// every disjunct that is strictly implied by another absorbed.
//
// No teacher file performs this rewrite (protobuf declarations have no
// analogous boolean-algebra pass); this is original logic over this
// module's own ast types, built directly from spec.md §4.6's stage list.
package normalize

import "github.com/flowmatch/exprc/ast"

// Normalize rewrites e to DNF. The De Morgan stage spec.md §4.6 names
// first (step 1) is a no-op here: the parser (ast.Negate) and the
// annotator already push every negation to a leaf as it is produced, so
// by the time Normalize runs there is structurally no NOT left to push
// — ast.HonorsInvariants's absence of a NOT variant is the validated
// proof of that, not live rewriting work this function has to do.
func Normalize(e ast.Expr) ast.Expr {
	crushed := crush(e)
	return absorb(crushed)
}

// crush distributes And over Or (spec.md §4.6 steps 2-4 collapse into
// one operation over this AST: building the flattened And via
// ast.NewAnd already re-flattens step 3 for free). It recurses
// bottom-up so a child that itself crushes into an Or is available to
// crush again at its parent.
func crush(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case ast.Boolean, *ast.Cmp:
		return e
	case *ast.And:
		children := make([]ast.Expr, len(n.Children))
		for i, c := range n.Children {
			children[i] = crush(c)
		}
		return crushAnd(children)
	case *ast.Or:
		children := make([]ast.Expr, len(n.Children))
		for i, c := range n.Children {
			children[i] = crush(c)
		}
		return ast.NewOr(children...)
	default:
		return e
	}
}

// crushAnd expands the first Or child it finds into the disjunction of
// one And per alternative, then recurses so that any further Or child
// (whether original or freshly substituted in) is expanded too,
// terminating when no And contains an Or child (spec.md §4.6 step 4).
func crushAnd(children []ast.Expr) ast.Expr {
	for i, c := range children {
		orChild, ok := c.(*ast.Or)
		if !ok {
			continue
		}
		disjuncts := make([]ast.Expr, len(orChild.Children))
		for j, alt := range orChild.Children {
			rest := make([]ast.Expr, len(children))
			copy(rest, children)
			rest[i] = alt
			disjuncts[j] = crushAnd(rest)
		}
		return ast.NewOr(disjuncts...)
	}
	return ast.NewAnd(children...)
}

// absorb drops any top-level disjunct that is strictly implied by
// another (spec.md §4.6 step 5): if X => Y, Or(X, Y) already equals Y,
// so X is redundant.
func absorb(e ast.Expr) ast.Expr {
	or, ok := e.(*ast.Or)
	if !ok {
		return e
	}
	disjuncts := or.Children
	keep := make([]bool, len(disjuncts))
	for i := range keep {
		keep[i] = true
	}
	for i, di := range disjuncts {
		if !keep[i] {
			continue
		}
		for j, dj := range disjuncts {
			if i == j || !keep[j] {
				continue
			}
			if implies(di, dj) {
				keep[i] = false
				break
			}
		}
	}
	var out []ast.Expr
	for i, k := range keep {
		if k {
			out = append(out, disjuncts[i])
		}
	}
	if len(out) == 0 {
		return ast.False
	}
	if len(out) == 1 {
		return out[0]
	}
	return &ast.Or{Children: out}
}

// implies reports whether x => y (Set(x) is a subset of Set(y)), so
// that a disjunct equal to x is redundant whenever y is also present.
func implies(x, y ast.Expr) bool {
	if xb, ok := x.(ast.Boolean); ok {
		if !bool(xb) {
			return true // false implies everything
		}
		yb, ok := y.(ast.Boolean)
		return ok && bool(yb)
	}
	if yb, ok := y.(ast.Boolean); ok {
		return bool(yb) // anything implies true
	}
	xl, xok := leavesOf(x)
	yl, yok := leavesOf(y)
	if !xok || !yok {
		return false
	}
	for _, yleaf := range yl {
		found := false
		for _, xleaf := range xl {
			if leafImplies(xleaf, yleaf) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func leavesOf(e ast.Expr) ([]*ast.Cmp, bool) {
	switch n := e.(type) {
	case *ast.Cmp:
		return []*ast.Cmp{n}, true
	case *ast.And:
		out := make([]*ast.Cmp, 0, len(n.Children))
		for _, c := range n.Children {
			cmp, ok := c.(*ast.Cmp)
			if !ok {
				return nil, false
			}
			out = append(out, cmp)
		}
		return out, true
	default:
		return nil, false
	}
}

// leafImplies reports whether a (the more specific leaf) implies b: a's
// constraint pins at least every bit b's does, consistently.
func leafImplies(a, b *ast.Cmp) bool {
	if a.Symbol == nil || b.Symbol == nil || a.Symbol.SymbolName() != b.Symbol.SymbolName() {
		return false
	}
	if a.IsStr || b.IsStr {
		return a.IsStr && b.IsStr && a.Op == b.Op && a.Str == b.Str
	}
	if a.Op == ast.EQ && b.Op == ast.EQ {
		if !b.Mask.Subset(a.Mask) {
			return false
		}
		return a.Value.And(b.Mask).Equal(b.Value.And(b.Mask))
	}
	return a.Op == b.Op && a.Value.Equal(b.Value) && a.Mask.Equal(b.Mask)
}
