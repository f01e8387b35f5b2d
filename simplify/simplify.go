// Package simplify implements component F (spec.md §4.5): an
// algebraic simplifier iterated to a fixed point over a fully
// annotated expression (flatten, identity absorption, leaf merging,
// contradiction detection, and must-crack expansion).
package simplify

import (
	"fmt"
	"reflect"

	"github.com/flowmatch/exprc/ast"
)

// Simplify rewrites e to a fixed point. The post-condition is
// ast.HonorsInvariants(result) (spec.md §4.5).
func Simplify(e ast.Expr) ast.Expr {
	for {
		next := simplifyOnce(e)
		if reflect.DeepEqual(next, e) {
			return next
		}
		e = next
	}
}

func simplifyOnce(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case ast.Boolean:
		return n
	case *ast.Cmp:
		return simplifyCmp(n)
	case *ast.And:
		return simplifyAnd(n)
	case *ast.Or:
		return simplifyOr(n)
	default:
		return e
	}
}

// simplifyCmp expands a must-crack field's masked equality into a union
// of exact-value equalities covering the mask (spec.md §4.5).
func simplifyCmp(n *ast.Cmp) ast.Expr {
	if n.IsStr || n.Symbol == nil || n.Op != ast.EQ || !n.Symbol.MustCrack() {
		return n
	}
	full := ast.OnesWindow(0, n.Symbol.BitWidth()-1)
	if n.Mask.Equal(full) {
		return n
	}
	return crackEquality(n, full)
}

func crackEquality(n *ast.Cmp, full ast.Value128) ast.Expr {
	free := full.AndNot(n.Mask)
	var positions []int
	for i := 0; i < n.Symbol.BitWidth(); i++ {
		if free.Bit(i) == 1 {
			positions = append(positions, i)
		}
	}
	combos := 1 << len(positions)
	out := make([]ast.Expr, 0, combos)
	for i := 0; i < combos; i++ {
		v := n.Value
		for j, pos := range positions {
			if i&(1<<uint(j)) != 0 {
				v = v.Or(ast.Uint64Value128(1).Shl(uint(pos)))
			}
		}
		out = append(out, ast.NewCmp(n.Symbol, ast.EQ, v, full))
	}
	return ast.NewOr(out...)
}

func simplifyAnd(n *ast.And) ast.Expr {
	var children []ast.Expr
	var sawFalse bool
	for _, c := range n.Children {
		sc := simplifyOnce(c)
		if sc == ast.False {
			sawFalse = true
		}
		children = append(children, sc)
	}
	if sawFalse {
		return ast.False
	}

	var kept []ast.Expr
	for _, c := range children {
		if c == ast.True {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return ast.True
	}

	merged, ok := mergeAndLeaves(kept)
	if !ok {
		return ast.False
	}
	return ast.NewAnd(merged...)
}

// mergeAndLeaves implements the leaf-merging rules of spec.md §4.5 over
// a conjunction's direct children: identical equalities collapse,
// equalities with overlapping-but-consistent masks merge into a wider
// mask, inconsistent equalities on the same field are a contradiction,
// and duplicate disequalities dedupe.
func mergeAndLeaves(children []ast.Expr) ([]ast.Expr, bool) {
	type eqAcc struct{ value, mask ast.Value128 }
	eqBySym := map[string]*eqAcc{}
	neSeen := map[string]map[string]bool{}

	var order []ast.Expr
	emittedEq := map[string]bool{}

	for _, c := range children {
		cmp, ok := c.(*ast.Cmp)
		if !ok || cmp.IsStr || cmp.Symbol == nil {
			order = append(order, c)
			continue
		}
		name := cmp.Symbol.SymbolName()
		switch cmp.Op {
		case ast.EQ:
			acc, exists := eqBySym[name]
			if !exists {
				eqBySym[name] = &eqAcc{value: cmp.Value, mask: cmp.Mask}
				order = append(order, c)
				continue
			}
			overlap := acc.mask.And(cmp.Mask)
			if !acc.value.And(overlap).Equal(cmp.Value.And(overlap)) {
				return nil, false
			}
			acc.value = acc.value.Or(cmp.Value)
			acc.mask = acc.mask.Or(cmp.Mask)
		case ast.NE:
			key := cmp.Value.String() + "/" + cmp.Mask.String()
			seen := neSeen[name]
			if seen == nil {
				seen = map[string]bool{}
				neSeen[name] = seen
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			order = append(order, c)
		default:
			order = append(order, c)
		}
	}

	out := make([]ast.Expr, 0, len(order))
	for _, c := range order {
		cmp, ok := c.(*ast.Cmp)
		if !ok || cmp.IsStr || cmp.Symbol == nil || cmp.Op != ast.EQ {
			out = append(out, c)
			continue
		}
		name := cmp.Symbol.SymbolName()
		if emittedEq[name] {
			continue
		}
		emittedEq[name] = true
		acc := eqBySym[name]
		out = append(out, ast.NewCmp(cmp.Symbol, ast.EQ, acc.value, acc.mask))
	}
	return out, true
}

func simplifyOr(n *ast.Or) ast.Expr {
	var children []ast.Expr
	var sawTrue bool
	for _, c := range n.Children {
		sc := simplifyOnce(c)
		if sc == ast.True {
			sawTrue = true
		}
		children = append(children, sc)
	}
	if sawTrue {
		return ast.True
	}

	var kept []ast.Expr
	for _, c := range children {
		if c == ast.False {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return ast.False
	}
	return ast.NewOr(dedupeLeaves(kept)...)
}

func dedupeLeaves(children []ast.Expr) []ast.Expr {
	seen := map[string]bool{}
	var out []ast.Expr
	for _, c := range children {
		key := canonicalKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func canonicalKey(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Cmp:
		if n.IsStr {
			return fmt.Sprintf("str:%s:%s:%s", n.Symbol.SymbolName(), n.Op, n.Str)
		}
		return fmt.Sprintf("cmp:%s:%s:%s:%s", n.Symbol.SymbolName(), n.Op, n.Value, n.Mask)
	case ast.Boolean:
		return fmt.Sprintf("bool:%v", bool(n))
	default:
		// Composite (AND/OR) children are deduped only by pointer
		// identity within one pass; a repeated composite sub-tree is
		// vanishingly rare and re-appears flattened on the next
		// fixed-point iteration if it does occur.
		return fmt.Sprintf("%p", e)
	}
}
