// Package annotator implements component A (spec.md §4.4): it rewrites
// predicate references into their defining expression, rewrites named
// sub-field references into their base field with the mask/value
// shifted into the base field's bit positions, and conjoins each
// concrete leaf's declared prerequisite onto it. After Annotate returns
// successfully the AST mentions only concrete fields and strings.
package annotator

import (
	"fmt"

	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/symtab"
)

// Annotate walks e, recursively expanding predicate/sub-field/prereq
// references to a fixed point. The symbol table has already proven the
// prerequisite/predicate reference graph acyclic (symtab's depth-first
// cycle detection, spec.md §4.2); a cycle surfacing here would mean the
// table was never asked about the offending name, which cannot happen
// because every leaf this function visits queries the table directly.
func Annotate(e ast.Expr, tbl *symtab.Table) (ast.Expr, error) {
	switch n := e.(type) {
	case ast.Boolean:
		return n, nil
	case *ast.And:
		children, err := annotateChildren(n.Children, tbl)
		if err != nil {
			return nil, err
		}
		return ast.NewAnd(children...), nil
	case *ast.Or:
		children, err := annotateChildren(n.Children, tbl)
		if err != nil {
			return nil, err
		}
		return ast.NewOr(children...), nil
	case *ast.Cmp:
		return annotateCmp(n, tbl)
	default:
		return nil, fmt.Errorf("annotator: unknown expr variant %T", e)
	}
}

func annotateChildren(in []ast.Expr, tbl *symtab.Table) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(in))
	for i, c := range in {
		ac, err := Annotate(c, tbl)
		if err != nil {
			return nil, err
		}
		out[i] = ac
	}
	return out, nil
}

func annotateCmp(n *ast.Cmp, tbl *symtab.Table) (ast.Expr, error) {
	switch n.Op {
	case ast.REF:
		return expandPredicate(n.Str, tbl)
	case ast.NREF:
		expanded, err := expandPredicate(n.Str, tbl)
		if err != nil {
			return nil, err
		}
		return ast.Negate(expanded), nil
	}

	rewritten := *n
	if base, low, _ := n.Symbol.Base(); base != n.Symbol {
		// A named sub-field (symtab.AddSubfield): re-express the leaf
		// against the base field, shifting into its bit positions. The
		// parser's own inline symbol[N..M] syntax never produces this
		// case — it already pins the window directly against the base
		// field, so Base() is a no-op there.
		rewritten.Symbol = base
		rewritten.Value = n.Value.Shl(uint(low))
		rewritten.Mask = n.Mask.Shl(uint(low))
	}

	prereq, err := tbl.PrereqExpr(n.Symbol.SymbolName())
	if err != nil {
		return nil, err
	}
	annotatedPrereq, err := Annotate(ast.Clone(prereq), tbl)
	if err != nil {
		return nil, err
	}
	if annotatedPrereq == ast.True {
		return &rewritten, nil
	}
	return ast.NewAnd(annotatedPrereq, &rewritten), nil
}

func expandPredicate(name string, tbl *symtab.Table) (ast.Expr, error) {
	body, err := tbl.PredicateExpr(name)
	if err != nil {
		return nil, err
	}
	return Annotate(ast.Clone(body), tbl)
}
