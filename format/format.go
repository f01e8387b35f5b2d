// Package format implements component C (spec.md §4.8): an AST-to-text
// composer such that parse(format(e)) is semantically equivalent to e,
// reversing the sugar the parser applies (equality sets, bare boolean
// symbols) so a compiled expression can be pretty-printed back for a
// human to read, the same round-trip guarantee spec.md §8's P2
// exercises from the other direction.
//
// No teacher file prints an AST back to source text (protobuf tooling
// in this pack never needs to regenerate .proto source); this is
// original logic, grounded directly in spec.md §4.8 and SPEC_FULL.md
// §13.5's equality-set collapsing rule.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flowmatch/exprc/ast"
)

// Format renders e as match-expression text.
func Format(e ast.Expr) string {
	return formatTop(e)
}

func formatTop(e ast.Expr) string {
	switch n := e.(type) {
	case ast.Boolean:
		if bool(n) {
			return "true"
		}
		return "false"
	case *ast.Or:
		return formatOr(n)
	case *ast.And:
		return formatAnd(n)
	case *ast.Cmp:
		return formatCmp(n)
	default:
		return fmt.Sprintf("<unknown %T>", e)
	}
}

// formatChild renders a child of an And node, parenthesizing an Or
// child since And binds tighter (Or can never appear as a child of Or,
// and And can never appear as a child of And, by construction — see
// ast.NewAnd/NewOr — so this is the only parenthesization precedence
// ever requires).
func formatChild(e ast.Expr, parentIsAnd bool) string {
	if parentIsAnd {
		if orChild, ok := e.(*ast.Or); ok {
			return "(" + formatOr(orChild) + ")"
		}
	}
	return formatTop(e)
}

func formatAnd(n *ast.And) string {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = formatChild(c, true)
	}
	return strings.Join(parts, " && ")
}

func formatOr(n *ast.Or) string {
	if sym, vals, ok := setSugarCandidate(n); ok {
		return fmt.Sprintf("%s == {%s}", sym, strings.Join(vals, ", "))
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = formatChild(c, false)
	}
	return strings.Join(parts, " || ")
}

// setSugarCandidate reports whether n is an Or of two or more bare
// equalities on the same symbol, which formats as the `{...}` set
// sugar the parser's own RHS grammar accepts (SPEC_FULL.md §13.5).
func setSugarCandidate(n *ast.Or) (string, []string, bool) {
	if len(n.Children) < 2 {
		return "", nil, false
	}
	var symName string
	var isStr bool
	vals := make([]string, 0, len(n.Children))
	for i, c := range n.Children {
		cmp, ok := c.(*ast.Cmp)
		if !ok || cmp.Op != ast.EQ {
			return "", nil, false
		}
		if i == 0 {
			symName = cmp.Symbol.SymbolName()
			isStr = cmp.IsStr
		} else if cmp.Symbol.SymbolName() != symName || cmp.IsStr != isStr {
			return "", nil, false
		}
		if isStr {
			vals = append(vals, strconv.Quote(cmp.Str))
			continue
		}
		full := ast.OnesWindow(0, cmp.Symbol.BitWidth()-1)
		if !cmp.Mask.Equal(full) {
			return "", nil, false
		}
		vals = append(vals, cmp.Value.String())
	}
	return symName, vals, true
}

func formatCmp(n *ast.Cmp) string {
	switch n.Op {
	case ast.REF:
		return n.Str
	case ast.NREF:
		return "!" + n.Str
	}
	name := n.Symbol.SymbolName()
	if n.IsStr {
		return fmt.Sprintf("%s %s %s", name, n.Op, strconv.Quote(n.Str))
	}
	width := n.Symbol.BitWidth()
	full := ast.OnesWindow(0, width-1)
	if n.Op == ast.NE && n.Value.IsZero() && n.Mask.Equal(full) {
		return name
	}
	if n.Mask.Equal(full) {
		return fmt.Sprintf("%s %s %s", name, n.Op, n.Value)
	}
	return fmt.Sprintf("%s %s %s/%s", name, n.Op, n.Value, n.Mask)
}
