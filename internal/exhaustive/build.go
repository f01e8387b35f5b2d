package exhaustive

import (
	"fmt"

	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/symtab"
)

// BuildExpr instantiates shape's tree by resolving each leaf slot
// against leaves[shape.LeafIdx] in tbl.
func BuildExpr(shape *Shape, leaves []LeafSpec, tbl *symtab.Table) (ast.Expr, error) {
	switch shape.Op {
	case LEAF:
		spec := leaves[shape.LeafIdx]
		sym, _, ok := tbl.Resolve(spec.symbolName())
		if !ok {
			return nil, fmt.Errorf("exhaustive: unknown symbol %q", spec.symbolName())
		}
		if spec.IsString {
			return ast.NewStrCmp(sym, spec.Op, spec.Str), nil
		}
		return ast.NewCmp(sym, spec.Op, spec.Value, spec.Mask), nil
	case AND, OR:
		children := make([]ast.Expr, len(shape.Children))
		for i, c := range shape.Children {
			e, err := BuildExpr(c, leaves, tbl)
			if err != nil {
				return nil, err
			}
			children[i] = e
		}
		if shape.Op == AND {
			return ast.NewAnd(children...), nil
		}
		return ast.NewOr(children...), nil
	default:
		return nil, fmt.Errorf("exhaustive: unknown shape op %d", shape.Op)
	}
}

// Assignments enumerates every concrete variable assignment over nvars
// numeric fields of the given bit width and svars string fields (each
// drawn from {"v0","v1"}), for Evaluate-based property checks
// (spec.md §8's "checked ... under every assignment of its variables").
func Assignments(nvars, svars, bits int, yield func(numeric []uint64, strs []string) bool) {
	maxV := uint64(1) << uint(bits)
	numeric := make([]uint64, nvars)
	strs := make([]string, svars)
	strVals := []string{"v0", "v1"}

	var recNum func(i int) bool
	var recStr func(i int) bool
	recStr = func(i int) bool {
		if i == svars {
			return yield(append([]uint64{}, numeric...), append([]string{}, strs...))
		}
		for _, s := range strVals {
			strs[i] = s
			if !recStr(i + 1) {
				return false
			}
		}
		return true
	}
	recNum = func(i int) bool {
		if i == nvars {
			return recStr(0)
		}
		for v := uint64(0); v < maxV; v++ {
			numeric[i] = v
			if !recNum(i + 1) {
				return false
			}
		}
		return true
	}
	recNum(0)
}
