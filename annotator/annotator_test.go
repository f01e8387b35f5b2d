package annotator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/exprc/annotator"
	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/parser"
	"github.com/flowmatch/exprc/symtab"
)

func newTable(t *testing.T) *symtab.Table {
	t.Helper()
	tbl := symtab.New(parser.ParseExprText)
	require.NoError(t, tbl.AddField("eth.type", "NXM_ETH_TYPE", 16, false, ""))
	require.NoError(t, tbl.AddPredicate("ip4", "eth.type==0x800"))
	require.NoError(t, tbl.AddField("ip.proto", "NXM_IP_PROTO", 8, false, "ip4"))
	require.NoError(t, tbl.AddField("tcp.dst", "NXM_TCP_DST", 16, false, "ip.proto!=0"))
	require.NoError(t, tbl.AddField("eth.src", "NXM_ETH_SRC", 48, false, ""))
	require.NoError(t, tbl.AddSubfield("eth.src.bit0", "eth.src", 0, 0, ""))
	return tbl
}

func parseAndAnnotate(t *testing.T, text string, tbl *symtab.Table) ast.Expr {
	t.Helper()
	e, err := parser.ParseExprText(text, tbl)
	require.NoError(t, err)
	out, err := annotator.Annotate(e, tbl)
	require.NoError(t, err)
	return out
}

func cmpNames(e ast.Expr) []string {
	var names []string
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Cmp:
			names = append(names, n.Symbol.SymbolName())
		case *ast.And:
			for _, c := range n.Children {
				walk(c)
			}
		case *ast.Or:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(e)
	return names
}

func TestAnnotateChainsThroughPrereqs(t *testing.T) {
	tbl := newTable(t)
	out := parseAndAnnotate(t, "tcp.dst == 80", tbl)

	// tcp.dst's own prereq ("ip.proto!=0") conjoins, and ip.proto's own
	// prereq ("ip4", a predicate referencing eth.type) must also have
	// been expanded recursively: the scenario from spec.md §8.1.
	names := cmpNames(out)
	assert.Contains(t, names, "tcp.dst")
	assert.Contains(t, names, "ip.proto")
	assert.Contains(t, names, "eth.type")
}

func TestAnnotateNoLeftoverPredicateReferences(t *testing.T) {
	tbl := newTable(t)
	out := parseAndAnnotate(t, "tcp.dst == 80", tbl)
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Cmp:
			require.NotEqual(t, ast.REF, n.Op)
			require.NotEqual(t, ast.NREF, n.Op)
		case *ast.And:
			for _, c := range n.Children {
				walk(c)
			}
		case *ast.Or:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(out)
}

func TestAnnotateNegatedPredicateExpandsAndNegates(t *testing.T) {
	tbl := newTable(t)
	out := parseAndAnnotate(t, "!ip4", tbl)
	cmp, ok := out.(*ast.Cmp)
	require.True(t, ok)
	assert.Equal(t, "eth.type", cmp.Symbol.SymbolName())
	assert.Equal(t, ast.NE, cmp.Op) // eth.type==0x800 negated is !=
}

func TestAnnotateSubfieldShiftsIntoBaseField(t *testing.T) {
	tbl := newTable(t)
	out := parseAndAnnotate(t, "eth.src.bit0 == 1", tbl)
	cmp, ok := out.(*ast.Cmp)
	require.True(t, ok)
	assert.Equal(t, "eth.src", cmp.Symbol.SymbolName())
	assert.True(t, cmp.Mask.Equal(ast.OnesWindow(0, 0)))
	assert.True(t, cmp.Value.Equal(ast.Uint64Value128(1)))
}

func TestAnnotateNoPrereqLeavesLeafUnwrapped(t *testing.T) {
	tbl := newTable(t)
	out := parseAndAnnotate(t, "eth.type == 0x800", tbl)
	_, ok := out.(*ast.Cmp)
	assert.True(t, ok, "a leaf with no declared prerequisite should not be wrapped in AND(true, leaf)")
}
