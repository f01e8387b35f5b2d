package simplify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/exprc/annotator"
	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/parser"
	"github.com/flowmatch/exprc/simplify"
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
	require.NoError(t, tbl.AddField("tcp.flags", "NXM_TCP_FLAGS", 4, true, ""))
	return tbl
}

func compile(t *testing.T, text string, tbl *symtab.Table) ast.Expr {
	t.Helper()
	e, err := parser.ParseExprText(text, tbl)
	require.NoError(t, err)
	out, err := annotator.Annotate(e, tbl)
	require.NoError(t, err)
	return out
}

func TestSimplifyDropsTrueFromAnd(t *testing.T) {
	a := ast.NewCmp(fakeSym("a"), ast.EQ, ast.Uint64Value128(1), ast.OnesWindow(0, 7))
	and := &ast.And{Children: []ast.Expr{ast.True, a}}
	out := simplify.Simplify(and)
	assert.Equal(t, a, out)
}

func TestSimplifyAndWithFalseIsFalse(t *testing.T) {
	a := ast.NewCmp(fakeSym("a"), ast.EQ, ast.Uint64Value128(1), ast.OnesWindow(0, 7))
	and := &ast.And{Children: []ast.Expr{ast.False, a}}
	assert.Equal(t, ast.False, simplify.Simplify(and))
}

func TestSimplifyOrWithTrueIsTrue(t *testing.T) {
	a := ast.NewCmp(fakeSym("a"), ast.EQ, ast.Uint64Value128(1), ast.OnesWindow(0, 7))
	or := &ast.Or{Children: []ast.Expr{ast.True, a}}
	assert.Equal(t, ast.True, simplify.Simplify(or))
}

func TestSimplifyDetectsContradictoryEqualities(t *testing.T) {
	sym := fakeSym("a")
	and := &ast.And{Children: []ast.Expr{
		ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(1), ast.OnesWindow(0, 7)),
		ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(2), ast.OnesWindow(0, 7)),
	}}
	assert.Equal(t, ast.False, simplify.Simplify(and))
}

func TestSimplifyMergesDisjointSubmasks(t *testing.T) {
	sym := fakeSym("a")
	and := &ast.And{Children: []ast.Expr{
		ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(1), ast.OnesWindow(0, 3)),
		ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(0x20), ast.OnesWindow(4, 7)),
	}}
	out := simplify.Simplify(and)
	cmp, ok := out.(*ast.Cmp)
	require.True(t, ok)
	assert.True(t, cmp.Mask.Equal(ast.OnesWindow(0, 7)))
	assert.True(t, cmp.Value.Equal(ast.Uint64Value128(0x21)))
}

func TestSimplifyDedupesIdenticalDisequalities(t *testing.T) {
	sym := fakeSym("a")
	and := &ast.And{Children: []ast.Expr{
		ast.NewCmp(sym, ast.NE, ast.Uint64Value128(1), ast.OnesWindow(0, 7)),
		ast.NewCmp(sym, ast.NE, ast.Uint64Value128(1), ast.OnesWindow(0, 7)),
	}}
	out := simplify.Simplify(and)
	assert.IsType(t, &ast.Cmp{}, out)
}

func TestSimplifyMustCrackExpandsMaskedEquality(t *testing.T) {
	tbl := newTable(t)
	e := compile(t, "tcp.flags[0..1] == 1", tbl)
	out := simplify.Simplify(e)
	or, ok := out.(*ast.Or)
	require.True(t, ok)
	// 2 free bits (positions 2,3) outside the pinned window: 4 exact
	// values cover the mask.
	assert.Len(t, or.Children, 4)
	for _, c := range or.Children {
		cmp := c.(*ast.Cmp)
		assert.True(t, cmp.Mask.Equal(ast.OnesWindow(0, 3)))
	}
}

func TestSimplifyEndToEndScenario(t *testing.T) {
	tbl := newTable(t)
	e := compile(t, "ip4 && tcp.dst == 80", tbl)
	out := simplify.Simplify(e)
	require.True(t, ast.HonorsInvariants(out))
	and, ok := out.(*ast.And)
	require.True(t, ok)
	assert.Len(t, and.Children, 3)
}

type fakeSymbol struct {
	name  string
	width int
}

func (s fakeSymbol) SymbolName() string          { return s.name }
func (s fakeSymbol) IsString() bool              { return false }
func (s fakeSymbol) BitWidth() int                { return s.width }
func (s fakeSymbol) MustCrack() bool              { return false }
func (s fakeSymbol) Base() (ast.Symbol, int, int) { return s, 0, s.width - 1 }

func fakeSym(name string) ast.Symbol { return fakeSymbol{name: name, width: 8} }
