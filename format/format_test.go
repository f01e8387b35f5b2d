package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/format"
	"github.com/flowmatch/exprc/parser"
	"github.com/flowmatch/exprc/symtab"
)

func newTable(t *testing.T) *symtab.Table {
	t.Helper()
	tbl := symtab.New(parser.ParseExprText)
	require.NoError(t, tbl.AddField("eth.type", "NXM_ETH_TYPE", 16, false, ""))
	require.NoError(t, tbl.AddField("ip.proto", "NXM_IP_PROTO", 8, false, ""))
	require.NoError(t, tbl.AddString("inport", "NXM_LOG_INPORT", ""))
	return tbl
}

func TestFormatScalarEquality(t *testing.T) {
	tbl := newTable(t)
	sym, _, ok := tbl.Resolve("eth.type")
	require.True(t, ok)
	cmp := ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(0x800), ast.OnesWindow(0, 15))
	assert.Equal(t, "eth.type == 0x800", format.Format(cmp))
}

func TestFormatMaskedScalarKeepsSlash(t *testing.T) {
	tbl := newTable(t)
	sym, _, ok := tbl.Resolve("ip.proto")
	require.True(t, ok)
	cmp := ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(6), ast.OnesWindow(0, 3))
	assert.Equal(t, "ip.proto == 0x6/0xf", format.Format(cmp))
}

func TestFormatCollapsesEqualitySetSugar(t *testing.T) {
	tbl := newTable(t)
	sym, _, ok := tbl.Resolve("ip.proto")
	require.True(t, ok)
	or := ast.NewOr(
		ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(6), ast.OnesWindow(0, 7)),
		ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(17), ast.OnesWindow(0, 7)),
	)
	assert.Equal(t, "ip.proto == {0x6, 0x11}", format.Format(or))
}

func TestFormatStringEquality(t *testing.T) {
	tbl := newTable(t)
	sym, _, ok := tbl.Resolve("inport")
	require.True(t, ok)
	cmp := ast.NewStrCmp(sym, ast.EQ, "vif0")
	assert.Equal(t, `inport == "vif0"`, format.Format(cmp))
}

func TestFormatParenthesizesOrUnderAnd(t *testing.T) {
	tbl := newTable(t)
	ethType, _, ok := tbl.Resolve("eth.type")
	require.True(t, ok)
	ipProto, _, ok := tbl.Resolve("ip.proto")
	require.True(t, ok)
	and := ast.NewAnd(
		ast.NewCmp(ethType, ast.EQ, ast.Uint64Value128(0x800), ast.OnesWindow(0, 15)),
		ast.NewOr(
			ast.NewCmp(ipProto, ast.EQ, ast.Uint64Value128(6), ast.OnesWindow(0, 7)),
			ast.NewCmp(ipProto, ast.LT, ast.Uint64Value128(4), ast.OnesWindow(0, 7)),
		),
	)
	got := format.Format(and)
	assert.Contains(t, got, "eth.type == 0x800 && (")
}

func TestFormatRoundTripsThroughParser(t *testing.T) {
	tbl := newTable(t)
	sym, _, ok := tbl.Resolve("ip.proto")
	require.True(t, ok)
	cmp := ast.NewCmp(sym, ast.EQ, ast.Uint64Value128(6), ast.OnesWindow(0, 7))
	text := format.Format(cmp)
	reparsed, err := parser.ParseExprText(text, tbl)
	require.NoError(t, err)
	assert.Equal(t, format.Format(cmp), format.Format(reparsed))
}
