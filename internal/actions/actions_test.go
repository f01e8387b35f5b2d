package actions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/exprc/internal/actions"
	"github.com/flowmatch/exprc/parser"
	"github.com/flowmatch/exprc/symtab"
)

func newTable(t *testing.T) *symtab.Table {
	t.Helper()
	tbl := symtab.New(parser.ParseExprText)
	require.NoError(t, tbl.AddField("ip.proto", "NXM_IP_PROTO", 8, false, ""))
	return tbl
}

func TestParsePrereqSplitsOnTopLevelSemicolon(t *testing.T) {
	tbl := newTable(t)
	prereq, rest, err := actions.ParsePrereq(`ip.proto==6; output("vif0")`, tbl)
	require.NoError(t, err)
	assert.NotNil(t, prereq)
	assert.Equal(t, ` output("vif0")`, rest)
}

func TestParsePrereqWholeTextWhenNoSemicolon(t *testing.T) {
	tbl := newTable(t)
	_, rest, err := actions.ParsePrereq("ip.proto==6", tbl)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestParsePrereqIgnoresSemicolonInsideString(t *testing.T) {
	tbl := newTable(t)
	_, rest, err := actions.ParsePrereq(`ip.proto==6; set_field("a;b")`, tbl)
	require.NoError(t, err)
	assert.Equal(t, ` set_field("a;b")`, rest)
}

func TestParsePrereqPropagatesParseError(t *testing.T) {
	tbl := newTable(t)
	_, _, err := actions.ParsePrereq("not.a.field==1", tbl)
	assert.Error(t, err)
}
