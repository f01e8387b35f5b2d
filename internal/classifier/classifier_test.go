package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/internal/classifier"
	"github.com/flowmatch/exprc/match"
)

func TestLookupPlainMatch(t *testing.T) {
	c := classifier.New()
	result := match.Result{Matches: []match.Match{
		{Fields: []match.FieldConstraint{
			{FieldID: "NXM_IP_PROTO", Value: ast.Uint64Value128(6), Mask: ast.OnesWindow(0, 7)},
		}},
	}}
	ids := c.Install(result, 100)
	require.Len(t, ids, 1)

	hitID, ok := c.Lookup(map[string]ast.Value128{"NXM_IP_PROTO": ast.Uint64Value128(6)})
	assert.True(t, ok)
	assert.Equal(t, ids[0], hitID)

	_, ok = c.Lookup(map[string]ast.Value128{"NXM_IP_PROTO": ast.Uint64Value128(17)})
	assert.False(t, ok)
}

func TestLookupHonorsPriorityOrdering(t *testing.T) {
	c := classifier.New()
	low := match.Result{Matches: []match.Match{{Fields: []match.FieldConstraint{
		{FieldID: "f", Value: ast.Uint64Value128(1), Mask: ast.OnesWindow(0, 3)},
	}}}}
	high := match.Result{Matches: []match.Match{{Fields: []match.FieldConstraint{
		{FieldID: "f", Value: ast.Uint64Value128(1), Mask: ast.OnesWindow(0, 3)},
	}}}}
	lowIDs := c.Install(low, 1)
	highIDs := c.Install(high, 100)

	hitID, ok := c.Lookup(map[string]ast.Value128{"f": ast.Uint64Value128(1)})
	require.True(t, ok)
	assert.Equal(t, highIDs[0], hitID)
	assert.NotEqual(t, lowIDs[0], hitID)
}

func TestLookupConjunctionGroupNeedsEveryDimensionSatisfied(t *testing.T) {
	c := classifier.New()
	result := match.Result{
		Matches: []match.Match{
			{Fields: []match.FieldConstraint{{FieldID: "inport", Value: ast.Uint64Value128(1), Mask: ast.OnesWindow(0, 31)}}, ConjID: 1, ClauseIdx: 1, NClauses: 2},
			{Fields: []match.FieldConstraint{{FieldID: "outport", Value: ast.Uint64Value128(2), Mask: ast.OnesWindow(0, 31)}}, ConjID: 1, ClauseIdx: 2, NClauses: 2},
		},
		NConjunctions: 1,
	}
	c.Install(result, 1)

	_, ok := c.Lookup(map[string]ast.Value128{"inport": ast.Uint64Value128(1), "outport": ast.Uint64Value128(2)})
	assert.True(t, ok, "a clause for every dimension (1 and 2) is required to hit the group")

	_, ok = c.Lookup(map[string]ast.Value128{"inport": ast.Uint64Value128(1)})
	assert.False(t, ok, "only one of the two dimensions is satisfied, so the conjunction does not hit")

	_, ok = c.Lookup(map[string]ast.Value128{"inport": ast.Uint64Value128(9), "outport": ast.Uint64Value128(2)})
	assert.False(t, ok)
}

func TestMissingFieldNeverMatches(t *testing.T) {
	c := classifier.New()
	result := match.Result{Matches: []match.Match{{Fields: []match.FieldConstraint{
		{FieldID: "f", Value: ast.Uint64Value128(1), Mask: ast.OnesWindow(0, 3)},
	}}}}
	c.Install(result, 1)
	_, ok := c.Lookup(map[string]ast.Value128{})
	assert.False(t, ok)
}
