package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSymbol is a minimal ast.Symbol used only by this package's tests;
// symtab.Symbol is the real implementation.
type fakeSymbol struct {
	name  string
	width int
}

func (f *fakeSymbol) SymbolName() string       { return f.name }
func (f *fakeSymbol) IsString() bool           { return false }
func (f *fakeSymbol) BitWidth() int            { return f.width }
func (f *fakeSymbol) MustCrack() bool          { return false }
func (f *fakeSymbol) Base() (Symbol, int, int) { return f, 0, f.width - 1 }

func TestNewAndFlattensNestedAnd(t *testing.T) {
	a := &fakeSymbol{"a", 8}
	leaf1 := NewCmp(a, EQ, Uint64Value128(1), Uint64Value128(0xff))
	leaf2 := NewCmp(a, EQ, Uint64Value128(2), Uint64Value128(0xff))
	leaf3 := NewCmp(a, EQ, Uint64Value128(3), Uint64Value128(0xff))

	inner := NewAnd(leaf1, leaf2)
	outer := NewAnd(inner, leaf3)

	and, ok := outer.(*And)
	require.True(t, ok)
	assert.Len(t, and.Children, 3, "nested And must be flattened into a single level")
}

func TestNewAndSingletonCollapses(t *testing.T) {
	a := &fakeSymbol{"a", 8}
	leaf := NewCmp(a, EQ, Uint64Value128(1), Uint64Value128(0xff))
	got := NewAnd(leaf)
	assert.Same(t, leaf, got)
}

func TestCloneIsDeep(t *testing.T) {
	a := &fakeSymbol{"a", 8}
	leaf := NewCmp(a, EQ, Uint64Value128(1), Uint64Value128(0xff))
	tree := NewAnd(leaf, NewCmp(a, NE, Uint64Value128(2), Uint64Value128(0xff)))

	cloned := Clone(tree)
	clonedAnd := cloned.(*And)
	origAnd := tree.(*And)
	assert.NotSame(t, clonedAnd, origAnd)
	assert.NotSame(t, clonedAnd.Children[0], origAnd.Children[0])

	clonedAnd.Children[0].(*Cmp).Value = Uint64Value128(99)
	assert.Equal(t, Uint64Value128(1), origAnd.Children[0].(*Cmp).Value, "mutating the clone must not affect the original")
}

func TestHonorsInvariants(t *testing.T) {
	a := &fakeSymbol{"a", 8}
	leaf := NewCmp(a, EQ, Uint64Value128(1), Uint64Value128(0xff))
	and := &And{Children: []Expr{leaf, Boolean(false)}}
	assert.True(t, HonorsInvariants(and))

	badAnd := &And{Children: []Expr{leaf, Boolean(true)}}
	assert.False(t, HonorsInvariants(badAnd), "AND with literal true should have been absorbed away")

	or := &Or{Children: []Expr{and, leaf, Boolean(true)}}
	assert.True(t, HonorsInvariants(or))
}

func TestIsNormalizedRejectsAndOfOr(t *testing.T) {
	a := &fakeSymbol{"a", 8}
	leaf1 := NewCmp(a, EQ, Uint64Value128(1), Uint64Value128(0xff))
	leaf2 := NewCmp(a, EQ, Uint64Value128(2), Uint64Value128(0xff))
	or := &Or{Children: []Expr{leaf1, leaf2}}
	and := &And{Children: []Expr{or, leaf1}}
	assert.False(t, IsNormalized(and))
}
