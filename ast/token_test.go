package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenEqualZeroFormatIgnored(t *testing.T) {
	hex := Token{Kind: INTEGER, Value: Zero128, Format: FormatHex}
	dec := Token{Kind: INTEGER, Value: Zero128, Format: FormatDec}
	assert.True(t, hex.Equal(dec), "zero-valued integer tokens must compare equal across formats")
}

func TestTokenEqualNonZeroFormatMatters(t *testing.T) {
	hex := Token{Kind: INTEGER, Value: Uint64Value128(10), Format: FormatHex}
	dec := Token{Kind: INTEGER, Value: Uint64Value128(10), Format: FormatDec}
	assert.False(t, hex.Equal(dec))
}

func TestTokenEqualIdentity(t *testing.T) {
	a := Token{Kind: ID, Text: "tcp.dst"}
	b := Token{Kind: ID, Text: "tcp.dst"}
	c := Token{Kind: ID, Text: "tcp.src"}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestKindRelOp(t *testing.T) {
	op, ok := OP_GE.RelOp()
	assert.True(t, ok)
	assert.Equal(t, GE, op)

	_, ok = LPAREN.RelOp()
	assert.False(t, ok)
}
