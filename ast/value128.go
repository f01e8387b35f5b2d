package ast

import (
	"fmt"
	"math/bits"
)

// Value128 is an unsigned 128-bit integer, stored big-endian as two
// 64-bit halves. It backs every numeric token and CMP leaf value/mask:
// IPv6 addresses, Ethernet addresses, and masked integers all share this
// one representation (design note, spec.md §9).
type Value128 struct {
	Hi, Lo uint64
}

// Zero128 is the all-zero value.
var Zero128 = Value128{}

func Uint64Value128(v uint64) Value128 { return Value128{Lo: v} }

func (v Value128) IsZero() bool { return v.Hi == 0 && v.Lo == 0 }

func (v Value128) Equal(o Value128) bool { return v.Hi == o.Hi && v.Lo == o.Lo }

func (v Value128) And(o Value128) Value128 { return Value128{v.Hi & o.Hi, v.Lo & o.Lo} }
func (v Value128) Or(o Value128) Value128  { return Value128{v.Hi | o.Hi, v.Lo | o.Lo} }
func (v Value128) Xor(o Value128) Value128 { return Value128{v.Hi ^ o.Hi, v.Lo ^ o.Lo} }
func (v Value128) Not() Value128           { return Value128{^v.Hi, ^v.Lo} }

// AndNot returns v &^ o.
func (v Value128) AndNot(o Value128) Value128 { return Value128{v.Hi &^ o.Hi, v.Lo &^ o.Lo} }

// Subset reports whether every bit set in v is also set in o.
func (v Value128) Subset(o Value128) bool { return v.AndNot(o).IsZero() }

// Cmp returns -1, 0, or 1 comparing v and o as unsigned 128-bit integers.
func (v Value128) Cmp(o Value128) int {
	if v.Hi != o.Hi {
		if v.Hi < o.Hi {
			return -1
		}
		return 1
	}
	if v.Lo != o.Lo {
		if v.Lo < o.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Shl shifts left by n bits (0 <= n <= 128), discarding overflow.
func (v Value128) Shl(n uint) Value128 {
	switch {
	case n == 0:
		return v
	case n >= 128:
		return Value128{}
	case n >= 64:
		return Value128{Hi: v.Lo << (n - 64)}
	default:
		return Value128{Hi: (v.Hi << n) | (v.Lo >> (64 - n)), Lo: v.Lo << n}
	}
}

// Shr shifts right (logical) by n bits.
func (v Value128) Shr(n uint) Value128 {
	switch {
	case n == 0:
		return v
	case n >= 128:
		return Value128{}
	case n >= 64:
		return Value128{Lo: v.Hi >> (n - 64)}
	default:
		return Value128{Hi: v.Hi >> n, Lo: (v.Lo >> n) | (v.Hi << (64 - n))}
	}
}

// OnesWindow returns a mask with bits [low, high] (inclusive, 0 = LSB) set.
func OnesWindow(low, high int) Value128 {
	if high < low {
		return Value128{}
	}
	width := high - low + 1
	var ones Value128
	if width >= 128 {
		ones = Value128{^uint64(0), ^uint64(0)}
	} else {
		ones = Uint64Value128(1).Shl(uint(width)).subOne()
	}
	return ones.Shl(uint(low))
}

// PopCount returns the number of set bits.
func (v Value128) PopCount() int {
	return bits.OnesCount64(v.Hi) + bits.OnesCount64(v.Lo)
}

// IsContiguousOnes reports whether the set bits of v form a single
// contiguous run (required for relational operators, spec.md §4.5).
// The zero mask is not contiguous (callers must special-case it).
func (v Value128) IsContiguousOnes() bool {
	if v.IsZero() {
		return false
	}
	tz := v.TrailingZeros()
	shifted := v.Shr(uint(tz))
	// shifted+1 must be a power of two (i.e. all low bits set, nothing above).
	plusOne := shifted.addOne()
	return plusOne.And(shifted).IsZero()
}

func (v Value128) addOne() Value128 {
	lo := v.Lo + 1
	hi := v.Hi
	if lo == 0 {
		hi++
	}
	return Value128{hi, lo}
}

func (v Value128) subOne() Value128 {
	lo := v.Lo - 1
	hi := v.Hi
	if v.Lo == 0 {
		hi--
	}
	return Value128{hi, lo}
}

func (v Value128) TrailingZeros() int {
	if v.Lo != 0 {
		return bits.TrailingZeros64(v.Lo)
	}
	if v.Hi != 0 {
		return 64 + bits.TrailingZeros64(v.Hi)
	}
	return 128
}

func (v Value128) BitLen() int {
	if v.Hi != 0 {
		return 64 + bits.Len64(v.Hi)
	}
	return bits.Len64(v.Lo)
}

// Bit returns the value (0 or 1) of bit i (0 = LSB).
func (v Value128) Bit(i int) uint {
	if i >= 64 {
		return uint((v.Hi >> (i - 64)) & 1)
	}
	return uint((v.Lo >> i) & 1)
}

func (v Value128) String() string {
	if v.Hi == 0 {
		return fmt.Sprintf("0x%x", v.Lo)
	}
	return fmt.Sprintf("0x%x%016x", v.Hi, v.Lo)
}
