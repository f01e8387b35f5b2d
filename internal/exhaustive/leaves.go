package exhaustive

import (
	"fmt"

	"github.com/flowmatch/exprc/ast"
)

// LeafSpec names one candidate CMP leaf: either a numeric comparison
// against variable numeric[VarIdx], or a string (in)equality against
// variable string[VarIdx].
type LeafSpec struct {
	IsString bool
	VarIdx   int
	Op       ast.RelOp
	Value    ast.Value128
	Mask     ast.Value128
	Str      string
}

// NumericLeafCandidates returns every (op, value, mask) triple worth
// enumerating for a field of the given bit width under relops, skipping
// the combinations spec.md §9 rules out: the empty mask, a value with
// bits set outside its mask, and (for ordering operators) any
// non-contiguous mask.
func NumericLeafCandidates(bits int, relops []ast.RelOp) []LeafSpec {
	var out []LeafSpec
	full := ast.OnesWindow(0, bits-1)
	for mask := uint64(1); mask <= uint64(full.Lo); mask++ {
		m := ast.Uint64Value128(mask).And(full)
		if m.IsZero() {
			continue
		}
		contiguous := m.IsContiguousOnes()
		for _, op := range relops {
			if op.IsOrdering() && !contiguous {
				continue
			}
			for v := uint64(0); v <= mask; v++ {
				val := ast.Uint64Value128(v)
				if !val.Subset(m) {
					continue
				}
				out = append(out, LeafSpec{Op: op, Value: val, Mask: m})
			}
		}
	}
	return out
}

// StringLeafCandidates returns EQ/NE leaves against each of two
// representative string values ("v0", "v1" — which value is "the
// right one" vs "some other one" is all that matters for the
// properties this package checks).
func StringLeafCandidates() []LeafSpec {
	var out []LeafSpec
	for _, s := range []string{"v0", "v1"} {
		out = append(out, LeafSpec{IsString: true, Op: ast.EQ, Str: s})
		out = append(out, LeafSpec{IsString: true, Op: ast.NE, Str: s})
	}
	return out
}

// AllLeafCandidates builds the full candidate list for a universe of
// nvars numeric fields (n0..) and svars string fields (s0..), each
// candidate bound to a specific variable index.
func AllLeafCandidates(nvars, svars, bits int, relops []ast.RelOp) []LeafSpec {
	var out []LeafSpec
	numeric := NumericLeafCandidates(bits, relops)
	for i := 0; i < nvars; i++ {
		for _, c := range numeric {
			c.VarIdx = i
			out = append(out, c)
		}
	}
	str := StringLeafCandidates()
	for i := 0; i < svars; i++ {
		for _, c := range str {
			c.VarIdx = i
			out = append(out, c)
		}
	}
	return out
}

func (l LeafSpec) symbolName() string {
	if l.IsString {
		return fmt.Sprintf("s%d", l.VarIdx)
	}
	return fmt.Sprintf("n%d", l.VarIdx)
}

// LeafAssignments enumerates every way to assign n leaf
// candidates (by digit cascade with repetition, since a shape may
// legitimately compare the same field twice) from candidates to the n
// leaf slots of a shape, up to a cap to keep the harness's own
// invocation bounded (spec.md §9's enumerator is exhaustive in
// principle; callers pick nvars/svars/bits/relops small enough, or set
// cap, to keep a single run finite in practice).
func LeafAssignments(candidates []LeafSpec, n int, cap int, yield func([]LeafSpec) bool) {
	if n == 0 || len(candidates) == 0 {
		return
	}
	assignment := make([]LeafSpec, n)
	count := 0
	var rec func(i int) bool
	rec = func(i int) bool {
		if i == n {
			count++
			if !yield(append([]LeafSpec{}, assignment...)) {
				return false
			}
			return cap <= 0 || count < cap
		}
		for _, c := range candidates {
			assignment[i] = c
			if !rec(i + 1) {
				return false
			}
		}
		return true
	}
	rec(0)
}
