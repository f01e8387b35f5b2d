package ast

// HonorsInvariants reports whether e satisfies the post-simplification
// invariants of spec.md §3:
//
//  1. And children are all *Cmp or Boolean(false).
//  2. Or children are all *And, *Cmp, or Boolean.
//  3. No tree contains nested And-of-And or Or-of-Or.
func HonorsInvariants(e Expr) bool {
	switch n := e.(type) {
	case *Cmp:
		return n.Op != REF
	case Boolean:
		return true
	case *And:
		if len(n.Children) < 2 {
			return false
		}
		for _, c := range n.Children {
			switch cc := c.(type) {
			case *Cmp:
				if cc.Op == REF {
					return false
				}
			case Boolean:
				if bool(cc) {
					return false // AND with literal true should have been absorbed
				}
			default:
				return false
			}
		}
		return true
	case *Or:
		if len(n.Children) < 2 {
			return false
		}
		for _, c := range n.Children {
			switch cc := c.(type) {
			case *And:
				if !HonorsInvariants(cc) {
					return false
				}
			case *Cmp:
				if cc.Op == REF {
					return false
				}
			case Boolean:
				_ = cc
			default:
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsNormalized reports whether e is in the DNF shape produced by the
// normalizer (spec.md §4.6): an Or of (And of Cmp/false) or Cmp/Boolean
// disjuncts, with no And containing an Or child anywhere in the tree.
func IsNormalized(e Expr) bool {
	if !HonorsInvariants(e) {
		return false
	}
	return !containsAndOfOr(e)
}

func containsAndOfOr(e Expr) bool {
	switch n := e.(type) {
	case *And:
		for _, c := range n.Children {
			if _, ok := c.(*Or); ok {
				return true
			}
			if containsAndOfOr(c) {
				return true
			}
		}
		return false
	case *Or:
		for _, c := range n.Children {
			if containsAndOfOr(c) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
