package ast

// RelOp is a relational operator carried by a CMP leaf. REF is not a
// relational operator at all: it marks a bare predicate reference
// produced by the parser (spec.md §4.3, "a bare symbol ... is
// interpreted ... as the predicate it names") that the annotator must
// expand before any later stage sees it (spec.md §4.4).
type RelOp int

const (
	EQ RelOp = iota
	NE
	LT
	LE
	GT
	GE
	REF
	// NREF marks a negated bare predicate reference (parsed from
	// "!predicate"): the annotator must substitute the predicate's body
	// and then negate the result, rather than negating a REF directly,
	// since the body is unknown until expansion (spec.md §4.4).
	NREF
)

func (op RelOp) String() string {
	switch op {
	case EQ:
		return "=="
	case NE:
		return "!="
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	case REF:
		return "<ref>"
	case NREF:
		return "<nref>"
	default:
		return "?"
	}
}

// Negate returns the complementary relational operator, when op is a
// real comparison (EQ/NE/LT/LE/GT/GE). REF and NREF have no direct
// complement — negating a predicate reference is the annotator's job
// (spec.md §4.4), since it requires substituting the predicate's body
// first.
func (op RelOp) Negate() (RelOp, bool) {
	switch op {
	case EQ:
		return NE, true
	case NE:
		return EQ, true
	case LT:
		return GE, true
	case LE:
		return GT, true
	case GT:
		return LE, true
	case GE:
		return LT, true
	default:
		return 0, false
	}
}

// IsOrdering reports whether op is one of <, <=, >, >= — the operators
// that require a contiguous-ones mask (spec.md §4.5).
func (op RelOp) IsOrdering() bool {
	return op == LT || op == LE || op == GT || op == GE
}
