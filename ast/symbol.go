package ast

// Symbol is the minimal view of a resolved field-like symbol that the
// expression tree needs. symtab.Symbol implements it; ast itself never
// imports symtab so that symtab can freely hold ast.Expr values (cached
// prerequisite/predicate bodies) without an import cycle.
type Symbol interface {
	// SymbolName is the name this symbol was registered under.
	SymbolName() string
	// IsString reports whether this is a string-valued symbol (matched
	// against a caller-supplied name -> id map rather than compared
	// numerically).
	IsString() bool
	// BitWidth is the width, in bits, of this symbol's value (0 for
	// string symbols).
	BitWidth() int
	// MustCrack reports whether equalities against a masked value on
	// this symbol must be expanded into exact-value equalities rather
	// than installed as a mask (spec.md §4.1, §4.5).
	MustCrack() bool
	// Base returns the underlying field this symbol ultimately refers
	// to, along with the bit window [low, high] (inclusive, 0 = LSB)
	// this symbol occupies within that field. For a plain field, Base
	// returns (self, 0, BitWidth()-1); a string symbol returns (self, 0, 0).
	Base() (field Symbol, low, high int)
}
