// Package exprc orchestrates the boolean match-expression compiler's
// pipeline (spec.md §2, §6): lex -> parse -> annotate -> simplify ->
// normalize -> lower-to-matches, plus the formatter. It is the single
// entry point external callers use. Apart from parser driving lexer and
// match re-running normalize, the stage packages (lexer, parser,
// annotator, simplify, normalize, match, format) share only the
// ast/symtab/reporter types.
package exprc

import (
	"github.com/flowmatch/exprc/annotator"
	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/format"
	"github.com/flowmatch/exprc/match"
	"github.com/flowmatch/exprc/normalize"
	"github.com/flowmatch/exprc/parser"
	"github.com/flowmatch/exprc/simplify"
	"github.com/flowmatch/exprc/symtab"
)

// NewSymtab builds an empty symbol table wired to this module's parser,
// so prerequisite/predicate text registered on it resolves through the
// same grammar compile() uses (spec.md §6).
func NewSymtab() *symtab.Table {
	return symtab.New(parser.ParseExprText)
}

// Compile parses text against tbl, producing an expression that still
// mentions predicates/sub-fields by name (spec.md §6: "compile(text,
// symtab) -> expr | error").
func Compile(text string, tbl *symtab.Table) (ast.Expr, error) {
	return parser.ParseExprText(text, tbl)
}

// Annotate expands predicate/sub-field references and conjoins
// prerequisites (spec.md §6).
func Annotate(e ast.Expr, tbl *symtab.Table) (ast.Expr, error) {
	return annotator.Annotate(e, tbl)
}

// Simplify runs the algebraic simplifier to a fixed point (spec.md §6).
func Simplify(e ast.Expr) ast.Expr {
	return simplify.Simplify(e)
}

// Normalize produces DNF (spec.md §6).
func Normalize(e ast.Expr) ast.Expr {
	return normalize.Normalize(e)
}

// ToMatches lowers a normalized expression into classifier-installable
// matches (spec.md §6).
func ToMatches(e ast.Expr, strMap map[string]uint32) (match.Result, error) {
	return match.ToMatches(e, strMap)
}

// Format renders an expression back to text (spec.md §6).
func Format(e ast.Expr) string {
	return format.Format(e)
}

// CompileAndLower runs the full pipeline in one call: compile, annotate,
// simplify, normalize, lower. This is the common path every caller that
// does not need to inspect intermediate ASTs wants.
func CompileAndLower(text string, tbl *symtab.Table, strMap map[string]uint32) (match.Result, error) {
	e, err := Compile(text, tbl)
	if err != nil {
		return match.Result{}, err
	}
	e, err = Annotate(e, tbl)
	if err != nil {
		return match.Result{}, err
	}
	e = Simplify(e)
	e = Normalize(e)
	return ToMatches(e, strMap)
}

// Assignment is a variable assignment for Evaluate: numeric symbol
// names map to their packet-field value, string symbol names map to
// their packet-field string (SPEC_FULL.md §13.1).
type Assignment struct {
	Numeric map[string]ast.Value128
	String  map[string]string
}

// Evaluate computes the boolean value of e (an annotated expression —
// only concrete fields/strings, no REF/NREF) under assignment, the
// direct-evaluation reference P3/P4/P6 compare the pipeline's output
// against (spec.md §8).
func Evaluate(e ast.Expr, assignment Assignment) bool {
	switch n := e.(type) {
	case ast.Boolean:
		return bool(n)
	case *ast.Cmp:
		return evalCmp(n, assignment)
	case *ast.And:
		for _, c := range n.Children {
			if !Evaluate(c, assignment) {
				return false
			}
		}
		return true
	case *ast.Or:
		for _, c := range n.Children {
			if Evaluate(c, assignment) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func evalCmp(n *ast.Cmp, assignment Assignment) bool {
	if n.IsStr {
		v := assignment.String[n.Symbol.SymbolName()]
		switch n.Op {
		case ast.EQ:
			return v == n.Str
		case ast.NE:
			return v != n.Str
		default:
			return false
		}
	}
	masked := assignment.Numeric[n.Symbol.SymbolName()].And(n.Mask)
	switch n.Op {
	case ast.EQ:
		return masked.Equal(n.Value)
	case ast.NE:
		return !masked.Equal(n.Value)
	case ast.LT:
		return masked.Cmp(n.Value) < 0
	case ast.LE:
		return masked.Cmp(n.Value) <= 0
	case ast.GT:
		return masked.Cmp(n.Value) > 0
	case ast.GE:
		return masked.Cmp(n.Value) >= 0
	default:
		return false
	}
}
