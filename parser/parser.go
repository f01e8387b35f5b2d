// Package parser implements component P (spec.md §4.3): a recursive-
// descent parser over lexer tokens, consulting a symbol table for name
// resolution and producing an ast.Expr. Grounded on the teacher's
// handwritten-recursive-descent parser (parser/parser.go) in overall
// shape (single-token lookahead, one parse method per grammar rule),
// generalized from protobuf's declaration grammar to this boolean
// match-expression grammar.
package parser

import (
	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/lexer"
	"github.com/flowmatch/exprc/reporter"
	"github.com/flowmatch/exprc/symtab"
)

type parser struct {
	lex *lexer.Lexer
	tbl *symtab.Table
	tok ast.Token
}

// ParseExprText parses text into an expression against tbl. Its
// signature matches symtab.ExprParser, so it can be injected at
// symtab.New without symtab importing this package (avoiding the
// import cycle P -> S -> P).
func ParseExprText(text string, tbl *symtab.Table) (ast.Expr, error) {
	p := &parser{lex: lexer.New(text), tbl: tbl}
	if err := p.advance(); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != ast.END {
		return nil, reporter.New(reporter.SyntaxError, p.tok.Offset, "unexpected trailing input %q", p.tok.String())
	}
	return e, nil
}

func (p *parser) advance() error {
	p.tok = p.lex.Next()
	if p.tok.Kind == ast.ERROR {
		return reporter.New(reporter.LexError, p.tok.Offset, "%s", p.tok.Err)
	}
	return nil
}

// expr := or-expr
func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

// or-expr := and-expr ( '||' and-expr )*
func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []ast.Expr{left}
	for p.tok.Kind == ast.OR_OR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return ast.NewOr(children...), nil
}

// and-expr := unary ( '&&' unary )*
func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []ast.Expr{left}
	for p.tok.Kind == ast.AND_AND {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return ast.NewAnd(children...), nil
}

// unary := '!' unary | primary
//
// Negation is pushed to the leaves immediately (De Morgan, ast.Negate)
// rather than represented as a NOT node, since CMP/AND/OR/BOOLEAN are
// the only AST variants (spec.md §3). A predicate reference negated
// this way becomes an NREF leaf for the annotator to resolve.
func (p *parser) parseUnary() (ast.Expr, error) {
	if p.tok.Kind == ast.BANG {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Negate(inner), nil
	}
	return p.parsePrimary()
}

// primary := '(' expr ')'
//
//	| symbol ( relop rhs )?
//	| symbol '[' N ( '..' M )? ']' ( relop rhs )?
func (p *parser) parsePrimary() (ast.Expr, error) {
	switch p.tok.Kind {
	case ast.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != ast.RPAREN {
			return nil, reporter.New(reporter.SyntaxError, p.tok.Offset, "expected ')', found %s", p.tok.Kind)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return e, nil
	case ast.ID:
		return p.parseSymbolPrimary()
	default:
		return nil, reporter.New(reporter.SyntaxError, p.tok.Offset, "expected an expression, found %s", p.tok.Kind)
	}
}

func (p *parser) parseSymbolPrimary() (ast.Expr, error) {
	name := p.tok.Text
	offset := p.tok.Offset
	if err := p.advance(); err != nil {
		return nil, err
	}

	hasRange := false
	lowBit, highBit := 0, 0
	if p.tok.Kind == ast.LBRACK {
		if err := p.advance(); err != nil {
			return nil, err
		}
		low, err := p.expectBitIndex()
		if err != nil {
			return nil, err
		}
		high := low
		if p.tok.Kind == ast.DOTDOT {
			if err := p.advance(); err != nil {
				return nil, err
			}
			high, err = p.expectBitIndex()
			if err != nil {
				return nil, err
			}
		}
		if p.tok.Kind != ast.RBRACK {
			return nil, reporter.New(reporter.SyntaxError, p.tok.Offset, "expected ']', found %s", p.tok.Kind)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		lowBit, highBit, hasRange = low, high, true
	}

	sym, kind, ok := p.tbl.Resolve(name)
	if !ok {
		return nil, reporter.New(reporter.UnknownSymbol, offset, "unknown symbol %q", name)
	}

	if kind == symtab.RefPredicate {
		if hasRange {
			return nil, reporter.New(reporter.TypeMismatch, offset, "predicate %q cannot be bit-sliced", name)
		}
		if _, hasRel := p.tok.Kind.RelOp(); hasRel {
			return nil, reporter.New(reporter.TypeMismatch, offset, "predicate %q cannot be compared", name)
		}
		return ast.NewPredRef(name), nil
	}

	width := sym.BitWidth()
	window := ast.OnesWindow(0, width-1)
	if hasRange {
		if lowBit < 0 || highBit < lowBit || highBit >= width {
			return nil, reporter.New(reporter.SubfieldOutOfBounds, offset, "bit range [%d..%d] out of bounds for %q (width %d)", lowBit, highBit, name, width)
		}
		window = ast.OnesWindow(lowBit, highBit)
	}

	relop, hasRel := p.tok.Kind.RelOp()
	if !hasRel {
		if sym.IsString() {
			return nil, reporter.New(reporter.TypeMismatch, offset, "string symbol %q requires an explicit comparison", name)
		}
		return ast.NewCmp(sym, ast.NE, ast.Zero128, window), nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseRHS(sym, relop, window, offset)
}

func (p *parser) expectBitIndex() (int, error) {
	if p.tok.Kind != ast.INTEGER {
		return 0, reporter.New(reporter.SyntaxError, p.tok.Offset, "expected a bit index, found %s", p.tok.Kind)
	}
	if p.tok.Value.Hi != 0 || p.tok.Value.Lo > 1<<16 {
		return 0, reporter.New(reporter.RangeOverflow, p.tok.Offset, "bit index out of range")
	}
	v := int(p.tok.Value.Lo)
	if err := p.advance(); err != nil {
		return 0, err
	}
	return v, nil
}

// rhs := scalar | '{' scalar ( ',' scalar )* '}'
func (p *parser) parseRHS(sym ast.Symbol, relop ast.RelOp, window ast.Value128, offset int) (ast.Expr, error) {
	if p.tok.Kind != ast.LBRACE {
		return p.parseScalarCmp(sym, relop, window)
	}

	if relop != ast.EQ && relop != ast.NE {
		return nil, reporter.New(reporter.SyntaxError, offset, "set literals are only valid with == or !=")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var items []ast.Expr
	for {
		leaf, err := p.parseScalarCmp(sym, relop, window)
		if err != nil {
			return nil, err
		}
		items = append(items, leaf)
		if p.tok.Kind != ast.COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.Kind != ast.RBRACE {
		return nil, reporter.New(reporter.SyntaxError, p.tok.Offset, "expected '}', found %s", p.tok.Kind)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	// A set on the right of == becomes an OR of equalities; on the
	// right of != it becomes an AND of disequalities (spec.md §4.3).
	if relop == ast.EQ {
		return ast.NewOr(items...), nil
	}
	return ast.NewAnd(items...), nil
}

func (p *parser) parseScalarCmp(sym ast.Symbol, relop ast.RelOp, window ast.Value128) (ast.Expr, error) {
	tok := p.tok
	switch tok.Kind {
	case ast.STRING:
		if !sym.IsString() {
			return nil, reporter.New(reporter.TypeMismatch, tok.Offset, "string literal compared against non-string symbol %q", sym.SymbolName())
		}
		if relop != ast.EQ && relop != ast.NE {
			return nil, reporter.New(reporter.TypeMismatch, tok.Offset, "strings only support == and !=")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewStrCmp(sym, relop, tok.Text), nil

	case ast.INTEGER, ast.MASKED_INTEGER:
		if sym.IsString() {
			return nil, reporter.New(reporter.TypeMismatch, tok.Offset, "numeric literal compared against string symbol %q", sym.SymbolName())
		}
		fullWidth := ast.OnesWindow(0, sym.BitWidth()-1)
		if !tok.Value.Subset(fullWidth) {
			return nil, reporter.New(reporter.RangeOverflow, tok.Offset, "value does not fit in %d-bit symbol %q", sym.BitWidth(), sym.SymbolName())
		}

		mask := window
		if tok.Kind == ast.MASKED_INTEGER {
			mask = window.And(tok.Mask)
			if mask.IsZero() {
				return nil, reporter.New(reporter.InvalidMask, tok.Offset, "mask does not overlap the compared bit range of %q", sym.SymbolName())
			}
		}
		if !tok.Value.AndNot(mask).IsZero() {
			return nil, reporter.New(reporter.InvalidMask, tok.Offset, "value has bits set outside its mask")
		}
		if relop.IsOrdering() && !mask.IsContiguousOnes() {
			return nil, reporter.New(reporter.InvalidMask, tok.Offset, "relational operator %s requires a contiguous mask", relop)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewCmp(sym, relop, tok.Value, mask), nil

	default:
		return nil, reporter.New(reporter.SyntaxError, tok.Offset, "expected a scalar value, found %s", tok.Kind)
	}
}
