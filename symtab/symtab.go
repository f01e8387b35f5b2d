// Package symtab implements the symbol table (component S, spec.md §2,
// §4.2): it registers fields, predicates, sub-fields and string symbols,
// resolves names for the parser, and lazily builds and caches each
// symbol's prerequisite with depth-first cycle detection.
//
// The name index is an adaptive radix tree (art.Tree), the same
// structure the teacher's linker uses for its package/symbol trie
// (linker/symbols.go, packageSymbols.pkgTrie) instead of a plain map.
package symtab

import (
	"errors"
	"fmt"

	art "github.com/kralicky/go-adaptive-radix-tree"

	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/reporter"
)

// ErrDuplicateSymbol is returned by the Add* methods when name is
// already registered (spec.md §3: "names are unique").
var ErrDuplicateSymbol = errors.New("symtab: duplicate symbol name")

// ErrUnknownSymbol is returned when a lookup or prerequisite text
// references a name that was never registered.
var ErrUnknownSymbol = errors.New("symtab: unknown symbol")

// ExprParser parses expr text (a prerequisite, a predicate body, or any
// other match-expression fragment) against the given table for name
// resolution. It is supplied by the parser package at Table construction
// time; symtab itself never imports parser, breaking what would
// otherwise be an import cycle (P consults S, so S cannot consult P at
// compile time — only via this injected function value, resolved at
// table-construction time by the caller).
type ExprParser func(text string, t *Table) (ast.Expr, error)

// RefKind distinguishes what a resolved name refers to.
type RefKind int

const (
	RefUnknown RefKind = iota
	RefField
	RefSubfield
	RefString
	RefPredicate
)

type cycleState int

const (
	notStarted cycleState = iota
	inProgress
	done
)

// defNode is the lazily-parsed, cycle-checked definition text attached
// to a symbol: a field/sub-field/string's prerequisite, or a
// predicate's body.
type defNode struct {
	text   string
	state  cycleState
	cached ast.Expr
}

type field struct {
	name      string
	fieldID   string
	width     int
	mustCrack bool
	prereq    *defNode // nil if no prerequisite was declared
}

func (f *field) SymbolName() string { return f.name }
func (f *field) IsString() bool     { return false }
func (f *field) BitWidth() int      { return f.width }
func (f *field) MustCrack() bool    { return f.mustCrack }
func (f *field) Base() (ast.Symbol, int, int) { return f, 0, f.width - 1 }

type subfield struct {
	name   string
	base   *field
	low    int
	high   int
	prereq *defNode
}

func (s *subfield) SymbolName() string { return s.name }
func (s *subfield) IsString() bool     { return false }
func (s *subfield) BitWidth() int      { return s.high - s.low + 1 }
func (s *subfield) MustCrack() bool    { return s.base.mustCrack }
func (s *subfield) Base() (ast.Symbol, int, int) { return s.base, s.low, s.high }

type stringSym struct {
	name    string
	fieldID string
	prereq  *defNode
}

func (s *stringSym) SymbolName() string { return s.name }
func (s *stringSym) IsString() bool     { return true }
func (s *stringSym) BitWidth() int      { return 0 }
func (s *stringSym) MustCrack() bool    { return false }
func (s *stringSym) Base() (ast.Symbol, int, int) { return s, 0, 0 }

type predicate struct {
	name string
	body *defNode
}

type entry struct {
	kind      RefKind
	field     *field
	subfield  *subfield
	str       *stringSym
	predicate *predicate
}

// Table is the symbol table. It is built up front via the Add* methods
// and is read-only for the duration of a compile (spec.md §5).
type Table struct {
	tree  art.Tree
	parse ExprParser
}

// New creates an empty symbol table. parse is used to interpret the
// free-text fragments (prerequisites, predicate bodies) passed to the
// Add* methods.
func New(parse ExprParser) *Table {
	return &Table{tree: art.New(), parse: parse}
}

func (t *Table) get(name string) (*entry, bool) {
	v, found := t.tree.Search(art.Key(name))
	if !found {
		return nil, false
	}
	return v.(*entry), true
}

func (t *Table) insert(name string, e *entry) error {
	if _, exists := t.get(name); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSymbol, name)
	}
	t.tree.Insert(art.Key(name), e)
	return nil
}

func maybeDefNode(text string) *defNode {
	if text == "" {
		return nil
	}
	return &defNode{text: text}
}

// AddField registers a fixed-width bit-slot field (spec.md §3).
func (t *Table) AddField(name, fieldID string, width int, mustCrack bool, prereqText string) error {
	if width <= 0 || width > 128 {
		return reporter.New(reporter.RangeOverflow, -1, "field %q has invalid width %d", name, width)
	}
	f := &field{name: name, fieldID: fieldID, width: width, mustCrack: mustCrack, prereq: maybeDefNode(prereqText)}
	return t.insert(name, &entry{kind: RefField, field: f})
}

// AddPredicate registers a named boolean expression over other symbols.
func (t *Table) AddPredicate(name, exprText string) error {
	if exprText == "" {
		return fmt.Errorf("symtab: predicate %q must have a body", name)
	}
	p := &predicate{name: name, body: &defNode{text: exprText}}
	return t.insert(name, &entry{kind: RefPredicate, predicate: p})
}

// AddSubfield registers a bit-range alias over a previously-registered
// field. low and high are inclusive bit offsets (0 = least-significant
// bit) and must fit inside the base field's width (spec.md §3).
func (t *Table) AddSubfield(name, baseName string, low, high int, prereqText string) error {
	base, ok := t.get(baseName)
	if !ok {
		return reporter.New(reporter.UnknownSymbol, -1, "sub-field %q: unknown base symbol %q", name, baseName)
	}
	if base.kind != RefField {
		return reporter.New(reporter.TypeMismatch, -1, "sub-field %q: base %q is not a field", name, baseName)
	}
	if low < 0 || high < low || high >= base.field.width {
		return reporter.New(reporter.SubfieldOutOfBounds, -1, "sub-field %q: range [%d..%d] does not fit in %q (width %d)", name, low, high, baseName, base.field.width)
	}
	s := &subfield{name: name, base: base.field, low: low, high: high, prereq: maybeDefNode(prereqText)}
	return t.insert(name, &entry{kind: RefSubfield, subfield: s})
}

// AddString registers a width-less string-valued symbol.
func (t *Table) AddString(name, fieldID string, prereqText string) error {
	s := &stringSym{name: name, fieldID: fieldID, prereq: maybeDefNode(prereqText)}
	return t.insert(name, &entry{kind: RefString, str: s})
}

// Resolve looks up name, returning what kind of symbol it is and (for
// field/sub-field/string symbols) the ast.Symbol view of it.
func (t *Table) Resolve(name string) (sym ast.Symbol, kind RefKind, ok bool) {
	e, found := t.get(name)
	if !found {
		return nil, RefUnknown, false
	}
	switch e.kind {
	case RefField:
		return e.field, RefField, true
	case RefSubfield:
		return e.subfield, RefSubfield, true
	case RefString:
		return e.str, RefString, true
	case RefPredicate:
		return nil, RefPredicate, true
	default:
		return nil, RefUnknown, false
	}
}

// FieldID returns the classifier-facing identifier of a field, sub-field
// base, or string symbol.
func FieldID(sym ast.Symbol) string {
	switch s := sym.(type) {
	case *field:
		return s.fieldID
	case *subfield:
		return s.base.fieldID
	case *stringSym:
		return s.fieldID
	default:
		return ""
	}
}

// PrereqExpr returns the declared prerequisite expression for a
// field/sub-field/string symbol (ast.True if none was declared),
// resolved and cached with depth-first cycle detection (spec.md §4.2).
// The returned expression is owned by the table: callers that splice it
// into a live AST must ast.Clone it first (spec.md §5, §9).
func (t *Table) PrereqExpr(name string) (ast.Expr, error) {
	e, ok := t.get(name)
	if !ok {
		return nil, reporter.New(reporter.UnknownSymbol, -1, "unknown symbol %q", name)
	}
	var node *defNode
	switch e.kind {
	case RefField:
		node = e.field.prereq
	case RefSubfield:
		node = e.subfield.prereq
	case RefString:
		node = e.str.prereq
	default:
		return nil, reporter.New(reporter.TypeMismatch, -1, "%q is not a field, sub-field, or string symbol", name)
	}
	if node == nil {
		return ast.True, nil
	}
	return t.resolve(name, node)
}

// PredicateExpr returns a predicate's defining expression, cached and
// cycle-checked the same way. The returned expression is owned by the
// table; callers must ast.Clone it before mutating it.
func (t *Table) PredicateExpr(name string) (ast.Expr, error) {
	e, ok := t.get(name)
	if !ok {
		return nil, reporter.New(reporter.UnknownSymbol, -1, "unknown symbol %q", name)
	}
	if e.kind != RefPredicate {
		return nil, reporter.New(reporter.TypeMismatch, -1, "%q is not a predicate", name)
	}
	return t.resolve(name, e.predicate.body)
}

// resolve is the depth-first, memoized, cycle-detecting expansion at
// the heart of §4.2. It parses node's text (once), then walks the
// parsed expression for every field/sub-field/string/predicate name it
// mentions and recursively resolves those too — purely to prove the
// prerequisite graph is acyclic before the annotator ever touches it.
// Revisiting a node that is still being resolved is the cycle.
func (t *Table) resolve(name string, node *defNode) (ast.Expr, error) {
	switch node.state {
	case done:
		return node.cached, nil
	case inProgress:
		return nil, reporter.New(reporter.PrereqCycle, -1, "prerequisite cycle detected at %q", name)
	}
	node.state = inProgress
	expr, err := t.parse(node.text, t)
	if err != nil {
		node.state = notStarted
		return nil, err
	}
	for _, ref := range collectRefs(expr) {
		if _, err := t.resolveByName(ref); err != nil {
			node.state = notStarted
			return nil, err
		}
	}
	node.cached = expr
	node.state = done
	return expr, nil
}

func (t *Table) resolveByName(name string) (ast.Expr, error) {
	e, ok := t.get(name)
	if !ok {
		return nil, reporter.New(reporter.UnknownSymbol, -1, "unknown symbol %q", name)
	}
	switch e.kind {
	case RefField:
		if e.field.prereq == nil {
			return ast.True, nil
		}
		return t.resolve(name, e.field.prereq)
	case RefSubfield:
		if e.subfield.prereq == nil {
			return ast.True, nil
		}
		return t.resolve(name, e.subfield.prereq)
	case RefString:
		if e.str.prereq == nil {
			return ast.True, nil
		}
		return t.resolve(name, e.str.prereq)
	case RefPredicate:
		return t.resolve(name, e.predicate.body)
	default:
		return ast.True, nil
	}
}

// collectRefs walks expr and returns the distinct set of symbol/predicate
// names its leaves mention, including names reached only through a
// negated predicate reference (NREF), so that mutual recursion routed
// through a negated reference is still caught by cycle detection.
func collectRefs(expr ast.Expr) []string {
	seen := map[string]struct{}{}
	var order []string
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Cmp:
			var name string
			if n.Op == ast.REF || n.Op == ast.NREF {
				name = n.Str
			} else if n.Symbol != nil {
				name = n.Symbol.SymbolName()
			}
			if name != "" {
				if _, ok := seen[name]; !ok {
					seen[name] = struct{}{}
					order = append(order, name)
				}
			}
		case *ast.And:
			for _, c := range n.Children {
				walk(c)
			}
		case *ast.Or:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(expr)
	return order
}
