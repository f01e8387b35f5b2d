// Package actions implements the in-scope half of the action assembler
// collaborator spec.md §1 names ("the action assembler that consumes
// parsed action bodies and a prerequisite expression" is out of scope):
// parsing just the prerequisite expression out of an action body,
// leaving the action body itself as raw, unparsed text for whatever
// downstream assembler consumes it (SPEC_FULL.md §13.2).
package actions

import (
	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/parser"
	"github.com/flowmatch/exprc/symtab"
)

// ParsePrereq splits text at its first top-level ';' into a
// prerequisite expression (match-expression grammar, parsed against
// tbl) and the raw remainder, which this package does not interpret.
// If text has no top-level ';', the whole thing is the prerequisite and
// the remainder is empty.
func ParsePrereq(text string, tbl *symtab.Table) (ast.Expr, string, error) {
	prereqText, rest := splitPrereq(text)
	e, err := parser.ParseExprText(prereqText, tbl)
	if err != nil {
		return nil, "", err
	}
	return e, rest, nil
}

// splitPrereq finds the first ';' outside any string literal, paren,
// brace, or bracket nesting.
func splitPrereq(text string) (string, string) {
	depth := 0
	inStr := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inStr {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		case ';':
			if depth == 0 {
				return text[:i], text[i+1:]
			}
		}
	}
	return text, ""
}
