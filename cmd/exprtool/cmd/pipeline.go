package cmd

import (
	"fmt"

	"github.com/flowmatch/exprc"
	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/internal/testenv"
	"github.com/flowmatch/exprc/symtab"
)

// stageSymtab returns the realistic packet-header table every single-
// expression command compiles against (spec.md §8's worked examples).
func stageSymtab() (*symtab.Table, error) {
	return testenv.DefaultSymtab()
}

func compileStage(text string) (ast.Expr, *symtab.Table, error) {
	tbl, err := stageSymtab()
	if err != nil {
		return nil, nil, err
	}
	e, err := exprc.Compile(text, tbl)
	if err != nil {
		return nil, nil, err
	}
	return e, tbl, nil
}

func annotateStage(text string) (ast.Expr, *symtab.Table, error) {
	e, tbl, err := compileStage(text)
	if err != nil {
		return nil, nil, err
	}
	e, err = exprc.Annotate(e, tbl)
	if err != nil {
		return nil, nil, err
	}
	return e, tbl, nil
}

func printExpr(label string, e ast.Expr) {
	if moreFlag {
		fmt.Printf("%s: %#v\n", label, e)
		return
	}
	fmt.Println(exprc.Format(e))
}
