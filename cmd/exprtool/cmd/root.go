package cmd

import (
	"fmt"
	"strings"

	"github.com/flowmatch/exprc/ast"
	"github.com/spf13/cobra"
)

var (
	relopsFlag    string
	nvarsFlag     int
	svarsFlag     int
	bitsFlag      int
	operationFlag string
	parallelFlag  int
	moreFlag      bool
)

var rootCmd = &cobra.Command{
	Use:   "exprtool",
	Short: "Boolean match-expression compiler reference test driver",
	Long: `exprtool drives every stage of the match-expression compiler
(lexer, parser, symbol table, annotator, simplifier, normalizer,
classifier lowering, formatter) from the command line, and exposes the
exhaustive property-checking harness that exercises them.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&relopsFlag, "relops", "==,!=,<,<=,>,>=", "comma-separated relational operators to enumerate")
	rootCmd.PersistentFlags().IntVar(&nvarsFlag, "nvars", 2, "number of numeric variables (0..4)")
	rootCmd.PersistentFlags().IntVar(&svarsFlag, "svars", 0, "number of string variables (0..4)")
	rootCmd.PersistentFlags().IntVar(&bitsFlag, "bits", 2, "bit width of numeric variables (1..3)")
	rootCmd.PersistentFlags().StringVar(&operationFlag, "operation", "flow", "convert|simplify|normalize|flow")
	rootCmd.PersistentFlags().IntVar(&parallelFlag, "parallel", 1, "exhaustive worker parallelism")
	rootCmd.PersistentFlags().BoolVarP(&moreFlag, "more", "m", false, "print extra diagnostic detail")
}

func parseRelOps(csv string) ([]ast.RelOp, error) {
	var out []ast.RelOp
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		switch tok {
		case "==":
			out = append(out, ast.EQ)
		case "!=":
			out = append(out, ast.NE)
		case "<":
			out = append(out, ast.LT)
		case "<=":
			out = append(out, ast.LE)
		case ">":
			out = append(out, ast.GT)
		case ">=":
			out = append(out, ast.GE)
		default:
			return nil, fmt.Errorf("exprtool: unknown relop %q", tok)
		}
	}
	return out, nil
}
