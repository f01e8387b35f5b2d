package cmd

import (
	"fmt"
	"strconv"

	"github.com/flowmatch/exprc"
	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/internal/testenv"
	"github.com/spf13/cobra"
)

var evaluateExprCmd = &cobra.Command{
	Use:   "evaluate-expr EXPR A B C",
	Short: "Evaluate a match expression directly against up to three numeric variable assignments",
	Long: `evaluate-expr parses EXPR against a bare three-numeric-variable
table (n0, n1, n2) and evaluates it directly under the given
assignment, bypassing normalize/to_matches/classifier entirely. This is
the reference the exhaustive harness's P3/P4/P6 compare the pipeline's
output against (spec.md §8).`,
	Args: cobra.RangeArgs(1, 4),
	RunE: runEvaluateExpr,
}

func init() {
	rootCmd.AddCommand(evaluateExprCmd)
}

func runEvaluateExpr(cmd *cobra.Command, args []string) error {
	tbl, numeric, _, err := testenv.VarSymtab(3, 0, bitsFlag)
	if err != nil {
		return err
	}
	e, err := exprc.Compile(args[0], tbl)
	if err != nil {
		return err
	}
	e, err = exprc.Annotate(e, tbl)
	if err != nil {
		return err
	}

	assignment := exprc.Assignment{Numeric: map[string]ast.Value128{}}
	for i, raw := range args[1:] {
		v, err := strconv.ParseUint(raw, 0, 64)
		if err != nil {
			return fmt.Errorf("exprtool: invalid value %q for %s: %w", raw, numeric[i], err)
		}
		assignment.Numeric[numeric[i]] = ast.Uint64Value128(v)
	}

	fmt.Println(exprc.Evaluate(e, assignment))
	return nil
}
