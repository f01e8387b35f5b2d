package cmd

import (
	"fmt"
	"sort"

	"github.com/flowmatch/exprc"
	"github.com/flowmatch/exprc/ast"
	"github.com/spf13/cobra"
)

var exprToFlowsCmd = &cobra.Command{
	Use:   "expr-to-flows EXPR",
	Short: "Lower a match expression to classifier-installable flow matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := annotateStage(args[0])
		if err != nil {
			return err
		}
		e = exprc.Simplify(e)
		e = exprc.Normalize(e)

		strMap := collectStrings(e)
		result, err := exprc.ToMatches(e, strMap)
		if err != nil {
			return err
		}
		for i, m := range result.Matches {
			fmt.Printf("flow[%d]: conj=%d clause=%d/%d fields=%v\n", i, m.ConjID, m.ClauseIdx, m.NClauses, m.Fields)
		}
		if moreFlag {
			fmt.Printf("conjunction groups: %d\n", result.NConjunctions)
			fmt.Printf("string map: %v\n", strMap)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exprToFlowsCmd)
}

// collectStrings assigns a deterministic ID to every distinct string
// literal compared in e, in sorted order, so expr-to-flows can
// lower string equalities without a caller-supplied mapping.
func collectStrings(e ast.Expr) map[string]uint32 {
	out := map[string]uint32{}
	var seen []string
	var walk func(e ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Cmp:
			if n.IsStr {
				if _, ok := out[n.Str]; !ok {
					seen = append(seen, n.Str)
					out[n.Str] = 0
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
	walk(e)
	sort.Strings(seen)
	for i, s := range seen {
		out[s] = uint32(i + 1)
	}
	return out
}
