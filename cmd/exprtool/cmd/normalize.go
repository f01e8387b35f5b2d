package cmd

import (
	"github.com/flowmatch/exprc"
	"github.com/spf13/cobra"
)

var normalizeExprCmd = &cobra.Command{
	Use:   "normalize-expr EXPR",
	Short: "Parse, annotate, simplify, and normalize a match expression to DNF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := annotateStage(args[0])
		if err != nil {
			return err
		}
		e = exprc.Simplify(e)
		printExpr("normalized", exprc.Normalize(e))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeExprCmd)
}
