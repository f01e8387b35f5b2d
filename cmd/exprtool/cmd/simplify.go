package cmd

import (
	"github.com/flowmatch/exprc"
	"github.com/spf13/cobra"
)

var simplifyExprCmd = &cobra.Command{
	Use:   "simplify-expr EXPR",
	Short: "Parse, annotate, and algebraically simplify a match expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := annotateStage(args[0])
		if err != nil {
			return err
		}
		printExpr("simplified", exprc.Simplify(e))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simplifyExprCmd)
}
