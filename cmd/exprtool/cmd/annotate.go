package cmd

import "github.com/spf13/cobra"

var annotateExprCmd = &cobra.Command{
	Use:   "annotate-expr EXPR",
	Short: "Parse and annotate a match expression (expand predicates, sub-fields, prerequisites)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := annotateStage(args[0])
		if err != nil {
			return err
		}
		printExpr("annotated", e)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(annotateExprCmd)
}
