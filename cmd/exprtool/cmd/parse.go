package cmd

import "github.com/spf13/cobra"

var parseExprCmd = &cobra.Command{
	Use:   "parse-expr EXPR",
	Short: "Parse a match expression against the reference symbol table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := compileStage(args[0])
		if err != nil {
			return err
		}
		printExpr("parsed", e)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseExprCmd)
}
