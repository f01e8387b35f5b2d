package cmd

import (
	"fmt"

	"github.com/flowmatch/exprc"
	"github.com/flowmatch/exprc/internal/actions"
	"github.com/spf13/cobra"
)

var parseActionsCmd = &cobra.Command{
	Use:   "parse-actions ACTION_TEXT",
	Short: "Parse an action body's prerequisite expression",
	Long: `parse-actions splits ACTION_TEXT at its first top-level ';' into a
prerequisite expression, parsed against the reference symbol table, and
the raw remainder text. The action assembler itself is out of scope
(spec.md §1); this only exercises the prerequisite half.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := stageSymtab()
		if err != nil {
			return err
		}
		prereq, rest, err := actions.ParsePrereq(args[0], tbl)
		if err != nil {
			return err
		}
		fmt.Printf("prereq: %s\n", exprc.Format(prereq))
		fmt.Printf("action: %s\n", rest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseActionsCmd)
}
