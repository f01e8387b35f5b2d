package cmd

import (
	"fmt"
	"strconv"

	"github.com/flowmatch/exprc/internal/exhaustive"
	"github.com/spf13/cobra"
)

var compositionCmd = &cobra.Command{
	Use:   "composition N",
	Short: "Print every ordered composition of N into parts >= 1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		for _, comp := range exhaustive.Compositions(n) {
			fmt.Println(comp)
		}
		return nil
	},
}

var treeShapeCmd = &cobra.Command{
	Use:   "tree-shape N",
	Short: "Print every Boolean tree shape with N leaves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		shapes := exhaustive.Shapes(n)
		for _, s := range shapes {
			fmt.Println(s.String())
		}
		if moreFlag {
			fmt.Printf("%d shapes\n", len(shapes))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compositionCmd)
	rootCmd.AddCommand(treeShapeCmd)
}
