package cmd

import (
	"fmt"

	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/lexer"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex EXPR",
	Short: "Tokenize a match expression and print its tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	l := lexer.New(args[0])
	for {
		tok := l.Next()
		printTokenLine(tok)
		if tok.Kind == ast.END || tok.Kind == ast.ERROR {
			break
		}
	}
	return nil
}

func printTokenLine(tok ast.Token) {
	if tok.Kind == ast.ERROR {
		fmt.Printf("[%-14s] %q @%d err=%s\n", tok.Kind, tok.Text, tok.Offset, tok.Err)
		return
	}
	if moreFlag {
		fmt.Printf("[%-14s] %q @%d\n", tok.Kind, tok.String(), tok.Offset)
		return
	}
	fmt.Println(tok.String())
}
