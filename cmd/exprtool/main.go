// Command exprtool is the reference test driver's CLI surface (spec.md
// §6): a thin wrapper over the exprc pipeline and internal/exhaustive
// harness, used by the property-test suite, not by any production
// caller (spec.md §1, §6: "no persistent state").
package main

import (
	"fmt"
	"os"

	"github.com/flowmatch/exprc/cmd/exprtool/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
