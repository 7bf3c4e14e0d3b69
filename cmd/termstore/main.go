// Command termstore stores and inspects terminology components.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/termstore/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report through their formatter; only unreported errors
		// such as bad flags reach here unprinted.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
