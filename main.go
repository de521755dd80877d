package main

import (
	"os"

	"github.com/bebsworthy/plxdemo/cmd"
	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(plxerrors.ExitCode(err))
	}
}
