package main

import (
	"os"

	"github.com/moltenex-tm/moltenex-loader/internal/cmd"
)

func main() {
	// cobra has already printed the error.
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
