package main

import (
	"os"

	"github.com/lethe-board/lethe/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
