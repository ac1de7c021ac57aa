// Package main is the entry point for the simcheck CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/simcheck/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
