// Package main provides the Cooksheet CLI.
package main

import (
	"os"

	"github.com/cooksheet/cooksheet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
