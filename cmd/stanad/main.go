// Package main provides the stanad CLI.
package main

import (
	"os"

	"github.com/born-ml/stanmath/cmd/stanad/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
