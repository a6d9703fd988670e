package main

import (
	"os"

	"github.com/davril/atomkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
