package main

import (
	"os"

	"github.com/bimmerbailey/publogs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
