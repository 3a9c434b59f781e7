package main

import (
	"os"

	"github.com/kilianc/directify/internal/directify/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
