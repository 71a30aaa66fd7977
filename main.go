package main

import (
	"os"

	"github.com/k3dev/k3dev/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
