package main

import (
	"os"

	"sgci.io/catalog/cmd/catalogctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
