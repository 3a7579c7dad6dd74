package main

import (
	"os"

	"smallbasket/cmd/smallbasket/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
