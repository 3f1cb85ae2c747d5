package main

import (
	"os"

	"github.com/wonny/grocer/cmd/grocer/commands"
)

// main is the entry point for the grocer CLI
// ⭐ single CLI entry point: go run ./cmd/grocer [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
