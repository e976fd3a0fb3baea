// Package main is the entry point for the cardstash server.
package main

import (
	"os"

	"github.com/cardstash/cardstash/cmd/cardstash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
