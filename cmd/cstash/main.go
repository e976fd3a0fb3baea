// Package main is the entry point for the cstash CLI.
package main

import "github.com/cardstash/cardstash/cmd/cstash/cmd"

func main() {
	cmd.Execute()
}
