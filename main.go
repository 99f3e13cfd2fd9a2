// The main package for the sitecrawler executable.
package main

import (
	"github.com/corpusbot/sitecrawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
