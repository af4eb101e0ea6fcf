// The main package for the crawlsched executable.
package main

import (
	"github.com/frontierkit/crawlsched/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
