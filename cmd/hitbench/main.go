// Command hitbench exercises the spatial hit-testing index against scene
// files: benchmarking, one-shot queries, and PNG snapshots.
package main

import (
	"os"

	"github.com/go-drift/spatial/cmd/hitbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
