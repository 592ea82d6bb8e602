// Command propertyd serves the property listing API and runs its
// maintenance tasks.
package main

import (
	"os"
)

// set by -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
