// Command samewave is the terminal client: it searches the catalog, browses
// threads and posts suggestions, and keeps working from its local cache when
// the entity store is down.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
