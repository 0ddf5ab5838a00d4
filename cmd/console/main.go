// Command console is the interactive interpreter for the HBnB object store.
package main

import "github.com/mesh-intelligence/hbnb/internal/cli"

func main() {
	cli.Execute()
}
