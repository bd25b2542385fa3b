// Command semigroups is a thin CLI wrapper around the enumeration engines
//.
package main

import "github.com/fpsemi/semigroups/cmd/semigroups/cmd"

func main() {
	cmd.Execute()
}
