// Command testrig runs a small set of demonstration suites.
//
// Real projects build their own binary the same way: register suite
// factories, then hand the registry to testrig.Main.
package main

import (
	"github.com/roach88/testrig"
)

func main() {
	reg := testrig.NewRegistry()
	registerSuites(reg)
	testrig.Main(reg)
}
