// Command bitfield inspects bitfield schema files and converts packed bytes to and from JSON.
package main

import (
	"github.com/bearlytools/bitfield/cmd/bitfield/cmd"
)

func main() {
	cmd.Execute()
}
