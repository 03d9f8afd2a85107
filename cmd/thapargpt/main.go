// ThaparGPT - campus Q&A assistant command-line interface.
package main

import (
	"os"

	"github.com/tietlabs/thapargpt/pkg/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
