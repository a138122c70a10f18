// Command emandates talks to an eMandates acquirer from the command line.
//
// It runs the merchant operations (directory, new, status, amend, cancel)
// with the settings of a YAML configuration file, and offers a few tools for
// working with signed messages (sign, verify, fingerprint).
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
