// Command spvmsl2msl is a thin CLI front-end over package msl.
//
// It reads a parsed SPIR-V module already serialized to JSON by an
// external front-end (producing that JSON from a real SPIR-V binary is out
// of scope for this repository, matching package msl's own "already
// parsed and validated" precondition), an optional YAML binding-config
// file, and writes the translated Metal Shading Language source to a file
// or stdout.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
