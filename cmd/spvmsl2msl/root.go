package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds the global flags shared by every subcommand, mirroring
// the teacher's cmd/nagac single-binary convention spread across cobra's
// persistent-flag idiom instead of a flat flag.FlagSet.
type rootOptions struct {
	verbose bool
	noColor bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "spvmsl2msl",
		Short: "Cross-compile a parsed SPIR-V module to Metal Shading Language",
		Long: `spvmsl2msl translates a parsed, validated SPIR-V module into Metal
Shading Language source text.

The input is the JSON form of package ir's Module type, produced by a
front-end outside this repository's scope.`,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "print translation diagnostics to stderr")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored diagnostic output")

	cmd.AddCommand(newTranslateCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}
