package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gogpu/spvmsl/ir"
	"github.com/gogpu/spvmsl/msl"
)

type translateOptions struct {
	*rootOptions
	output      string
	bindingFile string
	platform    string
	langVersion string
}

// newTranslateCommand builds the "translate" subcommand: SPIR-V IR (as
// JSON) in, Metal Shading Language source out. Mirrors the teacher's single
// file-in/file-out cmd/nagac convention, layered onto cobra the way
// roach88-nysm's internal/cli/compile.go wires a subcommand's own flags onto
// the shared RootOptions.
func newTranslateCommand(root *rootOptions) *cobra.Command {
	opts := &translateOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "translate <module.json>",
		Short: "Translate a parsed SPIR-V module to Metal Shading Language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, opts, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.bindingFile, "bindings", "", "YAML file of vertex-attribute/resource bindings")
	cmd.Flags().StringVar(&opts.platform, "platform", "macos", "target platform: macos or ios")
	cmd.Flags().StringVar(&opts.langVersion, "msl-version", "2.1", "target MSL language version, e.g. 2.1")

	return cmd
}

func runTranslate(cmd *cobra.Command, opts *translateOptions, inputPath string) error {
	module, err := loadModule(inputPath)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}

	mslOpts, err := buildOptions(opts)
	if err != nil {
		return err
	}

	var vtxAttrs []msl.VertexAttributeBinding
	var resBindings []msl.ResourceBinding
	if opts.bindingFile != "" {
		cfg, err := loadBindingConfig(opts.bindingFile)
		if err != nil {
			return err
		}
		vtxAttrs = cfg.vertexAttributeBindings()
		resBindings, err = cfg.resourceBindings()
		if err != nil {
			return err
		}
	}

	src, info, err := msl.Compile(module, mslOpts, vtxAttrs, resBindings)
	if err != nil {
		printDiagnostic(cmd, opts.rootOptions, err)
		return err
	}

	if opts.verbose {
		printInfo(cmd, opts.rootOptions, info)
	}

	if opts.output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), src)
		return err
	}
	return os.WriteFile(opts.output, []byte(src), 0o644)
}

func loadModule(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var module ir.Module
	if err := json.Unmarshal(data, &module); err != nil {
		return nil, fmt.Errorf("decode module JSON: %w", err)
	}
	return &module, nil
}

func buildOptions(opts *translateOptions) (msl.Options, error) {
	mslOpts := msl.DefaultOptions()

	switch opts.platform {
	case "macos":
		mslOpts.Platform = msl.PlatformMacOS
	case "ios":
		mslOpts.Platform = msl.PlatformIOS
	default:
		return msl.Options{}, fmt.Errorf("unknown platform %q: must be macos or ios", opts.platform)
	}

	var major, minor uint8
	if _, err := fmt.Sscanf(opts.langVersion, "%d.%d", &major, &minor); err != nil {
		return msl.Options{}, fmt.Errorf("invalid --msl-version %q: %w", opts.langVersion, err)
	}
	mslOpts.LangVersion = msl.Version{Major: major, Minor: minor}

	return mslOpts, nil
}

func printDiagnostic(cmd *cobra.Command, root *rootOptions, err error) {
	w := cmd.ErrOrStderr()
	if root.noColor {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, color.New(color.FgRed, color.Bold).Sprint("error: ")+err.Error())
}

func printInfo(cmd *cobra.Command, root *rootOptions, info msl.TranslationInfo) {
	w := cmd.ErrOrStderr()
	if root.noColor {
		fmt.Fprintf(w, "entry point: %s\n", info.EntryPointName)
		return
	}
	label := color.New(color.FgYellow, color.Bold).Sprint("entry point: ")
	fmt.Fprintf(w, "%s%s\n", label, info.EntryPointName)
}
