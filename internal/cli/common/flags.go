package common

import "github.com/spf13/cobra"

type GlobalFlags struct {
	Profile  string
	Debug    bool
	Verbose  bool
	NoStatus bool
	NoColor  bool
	Output   string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVarP(&flags.Profile, "profile", "p", "", "profile name")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug output")
	command.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "show complementary command output")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	RegisterOutputFlagCompletion(command)
}

func IsVerbose(flags *GlobalFlags) bool {
	return flags != nil && flags.Verbose
}

// BindManifestFlag wires the declared-state input flag. Manifests decode as
// strict YAML, which also accepts JSON payloads.
func BindManifestFlag(command *cobra.Command, manifest *string) {
	command.Flags().StringVarP(manifest, "manifest", "f", "", "key manifest path (use '-' to read from stdin)")
}
