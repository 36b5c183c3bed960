package version

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	_ = deps

	command := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value := buildInfo()
			return common.WriteOutput(cmd, globalFlags.Output, value, func(w io.Writer, item info) error {
				_, err := fmt.Fprintf(w, "%s (%s) %s\n", item.Version, item.Commit, item.BuildDate)
				return err
			})
		},
	}

	return command
}

// buildInfo prefers ldflags-injected values and falls back to module build
// metadata for plain `go install` builds.
func buildInfo() info {
	value := info{Version: Version, Commit: Commit, BuildDate: BuildDate}

	buildDetails, ok := debug.ReadBuildInfo()
	if !ok {
		return value
	}

	if value.Version == "dev" && buildDetails.Main.Version != "" && buildDetails.Main.Version != "(devel)" {
		value.Version = buildDetails.Main.Version
	}
	for _, setting := range buildDetails.Settings {
		switch setting.Key {
		case "vcs.revision":
			if value.Commit == "unknown" && setting.Value != "" {
				value.Commit = setting.Value
			}
		case "vcs.time":
			if value.BuildDate == "unknown" && setting.Value != "" {
				value.BuildDate = setting.Value
			}
		}
	}

	return value
}
