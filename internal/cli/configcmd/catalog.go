package configcmd

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

func newExportCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the stored profile catalog",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}
			editor, ok := profiles.(config.ProfileCatalogEditor)
			if !ok {
				return common.ValidationError("profile provider does not support catalog export", nil)
			}
			catalog, err := editor.GetCatalog(command.Context())
			if err != nil {
				return err
			}
			return common.WriteOutput(command, common.ResolveRecordOutputFormat(globalFlags), catalog, nil)
		},
	}
}

func newImportCommand(deps common.CommandDependencies) *cobra.Command {
	var manifest string

	command := &cobra.Command{
		Use:   "import",
		Short: "Replace the profile catalog from a manifest",
		Example: strings.Join([]string{
			"  krbctl config import -f profiles.yaml",
			"  krbctl config export | krbctl config import -f -",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}
			editor, ok := profiles.(config.ProfileCatalogEditor)
			if !ok {
				return common.ValidationError("profile provider does not support catalog import", nil)
			}
			catalog, err := decodeCatalogStrict(command, manifest)
			if err != nil {
				return err
			}
			return editor.ReplaceCatalog(command.Context(), catalog)
		},
	}

	command.Flags().StringVarP(&manifest, "manifest", "f", "", "profile catalog path (use '-' to read from stdin)")
	return command
}

func decodeCatalogStrict(command *cobra.Command, manifest string) (config.ProfileCatalog, error) {
	data, err := common.ReadManifest(command, manifest)
	if err != nil {
		return config.ProfileCatalog{}, err
	}

	var catalog config.ProfileCatalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		if errors.Is(err, io.EOF) {
			return config.ProfileCatalog{}, common.ValidationError("profile catalog manifest is empty", nil)
		}
		return config.ProfileCatalog{}, common.ValidationError("invalid profile catalog manifest", err)
	}
	return catalog, nil
}
