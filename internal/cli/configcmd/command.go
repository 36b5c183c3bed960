package configcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/spf13/cobra"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return newCommandWithPrompter(deps, globalFlags, terminalPrompter{})
}

func newCommandWithPrompter(
	deps common.CommandDependencies,
	globalFlags *common.GlobalFlags,
	prompter profilePrompter,
) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Manage connection profiles",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newSetupCommand(deps, prompter),
		newDeleteCommand(deps, prompter),
		newRenameCommand(deps, prompter),
		newListCommand(deps, globalFlags),
		newUseCommand(deps, prompter),
		newCurrentCommand(deps, globalFlags),
		newCheckCommand(deps, globalFlags),
		newExportCommand(deps, globalFlags),
		newImportCommand(deps),
	)

	return command
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}
			items, err := profiles.List(command.Context())
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, items, func(w io.Writer, value []config.Profile) error {
				for _, item := range value {
					if _, writeErr := fmt.Fprintln(w, item.Name); writeErr != nil {
						return writeErr
					}
				}
				return nil
			})
		},
	}
}

func newCurrentCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Get current profile",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}
			current, err := profiles.GetCurrent(command.Context())
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, current, func(w io.Writer, value config.Profile) error {
				_, writeErr := fmt.Fprintln(w, value.Name)
				return writeErr
			})
		},
	}
}

func newUseCommand(deps common.CommandDependencies, prompter profilePrompter) *cobra.Command {
	command := &cobra.Command{
		Use:   "use [name]",
		Short: "Set current profile (interactive when name is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}

			name := ""
			if len(args) > 0 {
				name = args[0]
			} else {
				name, err = selectProfileForAction(command, profiles, prompter, "use")
				if err != nil {
					return err
				}
			}
			return profiles.SetCurrent(command.Context(), name)
		},
	}
	registerSingleProfileArgCompletion(command, deps)
	return command
}

func newDeleteCommand(deps common.CommandDependencies, prompter profilePrompter) *cobra.Command {
	command := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a profile (interactive when name is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}

			name := ""
			if len(args) > 0 {
				name = args[0]
			} else {
				selected, err := selectProfileForAction(command, profiles, prompter, "delete")
				if err != nil {
					return err
				}
				confirmed, err := prompter.Confirm(command, fmt.Sprintf("Delete profile %q?", selected), false)
				if err != nil {
					return err
				}
				if !confirmed {
					return common.WriteText(command, common.OutputText, "delete canceled")
				}
				name = selected
			}
			return profiles.Delete(command.Context(), name)
		},
	}
	registerSingleProfileArgCompletion(command, deps)
	return command
}

func newRenameCommand(deps common.CommandDependencies, prompter profilePrompter) *cobra.Command {
	command := &cobra.Command{
		Use:   "rename [from] [to]",
		Short: "Rename a profile (interactive when args are omitted)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}

			fromName := ""
			toName := ""
			switch len(args) {
			case 2:
				fromName = args[0]
				toName = args[1]
			case 1:
				fromName = args[0]
				if !prompter.IsInteractive(command) {
					return common.ValidationError("new profile name is required", nil)
				}
				toName, err = prompter.Input(command, "New profile name: ", true)
				if err != nil {
					return err
				}
			default:
				fromName, err = selectProfileForAction(command, profiles, prompter, "rename")
				if err != nil {
					return err
				}
				toName, err = prompter.Input(command, "New profile name: ", true)
				if err != nil {
					return err
				}
			}

			return profiles.Rename(command.Context(), fromName, toName)
		},
	}
	registerRenameFromArgCompletion(command, deps)
	return command
}

func selectedProfileName(globalFlags *common.GlobalFlags) string {
	if globalFlags == nil {
		return ""
	}
	return strings.TrimSpace(globalFlags.Profile)
}

func selectedOutputFormat(globalFlags *common.GlobalFlags) string {
	if globalFlags == nil || strings.TrimSpace(globalFlags.Output) == "" {
		return common.OutputAuto
	}
	return globalFlags.Output
}
