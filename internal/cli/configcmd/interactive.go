package configcmd

import (
	"fmt"
	"strings"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/spf13/cobra"
)

func newSetupCommand(deps common.CommandDependencies, prompter profilePrompter) *cobra.Command {
	var profileName string
	var cspURL string
	var apiKey string
	var setCurrent bool

	command := &cobra.Command{
		Use:   "setup [name]",
		Short: "Create or update a profile interactively or from flags",
		Example: strings.Join([]string{
			"  krbctl config setup",
			"  krbctl config setup prod --url https://csp.infoblox.com --api-key \"${INFOBLOX_TOKEN}\"",
			"  krbctl config setup staging --set-current",
		}, "\n"),
		Args: cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}

			name, err := resolveSetupProfileName(args, profileName)
			if err != nil {
				return err
			}

			interactive := prompter.IsInteractive(command)
			if name == "" {
				if !interactive {
					return common.ValidationError("profile name is required: krbctl config setup <name>", nil)
				}
				name, err = promptRequiredInput(command, prompter, "Profile name: ", "profile name")
				if err != nil {
					return err
				}
			}

			url := strings.TrimSpace(cspURL)
			if url == "" && interactive {
				url, err = prompter.Input(
					command,
					fmt.Sprintf("CSP URL (empty for %s): ", config.DefaultCSPURL),
					false,
				)
				if err != nil {
					return err
				}
			}

			key := strings.TrimSpace(apiKey)
			if key == "" && interactive {
				key, err = prompter.Input(command, "CSP API key (empty to keep unset): ", false)
				if err != nil {
					return err
				}
			}

			existing, err := findProfile(command, profiles, name)
			if err != nil {
				return err
			}

			cfg := buildSetupProfile(existing, name, url, key)
			if existing != nil {
				err = profiles.Update(command.Context(), cfg)
			} else {
				err = profiles.Create(command.Context(), cfg)
			}
			if err != nil {
				return err
			}

			if setCurrent {
				return profiles.SetCurrent(command.Context(), cfg.Name)
			}
			return nil
		},
	}

	command.Flags().StringVar(&profileName, "name", "", "profile name")
	command.Flags().StringVar(&cspURL, "url", "", "CSP base URL")
	command.Flags().StringVar(&apiKey, "api-key", "", "CSP API key (supports ${VAR} references)")
	command.Flags().BoolVar(&setCurrent, "set-current", false, "set the profile as current")
	registerSingleProfileArgCompletion(command, deps)
	return command
}

func resolveSetupProfileName(args []string, flagName string) (string, error) {
	positionalName := ""
	if len(args) > 0 {
		positionalName = strings.TrimSpace(args[0])
	}

	trimmedFlagName := strings.TrimSpace(flagName)
	if positionalName != "" && trimmedFlagName != "" && positionalName != trimmedFlagName {
		return "", common.ValidationError(
			fmt.Sprintf("profile name conflict: positional %q differs from --name %q", positionalName, trimmedFlagName),
			nil,
		)
	}

	if positionalName != "" {
		return positionalName, nil
	}
	return trimmedFlagName, nil
}

// buildSetupProfile merges the wizard answers over an existing profile so a
// re-run keeps fields the wizard does not ask about (base path, TLS, headers).
func buildSetupProfile(existing *config.Profile, name string, url string, apiKey string) config.Profile {
	cfg := config.Profile{Name: name, CSP: &config.CSPConfig{}}
	if existing != nil && existing.CSP != nil {
		cspCopy := *existing.CSP
		cfg.CSP = &cspCopy
	}

	if trimmed := strings.TrimSpace(url); trimmed != "" {
		cfg.CSP.URL = trimmed
	}
	if cfg.CSP.URL == "" {
		cfg.CSP.URL = config.DefaultCSPURL
	}
	if trimmed := strings.TrimSpace(apiKey); trimmed != "" {
		cfg.CSP.APIKey = trimmed
	}

	return cfg
}

func findProfile(command *cobra.Command, profiles config.ProfileService, name string) (*config.Profile, error) {
	items, err := profiles.List(command.Context())
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Name == name {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func promptRequiredInput(
	command *cobra.Command,
	prompter profilePrompter,
	prompt string,
	field string,
) (string, error) {
	value, err := prompter.Input(command, prompt, true)
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", common.ValidationError(fmt.Sprintf("%s is required", field), nil)
	}
	return trimmed, nil
}

func selectProfileForAction(
	command *cobra.Command,
	profiles config.ProfileService,
	prompter profilePrompter,
	actionLabel string,
) (string, error) {
	items, err := profiles.List(command.Context())
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", common.ValidationError("no profiles available", nil)
	}
	if !prompter.IsInteractive(command) {
		return "", common.ValidationError(fmt.Sprintf("profile name is required: krbctl config %s <name>", actionLabel), nil)
	}

	options := make([]string, 0, len(items))
	for _, item := range items {
		options = append(options, item.Name)
	}
	return prompter.Select(command, "Choose profile", options)
}
