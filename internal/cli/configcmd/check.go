package configcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/faults"
	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/spf13/cobra"
)

func newCheckCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check profile configuration and CSP API connectivity",
		Example: strings.Join([]string{
			"  krbctl config check",
			"  krbctl --profile prod config check --output json",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}

			resolvedProfile, err := profiles.ResolveProfile(command.Context(), config.ProfileSelection{
				Name: selectedProfileName(globalFlags),
			})
			if err != nil {
				return err
			}

			report := runConfigCheck(command, deps, resolvedProfile)
			if err := common.WriteOutput(command, selectedOutputFormat(globalFlags), report, renderConfigCheckText); err != nil {
				return err
			}

			if report.Summary.Fail > 0 {
				return common.ValidationError(
					fmt.Sprintf("config check failed for profile %q: %d component(s) unavailable", report.Profile, report.Summary.Fail),
					nil,
				)
			}
			return nil
		},
	}
}

type configCheckStatus string

const (
	configCheckOK   configCheckStatus = "ok"
	configCheckWarn configCheckStatus = "warn"
	configCheckFail configCheckStatus = "fail"
	configCheckSkip configCheckStatus = "skip"
)

type configCheckResult struct {
	Component string            `json:"component" yaml:"component"`
	Status    configCheckStatus `json:"status" yaml:"status"`
	Details   string            `json:"details,omitempty" yaml:"details,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
}

type configCheckSummary struct {
	OK   int `json:"ok" yaml:"ok"`
	Warn int `json:"warn" yaml:"warn"`
	Fail int `json:"fail" yaml:"fail"`
	Skip int `json:"skip" yaml:"skip"`
}

type configCheckReport struct {
	Profile    string              `json:"profile" yaml:"profile"`
	Passed     bool                `json:"passed" yaml:"passed"`
	Summary    configCheckSummary  `json:"summary" yaml:"summary"`
	Components []configCheckResult `json:"components" yaml:"components"`
}

func runConfigCheck(command *cobra.Command, deps common.CommandDependencies, cfg config.Profile) configCheckReport {
	items := []configCheckResult{
		{
			Component: "profile",
			Status:    configCheckOK,
			Details:   "profile resolved successfully",
		},
		checkCSPConfig(command, deps, cfg),
		checkRemoteAPI(command, deps),
	}

	summary := configCheckSummary{}
	for _, item := range items {
		switch item.Status {
		case configCheckOK:
			summary.OK++
		case configCheckWarn:
			summary.Warn++
		case configCheckFail:
			summary.Fail++
		case configCheckSkip:
			summary.Skip++
		}
	}

	return configCheckReport{
		Profile:    cfg.Name,
		Passed:     summary.Fail == 0,
		Summary:    summary,
		Components: items,
	}
}

func checkCSPConfig(command *cobra.Command, deps common.CommandDependencies, cfg config.Profile) configCheckResult {
	result := configCheckResult{
		Component: "csp-config",
	}

	profiles, err := common.RequireProfiles(deps)
	if err != nil {
		result.Status = configCheckFail
		result.Error = err.Error()
		return result
	}

	if err := profiles.Validate(command.Context(), cfg); err != nil {
		result.Status = configCheckFail
		result.Error = err.Error()
		return result
	}

	result.Status = configCheckOK
	result.Details = fmt.Sprintf("CSP configuration is valid (url=%s)", cfg.CSP.URL)
	return result
}

func checkRemoteAPI(command *cobra.Command, deps common.CommandDependencies) configCheckResult {
	result := configCheckResult{
		Component: "remote-api",
	}

	if deps.Search == nil {
		result.Status = configCheckSkip
		result.Details = "not configured"
		return result
	}

	keys, err := deps.Search.Search(command.Context(), keysapi.SearchQuery{Limit: 1})
	if err == nil {
		result.Status = configCheckOK
		result.Details = fmt.Sprintf("CSP API probe succeeded (keys=%d)", len(keys))
		return result
	}

	switch typedCategory(err) {
	case faults.NotFoundError, faults.ValidationError, faults.ConflictError:
		result.Status = configCheckWarn
		result.Details = fmt.Sprintf("probe reached server but returned %s", typedCategory(err))
		result.Error = err.Error()
		return result
	default:
		result.Status = configCheckFail
		result.Error = err.Error()
		return result
	}
}

func renderConfigCheckText(writer io.Writer, report configCheckReport) error {
	if _, err := fmt.Fprintf(writer, "Config check for profile %q\n", report.Profile); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(writer, strings.Repeat("-", 80)); err != nil {
		return err
	}

	for _, item := range report.Components {
		line := fmt.Sprintf("[%s] %-14s %s", strings.ToUpper(string(item.Status)), item.Component, item.Details)
		if strings.TrimSpace(item.Details) == "" {
			line = fmt.Sprintf("[%s] %-14s", strings.ToUpper(string(item.Status)), item.Component)
		}
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return err
		}
		if strings.TrimSpace(item.Error) != "" {
			if _, err := fmt.Fprintf(writer, "       %-14s %s\n", "error:", item.Error); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(writer, strings.Repeat("-", 80)); err != nil {
		return err
	}

	state := "PASS"
	if !report.Passed {
		state = "FAIL"
	}

	_, err := fmt.Fprintf(
		writer,
		"Result: %s (ok=%d warn=%d fail=%d skip=%d)\n",
		state,
		report.Summary.OK,
		report.Summary.Warn,
		report.Summary.Fail,
		report.Summary.Skip,
	)
	return err
}

func typedCategory(err error) faults.ErrorCategory {
	category, ok := faults.CategoryOf(err)
	if !ok {
		return ""
	}
	return category
}
