package key

import (
	"strings"

	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/spf13/cobra"
)

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var selector selectorFlags
	var query string

	command := &cobra.Command{
		Use:   "get",
		Short: "Show the remote Kerberos key record",
		Long: strings.Join([]string{
			"Get reads the key record addressed by --id or --principal.",
			"Lookup by principal requires exactly one matching record.",
			"Use --query to project the record through a jq expression before rendering.",
		}, " "),
		Example: strings.Join([]string{
			"  krbctl key get --id keys/kerberos/6c3a...",
			"  krbctl key get --principal dns/ns.corp.example.com",
			"  krbctl key get --principal dns/ns.corp.example.com --query .version",
			"  krbctl key get --id keys/kerberos/6c3a... --output json",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			if err := selector.validate(); err != nil {
				return err
			}

			key, err := lookupKey(command.Context(), deps, selector)
			if err != nil {
				return err
			}

			format := common.ResolveRecordOutputFormat(globalFlags)
			if strings.TrimSpace(query) != "" {
				projected, err := common.ApplyQuery(command.Context(), query, key)
				if err != nil {
					return err
				}
				return common.WriteOutput(command, format, projected, nil)
			}

			return common.WriteOutput(command, format, key, renderKeyText)
		},
	}

	bindSelectorFlags(command, &selector)
	command.Flags().StringVarP(&query, "query", "q", "", "jq expression applied to the record")

	return command
}
