package key

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/spf13/cobra"
)

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var filter string
	var tagFilter string
	var fields []string
	var limit int
	var offset int
	var query string

	command := &cobra.Command{
		Use:   "list",
		Short: "List Kerberos key records",
		Long: strings.Join([]string{
			"List searches the key collection with the service-side query language.",
			"--filter matches record fields and --tag-filter matches tags; both pass through to the service untouched.",
			"Use --fields to trim the returned records and --limit/--offset to page through large collections.",
		}, " "),
		Example: strings.Join([]string{
			"  krbctl key list",
			"  krbctl key list --filter 'principal~\"dns/\"'",
			"  krbctl key list --tag-filter 'env==\"prod\"'",
			"  krbctl key list --fields id,principal,version --limit 10",
			"  krbctl key list --query '.[].principal'",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			search, err := common.RequireSearch(deps)
			if err != nil {
				return err
			}

			keys, err := search.Search(command.Context(), keysapi.SearchQuery{
				Filter:    filter,
				TagFilter: tagFilter,
				Fields:    fields,
				Limit:     limit,
				Offset:    offset,
			})
			if err != nil {
				return err
			}

			format := common.ResolveRecordOutputFormat(globalFlags)
			if strings.TrimSpace(query) != "" {
				projected, err := common.ApplyQuery(command.Context(), query, keys)
				if err != nil {
					return err
				}
				return common.WriteOutput(command, format, projected, nil)
			}

			return common.WriteOutput(command, format, keys, renderKeyListText)
		},
	}

	command.Flags().StringVar(&filter, "filter", "", "record filter expression")
	command.Flags().StringVar(&tagFilter, "tag-filter", "", "tag filter expression")
	command.Flags().StringSliceVar(&fields, "fields", nil, "record fields to return")
	command.Flags().IntVar(&limit, "limit", 0, "maximum number of records to return")
	command.Flags().IntVar(&offset, "offset", 0, "number of records to skip")
	command.Flags().StringVarP(&query, "query", "q", "", "jq expression applied to the record list")

	return command
}

func renderKeyListText(w io.Writer, keys []kerberos.Key) error {
	for _, key := range keys {
		principal := key.PrincipalName()
		if principal == "" {
			principal = "-"
		}
		algorithm := "-"
		if key.Algorithm != nil && *key.Algorithm != "" {
			algorithm = *key.Algorithm
		}
		version := "-"
		if key.Version != nil {
			version = strconv.FormatInt(*key.Version, 10)
		}

		if _, err := fmt.Fprintf(w, "%-44s  %-32s  %-12s  %s\n", key.ID, principal, algorithm, version); err != nil {
			return err
		}
	}
	return nil
}
