package key

import (
	"fmt"
	"strings"

	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/reconcile"
	"github.com/spf13/cobra"
)

func newDeleteCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var selector selectorFlags
	var dryRun bool
	var yes bool

	command := &cobra.Command{
		Use:   "delete",
		Short: "Delete the remote Kerberos key record",
		Long: strings.Join([]string{
			"Delete removes the key record addressed by --id or --principal.",
			"A record that is already absent is reported as unchanged.",
			"Interactive invocations ask for confirmation unless --yes is set; non-interactive invocations require --yes.",
		}, " "),
		Example: strings.Join([]string{
			"  krbctl key delete --id keys/kerberos/6c3a... --yes",
			"  krbctl key delete --principal dns/ns.corp.example.com",
			"  krbctl key delete --principal dns/ns.corp.example.com --dry-run",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			if err := selector.validate(); err != nil {
				return err
			}

			reconciler, err := common.RequireReconciler(deps)
			if err != nil {
				return err
			}

			if !yes && !dryRun {
				if !common.IsInteractiveTerminal(command) {
					return common.ValidationError("confirmation is required: pass --yes to delete without prompting", nil)
				}
				confirmed, err := common.PromptConfirm(command,
					fmt.Sprintf("Delete Kerberos key %s?", selector.describe()), false)
				if err != nil {
					return err
				}
				if !confirmed {
					return common.WriteText(command, common.OutputText, "delete canceled")
				}
			}

			spec := kerberos.Spec{
				ID:        selector.id,
				Principal: selector.principal,
				State:     kerberos.StateAbsent,
			}
			result, err := reconciler.Reconcile(command.Context(), spec, reconcile.Options{DryRun: dryRun})
			if err != nil {
				return err
			}

			return common.WriteOutput(command, resultOutputFormat(globalFlags), result, renderResultText)
		},
	}

	bindSelectorFlags(command, &selector)
	command.Flags().BoolVar(&dryRun, "dry-run", false, "report the decision without issuing remote writes")
	command.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return command
}
