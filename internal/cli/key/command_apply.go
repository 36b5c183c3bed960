package key

import (
	"fmt"
	"strings"

	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/crmarques/krbctl/reconcile"
	"github.com/spf13/cobra"
)

func newApplyCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var manifest string
	var flags specFlags
	var dryRun bool

	command := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile the declared key state against the CSP API",
		Long: strings.Join([]string{
			"Apply drives the remote Kerberos key record to the declared state.",
			"The declaration comes from a manifest (--manifest <path|-> or stdin), from flags, or from both; a set flag overrides the matching manifest field.",
			"The record is located by id when declared, otherwise by principal, and the command creates, updates, or deletes it as needed.",
			"A declaration that already matches the remote record changes nothing.",
		}, " "),
		Example: strings.Join([]string{
			"  krbctl key apply --manifest key.yaml",
			"  cat key.yaml | krbctl key apply",
			"  krbctl key apply --principal dns/ns.corp.example.com --comment \"primary dns key\"",
			"  krbctl key apply --manifest key.yaml --state absent",
			"  krbctl key apply --manifest key.yaml --dry-run",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			reconciler, err := common.RequireReconciler(deps)
			if err != nil {
				return err
			}

			spec, err := declaredSpec(command, manifest, flags)
			if err != nil {
				return err
			}

			if common.IsVerbose(globalFlags) {
				_, _ = fmt.Fprintf(command.ErrOrStderr(),
					"declared fields: %s\n", strings.Join(spec.DeclaredFieldNames(), ", "))
			}

			result, err := reconciler.Reconcile(command.Context(), spec, reconcile.Options{DryRun: dryRun})
			if err != nil {
				return err
			}

			return common.WriteOutput(command, resultOutputFormat(globalFlags), result, renderResultText)
		},
	}

	common.BindManifestFlag(command, &manifest)
	bindSpecFlags(command, &flags)
	command.Flags().BoolVar(&dryRun, "dry-run", false, "report the decision without issuing remote writes")

	return command
}
