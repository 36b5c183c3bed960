package key

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/crmarques/krbctl/faults"
	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/crmarques/krbctl/reconcile"
	"github.com/spf13/cobra"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "key",
		Short: "Manage the Kerberos encryption key record",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newApplyCommand(deps, globalFlags),
		newDeleteCommand(deps, globalFlags),
		newDiffCommand(deps, globalFlags),
		newGetCommand(deps, globalFlags),
		newListCommand(deps, globalFlags),
	)

	return command
}

// specFlags are the declared-state options shared by apply and diff. A flag
// that was set overrides the matching manifest field.
type specFlags struct {
	id        string
	principal string
	comment   string
	state     string
	tags      []string
}

func bindSpecFlags(command *cobra.Command, flags *specFlags) {
	command.Flags().StringVar(&flags.id, "id", "", "record id of the key")
	command.Flags().StringVar(&flags.principal, "principal", "", "kerberos principal the key belongs to")
	command.Flags().StringVar(&flags.comment, "comment", "", "description of the key")
	command.Flags().StringArrayVar(&flags.tags, "tag", nil, "tag as key=value (repeatable, replaces manifest tags)")
	command.Flags().StringVar(&flags.state, "state", "", "target state: present|absent")
	common.RegisterStateFlagCompletion(command)
}

func declaredSpec(command *cobra.Command, manifest string, flags specFlags) (kerberos.Spec, error) {
	spec := kerberos.Spec{}

	data, err := common.ReadOptionalManifest(command, manifest)
	if err != nil {
		return kerberos.Spec{}, err
	}
	if data != nil {
		spec, err = kerberos.DecodeSpec(data)
		if err != nil {
			return kerberos.Spec{}, err
		}
	}

	return overlaySpecFlags(command, spec, flags)
}

func overlaySpecFlags(command *cobra.Command, spec kerberos.Spec, flags specFlags) (kerberos.Spec, error) {
	set := command.Flags().Changed

	if set("id") {
		spec.ID = flags.id
	}
	if set("principal") {
		spec.Principal = flags.principal
	}
	if set("comment") {
		comment := flags.comment
		spec.Comment = &comment
	}
	if set("state") {
		spec.State = kerberos.State(flags.state)
	}
	if set("tag") {
		tags, err := parseTagAssignments(flags.tags)
		if err != nil {
			return kerberos.Spec{}, err
		}
		spec.Tags = tags
	}

	return spec, nil
}

func parseTagAssignments(assignments []string) (map[string]any, error) {
	tags := make(map[string]any, len(assignments))
	for _, assignment := range assignments {
		name, value, found := strings.Cut(assignment, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, common.ValidationError(fmt.Sprintf("invalid tag %q: use key=value", assignment), nil)
		}
		tags[name] = value
	}
	return tags, nil
}

// selectorFlags address the single target record for get and delete.
type selectorFlags struct {
	id        string
	principal string
}

func bindSelectorFlags(command *cobra.Command, flags *selectorFlags) {
	command.Flags().StringVar(&flags.id, "id", "", "record id of the key")
	command.Flags().StringVar(&flags.principal, "principal", "", "kerberos principal the key belongs to")
}

func (f selectorFlags) validate() error {
	hasID := strings.TrimSpace(f.id) != ""
	hasPrincipal := strings.TrimSpace(f.principal) != ""

	if hasID && hasPrincipal {
		return common.ValidationError("flags --id and --principal are mutually exclusive", nil)
	}
	if !hasID && !hasPrincipal {
		return common.ValidationError("either --id or --principal is required", nil)
	}
	return nil
}

func (f selectorFlags) describe() string {
	if strings.TrimSpace(f.id) != "" {
		return f.id
	}
	return f.principal
}

func lookupKey(ctx context.Context, deps common.CommandDependencies, selector selectorFlags) (kerberos.Key, error) {
	keys, err := common.RequireKeys(deps)
	if err != nil {
		return kerberos.Key{}, err
	}

	if strings.TrimSpace(selector.id) != "" {
		return keys.Read(ctx, selector.id)
	}

	matches, err := keys.List(ctx, keysapi.PrincipalFilter(selector.principal))
	if err != nil {
		return kerberos.Key{}, err
	}

	switch len(matches) {
	case 0:
		return kerberos.Key{}, common.NotFoundError(
			fmt.Sprintf("no Kerberos key found for principal %q", selector.principal), nil)
	case 1:
		return matches[0], nil
	default:
		candidates := make([]string, 0, len(matches))
		for _, match := range matches {
			if match.ID != "" {
				candidates = append(candidates, match.ID)
				continue
			}
			candidates = append(candidates, match.PrincipalName())
		}
		return kerberos.Key{}, faults.NewTypedError(
			faults.ConflictError,
			fmt.Sprintf("found multiple Kerberos keys for principal %q: %s", selector.principal, strings.Join(candidates, ", ")),
			nil,
		)
	}
}

// resultOutputFormat keeps auto on the text renderer so mutations report a
// one-line summary by default.
func resultOutputFormat(flags *common.GlobalFlags) string {
	if flags == nil || flags.Output == "" {
		return common.OutputAuto
	}
	return flags.Output
}

func renderResultText(w io.Writer, result reconcile.Result) error {
	line := result.Msg
	if line == "" {
		line = "Kerberos key already matches the declared state"
	}
	if result.ID != "" {
		line = fmt.Sprintf("%s (%s)", line, result.ID)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func renderKeyText(w io.Writer, key kerberos.Key) error {
	fields, err := key.Fields()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s: %v\n", name, fields[name]); err != nil {
			return err
		}
	}
	return nil
}
