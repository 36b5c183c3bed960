package key

import (
	"context"
	"fmt"
	"io"
	"maps"
	"reflect"
	"sort"
	"strings"

	"github.com/crmarques/krbctl/faults"
	"github.com/crmarques/krbctl/internal/cli/common"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/spf13/cobra"
)

// diffPreview reports the action apply would take without issuing any
// remote write.
type diffPreview struct {
	Action  string         `json:"action" yaml:"action"`
	Changed bool           `json:"changed" yaml:"changed"`
	Before  map[string]any `json:"before" yaml:"before"`
	After   map[string]any `json:"after" yaml:"after"`
}

func newDiffCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var manifest string
	var flags specFlags

	command := &cobra.Command{
		Use:   "diff",
		Short: "Show what apply would change",
		Long: strings.Join([]string{
			"Diff compares the declared manifest against the remote key record and reports the action apply would take.",
			"The manifest comes from --manifest <path|-> or stdin; a set flag overrides the matching manifest field.",
			"No remote write is ever issued.",
		}, " "),
		Example: strings.Join([]string{
			"  krbctl key diff --manifest key.yaml",
			"  cat key.yaml | krbctl key diff",
			"  krbctl key diff --manifest key.yaml --state absent",
			"  krbctl key diff --manifest key.yaml --output json",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			keys, err := common.RequireKeys(deps)
			if err != nil {
				return err
			}

			spec, err := common.DecodeManifest(command, manifest)
			if err != nil {
				return err
			}
			spec, err = overlaySpecFlags(command, spec, flags)
			if err != nil {
				return err
			}
			if err := spec.Validate(); err != nil {
				return err
			}

			preview, err := buildDiffPreview(command.Context(), keys, spec)
			if err != nil {
				return err
			}

			return common.WriteOutput(command, common.ResolveRecordOutputFormat(globalFlags), preview, renderDiffText)
		},
	}

	common.BindManifestFlag(command, &manifest)
	bindSpecFlags(command, &flags)

	return command
}

func buildDiffPreview(ctx context.Context, keys keysapi.Client, spec kerberos.Spec) (diffPreview, error) {
	payload, err := spec.DesiredPayload()
	if err != nil {
		return diffPreview{}, err
	}

	existing, found, err := resolveDeclaredTarget(ctx, keys, spec)
	if err != nil {
		return diffPreview{}, err
	}

	switch spec.TargetState() {
	case kerberos.StateAbsent:
		if !found {
			return diffPreview{Action: "none", Before: map[string]any{}, After: map[string]any{}}, nil
		}
		return diffPreview{Action: "delete", Changed: true, Before: existing, After: map[string]any{}}, nil
	default:
		if !found {
			return diffPreview{Action: "create", Changed: true, Before: map[string]any{}, After: payload}, nil
		}
		if !kerberos.PayloadChanged(payload, existing) {
			return diffPreview{Action: "none", Before: existing, After: existing}, nil
		}

		after := maps.Clone(existing)
		maps.Copy(after, payload)
		return diffPreview{Action: "update", Changed: true, Before: existing, After: after}, nil
	}
}

// resolveDeclaredTarget mirrors the apply-time lookup: by id when declared,
// otherwise by principal with an exactly-one match requirement. A missing
// id-addressed record is tolerated only for an absent target.
func resolveDeclaredTarget(ctx context.Context, keys keysapi.Client, spec kerberos.Spec) (map[string]any, bool, error) {
	if spec.ID != "" {
		existing, err := keys.Read(ctx, spec.ID)
		if err != nil {
			if faults.IsCategory(err, faults.NotFoundError) && spec.TargetState() == kerberos.StateAbsent {
				return nil, false, nil
			}
			return nil, false, err
		}
		fields, err := existing.Fields()
		if err != nil {
			return nil, false, err
		}
		return fields, true, nil
	}

	matches, err := keys.List(ctx, keysapi.PrincipalFilter(spec.Principal))
	if err != nil {
		return nil, false, err
	}

	switch len(matches) {
	case 0:
		return nil, false, nil
	case 1:
		fields, err := matches[0].Fields()
		if err != nil {
			return nil, false, err
		}
		return fields, true, nil
	default:
		candidates := make([]string, 0, len(matches))
		for _, match := range matches {
			if match.ID != "" {
				candidates = append(candidates, match.ID)
				continue
			}
			candidates = append(candidates, match.PrincipalName())
		}
		return nil, false, faults.NewTypedError(
			faults.ConflictError,
			fmt.Sprintf("found multiple Kerberos keys for principal %q: %s", spec.Principal, strings.Join(candidates, ", ")),
			nil,
		)
	}
}

func renderDiffText(w io.Writer, preview diffPreview) error {
	if !preview.Changed {
		_, err := fmt.Fprintln(w, "No drift detected")
		return err
	}

	if _, err := fmt.Fprintf(w, "Planned action: %s\n", preview.Action); err != nil {
		return err
	}
	for _, line := range driftedFieldLines(preview) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func driftedFieldLines(preview diffPreview) []string {
	switch preview.Action {
	case "create":
		lines := make([]string, 0, len(preview.After))
		for _, name := range sortedFieldNames(preview.After) {
			lines = append(lines, fmt.Sprintf("+ %s: %v", name, preview.After[name]))
		}
		return lines
	case "delete":
		lines := make([]string, 0, len(preview.Before))
		for _, name := range sortedFieldNames(preview.Before) {
			lines = append(lines, fmt.Sprintf("- %s: %v", name, preview.Before[name]))
		}
		return lines
	case "update":
		lines := make([]string, 0, len(preview.After))
		for _, name := range sortedFieldNames(preview.After) {
			before, existed := preview.Before[name]
			after := preview.After[name]
			if existed && reflect.DeepEqual(before, after) {
				continue
			}
			if existed {
				lines = append(lines, fmt.Sprintf("~ %s: %v -> %v", name, before, after))
				continue
			}
			lines = append(lines, fmt.Sprintf("+ %s: %v", name, after))
		}
		return lines
	default:
		return nil
	}
}

func sortedFieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
