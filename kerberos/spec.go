package kerberos

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/crmarques/krbctl/faults"
)

type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

const maxCommentLength = 1024

// payloadExcludedFields are declared options that select lifecycle or
// identity and therefore never reach the remote payload.
var payloadExcludedFields = map[string]struct{}{
	"id":    {},
	"state": {},
}

// Spec is the declared state for a single Kerberos key record. Pointer and
// map fields distinguish "not declared" from "declared empty": only declared
// fields participate in the desired payload.
type Spec struct {
	ID        string         `yaml:"id,omitempty" json:"id,omitempty"`
	State     State          `yaml:"state,omitempty" json:"state,omitempty"`
	Principal string         `yaml:"principal,omitempty" json:"principal,omitempty"`
	Comment   *string        `yaml:"comment,omitempty" json:"comment,omitempty"`
	Tags      map[string]any `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// TargetState returns the declared lifecycle state, defaulting to present.
func (s Spec) TargetState() State {
	if s.State == "" {
		return StatePresent
	}
	return s.State
}

func (s Spec) Validate() error {
	switch s.TargetState() {
	case StatePresent, StateAbsent:
	default:
		return validationError(fmt.Sprintf("state must be %q or %q, got %q", StatePresent, StateAbsent, s.State), nil)
	}

	if s.Comment != nil && utf8.RuneCountInString(*s.Comment) > maxCommentLength {
		return validationError(fmt.Sprintf("comment must be at most %d characters", maxCommentLength), nil)
	}

	if strings.TrimSpace(s.ID) == "" && strings.TrimSpace(s.Principal) == "" {
		return validationError("either id or principal must be declared", nil)
	}

	if _, err := s.DesiredPayload(); err != nil {
		return err
	}
	return nil
}

// DesiredPayload builds the remote payload from every declared field except
// the names in payloadExcludedFields. Absent fields stay out of the payload;
// a declared empty value stays in (absence is not an explicit clear).
func (s Spec) DesiredPayload() (map[string]any, error) {
	declared := s.declaredFields()
	for field := range payloadExcludedFields {
		delete(declared, field)
	}
	return NormalizeFieldMap(declared)
}

func (s Spec) declaredFields() map[string]any {
	declared := map[string]any{}
	if s.ID != "" {
		declared["id"] = s.ID
	}
	if s.State != "" {
		declared["state"] = string(s.State)
	}
	if s.Principal != "" {
		declared["principal"] = s.Principal
	}
	if s.Comment != nil {
		declared["comment"] = *s.Comment
	}
	if s.Tags != nil {
		declared["tags"] = s.Tags
	}
	return declared
}

// DeclaredFieldNames lists the declared option names in stable order.
func (s Spec) DeclaredFieldNames() []string {
	declared := s.declaredFields()
	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
