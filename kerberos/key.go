package kerberos

import "time"

// Key is a Kerberos encryption-key record as owned by the remote Keys
// service. Server-assigned fields use pointers so an absent value is
// distinguishable from an explicit zero.
type Key struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	Algorithm  *string        `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	Comment    *string        `json:"comment,omitempty" yaml:"comment,omitempty"`
	Domain     *string        `json:"domain,omitempty" yaml:"domain,omitempty"`
	Principal  *string        `json:"principal,omitempty" yaml:"principal,omitempty"`
	Tags       map[string]any `json:"tags,omitempty" yaml:"tags,omitempty"`
	UploadedAt *time.Time     `json:"uploaded_at,omitempty" yaml:"uploaded_at,omitempty"`
	Version    *int64         `json:"version,omitempty" yaml:"version,omitempty"`
}

// Fields serializes the record into a field map, dropping absent values so
// unset remote fields never participate in drift comparison or diff output.
func (k Key) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if k.ID != "" {
		fields["id"] = k.ID
	}
	if k.Algorithm != nil {
		fields["algorithm"] = *k.Algorithm
	}
	if k.Comment != nil {
		fields["comment"] = *k.Comment
	}
	if k.Domain != nil {
		fields["domain"] = *k.Domain
	}
	if k.Principal != nil {
		fields["principal"] = *k.Principal
	}
	if k.Tags != nil {
		fields["tags"] = k.Tags
	}
	if k.UploadedAt != nil {
		fields["uploaded_at"] = k.UploadedAt.UTC().Format(time.RFC3339Nano)
	}
	if k.Version != nil {
		fields["version"] = *k.Version
	}
	return NormalizeFieldMap(fields)
}

// PrincipalName returns the record's principal or an empty string.
func (k Key) PrincipalName() string {
	if k.Principal == nil {
		return ""
	}
	return *k.Principal
}
