package keysapi

import "strings"

var filterValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// PrincipalFilter builds the natural-key lookup filter for a principal.
func PrincipalFilter(principal string) string {
	return EqualityFilter("principal", principal)
}

// EqualityFilter renders a single-quoted equality predicate in the service's
// filter syntax, escaping backslashes and quotes in the value.
func EqualityFilter(field string, value string) string {
	return field + "=='" + filterValueEscaper.Replace(value) + "'"
}
