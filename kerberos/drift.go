package kerberos

import "reflect"

// PayloadChanged reports whether any desired field is missing from, or deep
// unequal to, the existing record's serialized fields. Fields owned by the
// remote that the payload never declares do not count as drift. Both maps
// must already be normalized.
func PayloadChanged(desired map[string]any, existing map[string]any) bool {
	for field, desiredValue := range desired {
		existingValue, ok := existing[field]
		if !ok {
			return true
		}
		if !reflect.DeepEqual(desiredValue, existingValue) {
			return true
		}
	}
	return false
}
