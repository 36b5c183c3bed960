package reconcile

type action string

const (
	actionCreate action = "create"
	actionUpdate action = "update"
	actionDelete action = "delete"
	actionNone   action = "none"
)

// Result is the reconciliation report for one invocation. Object and Diff
// carry the serialized record the action returned; both stay empty for no-op
// and delete, and Diff is omitted entirely on dry runs.
type Result struct {
	Changed bool           `json:"changed" yaml:"changed"`
	Object  map[string]any `json:"object" yaml:"object"`
	ID      string         `json:"id,omitempty" yaml:"id,omitempty"`
	Msg     string         `json:"msg,omitempty" yaml:"msg,omitempty"`
	Diff    *Diff          `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Diff reports the remote record before the action and the record the action
// returned.
type Diff struct {
	Before map[string]any `json:"before" yaml:"before"`
	After  map[string]any `json:"after" yaml:"after"`
}

func actionMessage(planned action) string {
	switch planned {
	case actionCreate:
		return "Kerberos key created"
	case actionUpdate:
		return "Kerberos key updated"
	case actionDelete:
		return "Kerberos key deleted"
	default:
		return ""
	}
}
