package policy

// Action is the verb a caller wants to perform on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionList   Action = "list"
	ActionGet    Action = "get"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource is the kind of record an action targets.
type Resource string

const (
	ResourceContacts Resource = "contacts"
	ResourceNotes    Resource = "notes"
)

// ParseResource maps a path segment onto a known resource kind.
func ParseResource(s string) (Resource, bool) {
	switch Resource(s) {
	case ResourceContacts, ResourceNotes:
		return Resource(s), true
	default:
		return "", false
	}
}

// Actor is the caller context the PDP evaluates. The PDP treats it as opaque;
// Role is the only attribute every query carries.
type Actor struct {
	Role     string `json:"role"`
	ID       string `json:"id,omitempty"`
	TenantID string `json:"tenantId,omitempty"`
}

// Query is the input document sent to the PDP. It is a plain value.
type Query struct {
	Action   Action   `json:"action"`
	Resource Resource `json:"resource"`
	User     Actor    `json:"user"`
}
