package audit

import (
	"encoding/json"
	"time"
)

// Outcome is the caller-facing result vocabulary of an attempted action.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomePartial   Outcome = "partial"
	OutcomeConflict  Outcome = "conflict"
	OutcomeForbidden Outcome = "forbidden"
	OutcomeNotFound  Outcome = "not_found"
)

// Result is the persisted, intentionally coarser form of Outcome. The indexed
// result column only ever holds these three values; finer detail lives in the
// reason and metadata.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultPartial Result = "partial"
)

var outcomeResults = map[Outcome]Result{
	OutcomeSuccess:   ResultSuccess,
	OutcomeFailure:   ResultFailure,
	OutcomePartial:   ResultPartial,
	OutcomeConflict:  ResultFailure,
	OutcomeForbidden: ResultFailure,
	OutcomeNotFound:  ResultFailure,
}

// Result maps the outcome onto the persisted result. Unknown outcomes are
// recorded as failures.
func (o Outcome) Result() Result {
	if r, ok := outcomeResults[o]; ok {
		return r
	}
	return ResultFailure
}

// Category classifies an event for retention and review routing.
type Category string

const (
	CategoryData     Category = "data"
	CategorySecurity Category = "security"
	CategoryAccess   Category = "access"
	CategoryAdmin    Category = "admin"
)

// Decision is the policy decision trace attached to an event.
type Decision string

const (
	DecisionAllow         Decision = "allow"
	DecisionDeny          Decision = "deny"
	DecisionNotApplicable Decision = "n/a"
)

// DecisionFrom converts a policy check result into its trace value.
func DecisionFrom(allowed bool) Decision {
	if allowed {
		return DecisionAllow
	}
	return DecisionDeny
}

// Event is what callers hand to the recorder: one per action attempt. Empty
// strings mean "not provided" and become NULL (or a default) when persisted.
//
// Target fields carry identifiers and labels only. Changes is opaque to the
// audit pipeline and is not scrubbed; callers must keep raw PII out of it.
type Event struct {
	TenantID string

	ActorID    string
	ActorEmail string
	ActorRole  string
	ActorIP    string

	Action        string
	Resource      string
	EventCategory Category

	TargetID   string
	TargetType string
	TargetName string

	Outcome  Outcome
	Decision Decision
	Reason   string

	Changes any

	RequestID      string
	IdempotencyKey string

	SchemaVersion string
	PolicyVersion string
}

// Record is the storage-ready row produced by the normalizer. Nil pointers and
// nil raw messages are written as NULL. OccurredAt is assigned by the sink.
type Record struct {
	TenantID      string
	EventType     string
	EventCategory Category
	ActorID       *string
	ActorEmail    *string
	ActorRole     string
	ActorIP       *string
	TargetType    string
	TargetID      *string
	TargetName    *string
	Action        string
	Result        Result
	Changes       json.RawMessage
	Metadata      json.RawMessage
	OccurredAt    time.Time
}
