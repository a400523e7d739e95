package audit

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidEvent marks events missing a field every audit row requires.
	ErrInvalidEvent = errors.New("invalid audit event")
	// ErrEncode marks events whose changes or metadata cannot be serialized.
	ErrEncode = errors.New("encode audit event")
)

// Defaults are the process-wide version tags applied when an event does not
// carry its own. Empty values are treated as not configured.
type Defaults struct {
	SchemaVersion string
	PolicyVersion string
}

// Normalizer turns an Event into a Record. It holds no state beyond the
// defaults it was built with.
type Normalizer struct {
	defaults Defaults
}

// NewNormalizer creates a normalizer with fixed default version tags.
func NewNormalizer(defaults Defaults) Normalizer {
	return Normalizer{defaults: defaults}
}

// Normalize validates e and maps it onto the fixed audit row shape.
func (n Normalizer) Normalize(e Event) (Record, error) {
	if err := validate(e); err != nil {
		return Record{}, err
	}

	category := e.EventCategory
	if category == "" {
		category = CategoryData
	}
	targetType := e.TargetType
	if targetType == "" {
		targetType = e.Resource
	}

	changes, err := encodeChanges(e.Changes)
	if err != nil {
		return Record{}, err
	}
	metadata, err := n.metadataFor(e).encode()
	if err != nil {
		return Record{}, err
	}

	return Record{
		TenantID:      e.TenantID,
		EventType:     e.Resource + "." + e.Action,
		EventCategory: category,
		ActorID:       nullable(e.ActorID),
		ActorEmail:    nullable(e.ActorEmail),
		ActorRole:     e.ActorRole,
		ActorIP:       nullable(e.ActorIP),
		TargetType:    targetType,
		TargetID:      nullable(e.TargetID),
		TargetName:    nullable(e.TargetName),
		Action:        e.Action,
		Result:        e.Outcome.Result(),
		Changes:       changes,
		Metadata:      metadata,
	}, nil
}

func validate(e Event) error {
	switch {
	case e.TenantID == "":
		return fmt.Errorf("%w: tenant id is required", ErrInvalidEvent)
	case e.ActorRole == "":
		return fmt.Errorf("%w: actor role is required", ErrInvalidEvent)
	case e.Action == "":
		return fmt.Errorf("%w: action is required", ErrInvalidEvent)
	case e.Resource == "":
		return fmt.Errorf("%w: resource is required", ErrInvalidEvent)
	}
	return nil
}

func (n Normalizer) metadataFor(e Event) *metadataBuilder {
	b := &metadataBuilder{}
	b.set(&b.fields.RequestID, e.RequestID)
	b.set(&b.fields.IdempotencyKey, e.IdempotencyKey)
	b.set(&b.fields.Decision, string(e.Decision))
	b.set(&b.fields.Reason, e.Reason)
	b.set(&b.fields.SchemaVersion, firstNonEmpty(e.SchemaVersion, n.defaults.SchemaVersion))
	b.set(&b.fields.PolicyVersion, firstNonEmpty(e.PolicyVersion, n.defaults.PolicyVersion))
	return b
}

type metadataFields struct {
	RequestID      string `json:"request_id,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	Decision       string `json:"decision,omitempty"`
	Reason         string `json:"reason,omitempty"`
	SchemaVersion  string `json:"schema_version,omitempty"`
	PolicyVersion  string `json:"policy_version,omitempty"`
}

// metadataBuilder tracks whether any field was set so that "no metadata"
// encodes as NULL rather than {}.
type metadataBuilder struct {
	fields  metadataFields
	touched bool
}

func (b *metadataBuilder) set(dst *string, v string) {
	if v == "" {
		return
	}
	*dst = v
	b.touched = true
}

func (b *metadataBuilder) encode() (json.RawMessage, error) {
	if !b.touched {
		return nil, nil
	}
	data, err := json.Marshal(b.fields)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", ErrEncode, err)
	}
	return data, nil
}

func encodeChanges(changes any) (json.RawMessage, error) {
	switch c := changes.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(c) == 0 {
			return nil, nil
		}
		if !json.Valid(c) {
			return nil, fmt.Errorf("%w: changes are not valid JSON", ErrEncode)
		}
		return c, nil
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("%w: changes: %v", ErrEncode, err)
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
