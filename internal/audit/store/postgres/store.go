package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"recordgate/internal/audit"
	"recordgate/pkg/platform/sentinel"
)

// Store persists audit rows to the audit_events table. The table is append-only
// from this service's point of view; occurred_at comes from the column default.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert writes a single audit row. It deliberately ignores any transaction in
// flight for the request: an audit row must not roll back with the operation it
// describes.
func (s *Store) Insert(ctx context.Context, r audit.Record) error {
	query := `
		INSERT INTO audit_events (
			tenant_id, event_type, event_category,
			actor_id, actor_email, actor_role, actor_ip,
			target_type, target_id, target_name,
			action, result, changes, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb, $14::jsonb)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.TenantID,
		r.EventType,
		string(r.EventCategory),
		r.ActorID,
		r.ActorEmail,
		r.ActorRole,
		r.ActorIP,
		r.TargetType,
		r.TargetID,
		r.TargetName,
		r.Action,
		string(r.Result),
		jsonArg(r.Changes),
		jsonArg(r.Metadata),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", classify(err))
	}
	return nil
}

// ListByTenant returns up to limit rows for tenantID, newest first.
func (s *Store) ListByTenant(ctx context.Context, tenantID string, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT tenant_id, event_type, event_category,
			   actor_id, actor_email, actor_role, actor_ip,
			   target_type, target_id, target_name,
			   action, result, changes, metadata, occurred_at
		FROM audit_events
		WHERE tenant_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", classify(err))
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var (
			r                 audit.Record
			category, result  string
			changes, metadata []byte
		)
		err := rows.Scan(
			&r.TenantID,
			&r.EventType,
			&category,
			&r.ActorID,
			&r.ActorEmail,
			&r.ActorRole,
			&r.ActorIP,
			&r.TargetType,
			&r.TargetID,
			&r.TargetName,
			&r.Action,
			&result,
			&changes,
			&metadata,
			&r.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		r.EventCategory = audit.Category(category)
		r.Result = audit.Result(result)
		if changes != nil {
			r.Changes = json.RawMessage(changes)
		}
		if metadata != nil {
			r.Metadata = json.RawMessage(metadata)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return records, nil
}

// jsonArg passes JSON as text so the ::jsonb cast applies; nil becomes NULL.
func jsonArg(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}

// classify maps driver failures onto sentinel errors while keeping the
// original error in the chain.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			return fmt.Errorf("%w: %s: %w", sentinel.ErrInvalidState, pqErr.Code.Name(), err)
		case "08", "53", "57":
			return fmt.Errorf("%w: %s: %w", sentinel.ErrUnavailable, pqErr.Code.Name(), err)
		}
		return err
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return err
}
