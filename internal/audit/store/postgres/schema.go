package postgres

import _ "embed"

// Schema is the DDL for the audit_events table. Applying it is the job of the
// deployment's migration tooling; integration tests apply it directly.
//
//go:embed schema.sql
var Schema string
