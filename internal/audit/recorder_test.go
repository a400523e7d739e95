package audit_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"recordgate/internal/audit"
	"recordgate/internal/audit/store/memory"
	"recordgate/pkg/platform/sentinel"
)

// Record is synchronous; nothing it does may outlive the call.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingSink struct {
	err error
}

func (s failingSink) Insert(context.Context, audit.Record) error { return s.err }

type panickingSink struct{}

func (panickingSink) Insert(context.Context, audit.Record) error { panic("driver exploded") }

func forbiddenDelete() audit.Event {
	return audit.Event{
		TenantID:  "t1",
		ActorRole: "admin",
		Action:    "delete",
		Resource:  "contacts",
		Outcome:   audit.OutcomeForbidden,
		Decision:  audit.DecisionDeny,
		Reason:    "policy_denied",
		RequestID: "req-1",
	}
}

func TestNewRecorder_RequiresSink(t *testing.T) {
	_, err := audit.NewRecorder(nil, audit.Defaults{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit sink is required")
}

func TestRecorder_PersistsNormalizedRow(t *testing.T) {
	store := memory.NewInMemoryStore()
	reg := prometheus.NewRegistry()
	metrics := audit.NewMetrics(reg)
	r, err := audit.NewRecorder(store, audit.Defaults{SchemaVersion: "1", PolicyVersion: "p1"}, audit.WithMetrics(metrics))
	require.NoError(t, err)

	r.Record(context.Background(), forbiddenDelete())

	rows := store.All()
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "t1", row.TenantID)
	assert.Equal(t, audit.ResultFailure, row.Result)
	assert.Equal(t, "contacts", row.TargetType)
	assert.False(t, row.OccurredAt.IsZero(), "sink assigns the occurrence time")
	assert.JSONEq(t,
		`{"request_id":"req-1","decision":"deny","reason":"policy_denied","schema_version":"1","policy_version":"p1"}`,
		string(row.Metadata))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Written.WithLabelValues("failure")))
}

func TestRecorder_SwallowsSinkFailures(t *testing.T) {
	tests := []struct {
		name   string
		sink   audit.Sink
		reason string
	}{
		{"connection lost", failingSink{fmt.Errorf("insert audit event: %w", sentinel.ErrUnavailable)}, "unavailable"},
		{"constraint violation", failingSink{fmt.Errorf("insert audit event: %w", sentinel.ErrInvalidState)}, "rejected"},
		{"unclassified error", failingSink{errors.New("boom")}, "persist"},
		{"panicking sink", panickingSink{}, "persist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			metrics := audit.NewMetrics(prometheus.NewRegistry())
			r, err := audit.NewRecorder(tt.sink, audit.Defaults{},
				audit.WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
				audit.WithMetrics(metrics),
			)
			require.NoError(t, err)

			assert.NotPanics(t, func() {
				r.Record(context.Background(), forbiddenDelete())
			})

			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues(tt.reason)))
			assert.Contains(t, logs.String(), "audit write failed")
			assert.Contains(t, logs.String(), `"tenant_id":"t1"`)
		})
	}
}

func TestRecorder_DropsInvalidEvents(t *testing.T) {
	store := memory.NewInMemoryStore()
	metrics := audit.NewMetrics(prometheus.NewRegistry())
	r, err := audit.NewRecorder(store, audit.Defaults{}, audit.WithMetrics(metrics))
	require.NoError(t, err)

	e := forbiddenDelete()
	e.TenantID = ""
	r.Record(context.Background(), e)

	assert.Empty(t, store.All(), "an event without a tenant is never persisted")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues("invalid")))
}

func TestRecorder_CompletesAfterCallerCancels(t *testing.T) {
	store := memory.NewInMemoryStore()
	r, err := audit.NewRecorder(store, audit.Defaults{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Record(ctx, forbiddenDelete())

	assert.Len(t, store.All(), 1)
}

func TestRecorder_ConcurrentCallers(t *testing.T) {
	store := memory.NewInMemoryStore()
	r, err := audit.NewRecorder(store, audit.Defaults{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := forbiddenDelete()
			e.TenantID = fmt.Sprintf("t%d", i%5)
			r.Record(context.Background(), e)
		}()
	}
	wg.Wait()

	assert.Len(t, store.All(), 50)
	perTenant, err := store.ListByTenant(context.Background(), "t0", 0)
	require.NoError(t, err)
	assert.Len(t, perTenant, 10)
}
