// Package enforcement is the single entry point routes use to ask for a policy
// decision and to leave an audit trail of what happened.
package enforcement

//go:generate mockgen -source=guard.go -destination=mocks/mocks.go -package=mocks PolicyChecker,AuditRecorder

import (
	"context"
	"errors"

	"recordgate/internal/audit"
	"recordgate/internal/policy"
)

// ReasonPolicyDenied is the audit reason recorded when the PDP refuses an action.
const ReasonPolicyDenied = "policy_denied"

// ErrDenied is returned by Do when the policy check refused the action.
var ErrDenied = errors.New("action denied by policy")

// PolicyChecker asks the policy decision point for a verdict.
type PolicyChecker interface {
	Check(ctx context.Context, q policy.Query) bool
}

// AuditRecorder persists audit events without reporting failures.
type AuditRecorder interface {
	Record(ctx context.Context, e audit.Event)
}

// Guard composes policy enforcement and auditing.
type Guard struct {
	policy PolicyChecker
	audit  AuditRecorder
}

// New constructs a Guard.
func New(checker PolicyChecker, recorder AuditRecorder) (*Guard, error) {
	if checker == nil {
		return nil, errors.New("policy checker is required")
	}
	if recorder == nil {
		return nil, errors.New("audit recorder is required")
	}
	return &Guard{policy: checker, audit: recorder}, nil
}

// CheckPolicy reports whether q may proceed.
func (g *Guard) CheckPolicy(ctx context.Context, q policy.Query) bool {
	return g.policy.Check(ctx, q)
}

// RecordAudit writes e to the audit trail. It never fails from the caller's
// point of view.
func (g *Guard) RecordAudit(ctx context.Context, e audit.Event) {
	g.audit.Record(ctx, e)
}

// Do checks q, runs action when allowed, and audits the attempt on every path:
// denied, failed, succeeded or panicked. action may fill in the outcome, target
// and changes on the event it is handed; when it leaves Outcome empty the
// outcome is derived from its error.
func (g *Guard) Do(ctx context.Context, q policy.Query, e audit.Event, action func(context.Context, *audit.Event) error) (err error) {
	allowed := g.CheckPolicy(ctx, q)
	e.Decision = audit.DecisionFrom(allowed)
	if !allowed {
		e.Outcome = audit.OutcomeForbidden
		e.Reason = ReasonPolicyDenied
		g.RecordAudit(ctx, e)
		return ErrDenied
	}

	completed := false
	defer func() {
		if !completed {
			e.Outcome = audit.OutcomeFailure
			e.Reason = "handler_panic"
			g.RecordAudit(ctx, e)
		}
	}()

	err = action(ctx, &e)
	completed = true

	if e.Outcome == "" {
		e.Outcome = audit.OutcomeSuccess
		if err != nil {
			e.Outcome = audit.OutcomeFailure
		}
	}
	g.RecordAudit(ctx, e)
	return err
}
