// Package records serves tenant-scoped CRUD routes for the record kinds the
// policy knows about. Every route runs through the enforcement guard, so each
// attempt is policy-checked and audited.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"recordgate/internal/audit"
	"recordgate/internal/enforcement"
	"recordgate/internal/policy"
	"recordgate/pkg/platform/httputil"
	"recordgate/pkg/platform/sentinel"
	"recordgate/pkg/requestcontext"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	maxBodyBytes         = 64 << 10

	reasonInvalidRequest = "invalid_request"
)

var errInvalidRequest = errors.New("invalid request")

// Guard runs an action under policy enforcement and audits the attempt.
type Guard interface {
	Do(ctx context.Context, q policy.Query, e audit.Event, action func(context.Context, *audit.Event) error) error
}

// Handler exposes the /v1/{resource} routes.
type Handler struct {
	store  Store
	guard  Guard
	logger *slog.Logger
}

// NewHandler constructs a records handler.
func NewHandler(store Store, guard Guard, logger *slog.Logger) *Handler {
	return &Handler{store: store, guard: guard, logger: logger}
}

// Register mounts the record routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/{resource}", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)
		r.Patch("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

type createRequest struct {
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields"`
}

type updateRequest struct {
	Name   *string           `json:"name"`
	Fields map[string]string `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
}

// changeSet is the audit diff. It names the fields touched, never their values.
type changeSet struct {
	Name   bool     `json:"name,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// call is the per-request state shared by every route.
type call struct {
	tenantID string
	resource policy.Resource
	query    policy.Query
	event    audit.Event
}

// begin resolves the resource and caller. It writes the error response and
// returns false when the request cannot be evaluated at all.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request, action policy.Action) (call, bool) {
	ctx := r.Context()
	resource, ok := policy.ParseResource(chi.URLParam(r, "resource"))
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "unknown resource")
		return call{}, false
	}
	tenantID := requestcontext.TenantID(ctx)
	actor := requestcontext.ActorFrom(ctx)
	if tenantID == "" || actor.Role == "" {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "tenant and actor role are required")
		return call{}, false
	}

	category := audit.CategoryData
	if action == policy.ActionGet || action == policy.ActionList {
		category = audit.CategoryAccess
	}

	return call{
		tenantID: tenantID,
		resource: resource,
		query: policy.Query{
			Action:   action,
			Resource: resource,
			User:     policy.Actor{Role: actor.Role, ID: actor.ID, TenantID: tenantID},
		},
		event: audit.Event{
			TenantID:       tenantID,
			ActorID:        actor.ID,
			ActorEmail:     actor.Email,
			ActorRole:      actor.Role,
			ActorIP:        requestcontext.ClientIP(ctx),
			Action:         string(action),
			Resource:       string(resource),
			EventCategory:  category,
			TargetID:       chi.URLParam(r, "id"),
			RequestID:      requestcontext.RequestID(ctx),
			IdempotencyKey: r.Header.Get(headerIdempotencyKey),
		},
	}, true
}

// HandleCreate handles POST /v1/{resource}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.begin(w, r, policy.ActionCreate)
	if !ok {
		return
	}
	var created Record
	err := h.guard.Do(r.Context(), c.query, c.event, func(ctx context.Context, e *audit.Event) error {
		var req createRequest
		if err := decode(w, r, &req); err != nil {
			return invalid(e, err)
		}
		if strings.TrimSpace(req.Name) == "" {
			return invalid(e, errors.New("name is required"))
		}
		now := requestcontext.Now(ctx).UTC()
		created = Record{
			ID:        uuid.NewString(),
			TenantID:  c.tenantID,
			Resource:  string(c.resource),
			Name:      req.Name,
			Fields:    req.Fields,
			CreatedAt: now,
			UpdatedAt: now,
		}
		e.TargetID = created.ID
		e.TargetName = created.Name
		e.Changes = changeSet{Name: true, Fields: fieldNames(req.Fields)}
		return outcome(e, h.store.Create(ctx, created))
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /v1/{resource}.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	c, ok := h.begin(w, r, policy.ActionList)
	if !ok {
		return
	}
	var recs []Record
	err := h.guard.Do(r.Context(), c.query, c.event, func(ctx context.Context, e *audit.Event) error {
		var err error
		recs, err = h.store.List(ctx, c.tenantID, string(c.resource))
		return outcome(e, err)
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Records: recs})
}

// HandleGet handles GET /v1/{resource}/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, ok := h.begin(w, r, policy.ActionGet)
	if !ok {
		return
	}
	var rec Record
	err := h.guard.Do(r.Context(), c.query, c.event, func(ctx context.Context, e *audit.Event) error {
		var err error
		rec, err = h.store.Get(ctx, c.tenantID, string(c.resource), e.TargetID)
		if err == nil {
			e.TargetName = rec.Name
		}
		return outcome(e, err)
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleUpdate handles PATCH /v1/{resource}/{id}. Fields present in the body
// replace stored values; an empty string removes the field.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.begin(w, r, policy.ActionUpdate)
	if !ok {
		return
	}
	var rec Record
	err := h.guard.Do(r.Context(), c.query, c.event, func(ctx context.Context, e *audit.Event) error {
		var req updateRequest
		if err := decode(w, r, &req); err != nil {
			return invalid(e, err)
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			return invalid(e, errors.New("name cannot be empty"))
		}

		var err error
		rec, err = h.store.Get(ctx, c.tenantID, string(c.resource), e.TargetID)
		if err != nil {
			return outcome(e, err)
		}
		if req.Name != nil {
			rec.Name = *req.Name
		}
		if len(req.Fields) > 0 && rec.Fields == nil {
			rec.Fields = make(map[string]string, len(req.Fields))
		}
		for k, v := range req.Fields {
			if v == "" {
				delete(rec.Fields, k)
				continue
			}
			rec.Fields[k] = v
		}
		rec.UpdatedAt = requestcontext.Now(ctx).UTC()

		e.TargetName = rec.Name
		e.Changes = changeSet{Name: req.Name != nil, Fields: fieldNames(req.Fields)}
		return outcome(e, h.store.Update(ctx, rec))
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleDelete handles DELETE /v1/{resource}/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.begin(w, r, policy.ActionDelete)
	if !ok {
		return
	}
	err := h.guard.Do(r.Context(), c.query, c.event, func(ctx context.Context, e *audit.Event) error {
		return outcome(e, h.store.Delete(ctx, c.tenantID, string(c.resource), e.TargetID))
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func invalid(e *audit.Event, err error) error {
	e.Outcome = audit.OutcomeFailure
	e.Reason = reasonInvalidRequest
	return errors.Join(errInvalidRequest, err)
}

// outcome sets the audit outcome a store error implies and passes err through.
// The persisted result is coarse, so not_found and conflict also go in the reason.
func outcome(e *audit.Event, err error) error {
	switch {
	case err == nil:
		e.Outcome = audit.OutcomeSuccess
	case errors.Is(err, sentinel.ErrNotFound):
		e.Outcome = audit.OutcomeNotFound
		e.Reason = string(audit.OutcomeNotFound)
	case errors.Is(err, sentinel.ErrConflict):
		e.Outcome = audit.OutcomeConflict
		e.Reason = string(audit.OutcomeConflict)
	default:
		e.Outcome = audit.OutcomeFailure
	}
	return err
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, enforcement.ErrDenied):
		httputil.WriteError(w, http.StatusForbidden, httputil.CodeForbidden, "action not permitted")
	case errors.Is(err, errInvalidRequest):
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "invalid request body")
	case errors.Is(err, sentinel.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "record not found")
	case errors.Is(err, sentinel.ErrConflict):
		httputil.WriteError(w, http.StatusConflict, httputil.CodeConflict, "record already exists")
	default:
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "record operation failed",
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", requestcontext.TenantID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "")
	}
}
