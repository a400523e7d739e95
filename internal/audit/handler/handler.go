package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"recordgate/internal/audit"
	"recordgate/pkg/platform/httputil"
	"recordgate/pkg/requestcontext"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Reader defines the audit review operations the handler needs.
type Reader interface {
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]audit.Record, error)
}

// Handler exposes the audit trail for internal review.
type Handler struct {
	reader Reader
	logger *slog.Logger
}

// New constructs an audit review handler.
func New(reader Reader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// Register mounts audit review endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/internal/audit/events", h.HandleList)
}

type eventResponse struct {
	TenantID      string          `json:"tenantId"`
	EventType     string          `json:"eventType"`
	EventCategory string          `json:"eventCategory"`
	ActorID       *string         `json:"actorId"`
	ActorEmail    *string         `json:"actorEmail"`
	ActorRole     string          `json:"actorRole"`
	ActorIP       *string         `json:"actorIp"`
	TargetType    string          `json:"targetType"`
	TargetID      *string         `json:"targetId"`
	TargetName    *string         `json:"targetName"`
	Action        string          `json:"action"`
	Result        string          `json:"result"`
	Changes       json.RawMessage `json:"changes"`
	Metadata      json.RawMessage `json:"metadata"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

type listResponse struct {
	Events []eventResponse `json:"events"`
}

// HandleList handles GET /internal/audit/events?tenant_id=&limit=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "tenant_id is required")
		return
	}
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	records, err := h.reader.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list audit events failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"error", err,
		)
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "")
		return
	}

	resp := listResponse{Events: make([]eventResponse, 0, len(records))}
	for _, rec := range records {
		resp.Events = append(resp.Events, eventResponse{
			TenantID:      rec.TenantID,
			EventType:     rec.EventType,
			EventCategory: string(rec.EventCategory),
			ActorID:       rec.ActorID,
			ActorEmail:    rec.ActorEmail,
			ActorRole:     rec.ActorRole,
			ActorIP:       rec.ActorIP,
			TargetType:    rec.TargetType,
			TargetID:      rec.TargetID,
			TargetName:    rec.TargetName,
			Action:        rec.Action,
			Result:        string(rec.Result),
			Changes:       rec.Changes,
			Metadata:      rec.Metadata,
			OccurredAt:    rec.OccurredAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
