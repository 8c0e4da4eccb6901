package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightlabs/portal-mailer/internal/automation"
	"github.com/brightlabs/portal-mailer/internal/mailer"
	"github.com/brightlabs/portal-mailer/internal/pkg/httputil"
	"github.com/brightlabs/portal-mailer/internal/sender"
)

// Handlers holds the service dependencies for all HTTP endpoints.
type Handlers struct {
	automation *automation.Service
	store      *automation.Store
	senders    *sender.Store
	mailer     *mailer.Mailer
}

// NewHandlers creates the handler set.
func NewHandlers(svc *automation.Service, store *automation.Store, senders *sender.Store, m *mailer.Mailer) *Handlers {
	return &Handlers{automation: svc, store: store, senders: senders, mailer: m}
}

// HealthCheck reports process liveness and the active provider.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status":   "ok",
		"provider": h.mailer.Provider(),
	})
}

// --- events ---

type eventRequest struct {
	EventType      string         `json:"event_type"`
	RecipientEmail string         `json:"recipient_email"`
	RecipientName  string         `json:"recipient_name"`
	Variables      map[string]any `json:"variables"`
}

// PostEvent fires the automation rules for an application event. The
// response carries the jobs created, each already in a terminal state.
func (h *Handlers) PostEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	event := automation.EventType(req.EventType)
	if !event.Valid() {
		httputil.BadRequest(w, "unknown event_type: "+req.EventType)
		return
	}
	if req.RecipientEmail == "" {
		httputil.BadRequest(w, "recipient_email is required")
		return
	}

	jobs, err := h.automation.Trigger(r.Context(), event, req.RecipientEmail, req.RecipientName, req.Variables)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if jobs == nil {
		jobs = []automation.Job{}
	}
	httputil.Created(w, map[string]any{"jobs": jobs})
}

// --- jobs ---

// ListJobs returns one page of automation jobs, newest first, optionally
// filtered by status.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	params := ParsePagination(r, 20, 100)

	status := automation.JobStatus(r.URL.Query().Get("status"))
	switch status {
	case "", automation.StatusPending, automation.StatusCompleted, automation.StatusFailed:
	default:
		httputil.BadRequest(w, "invalid status filter: "+string(status))
		return
	}

	jobs, total, err := h.store.ListJobs(r.Context(), params.Page, params.Limit, status)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if jobs == nil {
		jobs = []automation.Job{}
	}
	httputil.OK(w, map[string]any{
		"jobs":       jobs,
		"pagination": NewPaginationMeta(params, total),
	})
}

// RetryJob returns a failed job to pending and re-attempts delivery.
func (h *Handlers) RetryJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		httputil.BadRequest(w, "invalid job id")
		return
	}

	job, err := h.automation.Retry(r.Context(), id)
	if err == automation.ErrNotFailed {
		httputil.Conflict(w, "only failed jobs can be retried")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if job == nil {
		httputil.NotFound(w, "job not found")
		return
	}
	httputil.OK(w, job)
}

// GetStats returns the job status aggregation.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.automation.Stats(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, stats)
}
