package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightlabs/portal-mailer/internal/automation"
	"github.com/brightlabs/portal-mailer/internal/pkg/httputil"
)

type ruleRequest struct {
	Name       string `json:"name"`
	EventType  string `json:"event_type"`
	TemplateID string `json:"template_id"`
	Active     *bool  `json:"active"`
}

func (h *Handlers) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.ListRules(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if rules == nil {
		rules = []automation.Rule{}
	}
	httputil.OK(w, map[string]any{"rules": rules})
}

func (h *Handlers) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	event := automation.EventType(req.EventType)
	if !event.Valid() {
		httputil.BadRequest(w, "unknown event_type: "+req.EventType)
		return
	}
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		httputil.BadRequest(w, "invalid template_id")
		return
	}
	tmpl, err := h.store.GetTemplate(r.Context(), templateID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if tmpl == nil {
		httputil.BadRequest(w, "template_id references no template")
		return
	}

	rule := &automation.Rule{
		Name:       req.Name,
		EventType:  event,
		TemplateID: templateID,
		Active:     req.Active == nil || *req.Active,
	}
	if err := h.store.CreateRule(r.Context(), rule); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, rule)
}

func (h *Handlers) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ruleID"))
	if err != nil {
		httputil.BadRequest(w, "invalid rule id")
		return
	}
	existing, err := h.store.GetRule(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if existing == nil {
		httputil.NotFound(w, "rule not found")
		return
	}

	var req ruleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.EventType != "" {
		event := automation.EventType(req.EventType)
		if !event.Valid() {
			httputil.BadRequest(w, "unknown event_type: "+req.EventType)
			return
		}
		existing.EventType = event
	}
	if req.TemplateID != "" {
		templateID, err := uuid.Parse(req.TemplateID)
		if err != nil {
			httputil.BadRequest(w, "invalid template_id")
			return
		}
		existing.TemplateID = templateID
	}
	if req.Active != nil {
		existing.Active = *req.Active
	}

	if err := h.store.UpdateRule(r.Context(), existing); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, existing)
}

func (h *Handlers) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ruleID"))
	if err != nil {
		httputil.BadRequest(w, "invalid rule id")
		return
	}
	if err := h.store.DeleteRule(r.Context(), id); err == sql.ErrNoRows {
		httputil.NotFound(w, "rule not found")
		return
	} else if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
