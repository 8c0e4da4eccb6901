package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightlabs/portal-mailer/internal/automation"
	"github.com/brightlabs/portal-mailer/internal/pkg/httputil"
)

type templateRequest struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.ListTemplates(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if templates == nil {
		templates = []automation.Template{}
	}
	httputil.OK(w, map[string]any{"templates": templates})
}

func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.BadRequest(w, "invalid template id")
		return
	}
	tmpl, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if tmpl == nil {
		httputil.NotFound(w, "template not found")
		return
	}
	httputil.OK(w, tmpl)
}

func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Subject == "" || req.HTML == "" {
		httputil.BadRequest(w, "name, subject and html are required")
		return
	}

	tmpl := &automation.Template{Name: req.Name, Subject: req.Subject, HTML: req.HTML}
	if err := h.store.CreateTemplate(r.Context(), tmpl); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, tmpl)
}

func (h *Handlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.BadRequest(w, "invalid template id")
		return
	}
	existing, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if existing == nil {
		httputil.NotFound(w, "template not found")
		return
	}

	var req templateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Subject != "" {
		existing.Subject = req.Subject
	}
	if req.HTML != "" {
		existing.HTML = req.HTML
	}

	if err := h.store.UpdateTemplate(r.Context(), existing); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, existing)
}

func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.BadRequest(w, "invalid template id")
		return
	}
	if err := h.store.DeleteTemplate(r.Context(), id); err == sql.ErrNoRows {
		httputil.NotFound(w, "template not found")
		return
	} else if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
