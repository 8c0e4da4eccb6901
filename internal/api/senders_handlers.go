package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightlabs/portal-mailer/internal/mailer"
	"github.com/brightlabs/portal-mailer/internal/pkg/httputil"
	"github.com/brightlabs/portal-mailer/internal/sender"
)

type senderRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

func (h *Handlers) ListSenders(w http.ResponseWriter, r *http.Request) {
	senders, err := h.senders.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if senders == nil {
		senders = []sender.Sender{}
	}
	httputil.OK(w, map[string]any{"senders": senders})
}

func (h *Handlers) CreateSender(w http.ResponseWriter, r *http.Request) {
	var req senderRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		httputil.BadRequest(w, "a valid email is required")
		return
	}

	sd := &sender.Sender{Email: req.Email, Name: req.Name}
	if err := h.senders.Create(r.Context(), sd); err != nil {
		httputil.InternalError(w, err)
		return
	}
	// Creating as default reuses the transactional path so the uniqueness of
	// the default flag is preserved.
	if req.IsDefault {
		if err := h.senders.SetDefault(r.Context(), sd.ID); err != nil {
			httputil.InternalError(w, err)
			return
		}
		sd.IsDefault = true
	}
	httputil.Created(w, sd)
}

func (h *Handlers) DeleteSender(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "senderID"))
	if err != nil {
		httputil.BadRequest(w, "invalid sender id")
		return
	}
	if err := h.senders.Delete(r.Context(), id); err == sql.ErrNoRows {
		httputil.NotFound(w, "sender not found")
		return
	} else if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) SetDefaultSender(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "senderID"))
	if err != nil {
		httputil.BadRequest(w, "invalid sender id")
		return
	}
	if err := h.senders.SetDefault(r.Context(), id); err == sql.ErrNoRows {
		httputil.NotFound(w, "sender not found")
		return
	} else if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"default": id.String()})
}

// --- test send ---

// TestSend delivers a one-off message outside the automation job flow so an
// admin can verify provider credentials and sender configuration.
func (h *Handlers) TestSend(w http.ResponseWriter, r *http.Request) {
	var msg mailer.Message
	if !httputil.Decode(w, r, &msg) {
		return
	}
	if msg.To == "" || msg.HTML == "" {
		httputil.BadRequest(w, "to and html are required")
		return
	}

	result, err := h.mailer.Send(r.Context(), &msg)
	if err != nil {
		httputil.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	httputil.OK(w, result)
}
