package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/brightlabs/portal-mailer/internal/automation"
)

func TestCreateRuleRejectsMissingTemplate(t *testing.T) {
	router, mock, cleanup := newTestRouter(t, &stubProvider{})
	defer cleanup()

	tmplID := uuid.New()
	mock.ExpectQuery("SELECT id, name, subject, html").
		WithArgs(tmplID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "subject", "html", "created_at", "updated_at",
		}))

	rec := doRequest(t, router, http.MethodPost, "/api/automation/rules",
		`{"name":"welcome","event_type":"signup","template_id":"`+tmplID.String()+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 when template does not exist", rec.Code)
	}
}

func TestCreateRuleDefaultsActive(t *testing.T) {
	router, mock, cleanup := newTestRouter(t, &stubProvider{})
	defer cleanup()

	now := time.Now()
	tmplID := uuid.New()
	mock.ExpectQuery("SELECT id, name, subject, html").
		WithArgs(tmplID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "subject", "html", "created_at", "updated_at",
		}).AddRow(tmplID, "welcome", "s", "h", now, now))
	mock.ExpectQuery("INSERT INTO automation_rules").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	rec := doRequest(t, router, http.MethodPost, "/api/automation/rules",
		`{"name":"welcome","event_type":"signup","template_id":"`+tmplID.String()+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var rule automation.Rule
	if err := json.NewDecoder(rec.Body).Decode(&rule); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rule.Active {
		t.Error("rules must be active by default")
	}
}

func TestUpdateRuleNotFound(t *testing.T) {
	router, mock, cleanup := newTestRouter(t, &stubProvider{})
	defer cleanup()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, name, event_type, template_id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "event_type", "template_id", "active", "created_at", "updated_at",
		}))

	rec := doRequest(t, router, http.MethodPut, "/api/automation/rules/"+id.String(),
		`{"active":false}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteTemplateNotFound(t *testing.T) {
	router, mock, cleanup := newTestRouter(t, &stubProvider{})
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec("DELETE FROM email_templates").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doRequest(t, router, http.MethodDelete, "/api/automation/templates/"+id.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
