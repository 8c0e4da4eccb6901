// Package automation maps application events to templated email deliveries
// and tracks each delivery attempt as a job with pending/completed/failed
// status and admin-initiated retry.
package automation

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the application event that fires automation rules.
type EventType string

const (
	EventSignup                EventType = "signup"
	EventPasswordReset         EventType = "password_reset"
	EventEmailVerification     EventType = "email_verification"
	EventProjectUpdate         EventType = "project_update"
	EventProjectCompleted      EventType = "project_completed"
	EventProjectMilestone      EventType = "project_milestone"
	EventContactFormSubmission EventType = "contact_form_submission"
	EventNewsletterWelcome     EventType = "newsletter_welcome"
	EventNewsletterBroadcast   EventType = "newsletter_broadcast"
	EventSystemNotification    EventType = "system_notification"
)

// EventTypes lists every known event type, in display order.
var EventTypes = []EventType{
	EventSignup,
	EventPasswordReset,
	EventEmailVerification,
	EventProjectUpdate,
	EventProjectCompleted,
	EventProjectMilestone,
	EventContactFormSubmission,
	EventNewsletterWelcome,
	EventNewsletterBroadcast,
	EventSystemNotification,
}

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	for _, known := range EventTypes {
		if e == known {
			return true
		}
	}
	return false
}

// JobStatus is the delivery state of an automation job.
type JobStatus string

const (
	// StatusPending is the initial state: the job is created and queued for
	// a dispatch attempt within the triggering request.
	StatusPending JobStatus = "pending"
	// StatusCompleted is terminal. A completed job is never retried.
	StatusCompleted JobStatus = "completed"
	// StatusFailed jobs can be returned to pending by an admin retry.
	StatusFailed JobStatus = "failed"
)

// Template is a stored email template. Subject and HTML carry {variable}
// placeholders filled at render time.
type Template struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rule maps one event type to one template. Only active rules fire.
type Rule struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	EventType  EventType `json:"event_type"`
	TemplateID uuid.UUID `json:"template_id"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Job is one tracked delivery attempt of one rendered template to one
// recipient. The rendered subject and body are stored on the job so a retry
// re-sends exactly what the original attempt would have sent.
type Job struct {
	ID             uuid.UUID  `json:"id"`
	RuleID         uuid.UUID  `json:"rule_id"`
	EventType      EventType  `json:"event_type"`
	RecipientEmail string     `json:"recipient_email"`
	RecipientName  string     `json:"recipient_name,omitempty"`
	Subject        string     `json:"subject"`
	HTML           string     `json:"-"`
	Status         JobStatus  `json:"status"`
	RetryCount     int        `json:"retry_count"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
}

// Stats is the read-side aggregation over jobs. SuccessRate is
// round(completed/total*100), or 0 when there are no jobs.
type Stats struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Failed      int `json:"failed"`
	Pending     int `json:"pending"`
	SuccessRate int `json:"success_rate"`
}
