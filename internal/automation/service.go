package automation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brightlabs/portal-mailer/internal/mailer"
	"github.com/brightlabs/portal-mailer/internal/metrics"
	"github.com/brightlabs/portal-mailer/internal/pkg/logger"
)

// Sender dispatches one message. Satisfied by *mailer.Mailer.
type Sender interface {
	Send(ctx context.Context, msg *mailer.Message) (*mailer.DeliveryResult, error)
}

// Service translates fired events into jobs and drives each job through its
// status transitions. Each dispatch is a single attempt inside the
// triggering request; there is no background worker.
type Service struct {
	store    *Store
	renderer *Renderer
	sender   Sender
}

func NewService(store *Store, sender Sender) *Service {
	return &Service{
		store:    store,
		renderer: NewRenderer(),
		sender:   sender,
	}
}

// Trigger fires every active rule matching the event: renders the rule's
// template, creates a pending job, and attempts delivery. A dispatch failure
// marks the job failed and moves on; it never propagates past this layer.
// Rule and template problems skip that rule and continue with the rest.
func (s *Service) Trigger(ctx context.Context, event EventType, recipientEmail, recipientName string, vars map[string]any) ([]Job, error) {
	if !event.Valid() {
		return nil, fmt.Errorf("unknown event type %q", event)
	}
	if recipientEmail == "" {
		return nil, fmt.Errorf("recipient email is required")
	}

	rules, err := s.store.ListActiveRulesByEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("list rules for %s: %w", event, err)
	}

	bindings := map[string]any{
		"recipient_email": recipientEmail,
		"recipient_name":  recipientName,
	}
	for k, v := range vars {
		bindings[k] = v
	}

	var jobs []Job
	for _, rule := range rules {
		tmpl, err := s.store.GetTemplate(ctx, rule.TemplateID)
		if err != nil || tmpl == nil {
			logger.Error("rule references missing template, skipping",
				"rule_id", rule.ID, "template_id", rule.TemplateID, "error", err)
			continue
		}

		subject, html, err := s.renderer.RenderTemplate(tmpl, bindings)
		if err != nil {
			logger.Error("template render failed, skipping rule",
				"rule_id", rule.ID, "template", tmpl.Name, "error", err)
			continue
		}

		job := &Job{
			RuleID:         rule.ID,
			EventType:      event,
			RecipientEmail: recipientEmail,
			RecipientName:  recipientName,
			Subject:        subject,
			HTML:           html,
		}
		if err := s.store.CreateJob(ctx, job); err != nil {
			logger.Error("create job failed", "rule_id", rule.ID, "error", err)
			continue
		}

		s.dispatch(ctx, job)
		jobs = append(jobs, *job)
	}

	return jobs, nil
}

// Retry returns a failed job to pending and re-attempts delivery. The
// conditional store update means a concurrent duplicate retry loses cleanly
// with ErrNotFailed instead of double-incrementing the counter.
func (s *Service) Retry(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	if err := s.store.MarkPendingForRetry(ctx, jobID); err != nil {
		return nil, err
	}
	metrics.RetriesTotal.Inc()

	job.Status = StatusPending
	job.RetryCount++
	job.ErrorMessage = nil
	job.SentAt = nil

	s.dispatch(ctx, job)
	return job, nil
}

// Stats returns the job status aggregation.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.JobStats(ctx)
}

// dispatch performs one delivery attempt for a pending job and records the
// resulting terminal state on the job row and on the in-memory job.
func (s *Service) dispatch(ctx context.Context, job *Job) {
	result, err := s.sender.Send(ctx, &mailer.Message{
		To:      job.RecipientEmail,
		ToName:  job.RecipientName,
		Subject: job.Subject,
		HTML:    job.HTML,
	})
	if err != nil {
		errMsg := err.Error()
		if dbErr := s.store.MarkFailed(ctx, job.ID, errMsg); dbErr != nil {
			logger.Error("record job failure", "job_id", job.ID, "error", dbErr)
		}
		job.Status = StatusFailed
		job.ErrorMessage = &errMsg
		metrics.JobsTotal.WithLabelValues(string(job.EventType), string(StatusFailed)).Inc()
		logger.Warn("automation job failed",
			"job_id", job.ID, "event", job.EventType,
			"recipient", job.RecipientEmail, "error", err)
		return
	}

	if dbErr := s.store.MarkCompleted(ctx, job.ID); dbErr != nil {
		logger.Error("record job completion", "job_id", job.ID, "error", dbErr)
	}
	job.Status = StatusCompleted
	job.SentAt = &result.SentAt
	metrics.JobsTotal.WithLabelValues(string(job.EventType), string(StatusCompleted)).Inc()
	logger.Info("automation job completed",
		"job_id", job.ID, "event", job.EventType,
		"recipient", job.RecipientEmail, "message_id", result.MessageID)
}
