package automation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ErrNotFailed is returned when a retry is requested for a job that is not
// in the failed state. Completed jobs are terminal.
var ErrNotFailed = errors.New("job is not in failed state")

// Store handles CRUD for the email_templates, automation_rules and
// automation_jobs tables.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- templates ---

func (s *Store) ListTemplates(ctx context.Context) ([]Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, subject, html, created_at, updated_at
		FROM email_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.HTML, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error) {
	var t Template
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, subject, html, created_at, updated_at
		FROM email_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Subject, &t.HTML, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateTemplate(ctx context.Context, t *Template) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return s.db.QueryRowContext(ctx,
		`INSERT INTO email_templates (id, name, subject, html)
		VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`,
		t.ID, t.Name, t.Subject, t.HTML).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *Store) UpdateTemplate(ctx context.Context, t *Template) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE email_templates SET name=$1, subject=$2, html=$3, updated_at=NOW()
		WHERE id = $4`,
		t.Name, t.Subject, t.HTML, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- rules ---

func (s *Store) ListRules(ctx context.Context) ([]Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, event_type, template_id, active, created_at, updated_at
		FROM automation_rules ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var r Rule
		if err := rows.Scan(&r.ID, &r.Name, &r.EventType, &r.TemplateID, &r.Active, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *Store) GetRule(ctx context.Context, id uuid.UUID) (*Rule, error) {
	var r Rule
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, event_type, template_id, active, created_at, updated_at
		FROM automation_rules WHERE id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.EventType, &r.TemplateID, &r.Active, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListActiveRulesByEvent returns the active rules firing for an event.
func (s *Store) ListActiveRulesByEvent(ctx context.Context, event EventType) ([]Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, event_type, template_id, active, created_at, updated_at
		FROM automation_rules WHERE event_type = $1 AND active = true`, event)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var r Rule
		if err := rows.Scan(&r.ID, &r.Name, &r.EventType, &r.TemplateID, &r.Active, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *Store) CreateRule(ctx context.Context, r *Rule) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return s.db.QueryRowContext(ctx,
		`INSERT INTO automation_rules (id, name, event_type, template_id, active)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`,
		r.ID, r.Name, r.EventType, r.TemplateID, r.Active).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (s *Store) UpdateRule(ctx context.Context, r *Rule) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE automation_rules SET name=$1, event_type=$2, template_id=$3, active=$4, updated_at=NOW()
		WHERE id = $5`,
		r.Name, r.EventType, r.TemplateID, r.Active, r.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM automation_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- jobs ---

const jobColumns = `id, rule_id, event_type, recipient_email, COALESCE(recipient_name,''),
	subject, html, status, retry_count, error_message, created_at, sent_at`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.RuleID, &j.EventType, &j.RecipientEmail, &j.RecipientName,
		&j.Subject, &j.HTML, &j.Status, &j.RetryCount, &j.ErrorMessage, &j.CreatedAt, &j.SentAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a new job in the pending state.
func (s *Store) CreateJob(ctx context.Context, j *Job) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	j.Status = StatusPending
	return s.db.QueryRowContext(ctx,
		`INSERT INTO automation_jobs (id, rule_id, event_type, recipient_email, recipient_name, subject, html, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, 'pending') RETURNING created_at`,
		j.ID, j.RuleID, j.EventType, j.RecipientEmail, j.RecipientName, j.Subject, j.HTML).Scan(&j.CreatedAt)
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM automation_jobs WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

// MarkCompleted transitions a pending job to completed and stamps sent_at.
// The status guard keeps completed terminal even under concurrent updates.
func (s *Store) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE automation_jobs
		SET status='completed', sent_at=NOW(), error_message=NULL
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s not pending", id)
	}
	return nil
}

// MarkFailed transitions a pending job to failed and records the error text.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE automation_jobs
		SET status='failed', error_message=$2, sent_at=NULL
		WHERE id = $1 AND status = 'pending'`, id, errMsg)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s not pending", id)
	}
	return nil
}

// MarkPendingForRetry returns a failed job to pending and increments the
// retry counter. The conditional update makes concurrent retries of the same
// job race-free: exactly one caller wins, the rest get ErrNotFailed.
func (s *Store) MarkPendingForRetry(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE automation_jobs
		SET status='pending', retry_count=retry_count+1, error_message=NULL, sent_at=NULL
		WHERE id = $1 AND status = 'failed'`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFailed
	}
	return nil
}

// ListJobs returns one page of jobs, newest first, optionally filtered by
// status, plus the total count for the same filter.
func (s *Store) ListJobs(ctx context.Context, page, limit int, status JobStatus) ([]Job, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int
	var rows *sql.Rows
	var err error
	if status != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM automation_jobs WHERE status = $1`, status).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+jobColumns+` FROM automation_jobs WHERE status = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM automation_jobs`).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+jobColumns+` FROM automation_jobs
			ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, total, rows.Err()
}

// JobStats aggregates job counts by status. SuccessRate is derived here so
// two calls with no intervening job changes return identical numbers.
func (s *Store) JobStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM automation_jobs`,
	).Scan(&st.Total, &st.Completed, &st.Failed, &st.Pending)
	if err != nil {
		return nil, err
	}
	if st.Total > 0 {
		st.SuccessRate = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	return &st, nil
}
