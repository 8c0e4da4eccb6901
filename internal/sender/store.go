// Package sender manages the email_senders table and resolves the sender
// identity used on outbound mail.
package sender

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sender is a stored sender identity. At most one row has IsDefault set;
// SetDefault enforces that inside a single transaction.
type Sender struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Store handles CRUD for the email_senders table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]Sender, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, is_default, created_at
		FROM email_senders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var senders []Sender
	for rows.Next() {
		var sd Sender
		if err := rows.Scan(&sd.ID, &sd.Email, &sd.Name, &sd.IsDefault, &sd.CreatedAt); err != nil {
			return nil, err
		}
		senders = append(senders, sd)
	}
	return senders, rows.Err()
}

func (s *Store) Create(ctx context.Context, sd *Sender) error {
	if sd.ID == uuid.Nil {
		sd.ID = uuid.New()
	}
	return s.db.QueryRowContext(ctx,
		`INSERT INTO email_senders (id, email, name, is_default)
		VALUES ($1, $2, $3, $4) RETURNING created_at`,
		sd.ID, sd.Email, sd.Name, sd.IsDefault).Scan(&sd.CreatedAt)
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM email_senders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetDefault marks one sender as the default. The clear-all and set-one
// writes run in one transaction so there is never a moment with zero or two
// default rows visible.
func (s *Store) SetDefault(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE email_senders SET is_default = false WHERE is_default = true`); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE email_senders SET is_default = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

// GetDefault returns the current default sender, or nil when none is set.
func (s *Store) GetDefault(ctx context.Context) (*Sender, error) {
	var sd Sender
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, is_default, created_at
		FROM email_senders WHERE is_default = true LIMIT 1`,
	).Scan(&sd.ID, &sd.Email, &sd.Name, &sd.IsDefault, &sd.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get default sender: %w", err)
	}
	return &sd, nil
}
