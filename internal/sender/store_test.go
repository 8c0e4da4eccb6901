package sender

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { db.Close() }
}

func TestSetDefaultIsTransactional(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE email_senders SET is_default = false").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE email_senders SET is_default = true").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewStore(db)
	if err := store.SetDefault(context.Background(), id); err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSetDefaultUnknownSender(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE email_senders SET is_default = false").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE email_senders SET is_default = true").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	store := NewStore(db)
	if err := store.SetDefault(context.Background(), id); err != sql.ErrNoRows {
		t.Fatalf("SetDefault() error = %v, want sql.ErrNoRows", err)
	}
}

func TestGetDefault(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "email", "name", "is_default", "created_at"}).
		AddRow(id, "hello@studio.com", "Studio", true, time.Now())
	mock.ExpectQuery("SELECT id, email, name, is_default, created_at").
		WillReturnRows(rows)

	store := NewStore(db)
	sd, err := store.GetDefault(context.Background())
	if err != nil {
		t.Fatalf("GetDefault() error = %v", err)
	}
	if sd == nil || sd.Email != "hello@studio.com" || !sd.IsDefault {
		t.Errorf("GetDefault() = %+v", sd)
	}
}

func TestGetDefaultNoneSet(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, email, name, is_default, created_at").
		WillReturnError(sql.ErrNoRows)

	store := NewStore(db)
	sd, err := store.GetDefault(context.Background())
	if err != nil {
		t.Fatalf("GetDefault() error = %v", err)
	}
	if sd != nil {
		t.Errorf("GetDefault() = %+v, want nil", sd)
	}
}
