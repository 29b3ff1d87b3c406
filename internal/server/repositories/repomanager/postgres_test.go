package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/divisions"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/ous"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := NewPostgresRepositoryManager(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var _ RepositoryManager = m
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if u := m.Users(db); u == nil {
		t.Fatal("Users() nil")
	}
	if o := m.OUs(db); o == nil {
		t.Fatal("OUs() nil")
	}
	if d := m.Divisions(db); d == nil {
		t.Fatal("Divisions() nil")
	}
	if c := m.Credentials(db); c == nil {
		t.Fatal("Credentials() nil")
	}

	var _ users.Repository = m.Users(db)
	var _ ous.Repository = m.OUs(db)
	var _ divisions.Repository = m.Divisions(db)
	var _ credentials.Repository = m.Credentials(db)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestReset(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(resetQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(resetQuery)).WillReturnError(errors.New("locked"))

	m := &PostgresRepositoryManager{}
	if err := m.Reset(context.Background(), db); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	if err := m.Reset(context.Background(), db); err == nil {
		t.Fatal("expected error")
	}
}
