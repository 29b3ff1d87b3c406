// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/divvault/internal/dbx"
	"github.com/dmitrijs2005/divvault/internal/server/migrations"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/divisions"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/ous"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// OUs returns an ous.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) OUs(db dbx.DBTX) ous.Repository {
	return ous.NewPostgresRepository(db)
}

// Divisions returns a divisions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Divisions(db dbx.DBTX) divisions.Repository {
	return divisions.NewPostgresRepository(db)
}

// Credentials returns a credentials.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

const resetQuery = `TRUNCATE user_divisions, user_ous, users, credentials, divisions, credential_repos, ous`

func (m *PostgresRepositoryManager) Reset(ctx context.Context, db dbx.DBTX) error {
	if _, err := db.ExecContext(ctx, resetQuery); err != nil {
		return fmt.Errorf("reset error: %w", err)
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}
