package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/divvault/internal/dbx"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/divisions"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/ous"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	// Reset wipes every directory table. Used by the seed command only.
	Reset(ctx context.Context, db dbx.DBTX) error
	Users(db dbx.DBTX) users.Repository
	OUs(db dbx.DBTX) ous.Repository
	Divisions(db dbx.DBTX) divisions.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}
