// Package divisions provides the PostgreSQL-backed division repository.
package divisions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/dbx"
	"github.com/dmitrijs2005/divvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts division. An unknown OU yields common.ErrorNotFound, a
// taken name common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, division *models.Division) (*models.Division, error) {
	query :=
		`INSERT INTO divisions (name, ou_id, credential_repo_id)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		division.Name, division.OUID, nullString(division.CredentialRepoID)).Scan(&division.ID)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		case dbx.IsForeignKeyViolation(err):
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return division, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Division, error) {
	query :=
		`SELECT id, name, ou_id, credential_repo_id FROM divisions
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Division, error) {
	query :=
		`SELECT id, name, ou_id, credential_repo_id FROM divisions
		 WHERE id = $1
		 FOR UPDATE
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, id string) (*models.Division, error) {
	d := &models.Division{}
	var repoID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name, &d.OUID, &repoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	d.CredentialRepoID = repoID.String
	return d, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Division, error) {
	query :=
		`SELECT id, name, ou_id, credential_repo_id FROM divisions
		 ORDER BY name
		 `
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Division{}
	for rows.Next() {
		d := &models.Division{}
		var repoID sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &d.OUID, &repoID); err != nil {
			return nil, err
		}
		d.CredentialRepoID = repoID.String
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetCredentialRepo links repoID to the division. The UNIQUE constraint on
// divisions.credential_repo_id keeps a repo reachable from one division only.
func (r *PostgresRepository) SetCredentialRepo(ctx context.Context, divisionID, repoID string) error {
	query :=
		`UPDATE divisions SET credential_repo_id = $2
		 WHERE id = $1
		 `
	res, err := r.db.ExecContext(ctx, query, divisionID, repoID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
