// Package credentials provides the PostgreSQL-backed credential repository
// store. Entries of a repo are returned in insertion order.
package credentials

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

func (r *PostgresRepository) CreateRepo(ctx context.Context, name string) (*models.CredentialRepo, error) {
	query :=
		`INSERT INTO credential_repos (name)
		 VALUES ($1)
		 RETURNING id
		 `

	repo := &models.CredentialRepo{Name: name, Credentials: []models.Credential{}}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&repo.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return repo, nil
}

func (r *PostgresRepository) GetRepo(ctx context.Context, id string) (*models.CredentialRepo, error) {
	query :=
		`SELECT id, name FROM credential_repos
		 WHERE id = $1
		 `

	repo := &models.CredentialRepo{Credentials: []models.Credential{}}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&repo.ID, &repo.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	query =
		`SELECT id, key, value FROM credentials
		 WHERE repo_id = $1
		 ORDER BY seq
		 `
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Credential
		if err := rows.Scan(&c.ID, &c.Key, &c.Value); err != nil {
			return nil, err
		}
		repo.Credentials = append(repo.Credentials, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PostgresRepository) Add(ctx context.Context, repoID, key, value string) (*models.Credential, error) {
	query :=
		`INSERT INTO credentials (repo_id, key, value)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	c := &models.Credential{Key: key, Value: value}
	if err := r.db.QueryRowContext(ctx, query, repoID, key, value).Scan(&c.ID); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, repoID, credentialID, key, value string) error {
	query :=
		`UPDATE credentials
		 SET key = COALESCE(NULLIF($3, ''), key),
		     value = COALESCE(NULLIF($4, ''), value)
		 WHERE repo_id = $1 AND id = $2
		 `
	res, err := r.db.ExecContext(ctx, query, repoID, credentialID, key, value)
	if err != nil {
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
