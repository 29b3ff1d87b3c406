// Package ous provides the PostgreSQL-backed organizational unit repository.
package ous

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

func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.OU, error) {
	query :=
		`INSERT INTO ous (name)
		 VALUES ($1)
		 RETURNING id
		 `

	ou := &models.OU{Name: name}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&ou.ID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ou, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.OU, error) {
	query :=
		`SELECT id, name FROM ous
		 WHERE id = $1
		 `

	ou := &models.OU{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ou.ID, &ou.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ou, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.OU, error) {
	query :=
		`SELECT id, name FROM ous
		 ORDER BY name
		 `
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.OU{}
	for rows.Next() {
		ou := &models.OU{}
		if err := rows.Scan(&ou.ID, &ou.Name); err != nil {
			return nil, err
		}
		result = append(result, ou)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
