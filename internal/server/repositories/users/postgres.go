// Package users provides the PostgreSQL-backed user repository, including
// OU and division memberships.
package users

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

// Create inserts user and fills in its ID and CreatedAt. A taken username
// yields common.ErrorAlreadyExists. Memberships are not written here.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, string(user.Role)).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, role, created_at FROM users
		 WHERE username = $1
		 `
	return r.getOne(ctx, query, username)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, role, created_at FROM users
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	var role string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.Role = models.Role(role)

	byUser := map[string]*models.User{user.ID: user}
	if err := r.loadMemberships(ctx, byUser, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// List returns every user ordered by username, with memberships resolved.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query :=
		`SELECT id, username, password_hash, role, created_at FROM users
		 ORDER BY username
		 `
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.User{}
	byUser := map[string]*models.User{}
	for rows.Next() {
		u := &models.User{}
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		result = append(result, u)
		byUser[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadMemberships(ctx, byUser, ""); err != nil {
		return nil, err
	}

	return result, nil
}

const (
	ouMembershipQuery = `SELECT m.user_id, o.id, o.name FROM user_ous m
		 JOIN ous o ON o.id = m.ou_id
		 WHERE $1 = '' OR m.user_id::text = $1
		 ORDER BY m.seq
		 `
	divisionMembershipQuery = `SELECT m.user_id, d.id, d.name FROM user_divisions m
		 JOIN divisions d ON d.id = m.division_id
		 WHERE $1 = '' OR m.user_id::text = $1
		 ORDER BY m.seq
		 `
)

// loadMemberships fills OUs and Divisions of the users in byUser. userID
// restricts the queries to one user; "" loads memberships of everyone.
func (r *PostgresRepository) loadMemberships(ctx context.Context, byUser map[string]*models.User, userID string) error {
	for _, u := range byUser {
		u.OUs = []models.Ref{}
		u.Divisions = []models.Ref{}
	}

	if err := r.loadRefs(ctx, ouMembershipQuery, userID, func(u *models.User, ref models.Ref) {
		u.OUs = append(u.OUs, ref)
	}, byUser); err != nil {
		return err
	}

	return r.loadRefs(ctx, divisionMembershipQuery, userID, func(u *models.User, ref models.Ref) {
		u.Divisions = append(u.Divisions, ref)
	}, byUser)
}

func (r *PostgresRepository) loadRefs(ctx context.Context, query, userID string, add func(*models.User, models.Ref), byUser map[string]*models.User) error {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner string
		var ref models.Ref
		if err := rows.Scan(&owner, &ref.ID, &ref.Name); err != nil {
			return err
		}
		if u, ok := byUser[owner]; ok {
			add(u, ref)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) SetRole(ctx context.Context, id string, role models.Role) error {
	query :=
		`UPDATE users SET role = $2
		 WHERE id = $1
		 `
	res, err := r.db.ExecContext(ctx, query, id, string(role))
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

// AddOU records the membership; an existing one is left as is.
func (r *PostgresRepository) AddOU(ctx context.Context, userID, ouID string) error {
	query :=
		`INSERT INTO user_ous (user_id, ou_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, ou_id) DO NOTHING
		 `
	return r.exec(ctx, query, userID, ouID)
}

// RemoveOU deletes the membership; a missing one is not an error.
func (r *PostgresRepository) RemoveOU(ctx context.Context, userID, ouID string) error {
	query :=
		`DELETE FROM user_ous
		 WHERE user_id = $1 AND ou_id = $2
		 `
	return r.exec(ctx, query, userID, ouID)
}

// AddDivision records the membership; an existing one is left as is.
func (r *PostgresRepository) AddDivision(ctx context.Context, userID, divisionID string) error {
	query :=
		`INSERT INTO user_divisions (user_id, division_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, division_id) DO NOTHING
		 `
	return r.exec(ctx, query, userID, divisionID)
}

// RemoveDivision deletes the membership; a missing one is not an error.
func (r *PostgresRepository) RemoveDivision(ctx context.Context, userID, divisionID string) error {
	query :=
		`DELETE FROM user_divisions
		 WHERE user_id = $1 AND division_id = $2
		 `
	return r.exec(ctx, query, userID, divisionID)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
