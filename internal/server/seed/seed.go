package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/divvault/internal/dbx"
	"github.com/dmitrijs2005/divvault/internal/logging"
	"github.com/dmitrijs2005/divvault/internal/server/auth"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/repomanager"
)

// Seeder wipes the directory and recreates it from a fixture in a single
// transaction.
type Seeder struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	passwordHashCost int
	logger           logging.Logger
}

func NewSeeder(db *sql.DB, m repomanager.RepositoryManager, passwordHashCost int, l logging.Logger) *Seeder {
	return &Seeder{db: db, repomanager: m, passwordHashCost: passwordHashCost, logger: l.With("module", "seed")}
}

// Result maps fixture names to the ids they were stored under.
type Result struct {
	OUs       map[string]string
	Repos     map[string]string
	Divisions map[string]string
	Users     map[string]string
}

func (s *Seeder) Run(ctx context.Context, f *Fixture) (*Result, error) {
	res := &Result{
		OUs:       map[string]string{},
		Repos:     map[string]string{},
		Divisions: map[string]string{},
		Users:     map[string]string{},
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Reset(ctx, tx); err != nil {
			return err
		}

		ous := s.repomanager.OUs(tx)
		for _, name := range f.OUs {
			ou, err := ous.Create(ctx, name)
			if err != nil {
				return fmt.Errorf("ou %q: %w", name, err)
			}
			res.OUs[name] = ou.ID
		}

		creds := s.repomanager.Credentials(tx)
		for _, r := range f.Repos {
			repo, err := creds.CreateRepo(ctx, r.Name)
			if err != nil {
				return fmt.Errorf("repo %q: %w", r.Name, err)
			}
			for _, c := range r.Credentials {
				if _, err := creds.Add(ctx, repo.ID, c.Key, c.Value); err != nil {
					return fmt.Errorf("repo %q: %w", r.Name, err)
				}
			}
			res.Repos[r.Name] = repo.ID
		}

		divisions := s.repomanager.Divisions(tx)
		for _, d := range f.Divisions {
			created, err := divisions.Create(ctx, &models.Division{
				Name:             d.Name,
				OUID:             res.OUs[d.OU],
				CredentialRepoID: res.Repos[d.Repo],
			})
			if err != nil {
				return fmt.Errorf("division %q: %w", d.Name, err)
			}
			res.Divisions[d.Name] = created.ID
		}

		users := s.repomanager.Users(tx)
		for _, u := range f.Users {
			hash, err := auth.HashPassword(u.Password, s.passwordHashCost)
			if err != nil {
				return fmt.Errorf("user %q: %w", u.Username, err)
			}
			created, err := users.Create(ctx, &models.User{Username: u.Username, PasswordHash: hash, Role: u.Role})
			if err != nil {
				return fmt.Errorf("user %q: %w", u.Username, err)
			}
			for _, ou := range u.OUs {
				if err := users.AddOU(ctx, created.ID, res.OUs[ou]); err != nil {
					return fmt.Errorf("user %q: %w", u.Username, err)
				}
			}
			for _, d := range u.Divisions {
				if err := users.AddDivision(ctx, created.ID, res.Divisions[d]); err != nil {
					return fmt.Errorf("user %q: %w", u.Username, err)
				}
			}
			res.Users[u.Username] = created.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Database seeded",
		"ous", res.OUs, "repos", res.Repos, "divisions", res.Divisions, "users", res.Users)
	return res, nil
}
