package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/dbx"
	"github.com/dmitrijs2005/divvault/internal/server/access"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/repomanager"
)

const (
	ReasonDivisionNotFound   = "division not found"
	ReasonKeyValueRequired   = "key and value required"
	ReasonRepoNotFound       = "no credential repo found"
	ReasonCredentialNotFound = "credential not found"
)

// CredentialService reads and mutates the credential repo of a division on
// behalf of a verified identity.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager) *CredentialService {
	return &CredentialService{db: db, repomanager: m}
}

// division resolves divisionID and asks the access policy about op. The
// lookup happens first so that a missing division is reported the same
// way to every caller.
func (s *CredentialService) division(ctx context.Context, db dbx.DBTX, id models.Identity, op access.Operation, divisionID string, forUpdate bool) (*models.Division, error) {
	if err := checkID(divisionID, "division"); err != nil {
		return nil, err
	}

	repo := s.repomanager.Divisions(db)
	get := repo.GetByID
	if forUpdate {
		get = repo.GetByIDForUpdate
	}
	d, err := get(ctx, divisionID)
	if err != nil {
		return nil, notFound(err, ReasonDivisionNotFound)
	}

	if err := access.Check(id, op, divisionID).Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// GetCredentials returns the division's repo, or an empty credential list
// when none has been created yet.
func (s *CredentialService) GetCredentials(ctx context.Context, id models.Identity, divisionID string) (*models.CredentialRepo, error) {
	d, err := s.division(ctx, s.db, id, access.ReadCredentials, divisionID, false)
	if err != nil {
		return nil, err
	}
	if !d.HasRepo() {
		return models.EmptyRepo(), nil
	}

	repo, err := s.repomanager.Credentials(s.db).GetRepo(ctx, d.CredentialRepoID)
	if err != nil {
		return nil, fmt.Errorf("error loading repo: %w", err)
	}
	return repo, nil
}

// AddCredential appends key/value to the division's repo, creating and
// linking the repo first if the division has none. The division row stays
// locked for the whole transaction so concurrent first adds share one repo.
func (s *CredentialService) AddCredential(ctx context.Context, id models.Identity, divisionID, key, value string) (*models.CredentialRepo, error) {
	var result *models.CredentialRepo

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		d, err := s.division(ctx, tx, id, access.AddCredential, divisionID, true)
		if err != nil {
			return err
		}
		if key == "" || value == "" {
			return common.WithReason(common.ErrInvalidInput, ReasonKeyValueRequired)
		}

		creds := s.repomanager.Credentials(tx)
		repoID := d.CredentialRepoID
		if !d.HasRepo() {
			repo, err := creds.CreateRepo(ctx, d.RepoName())
			if err != nil {
				return fmt.Errorf("error creating repo: %w", err)
			}
			if err := s.repomanager.Divisions(tx).SetCredentialRepo(ctx, d.ID, repo.ID); err != nil {
				return fmt.Errorf("error linking repo: %w", err)
			}
			repoID = repo.ID
		}

		if _, err := creds.Add(ctx, repoID, key, value); err != nil {
			return fmt.Errorf("error adding credential: %w", err)
		}

		result, err = creds.GetRepo(ctx, repoID)
		if err != nil {
			return fmt.Errorf("error loading repo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateCredential overwrites the key and/or value of one entry. Empty
// arguments leave the stored field unchanged.
func (s *CredentialService) UpdateCredential(ctx context.Context, id models.Identity, divisionID, credentialID, key, value string) (*models.CredentialRepo, error) {
	d, err := s.division(ctx, s.db, id, access.UpdateCredential, divisionID, false)
	if err != nil {
		return nil, err
	}
	if !d.HasRepo() {
		return nil, common.WithReason(common.ErrorNotFound, ReasonRepoNotFound)
	}
	if !validID(credentialID) {
		return nil, common.WithReason(common.ErrorNotFound, ReasonCredentialNotFound)
	}

	creds := s.repomanager.Credentials(s.db)
	if err := creds.Update(ctx, d.CredentialRepoID, credentialID, key, value); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithReason(common.ErrorNotFound, ReasonCredentialNotFound)
		}
		return nil, fmt.Errorf("error updating credential: %w", err)
	}

	repo, err := creds.GetRepo(ctx, d.CredentialRepoID)
	if err != nil {
		return nil, fmt.Errorf("error loading repo: %w", err)
	}
	return repo, nil
}
