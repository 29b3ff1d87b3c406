package credentials

import (
	"context"

	"github.com/dmitrijs2005/divvault/internal/server/models"
)

type Repository interface {
	CreateRepo(ctx context.Context, name string) (*models.CredentialRepo, error)
	GetRepo(ctx context.Context, id string) (*models.CredentialRepo, error)
	Add(ctx context.Context, repoID, key, value string) (*models.Credential, error)
	// Update overwrites key and value of one entry; empty arguments keep the
	// stored value.
	Update(ctx context.Context, repoID, credentialID, key, value string) error
}
