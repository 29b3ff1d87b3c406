package divisions

import (
	"context"

	"github.com/dmitrijs2005/divvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, division *models.Division) (*models.Division, error)
	GetByID(ctx context.Context, id string) (*models.Division, error)
	// GetByIDForUpdate is GetByID holding a row lock until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Division, error)
	List(ctx context.Context) ([]*models.Division, error)
	SetCredentialRepo(ctx context.Context, divisionID, repoID string) error
}
