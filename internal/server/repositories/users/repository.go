package users

import (
	"context"

	"github.com/dmitrijs2005/divvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) error
	AddOU(ctx context.Context, userID, ouID string) error
	RemoveOU(ctx context.Context, userID, ouID string) error
	AddDivision(ctx context.Context, userID, divisionID string) error
	RemoveDivision(ctx context.Context, userID, divisionID string) error
}
