package ous

import (
	"context"

	"github.com/dmitrijs2005/divvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, name string) (*models.OU, error)
	GetByID(ctx context.Context, id string) (*models.OU, error)
	List(ctx context.Context) ([]*models.OU, error)
}
