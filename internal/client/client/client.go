package client

import (
	"context"

	"github.com/dmitrijs2005/divvault/internal/client/models"
)

// RegisterRequest is the registration form. OUID and DivisionID are
// optional.
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	OUID       string `json:"ou,omitempty"`
	DivisionID string `json:"division,omitempty"`
}

type Client interface {
	Ping(ctx context.Context) error

	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, username, password string) error
	Logout()
	Session() (models.Session, bool)

	OUOptions(ctx context.Context) ([]models.Ref, error)
	DivisionOptions(ctx context.Context) ([]models.Ref, error)

	GetCredentials(ctx context.Context, divisionID string) (*models.CredentialRepo, error)
	AddCredential(ctx context.Context, divisionID, key, value string) (*models.CredentialRepo, error)
	UpdateCredential(ctx context.Context, divisionID string, u models.CredentialUpdate) (*models.CredentialRepo, error)
	BatchUpdate(ctx context.Context, divisionID string, updates []models.CredentialUpdate) (*models.CredentialRepo, []models.UpdateResult)

	ListUsers(ctx context.Context) ([]models.User, error)
	ListOUs(ctx context.Context) ([]models.Ref, error)
	ListDivisions(ctx context.Context) ([]models.Division, error)
	Assign(ctx context.Context, userID, ouID, divisionID string) (*models.User, error)
	Unassign(ctx context.Context, userID, ouID, divisionID string) (*models.User, error)
	ChangeRole(ctx context.Context, userID, role string) (*models.User, error)
}
