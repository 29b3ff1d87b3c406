package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/dbx"
	"github.com/dmitrijs2005/divvault/internal/server/access"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/repomanager"
)

const (
	ReasonMembershipRequired = "at least one OU or division required"
	ReasonInvalidRole        = "invalid role"
	ReasonUserNotFound       = "user not found"
	ReasonOUNotFound         = "OU not found"
)

// Membership names the OU and/or division of an assign or unassign request.
// Empty fields are ignored; at least one must be set.
type Membership struct {
	OUID       string
	DivisionID string
}

// DirectoryService implements the admin-only directory operations.
type DirectoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDirectoryService(db *sql.DB, m repomanager.RepositoryManager) *DirectoryService {
	return &DirectoryService{db: db, repomanager: m}
}

// Assign adds the user to m.OUID and/or m.DivisionID. Existing memberships
// are left as they are.
func (s *DirectoryService) Assign(ctx context.Context, id models.Identity, userID string, m Membership) (*models.User, error) {
	return s.changeMembership(ctx, id, userID, m, true)
}

// Unassign removes the user from m.OUID and/or m.DivisionID. Removing a
// membership the user does not hold is not an error.
func (s *DirectoryService) Unassign(ctx context.Context, id models.Identity, userID string, m Membership) (*models.User, error) {
	return s.changeMembership(ctx, id, userID, m, false)
}

func (s *DirectoryService) changeMembership(ctx context.Context, id models.Identity, userID string, m Membership, add bool) (*models.User, error) {
	if err := access.Check(id, access.AssignMembership, "").Err(); err != nil {
		return nil, err
	}
	if m.OUID == "" && m.DivisionID == "" {
		return nil, common.WithReason(common.ErrInvalidInput, ReasonMembershipRequired)
	}
	if err := checkID(userID, "user"); err != nil {
		return nil, err
	}
	if m.OUID != "" {
		if err := checkID(m.OUID, "OU"); err != nil {
			return nil, err
		}
	}
	if m.DivisionID != "" {
		if err := checkID(m.DivisionID, "division"); err != nil {
			return nil, err
		}
	}

	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		if _, err := users.GetByID(ctx, userID); err != nil {
			return notFound(err, ReasonUserNotFound)
		}

		if m.OUID != "" {
			if _, err := s.repomanager.OUs(tx).GetByID(ctx, m.OUID); err != nil {
				return notFound(err, ReasonOUNotFound)
			}
			op := users.RemoveOU
			if add {
				op = users.AddOU
			}
			if err := op(ctx, userID, m.OUID); err != nil {
				return notFound(err, ReasonOUNotFound)
			}
		}

		if m.DivisionID != "" {
			if _, err := s.repomanager.Divisions(tx).GetByID(ctx, m.DivisionID); err != nil {
				return notFound(err, ReasonDivisionNotFound)
			}
			op := users.RemoveDivision
			if add {
				op = users.AddDivision
			}
			if err := op(ctx, userID, m.DivisionID); err != nil {
				return notFound(err, ReasonDivisionNotFound)
			}
		}

		var err error
		user, err = users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole sets the user's role. The new role takes effect at the user's
// next login.
func (s *DirectoryService) ChangeRole(ctx context.Context, id models.Identity, userID string, role models.Role) (*models.User, error) {
	if err := access.Check(id, access.ChangeRole, "").Err(); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, common.WithReason(common.ErrInvalidInput, ReasonInvalidRole)
	}
	if err := checkID(userID, "user"); err != nil {
		return nil, err
	}

	users := s.repomanager.Users(s.db)
	if err := users.SetRole(ctx, userID, role); err != nil {
		return nil, notFound(err, ReasonUserNotFound)
	}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ReasonUserNotFound)
	}
	return user, nil
}

func (s *DirectoryService) ListUsers(ctx context.Context, id models.Identity) ([]*models.User, error) {
	if err := access.Check(id, access.ListDirectory, "").Err(); err != nil {
		return nil, err
	}
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

func (s *DirectoryService) ListOUs(ctx context.Context, id models.Identity) ([]*models.OU, error) {
	if err := access.Check(id, access.ListDirectory, "").Err(); err != nil {
		return nil, err
	}
	ous, err := s.repomanager.OUs(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing OUs: %w", err)
	}
	return ous, nil
}

func (s *DirectoryService) ListDivisions(ctx context.Context, id models.Identity) ([]*models.Division, error) {
	if err := access.Check(id, access.ListDirectory, "").Err(); err != nil {
		return nil, err
	}
	divisions, err := s.repomanager.Divisions(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing divisions: %w", err)
	}
	return divisions, nil
}
