// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and issuing access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/dbx"
	"github.com/dmitrijs2005/divvault/internal/server/auth"
	"github.com/dmitrijs2005/divvault/internal/server/config"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/repomanager"
)

const (
	ReasonIncorrectLogin  = "incorrect login"
	ReasonUsernameTaken   = "username already taken"
	ReasonMissingPassword = "username and password required"
)

// RegisterRequest is the input of UserService.Register. OUID and DivisionID
// are optional.
type RegisterRequest struct {
	Username   string
	Password   string
	OUID       string
	DivisionID string
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint tokens
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	passwordHashCost            int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		passwordHashCost:            cfg.PasswordHashCost,
	}
}

// Register creates a normal user, optionally placed in one OU and one
// division, and returns an access token for it.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if req.Username == "" || req.Password == "" {
		return "", common.WithReason(common.ErrInvalidInput, ReasonMissingPassword)
	}

	user := &models.User{
		Username:  req.Username,
		Role:      models.RoleNormal,
		OUs:       []models.Ref{},
		Divisions: []models.Ref{},
	}

	if req.OUID != "" {
		if err := checkID(req.OUID, "OU"); err != nil {
			return "", err
		}
		ou, err := s.repomanager.OUs(s.db).GetByID(ctx, req.OUID)
		if err != nil {
			return "", notFound(err, "OU not found")
		}
		user.OUs = append(user.OUs, models.Ref{ID: ou.ID, Name: ou.Name})
	}

	if req.DivisionID != "" {
		if err := checkID(req.DivisionID, "division"); err != nil {
			return "", err
		}
		d, err := s.repomanager.Divisions(s.db).GetByID(ctx, req.DivisionID)
		if err != nil {
			return "", notFound(err, "division not found")
		}
		user.Divisions = append(user.Divisions, models.Ref{ID: d.ID, Name: d.Name})
	}

	hash, err := auth.HashPassword(req.Password, s.passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		created, err := repo.Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.WithReason(common.ErrInvalidInput, ReasonUsernameTaken)
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		user.ID = created.ID
		for _, ou := range user.OUs {
			if err := repo.AddOU(ctx, user.ID, ou.ID); err != nil {
				return notFound(err, "OU not found")
			}
		}
		for _, d := range user.Divisions {
			if err := repo.AddDivision(ctx, user.ID, d.ID); err != nil {
				return notFound(err, "division not found")
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return s.generateAccessToken(user)
}

// Login verifies password against the stored hash and, on success, returns
// a new access token. Unknown users and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.WithReason(common.ErrorUnauthorized, ReasonIncorrectLogin)
		}
		return "", common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return "", common.ErrorInternal
	}
	if !ok {
		return "", common.WithReason(common.ErrorUnauthorized, ReasonIncorrectLogin)
	}

	return s.generateAccessToken(user)
}

// OUOptions lists the OUs a new user may pick from.
func (s *UserService) OUOptions(ctx context.Context) ([]models.Ref, error) {
	ous, err := s.repomanager.OUs(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]models.Ref, 0, len(ous))
	for _, ou := range ous {
		refs = append(refs, models.Ref{ID: ou.ID, Name: ou.Name})
	}
	return refs, nil
}

// DivisionOptions lists the divisions a new user may pick from.
func (s *UserService) DivisionOptions(ctx context.Context) ([]models.Ref, error) {
	divisions, err := s.repomanager.Divisions(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]models.Ref, 0, len(divisions))
	for _, d := range divisions {
		refs = append(refs, models.Ref{ID: d.ID, Name: d.Name})
	}
	return refs, nil
}

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	token, err := auth.GenerateToken(user, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}
