// Package httpapi exposes the vault over a JSON REST API mounted under /api.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/divvault/internal/logging"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/dmitrijs2005/divvault/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	OUOptions(ctx context.Context) ([]models.Ref, error)
	DivisionOptions(ctx context.Context) ([]models.Ref, error)
}

type CredentialService interface {
	GetCredentials(ctx context.Context, id models.Identity, divisionID string) (*models.CredentialRepo, error)
	AddCredential(ctx context.Context, id models.Identity, divisionID, key, value string) (*models.CredentialRepo, error)
	UpdateCredential(ctx context.Context, id models.Identity, divisionID, credentialID, key, value string) (*models.CredentialRepo, error)
}

type DirectoryService interface {
	Assign(ctx context.Context, id models.Identity, userID string, m services.Membership) (*models.User, error)
	Unassign(ctx context.Context, id models.Identity, userID string, m services.Membership) (*models.User, error)
	ChangeRole(ctx context.Context, id models.Identity, userID string, role models.Role) (*models.User, error)
	ListUsers(ctx context.Context, id models.Identity) ([]*models.User, error)
	ListOUs(ctx context.Context, id models.Identity) ([]*models.OU, error)
	ListDivisions(ctx context.Context, id models.Identity) ([]*models.Division, error)
}

// HealthCheck reports whether a dependency of the server is usable.
type HealthCheck func(ctx context.Context) error

type HTTPServer struct {
	address     string
	logger      logging.Logger
	users       UserService
	credentials CredentialService
	directory   DirectoryService
	jwtSecret   []byte
	checks      []HealthCheck
	router      *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, us UserService, cs CredentialService, ds DirectoryService, secretKey string, checks ...HealthCheck) *HTTPServer {
	s := &HTTPServer{
		address:     a,
		logger:      l.With("module", "http_server"),
		users:       us,
		credentials: cs,
		directory:   ds,
		jwtSecret:   []byte(secretKey),
		checks:      checks,
	}
	registerValidators()
	s.router = s.newRouter()
	return s
}

// Handler returns the configured router.
func (s *HTTPServer) Handler() http.Handler { return s.router }

func (s *HTTPServer) newRouter() *gin.Engine {
	route := gin.New()
	if zl, ok := s.logger.(*logging.ZapLogger); ok {
		route.Use(ginzap.RecoveryWithZap(zl.Zap(), false))
		route.Use(ginzap.Ginzap(zl.Zap(), time.RFC3339, true))
	} else {
		route.Use(gin.Recovery())
		route.Use(s.requestLogger)
	}
	_ = route.SetTrustedProxies(nil)

	s.buildRoutes(route.Group("/api"))
	return route
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
