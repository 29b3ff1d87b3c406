package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/divvault/internal/client/models"
	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const apiPrefix = "/api"

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	token   string
	session models.Session
}

var _ Client = (*HTTPClient)(nil)

func NewVaultClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Username  string   `json:"username"`
	Role      string   `json:"role"`
	Divisions []string `json:"divisions"`
}

func (c *HTTPClient) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// setToken stores token and the session read from its claims.
func (c *HTTPClient) setToken(token string) error {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return fmt.Errorf("malformed token: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.session = models.Session{Username: claims.Username, Role: claims.Role, Divisions: claims.Divisions}
	return nil
}

func (c *HTTPClient) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.session = models.Session{}
}

func (c *HTTPClient) Session() (models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.token != ""
}

// do sends body as JSON and decodes a 2xx response into out (when non-nil).
// A 401 drops the held token.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.Logout()
		}
		return mapStatus(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) authorized() error {
	if c.accessToken() == "" {
		return ErrNotLoggedIn
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, r RegisterRequest) error {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/register", r, &resp); err != nil {
		return err
	}
	return c.setToken(resp.Token)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return err
	}
	return c.setToken(resp.Token)
}

func (c *HTTPClient) OUOptions(ctx context.Context) ([]models.Ref, error) {
	var refs []models.Ref
	if err := c.do(ctx, http.MethodGet, "/ous-register", nil, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func (c *HTTPClient) DivisionOptions(ctx context.Context) ([]models.Ref, error) {
	var refs []models.Ref
	if err := c.do(ctx, http.MethodGet, "/divisions-register", nil, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func credentialsPath(divisionID string, credentialID ...string) string {
	p := "/credentials/" + url.PathEscape(divisionID)
	for _, id := range credentialID {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (c *HTTPClient) GetCredentials(ctx context.Context, divisionID string) (*models.CredentialRepo, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	var repo models.CredentialRepo
	if err := c.do(ctx, http.MethodGet, credentialsPath(divisionID), nil, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

func (c *HTTPClient) AddCredential(ctx context.Context, divisionID, key, value string) (*models.CredentialRepo, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	body := models.Credential{Key: key, Value: value}
	var repo models.CredentialRepo
	if err := c.do(ctx, http.MethodPost, credentialsPath(divisionID), body, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

func (c *HTTPClient) UpdateCredential(ctx context.Context, divisionID string, u models.CredentialUpdate) (*models.CredentialRepo, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	body := models.Credential{Key: u.Key, Value: u.Value}
	var repo models.CredentialRepo
	if err := c.do(ctx, http.MethodPut, credentialsPath(divisionID, u.CredentialID), body, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// BatchUpdate applies updates in order and returns the repo as of the last
// successful update together with one result per update. Once the session
// is lost or the server is unreachable the remaining updates are not sent
// and report the same error.
func (c *HTTPClient) BatchUpdate(ctx context.Context, divisionID string, updates []models.CredentialUpdate) (*models.CredentialRepo, []models.UpdateResult) {
	var (
		repo  *models.CredentialRepo
		fatal error
	)
	results := make([]models.UpdateResult, 0, len(updates))

	for _, u := range updates {
		if fatal != nil {
			results = append(results, models.UpdateResult{CredentialID: u.CredentialID, Err: fatal})
			continue
		}

		r, err := c.UpdateCredential(ctx, divisionID, u)
		results = append(results, models.UpdateResult{CredentialID: u.CredentialID, Err: err})
		if err == nil {
			repo = r
			continue
		}
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotLoggedIn) || errors.Is(err, ErrUnavailable) {
			fatal = err
		}
	}

	return repo, results
}

// Failed returns the results that carry an error.
func Failed(results []models.UpdateResult) []models.UpdateResult {
	var failed []models.UpdateResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) ListOUs(ctx context.Context) ([]models.Ref, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	var ous []models.Ref
	if err := c.do(ctx, http.MethodGet, "/ous", nil, &ous); err != nil {
		return nil, err
	}
	return ous, nil
}

func (c *HTTPClient) ListDivisions(ctx context.Context) ([]models.Division, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	var divisions []models.Division
	if err := c.do(ctx, http.MethodGet, "/divisions", nil, &divisions); err != nil {
		return nil, err
	}
	return divisions, nil
}

type membershipBody struct {
	OU       string `json:"ou,omitempty"`
	Division string `json:"division,omitempty"`
}

func (c *HTTPClient) changeMembership(ctx context.Context, method, action, userID, ouID, divisionID string) (*models.User, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	var user models.User
	path := "/users/" + url.PathEscape(userID) + "/" + action
	if err := c.do(ctx, method, path, membershipBody{OU: ouID, Division: divisionID}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Assign(ctx context.Context, userID, ouID, divisionID string) (*models.User, error) {
	return c.changeMembership(ctx, http.MethodPut, "assign", userID, ouID, divisionID)
}

func (c *HTTPClient) Unassign(ctx context.Context, userID, ouID, divisionID string) (*models.User, error) {
	return c.changeMembership(ctx, http.MethodPatch, "unassign", userID, ouID, divisionID)
}

func (c *HTTPClient) ChangeRole(ctx context.Context, userID, role string) (*models.User, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	body := struct {
		Role string `json:"role"`
	}{role}
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID)+"/role", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
