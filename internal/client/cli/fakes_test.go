package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/divvault/internal/client/client"
	"github.com/dmitrijs2005/divvault/internal/client/config"
	"github.com/dmitrijs2005/divvault/internal/client/models"
)

const newsID = "8f0d5a3e-0000-4000-8000-000000000001"

type fakeClient struct {
	session  *models.Session
	loginErr error
	regReq   client.RegisterRequest

	repo      models.CredentialRepo
	getDiv    string
	added     []models.Credential
	updates   []models.CredentialUpdate
	updateErr map[string]error
	credErr   error

	users     []models.User
	adminErr  error
	assigned  []string
	roleCalls []string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) Register(_ context.Context, req client.RegisterRequest) error {
	f.regReq = req
	f.session = &models.Session{Username: req.Username, Role: "normal"}
	return nil
}

func (f *fakeClient) Login(_ context.Context, username, _ string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.session = &models.Session{Username: username, Role: "management"}
	return nil
}

func (f *fakeClient) Logout() { f.session = nil }

func (f *fakeClient) Session() (models.Session, bool) {
	if f.session == nil {
		return models.Session{}, false
	}
	return *f.session, true
}

func (f *fakeClient) OUOptions(context.Context) ([]models.Ref, error) {
	return []models.Ref{{ID: "ou-1", Name: "News management"}}, nil
}

func (f *fakeClient) DivisionOptions(context.Context) ([]models.Ref, error) {
	return []models.Ref{{ID: newsID, Name: "News"}}, nil
}

func (f *fakeClient) GetCredentials(_ context.Context, divisionID string) (*models.CredentialRepo, error) {
	f.getDiv = divisionID
	if f.credErr != nil {
		return nil, f.credErr
	}
	repo := f.repo
	return &repo, nil
}

func (f *fakeClient) AddCredential(_ context.Context, divisionID, key, value string) (*models.CredentialRepo, error) {
	f.getDiv = divisionID
	if f.credErr != nil {
		return nil, f.credErr
	}
	c := models.Credential{ID: "new", Key: key, Value: value}
	f.added = append(f.added, c)
	f.repo.Credentials = append(f.repo.Credentials, c)
	repo := f.repo
	return &repo, nil
}

func (f *fakeClient) UpdateCredential(_ context.Context, divisionID string, u models.CredentialUpdate) (*models.CredentialRepo, error) {
	f.getDiv = divisionID
	if err := f.updateErr[u.CredentialID]; err != nil {
		return nil, err
	}
	f.updates = append(f.updates, u)
	repo := f.repo
	return &repo, nil
}

func (f *fakeClient) BatchUpdate(ctx context.Context, divisionID string, updates []models.CredentialUpdate) (*models.CredentialRepo, []models.UpdateResult) {
	var repo *models.CredentialRepo
	results := make([]models.UpdateResult, 0, len(updates))
	for _, u := range updates {
		r, err := f.UpdateCredential(ctx, divisionID, u)
		if err == nil {
			repo = r
		}
		results = append(results, models.UpdateResult{CredentialID: u.CredentialID, Err: err})
	}
	return repo, results
}

func (f *fakeClient) ListUsers(context.Context) ([]models.User, error) {
	return f.users, f.adminErr
}

func (f *fakeClient) ListOUs(context.Context) ([]models.Ref, error) {
	return []models.Ref{{ID: "ou-1", Name: "News management"}}, f.adminErr
}

func (f *fakeClient) ListDivisions(context.Context) ([]models.Division, error) {
	return []models.Division{{ID: newsID, Name: "News", OU: "ou-1", CredentialRepo: "r1"}}, f.adminErr
}

func (f *fakeClient) Assign(_ context.Context, userID, ouID, divisionID string) (*models.User, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	f.assigned = append(f.assigned, "assign "+userID+" "+ouID+" "+divisionID)
	return &models.User{ID: userID, Username: "nick", Role: "normal", Divisions: []models.Ref{{ID: divisionID, Name: "News"}}}, nil
}

func (f *fakeClient) Unassign(_ context.Context, userID, ouID, divisionID string) (*models.User, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	f.assigned = append(f.assigned, "unassign "+userID+" "+ouID+" "+divisionID)
	return &models.User{ID: userID, Username: "nick", Role: "normal"}, nil
}

func (f *fakeClient) ChangeRole(_ context.Context, userID, role string) (*models.User, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	f.roleCalls = append(f.roleCalls, userID+" "+role)
	return &models.User{ID: userID, Username: "nick", Role: role}, nil
}

// newTestApp returns an App reading input from the given lines and writing
// to the returned buffer. Passwords come from the getPassword stub.
func newTestApp(t *testing.T, f *fakeClient, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()

	origGP := getPassword
	getPassword = func(_ io.Writer) (string, error) { return "pw", nil }
	t.Cleanup(func() { getPassword = origGP })

	var out bytes.Buffer
	input := strings.Join(lines, "\n")
	if len(lines) > 0 {
		input += "\n"
	}
	return &App{
		config: &config.Config{ServerEndpointAddr: "http://vault.test"},
		client: f,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    &out,
	}, &out
}
