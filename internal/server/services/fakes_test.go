package services

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/dbx"
	"github.com/dmitrijs2005/divvault/internal/server/config"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/divisions"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/ous"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		PasswordHashCost:            bcrypt.MinCost,
	}
}

// fakeStore is an in-memory directory shared by the fake repositories.
type fakeStore struct {
	users     map[string]*models.User
	ous       map[string]*models.OU
	divisions map[string]*models.Division
	repos     map[string]*models.CredentialRepo

	locked []string
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]*models.User{},
		ous:       map[string]*models.OU{},
		divisions: map[string]*models.Division{},
		repos:     map[string]*models.CredentialRepo{},
	}
}

func (s *fakeStore) addOU(name string) *models.OU {
	ou := &models.OU{ID: uuid.NewString(), Name: name}
	s.ous[ou.ID] = ou
	return ou
}

func (s *fakeStore) addDivision(name, ouID string) *models.Division {
	d := &models.Division{ID: uuid.NewString(), Name: name, OUID: ouID}
	s.divisions[d.ID] = d
	return d
}

func (s *fakeStore) addRepo(d *models.Division, creds ...models.Credential) *models.CredentialRepo {
	r := &models.CredentialRepo{ID: uuid.NewString(), Name: d.RepoName(), Credentials: []models.Credential{}}
	for _, c := range creds {
		c.ID = uuid.NewString()
		r.Credentials = append(r.Credentials, c)
	}
	s.repos[r.ID] = r
	d.CredentialRepoID = r.ID
	return r
}

func (s *fakeStore) addUser(name string, role models.Role) *models.User {
	u := &models.User{ID: uuid.NewString(), Username: name, Role: role, OUs: []models.Ref{}, Divisions: []models.Ref{}}
	s.users[u.ID] = u
	return u
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.OUs = slices.Clone(u.OUs)
	c.Divisions = slices.Clone(u.Divisions)
	return &c
}

// --- users ---

type fakeUsersRepo struct{ s *fakeStore }

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.s.err != nil {
		return nil, f.s.err
	}
	for _, existing := range f.s.users {
		if existing.Username == u.Username {
			return nil, common.ErrorAlreadyExists
		}
	}
	stored := &models.User{
		ID:           uuid.NewString(),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		OUs:          []models.Ref{},
		Divisions:    []models.Ref{},
	}
	f.s.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	if f.s.err != nil {
		return nil, f.s.err
	}
	out := []*models.User{}
	for _, u := range f.s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUsersRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Role = role
	return nil
}

func hasRef(refs []models.Ref, id string) bool {
	return slices.ContainsFunc(refs, func(r models.Ref) bool { return r.ID == id })
}

func dropRef(refs []models.Ref, id string) []models.Ref {
	return slices.DeleteFunc(refs, func(r models.Ref) bool { return r.ID == id })
}

func (f *fakeUsersRepo) AddOU(ctx context.Context, userID, ouID string) error {
	u, ok := f.s.users[userID]
	ou, ok2 := f.s.ous[ouID]
	if !ok || !ok2 {
		return common.ErrorNotFound
	}
	if !hasRef(u.OUs, ouID) {
		u.OUs = append(u.OUs, models.Ref{ID: ou.ID, Name: ou.Name})
	}
	return nil
}

func (f *fakeUsersRepo) RemoveOU(ctx context.Context, userID, ouID string) error {
	if u, ok := f.s.users[userID]; ok {
		u.OUs = dropRef(u.OUs, ouID)
	}
	return nil
}

func (f *fakeUsersRepo) AddDivision(ctx context.Context, userID, divisionID string) error {
	u, ok := f.s.users[userID]
	d, ok2 := f.s.divisions[divisionID]
	if !ok || !ok2 {
		return common.ErrorNotFound
	}
	if !hasRef(u.Divisions, divisionID) {
		u.Divisions = append(u.Divisions, models.Ref{ID: d.ID, Name: d.Name})
	}
	return nil
}

func (f *fakeUsersRepo) RemoveDivision(ctx context.Context, userID, divisionID string) error {
	if u, ok := f.s.users[userID]; ok {
		u.Divisions = dropRef(u.Divisions, divisionID)
	}
	return nil
}

// --- ous ---

type fakeOUsRepo struct{ s *fakeStore }

func (f *fakeOUsRepo) Create(ctx context.Context, name string) (*models.OU, error) {
	return f.s.addOU(name), nil
}

func (f *fakeOUsRepo) GetByID(ctx context.Context, id string) (*models.OU, error) {
	ou, ok := f.s.ous[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *ou
	return &c, nil
}

func (f *fakeOUsRepo) List(ctx context.Context) ([]*models.OU, error) {
	if f.s.err != nil {
		return nil, f.s.err
	}
	out := []*models.OU{}
	for _, ou := range f.s.ous {
		c := *ou
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- divisions ---

type fakeDivisionsRepo struct{ s *fakeStore }

func (f *fakeDivisionsRepo) Create(ctx context.Context, d *models.Division) (*models.Division, error) {
	return f.s.addDivision(d.Name, d.OUID), nil
}

func (f *fakeDivisionsRepo) GetByID(ctx context.Context, id string) (*models.Division, error) {
	d, ok := f.s.divisions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *d
	return &c, nil
}

func (f *fakeDivisionsRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.Division, error) {
	f.s.locked = append(f.s.locked, id)
	return f.GetByID(ctx, id)
}

func (f *fakeDivisionsRepo) List(ctx context.Context) ([]*models.Division, error) {
	if f.s.err != nil {
		return nil, f.s.err
	}
	out := []*models.Division{}
	for _, d := range f.s.divisions {
		c := *d
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeDivisionsRepo) SetCredentialRepo(ctx context.Context, divisionID, repoID string) error {
	d, ok := f.s.divisions[divisionID]
	if !ok {
		return common.ErrorNotFound
	}
	d.CredentialRepoID = repoID
	return nil
}

// --- credentials ---

type fakeCredentialsRepo struct{ s *fakeStore }

func (f *fakeCredentialsRepo) CreateRepo(ctx context.Context, name string) (*models.CredentialRepo, error) {
	r := &models.CredentialRepo{ID: uuid.NewString(), Name: name, Credentials: []models.Credential{}}
	f.s.repos[r.ID] = r
	return r, nil
}

func (f *fakeCredentialsRepo) GetRepo(ctx context.Context, id string) (*models.CredentialRepo, error) {
	r, ok := f.s.repos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r
	c.Credentials = slices.Clone(r.Credentials)
	return &c, nil
}

func (f *fakeCredentialsRepo) Add(ctx context.Context, repoID, key, value string) (*models.Credential, error) {
	r, ok := f.s.repos[repoID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := models.Credential{ID: uuid.NewString(), Key: key, Value: value}
	r.Credentials = append(r.Credentials, c)
	return &c, nil
}

func (f *fakeCredentialsRepo) Update(ctx context.Context, repoID, credentialID, key, value string) error {
	r, ok := f.s.repos[repoID]
	if !ok {
		return common.ErrorNotFound
	}
	for i := range r.Credentials {
		if r.Credentials[i].ID == credentialID {
			if key != "" {
				r.Credentials[i].Key = key
			}
			if value != "" {
				r.Credentials[i].Value = value
			}
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- manager ---

type fakeRepoManager struct{ s *fakeStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Reset(context.Context, dbx.DBTX) error        { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return &fakeUsersRepo{m.s} }
func (m *fakeRepoManager) OUs(db dbx.DBTX) ous.Repository               { return &fakeOUsRepo{m.s} }
func (m *fakeRepoManager) Divisions(db dbx.DBTX) divisions.Repository   { return &fakeDivisionsRepo{m.s} }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository {
	return &fakeCredentialsRepo{m.s}
}

func identityOf(u *models.User) models.Identity {
	return models.Identity{UserID: u.ID, Username: u.Username, Role: u.Role, Divisions: u.DivisionIDs()}
}
