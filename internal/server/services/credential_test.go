package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/server/access"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credFixture struct {
	store    *fakeStore
	news, hw *models.Division
	newsRepo *models.CredentialRepo
	normal   models.Identity
	manager  models.Identity
	admin    models.Identity
	s        *CredentialService
	mock     sqlmock.Sqlmock
}

func newCredFixture(t *testing.T) *credFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newFakeStore()

	ou := store.addOU("News Management")
	news := store.addDivision("NewsFinance", ou.ID)
	hw := store.addDivision("HardwareDev", ou.ID)
	newsRepo := store.addRepo(news,
		models.Credential{Key: "wp_admin", Value: "news_jarvis_rules"},
		models.Credential{Key: "db_pass", Value: "news_mrk47"},
	)

	normal := store.addUser("Ultron", models.RoleNormal)
	normal.Divisions = []models.Ref{{ID: news.ID, Name: news.Name}}
	manager := store.addUser("PeterParker", models.RoleManagement)
	manager.Divisions = []models.Ref{{ID: news.ID, Name: news.Name}}
	admin := store.addUser("TonyStark", models.RoleAdmin)

	return &credFixture{
		store:    store,
		news:     news,
		hw:       hw,
		newsRepo: newsRepo,
		normal:   identityOf(normal),
		manager:  identityOf(manager),
		admin:    identityOf(admin),
		s:        NewCredentialService(db, &fakeRepoManager{store}),
		mock:     mock,
	}
}

func TestGetCredentials(t *testing.T) {
	f := newCredFixture(t)
	ctx := context.Background()

	repo, err := f.s.GetCredentials(ctx, f.normal, f.news.ID)
	require.NoError(t, err)
	assert.Equal(t, "NewsFinanceRepo", repo.Name)
	assert.Len(t, repo.Credentials, 2)

	_, err = f.s.GetCredentials(ctx, f.normal, f.hw.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, access.ReasonRead, err.Error())

	repo, err = f.s.GetCredentials(ctx, f.admin, f.hw.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmptyRepo(), repo)
}

func TestGetCredentials_MissingDivisionIsSameForEveryRole(t *testing.T) {
	f := newCredFixture(t)
	ghost := "7f0c7d5e-4f7a-4c55-9d7a-1b2c3d4e5f60"

	for _, id := range []models.Identity{f.normal, f.manager, f.admin} {
		_, err := f.s.GetCredentials(context.Background(), id, ghost)
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.Equal(t, ReasonDivisionNotFound, err.Error())
	}

	_, err := f.s.GetCredentials(context.Background(), f.admin, "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestAddCredential_CreatesRepoLazily(t *testing.T) {
	f := newCredFixture(t)
	ctx := context.Background()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	repo, err := f.s.AddCredential(ctx, f.admin, f.hw.ID, "api_key", "abc")
	require.NoError(t, err)
	assert.Equal(t, "HardwareDevRepo", repo.Name)
	require.Len(t, repo.Credentials, 1)
	assert.Equal(t, "api_key", repo.Credentials[0].Key)
	assert.Equal(t, repo.ID, f.store.divisions[f.hw.ID].CredentialRepoID)

	again, err := f.s.AddCredential(ctx, f.admin, f.hw.ID, "api_key", "def")
	require.NoError(t, err)
	assert.Equal(t, repo.ID, again.ID)
	assert.Len(t, again.Credentials, 2, "duplicate keys are kept")
	assert.Len(t, f.store.repos, 2)

	assert.Equal(t, []string{f.hw.ID, f.hw.ID}, f.store.locked)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAddCredential_NormalUserInOwnDivision(t *testing.T) {
	f := newCredFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	repo, err := f.s.AddCredential(context.Background(), f.normal, f.news.ID, "ftp", "pw")
	require.NoError(t, err)
	require.Len(t, repo.Credentials, 3)
	assert.Equal(t, "ftp", repo.Credentials[2].Key)
}

func TestAddCredential_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		who    func(f *credFixture) models.Identity
		div    func(f *credFixture) string
		key    string
		value  string
		kind   error
		reason string
	}{
		{
			name: "outside own divisions",
			who:  func(f *credFixture) models.Identity { return f.normal },
			div:  func(f *credFixture) string { return f.hw.ID },
			key:  "k", value: "v",
			kind: common.ErrForbidden, reason: access.ReasonAdd,
		},
		{
			name: "empty value",
			who:  func(f *credFixture) models.Identity { return f.admin },
			div:  func(f *credFixture) string { return f.news.ID },
			key:  "k",
			kind: common.ErrInvalidInput, reason: ReasonKeyValueRequired,
		},
		{
			name:  "empty key",
			who:   func(f *credFixture) models.Identity { return f.manager },
			div:   func(f *credFixture) string { return f.news.ID },
			value: "v",
			kind:  common.ErrInvalidInput, reason: ReasonKeyValueRequired,
		},
		{
			name: "unknown division",
			who:  func(f *credFixture) models.Identity { return f.admin },
			div:  func(f *credFixture) string { return "7f0c7d5e-4f7a-4c55-9d7a-1b2c3d4e5f60" },
			key:  "k", value: "v",
			kind: common.ErrorNotFound, reason: ReasonDivisionNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCredFixture(t)
			f.mock.ExpectBegin()
			f.mock.ExpectRollback()

			_, err := f.s.AddCredential(context.Background(), tt.who(f), tt.div(f), tt.key, tt.value)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.reason, err.Error())
			assert.Len(t, f.store.repos, 1)
			require.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateCredential_PartialUpdate(t *testing.T) {
	f := newCredFixture(t)
	target := f.newsRepo.Credentials[1]

	repo, err := f.s.UpdateCredential(context.Background(), f.manager, f.news.ID, target.ID, "", "rotated")
	require.NoError(t, err)

	got, ok := repo.Find(target.ID)
	require.True(t, ok)
	assert.Equal(t, "db_pass", got.Key)
	assert.Equal(t, "rotated", got.Value)

	repo, err = f.s.UpdateCredential(context.Background(), f.admin, f.news.ID, target.ID, "", "")
	require.NoError(t, err)
	got, _ = repo.Find(target.ID)
	assert.Equal(t, models.Credential{ID: target.ID, Key: "db_pass", Value: "rotated"}, *got)
}

func TestUpdateCredential_Rejections(t *testing.T) {
	f := newCredFixture(t)
	ctx := context.Background()
	target := f.newsRepo.Credentials[0]

	_, err := f.s.UpdateCredential(ctx, f.normal, f.news.ID, target.ID, "k", "v")
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, access.ReasonUpdate, err.Error())

	_, err = f.s.UpdateCredential(ctx, f.admin, f.hw.ID, target.ID, "k", "v")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, ReasonRepoNotFound, err.Error())

	_, err = f.s.UpdateCredential(ctx, f.manager, f.news.ID, "7f0c7d5e-4f7a-4c55-9d7a-1b2c3d4e5f60", "k", "v")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, ReasonCredentialNotFound, err.Error())

	_, err = f.s.UpdateCredential(ctx, f.manager, f.news.ID, "bogus", "k", "v")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.Equal(t, "wp_admin", f.store.repos[f.newsRepo.ID].Credentials[0].Key)
}
