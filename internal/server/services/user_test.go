package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/server/auth"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUserService wires a service whose operations must not touch the
// transaction machinery.
func newUserService(t *testing.T) (*UserService, *fakeStore) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newFakeStore()
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
	})
	return NewUserService(db, &fakeRepoManager{store}, testConfig()), store
}

func TestRegister_CreatesNormalUserAndIssuesToken(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newFakeStore()
	ou := store.addOU("News Management")
	d := store.addDivision("NewsFinance", ou.ID)
	s := NewUserService(db, &fakeRepoManager{store}, testConfig())

	mock.ExpectBegin()
	mock.ExpectCommit()

	token, err := s.Register(context.Background(), RegisterRequest{
		Username: "Ultron", Password: "extinction101", OUID: ou.ID, DivisionID: d.ID,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	id, err := auth.ParseToken(token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "Ultron", id.Username)
	assert.Equal(t, models.RoleNormal, id.Role)
	assert.Equal(t, []string{d.ID}, id.Divisions)

	stored, err := (&fakeUsersRepo{store}).GetByUsername(context.Background(), "Ultron")
	require.NoError(t, err)
	assert.Equal(t, []models.Ref{{ID: ou.ID, Name: "News Management"}}, stored.OUs)
	assert.NotEqual(t, "extinction101", stored.PasswordHash)
	ok, err := auth.CheckPassword(stored.PasswordHash, "extinction101")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_WithoutMemberships(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewUserService(db, &fakeRepoManager{newFakeStore()}, testConfig())

	mock.ExpectBegin()
	mock.ExpectCommit()

	token, err := s.Register(context.Background(), RegisterRequest{Username: "u", Password: "p"})
	require.NoError(t, err)

	id, err := auth.ParseToken(token, []byte("k"))
	require.NoError(t, err)
	assert.Empty(t, id.Divisions)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db, mock := newSQLMockDB(t)
	store := newFakeStore()
	store.addUser("Ultron", models.RoleNormal)
	s := NewUserService(db, &fakeRepoManager{store}, testConfig())

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Register(context.Background(), RegisterRequest{Username: "Ultron", Password: "x"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, ReasonUsernameTaken, err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_InputChecks(t *testing.T) {
	store := newFakeStore()
	db, _ := newSQLMockDB(t)
	s := NewUserService(db, &fakeRepoManager{store}, testConfig())

	tests := []struct {
		name   string
		req    RegisterRequest
		kind   error
		reason string
	}{
		{"missing password", RegisterRequest{Username: "u"}, common.ErrInvalidInput, ReasonMissingPassword},
		{"missing username", RegisterRequest{Password: "p"}, common.ErrInvalidInput, ReasonMissingPassword},
		{"bad OU id", RegisterRequest{Username: "u", Password: "p", OUID: "nope"}, common.ErrInvalidInput, "invalid OU id"},
		{"bad division id", RegisterRequest{Username: "u", Password: "p", DivisionID: "nope"}, common.ErrInvalidInput, "invalid division id"},
		{"unknown OU", RegisterRequest{Username: "u", Password: "p", OUID: "7f0c7d5e-4f7a-4c55-9d7a-1b2c3d4e5f60"}, common.ErrorNotFound, "OU not found"},
		{"unknown division", RegisterRequest{Username: "u", Password: "p", DivisionID: "7f0c7d5e-4f7a-4c55-9d7a-1b2c3d4e5f60"}, common.ErrorNotFound, "division not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.reason, err.Error())
		})
	}
	assert.Empty(t, store.users)
}

func TestLogin(t *testing.T) {
	s, store := newUserService(t)
	hash, err := auth.HashPassword("ironman456", 4)
	require.NoError(t, err)
	ou := store.addOU("Hardware Reviews")
	d := store.addDivision("HardwareDev", ou.ID)
	u := store.addUser("TonyStark", models.RoleAdmin)
	u.PasswordHash = hash
	u.Divisions = []models.Ref{{ID: d.ID, Name: d.Name}}

	token, err := s.Login(context.Background(), "TonyStark", "ironman456")
	require.NoError(t, err)
	id, err := auth.ParseToken(token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, models.RoleAdmin, id.Role)
	assert.Equal(t, []string{d.ID}, id.Divisions)

	_, err = s.Login(context.Background(), "TonyStark", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, ReasonIncorrectLogin, err.Error())

	_, err = s.Login(context.Background(), "nobody", "ironman456")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, ReasonIncorrectLogin, err.Error())
}

func TestLogin_CorruptHashIsInternal(t *testing.T) {
	s, store := newUserService(t)
	u := store.addUser("broken", models.RoleNormal)
	u.PasswordHash = "not-a-bcrypt-hash"

	_, err := s.Login(context.Background(), "broken", "x")
	assert.True(t, errors.Is(err, common.ErrorInternal))
}

func TestOptions(t *testing.T) {
	s, store := newUserService(t)
	ou := store.addOU("Software Reviews")
	store.addDivision("SoftwareIT", ou.ID)

	ous, err := s.OUOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Ref{{ID: ou.ID, Name: "Software Reviews"}}, ous)

	divisions, err := s.DivisionOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, divisions, 1)
	assert.Equal(t, "SoftwareIT", divisions[0].Name)

	store.err = errors.New("db down")
	_, err = s.OUOptions(context.Background())
	assert.Error(t, err)
	_, err = s.DivisionOptions(context.Background())
	assert.Error(t, err)
}
