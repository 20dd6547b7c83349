package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/utils"
)

func newTestStore() *UserStore { return NewUserStore(4) }

func sampleUser(email string) *model.User {
	return &model.User{
		Name:     "John Doe",
		Email:    email,
		Password: "User123!",
		Age:      25,
		City:     "Los Angeles",
		Role:     model.RoleUser,
		IsActive: true,
	}
}

func TestCreateAssignsIdentityAndHashesPassword(t *testing.T) {
	s := newTestStore()
	u, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "User123!", u.Password)
	assert.True(t, utils.VerifyPassword(u.Password, "User123!"))
	assert.False(t, u.CreatedAt.IsZero())
	assert.Nil(t, u.LastLogin)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	s := newTestStore()
	_, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	_, err = s.Create(sampleUser("john@example.com"))
	assert.ErrorIs(t, err, ErrEmailExists)

	// Uniqueness is case-insensitive.
	_, err = s.Create(sampleUser("John@Example.com"))
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestFindByEmailNormalizes(t *testing.T) {
	s := newTestStore()
	created, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	u := s.FindByEmail("  JOHN@example.COM ")
	require.NotNil(t, u)
	assert.Equal(t, created.ID, u.ID)
}

func TestAuthenticateFailsClosed(t *testing.T) {
	s := newTestStore()
	created, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	assert.NotNil(t, s.Authenticate("john@example.com", "User123!"))
	assert.Nil(t, s.Authenticate("john@example.com", "wrong"))
	assert.Nil(t, s.Authenticate("nobody@example.com", "User123!"))

	inactive := false
	_, err = s.Update(created.ID, UserPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.Nil(t, s.Authenticate("john@example.com", "User123!"))
}

func TestUpdateRehashesPassword(t *testing.T) {
	s := newTestStore()
	created, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	newPass := "NewPass1!"
	updated, err := s.Update(created.ID, UserPatch{Password: &newPass})
	require.NoError(t, err)
	assert.NotEqual(t, newPass, updated.Password)
	assert.True(t, utils.VerifyPassword(updated.Password, newPass))
	assert.False(t, utils.VerifyPassword(updated.Password, "User123!"))
}

func TestUpdateRejectsDuplicateEmail(t *testing.T) {
	s := newTestStore()
	_, err := s.Create(sampleUser("a@example.com"))
	require.NoError(t, err)
	b, err := s.Create(sampleUser("b@example.com"))
	require.NoError(t, err)

	// Patching b onto a's address must fail, case-insensitively, and leave
	// exactly one holder of the address behind.
	for _, dup := range []string{"a@example.com", "A@Example.COM"} {
		email := dup
		_, err = s.Update(b.ID, UserPatch{Email: &email})
		assert.ErrorIs(t, err, ErrEmailExists)
	}
	fresh := s.FindByID(b.ID)
	assert.Equal(t, "b@example.com", fresh.Email)

	holders := 0
	for _, u := range s.FindAll() {
		if u.Email == "a@example.com" {
			holders++
		}
	}
	assert.Equal(t, 1, holders)

	// Re-asserting your own address is not a conflict.
	same := "b@example.com"
	_, err = s.Update(b.ID, UserPatch{Email: &same})
	assert.NoError(t, err)
}

func TestUpdateMissingUser(t *testing.T) {
	s := newTestStore()
	_, err := s.Update("nope", UserPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmailExistsExcludesSelf(t *testing.T) {
	s := newTestStore()
	u, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	assert.True(t, s.EmailExists("john@example.com", ""))
	assert.False(t, s.EmailExists("john@example.com", u.ID))
	assert.False(t, s.EmailExists("other@example.com", ""))
}

func TestRefreshTokenLifecycle(t *testing.T) {
	s := newTestStore()
	u, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	s.AddRefreshToken(u.ID, "h1")
	s.AddRefreshToken(u.ID, "h2")
	assert.True(t, s.HasRefreshToken(u.ID, "h1"))
	assert.True(t, s.HasRefreshToken(u.ID, "h2"))

	s.RemoveRefreshToken(u.ID, "h1")
	assert.False(t, s.HasRefreshToken(u.ID, "h1"))
	assert.True(t, s.HasRefreshToken(u.ID, "h2"))

	s.ClearRefreshTokens(u.ID)
	assert.False(t, s.HasRefreshToken(u.ID, "h2"))
}

func TestRotateRefreshToken(t *testing.T) {
	s := newTestStore()
	u, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	s.AddRefreshToken(u.ID, "old")
	require.NoError(t, s.RotateRefreshToken(u.ID, "old", "new"))
	assert.False(t, s.HasRefreshToken(u.ID, "old"))
	assert.True(t, s.HasRefreshToken(u.ID, "new"))

	// A second rotation of the consumed token must fail and add nothing.
	err = s.RotateRefreshToken(u.ID, "old", "newer")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.False(t, s.HasRefreshToken(u.ID, "newer"))

	assert.ErrorIs(t, s.RotateRefreshToken("nope", "old", "new"), ErrNotFound)
}

func TestDeleteReturnsRemovedUser(t *testing.T) {
	s := newTestStore()
	u, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)

	deleted := s.Delete(u.ID)
	require.NotNil(t, deleted)
	assert.Equal(t, u.ID, deleted.ID)
	assert.Nil(t, s.FindByID(u.ID))
	assert.Nil(t, s.Delete(u.ID))
}

func TestCallersReceiveCopies(t *testing.T) {
	s := newTestStore()
	u, err := s.Create(sampleUser("john@example.com"))
	require.NoError(t, err)
	s.AddRefreshToken(u.ID, "h1")

	got := s.FindByID(u.ID)
	got.Email = "tampered@example.com"
	got.RefreshTokens = append(got.RefreshTokens, "injected")

	fresh := s.FindByID(u.ID)
	assert.Equal(t, "john@example.com", fresh.Email)
	assert.False(t, s.HasRefreshToken(u.ID, "injected"))
}

func TestCounts(t *testing.T) {
	s := newTestStore()
	a, err := s.Create(sampleUser("a@example.com"))
	require.NoError(t, err)
	_, err = s.Create(sampleUser("b@example.com"))
	require.NoError(t, err)

	inactive := false
	_, err = s.Update(a.ID, UserPatch{IsActive: &inactive})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Count())
	assert.Equal(t, 1, s.ActiveCount())
	assert.Len(t, s.FindByRole(model.RoleUser), 2)
	assert.Empty(t, s.FindByRole(model.RoleAdmin))
}
