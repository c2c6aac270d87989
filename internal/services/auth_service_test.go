package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevatecapital/fundtracker/internal/models"
)

func TestSignUpApproveSignIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.RequestSignUp(ctx, models.SignUpRequest{
		Name: "Asha", Email: " Asha@Example.com", Mobile: "99999", Password: "pw",
	})
	require.NoError(t, err)

	// pending accounts cannot sign in
	_, err = env.auth.SignIn(ctx, models.SignInRequest{Email: "asha@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	pending, err := env.auth.PendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.NotEqual(t, "pw", pending[0].PasswordHash)

	resp, err := env.auth.ApproveUser(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "approved")

	member, err := env.repos.Members.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha", member.Name)

	signIn, err := env.auth.SignIn(ctx, models.SignInRequest{Email: "ASHA@example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, signIn.IsAuthenticated)
	assert.Equal(t, "asha@example.com", signIn.Email)
	assert.False(t, signIn.IsAdmin)

	// approving twice does not duplicate the member row
	_, err = env.auth.ApproveUser(ctx, "asha@example.com")
	require.NoError(t, err)
	members, err := env.repos.Members.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.activeUser(t, "Admin", testAdmin)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", testAdmin, "nope"},
		{"unknown email", "ghost@example.com", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.auth.SignIn(ctx, models.SignInRequest{Email: tt.email, Password: tt.password})
			require.NoError(t, err)
			assert.False(t, resp.IsAuthenticated)
			assert.Equal(t, "Invalid email or password.", resp.Message)
		})
	}

	resp, err := env.auth.SignIn(ctx, models.SignInRequest{Email: testAdmin, Password: "secret"})
	require.NoError(t, err)
	assert.True(t, resp.IsAuthenticated)
	assert.True(t, resp.IsAdmin)
}

func TestSignIn_RateLimitedPerEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < signInBurst; i++ {
		_, err := env.auth.SignIn(ctx, models.SignInRequest{Email: "x@example.com", Password: "bad"})
		require.NoError(t, err)
	}
	_, err := env.auth.SignIn(ctx, models.SignInRequest{Email: "X@example.com", Password: "bad"})
	assert.ErrorIs(t, err, ErrRateLimited)

	// other emails are unaffected
	_, err = env.auth.SignIn(ctx, models.SignInRequest{Email: "y@example.com", Password: "bad"})
	assert.NoError(t, err)
}

func TestRequestSignUp_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.SignUpRequest
		want error
	}{
		{"missing name", models.SignUpRequest{Email: "a@x.com", Password: "pw"}, ErrValidation},
		{"bad email", models.SignUpRequest{Name: "A", Email: "ax.com", Password: "pw"}, ErrValidation},
		{"missing password", models.SignUpRequest{Name: "A", Email: "a@x.com"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.RequestSignUp(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := env.auth.RequestSignUp(ctx, models.SignUpRequest{Name: "A", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	_, err = env.auth.RequestSignUp(ctx, models.SignUpRequest{Name: "A2", Email: "A@X.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRejectUser_OnlyPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.activeUser(t, "Active", "active@x.com")

	_, err := env.auth.RejectUser(ctx, "active@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.auth.RequestSignUp(ctx, models.SignUpRequest{Name: "P", Email: "p@x.com", Password: "pw"})
	require.NoError(t, err)
	_, err = env.auth.RejectUser(ctx, "P@x.com")
	require.NoError(t, err)

	_, err = env.repos.Users.GetByEmail(ctx, "p@x.com")
	assert.Error(t, err)
}

func TestAddUser_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.activeUser(t, "A", "a@x.com")

	_, err := env.auth.AddUser(ctx, models.AddUserRequest{NewName: "B", NewEmail: "A@x.com", NewPassword: "pw"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateProfile_PropagatesName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.activeUser(t, "Old", "a@x.com")

	_, err := env.auth.UpdateProfile(ctx, models.UpdateProfileRequest{Email: "A@x.com", Name: "New", Mobile: "123"})
	require.NoError(t, err)

	user, err := env.repos.Users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "New", user.Name)
	assert.Equal(t, "123", user.Mobile)

	member, err := env.repos.Members.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "New", member.Name)

	_, err = env.auth.UpdateProfile(ctx, models.UpdateProfileRequest{Email: "ghost@x.com", Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	env := newTestEnv(t)

	assert.NoError(t, env.auth.EnsureAdmin(" ADMIN@example.com"))
	assert.ErrorIs(t, env.auth.EnsureAdmin("someone@example.com"), ErrUnauthorized)
	assert.ErrorIs(t, env.auth.EnsureAdmin(""), ErrUnauthorized)
}
