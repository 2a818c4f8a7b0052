package services

import (
	"context"
	"testing"
	"time"

	"photoshare/internal/apperr"
	"photoshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountService() (*AccountService, *testutil.MemAccounts) {
	accounts := testutil.NewMemAccounts()
	return NewAccountService(accounts, "test-secret", time.Hour), accounts
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	account, err := svc.Register(ctx, "alice", "password123", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Handle)
	assert.NotEqual(t, "password123", account.PasswordHash, "secret must not be stored in plaintext")

	loggedIn, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, loggedIn.ID)

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	tests := []struct {
		name    string
		handle  string
		secret  string
		confirm string
		field   string
	}{
		{"empty handle", "", "password123", "password123", "handle"},
		{"oversized handle", string(make([]byte, 256)), "password123", "password123", "handle"},
		{"empty secret", "bob", "", "", "secret"},
		{"short secret", "bob", "short", "short", "secret"},
		{"mismatched confirmation", "bob", "password123", "password124", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.handle, tt.secret, tt.confirm)
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestRegisterDuplicateHandle(t *testing.T) {
	svc, accounts := newAccountService()
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice", "password123", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "different-pass", "different-pass")
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "handle")

	// The existing account's credential is untouched.
	stored, err := accounts.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PasswordHash, stored.PasswordHash)
	_, err = svc.Login(ctx, "alice", "password123")
	assert.NoError(t, err)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc, _ := newAccountService()

	token, err := svc.GenerateJWT("account-1")
	require.NoError(t, err)

	accountID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", accountID)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	svc, _ := newAccountService()
	other := NewAccountService(testutil.NewMemAccounts(), "other-secret", time.Hour)

	token, err := svc.GenerateJWT("account-1")
	require.NoError(t, err)

	_, err = other.ValidateJWT(token)
	assert.Error(t, err)

	_, err = svc.ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestSessionTokenExpiry(t *testing.T) {
	svc := NewAccountService(testutil.NewMemAccounts(), "test-secret", -time.Minute)

	token, err := svc.GenerateJWT("account-1")
	require.NoError(t, err)

	_, err = svc.ValidateJWT(token)
	assert.Error(t, err, "expired token must be rejected")
}
