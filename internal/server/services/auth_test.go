package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkit/internal/common"
	"github.com/dmitrijs2005/authkit/internal/server/auth"
	"github.com/dmitrijs2005/authkit/internal/server/models"
	"github.com/dmitrijs2005/authkit/internal/server/password"
	"github.com/dmitrijs2005/authkit/internal/server/repositories/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(
		accounts.NewInMemoryRepository(),
		password.NewHasher(bcrypt.MinCost),
		auth.NewManager([]byte("test-secret"), time.Hour),
	)
}

type failingRepo struct {
	err error
}

func (f *failingRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	return nil, f.err
}
func (f *failingRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return nil, f.err
}
func (f *failingRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return nil, f.err
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	s := newTestService(t)

	summary, err := s.Register(context.Background(), "alice", "alice@ex.com", "Secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, "alice", summary.Username)
	assert.Equal(t, "alice@ex.com", summary.Email)
	assert.False(t, summary.CreatedAt.IsZero())
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		pass     string
	}{
		{name: "no username", email: "a@ex.com", pass: "p"},
		{name: "no email", username: "a", pass: "p"},
		{name: "no password", username: "a", email: "a@ex.com"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.username, tc.email, tc.pass)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "alice@ex.com", "p")
	require.NoError(t, err)

	_, err = s.Register(ctx, "other", "alice@ex.com", "p")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.Register(ctx, "alice", "other@ex.com", "p")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	created, err := s.Register(ctx, "alice", "alice@ex.com", "Secret123")
	require.NoError(t, err)

	token, summary, err := s.Login(ctx, "alice@ex.com", "Secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, created.ID, summary.ID)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_WrongPasswordAndUnknownEmail_SameError(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "alice@ex.com", "Secret123")
	require.NoError(t, err)

	_, _, errWrongPass := s.Login(ctx, "alice@ex.com", "not-the-password")
	_, _, errUnknown := s.Login(ctx, "nobody@ex.com", "whatever")

	assert.ErrorIs(t, errWrongPass, common.ErrorInvalidCredentials)
	assert.ErrorIs(t, errUnknown, common.ErrorInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errUnknown.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()

	s := newTestService(t)

	_, _, err := s.Login(context.Background(), "", "p")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, _, err = s.Login(context.Background(), "a@ex.com", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_RepoFailure_IsInternal(t *testing.T) {
	t.Parallel()

	s := NewAuthService(
		&failingRepo{err: errors.New("db down")},
		password.NewHasher(bcrypt.MinCost),
		auth.NewManager([]byte("k"), time.Hour),
	)

	_, _, err := s.Login(context.Background(), "a@ex.com", "p")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestCurrentUser_Success(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	created, err := s.Register(ctx, "alice", "alice@ex.com", "Secret123")
	require.NoError(t, err)

	token, _, err := s.Login(ctx, "alice@ex.com", "Secret123")
	require.NoError(t, err)

	summary, err := s.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, summary.ID)
	assert.Equal(t, "alice@ex.com", summary.Email)
}

func TestCurrentUser_InvalidToken(t *testing.T) {
	t.Parallel()

	s := newTestService(t)

	_, err := s.CurrentUser(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestCurrentUser_AccountNoLongerResolves(t *testing.T) {
	t.Parallel()

	// token is valid, but the store has no matching account
	tokens := auth.NewManager([]byte("k"), time.Hour)
	s := NewAuthService(accounts.NewInMemoryRepository(), password.NewHasher(bcrypt.MinCost), tokens)

	token, err := tokens.Issue("ghost-id", "ghost")
	require.NoError(t, err)

	_, err = s.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestValidateToken_ForeignSecret(t *testing.T) {
	t.Parallel()

	s := newTestService(t)

	foreign := auth.NewManager([]byte("other-secret"), time.Hour)
	token, err := foreign.Issue("u1", "eve")
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
