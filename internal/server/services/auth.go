// Package services contains server-side business logic. This file implements
// AuthService, which orchestrates registration, login, and token validation
// on top of the account store, the password hasher and the token manager.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkit/internal/common"
	"github.com/dmitrijs2005/authkit/internal/server/auth"
	"github.com/dmitrijs2005/authkit/internal/server/models"
	"github.com/dmitrijs2005/authkit/internal/server/password"
	"github.com/dmitrijs2005/authkit/internal/server/repositories/accounts"
)

// AccountSummary is the client-visible projection of an account. It never
// carries the password hash.
type AccountSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthService provides the authentication operations consumed by the
// transport layer:
// - Register: create accounts with hashed credentials
// - Login: verify credentials and mint a token
// - ValidateToken: check a token and return its claims
// - CurrentUser: check a token and re-resolve the account it names
type AuthService struct {
	repo       accounts.Repository
	hasher     *password.Hasher
	tokens     *auth.Manager
	parityHash string
}

// NewAuthService constructs an AuthService from its collaborators.
func NewAuthService(repo accounts.Repository, hasher *password.Hasher, tokens *auth.Manager) *AuthService {
	// Hashed once up front so that a login against an unknown email costs
	// the same bcrypt comparison as a wrong password (see Login).
	parityHash, err := hasher.Hash("parity")
	if err != nil {
		parityHash = ""
	}

	return &AuthService{
		repo:       repo,
		hasher:     hasher,
		tokens:     tokens,
		parityHash: parityHash,
	}
}

// Register creates a new account. All three fields are required; beyond
// presence no format or strength checks are applied. A username or email
// collision surfaces as common.ErrorAlreadyExists.
func (s *AuthService) Register(ctx context.Context, username, email, plaintext string) (*AccountSummary, error) {
	if username == "" || email == "" || plaintext == "" {
		return nil, common.ErrorValidation
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account, err := s.repo.Create(ctx, &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return summarize(account), nil
}

// Login verifies the email/password pair and, on success, returns a fresh
// token together with the account summary. Unknown email and wrong password
// both return common.ErrorInvalidCredentials; the unknown-email path still
// performs a bcrypt comparison so the two are not distinguishable by timing.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (string, *AccountSummary, error) {
	if email == "" || plaintext == "" {
		return "", nil, common.ErrorValidation
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Check(plaintext, s.parityHash)
			return "", nil, common.ErrorInvalidCredentials
		}
		return "", nil, common.ErrorInternal
	}

	if !s.hasher.Check(plaintext, account.PasswordHash) {
		return "", nil, common.ErrorInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Username)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, summarize(account), nil
}

// ValidateToken checks the token's signature and expiry and returns its
// claims without touching the store.
func (s *AuthService) ValidateToken(tokenString string) (*auth.Claims, error) {
	return s.tokens.Verify(tokenString)
}

// CurrentUser verifies the token and re-resolves the account it names via
// the store, so a token for an account that no longer resolves is rejected
// even while its signature is still valid.
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*AccountSummary, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	account, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	return summarize(account), nil
}

func summarize(a *models.Account) *AccountSummary {
	return &AccountSummary{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}
