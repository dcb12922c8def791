// Package auth issues and verifies the bearer tokens minted at login.
// Tokens are stateless JWTs signed with a process-wide HMAC secret; nothing
// is persisted, and a token becomes invalid the moment its expiry passes.
package auth

import (
	"time"

	"github.com/dmitrijs2005/authkit/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the set of identity attributes embedded in a token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Manager signs and verifies tokens. The secret is fixed at construction and
// read-only afterwards; it must never appear in logs or responses.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager signing HS256 tokens with the given secret,
// valid for ttl from the moment of issue.
func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{secret: secret, ttl: ttl, now: time.Now}
}

// Issue mints a signed token carrying the user's id and username, with
// issued-at and expiry set from the manager's clock.
func (m *Manager) Issue(userID, username string) (string, error) {
	now := m.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID:   userID,
		Username: username,
	})

	return token.SignedString(m.secret)
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. Malformed, tampered and expired tokens all yield
// common.ErrInvalidToken; callers get no further detail about which it was.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
