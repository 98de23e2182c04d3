package auth

import (
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	UserID  uint64 `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) Issue(p domain.Principal) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:  p.UserID,
		IsAdmin: p.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(p.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify fails with domain.ErrUnauthorized for any malformed, expired or foreign token.
func (i *TokenIssuer) Verify(tokenString string) (domain.Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if c.UserID == 0 {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, errors.New("token has no subject"))
	}
	return domain.Principal{UserID: c.UserID, IsAdmin: c.IsAdmin}, nil
}
