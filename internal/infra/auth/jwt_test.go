package auth

import (
	"testing"
	"time"

	"storefront-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue(domain.Principal{UserID: 12, IsAdmin: true})
	require.NoError(t, err)

	p, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), p.UserID)
	assert.True(t, p.IsAdmin)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue(domain.Principal{UserID: 3})
	require.NoError(t, err)

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name   string
		issuer *TokenIssuer
		token  string
	}{
		{"garbage", issuer, "not-a-token"},
		{"wrong secret", NewTokenIssuer("other", time.Hour), token},
		{"expired", expired, token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.issuer.Verify(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
