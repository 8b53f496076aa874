package integrationtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/pylon-go/identity"
)

// TestPortalIdentityFlow verifies a customer email hash and mints a
// portal token for it, the handshake a customer portal backend performs.
func TestPortalIdentityFlow(t *testing.T) {
	const (
		secret = "integration-signing-secret-32bb!"
		email  = "ops@globex.test"
	)

	hash, err := identity.ComputeUserHash(secret, email)
	require.NoError(t, err)
	require.NoError(t, identity.VerifyUserHash(secret, email, hash))
	assert.ErrorIs(t, identity.VerifyUserHash(secret, "someone-else@globex.test", hash),
		identity.ErrHashMismatch)

	cfg := identity.TokenConfig{
		Secret: []byte(secret),
		Issuer: "support.globex.test",
	}

	token, err := identity.MintPortalToken(cfg, email)
	require.NoError(t, err)

	claims, err := identity.ValidatePortalToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, email, claims.Subject)
	assert.Equal(t, "support.globex.test", claims.Issuer)

	// A different signing secret must reject the token.
	other := cfg
	other.Secret = []byte("some-other-signing-secret-32byte")
	_, err = identity.ValidatePortalToken(other, token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}
