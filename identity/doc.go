// Package identity implements Pylon identity verification: HMAC user
// hashes for the embedded chat widget and signed JWT tokens for
// customer-portal links.
//
// User hashes bind a chat session to a verified email:
//
//	hash, err := identity.ComputeUserHash(secret, "ada@example.com")
//
// Portal tokens are short-lived HS256 JWTs:
//
//	cfg := identity.TokenConfig{Secret: secret, Issuer: "support.example.com"}
//	token, err := identity.MintPortalToken(cfg, "ada@example.com")
//	claims, err := identity.ValidatePortalToken(cfg, token)
package identity
