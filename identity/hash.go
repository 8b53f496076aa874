package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeUserHash computes the hex HMAC-SHA256 identity hash for an
// email. Pylon's embedded chat widget requires this hash alongside the
// email so end users cannot impersonate each other.
func ComputeUserHash(secret, email string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(email))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyUserHash checks an identity hash against an email in constant
// time. Returns ErrHashMismatch when the hash was not produced from this
// email and secret.
func VerifyUserHash(secret, email, hash string) error {
	expected, err := ComputeUserHash(secret, email)
	if err != nil {
		return err
	}

	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return ErrHashMismatch
	}
	return nil
}
