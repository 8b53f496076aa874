package identity

import (
	"errors"
	"testing"
)

func TestComputeUserHash(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		first, err := ComputeUserHash("widget-secret", "ada@example.com")
		if err != nil {
			t.Fatalf("ComputeUserHash() error = %v", err)
		}
		second, err := ComputeUserHash("widget-secret", "ada@example.com")
		if err != nil {
			t.Fatalf("ComputeUserHash() error = %v", err)
		}
		if first != second {
			t.Errorf("hashes differ: %q != %q", first, second)
		}
		if len(first) != 64 {
			t.Errorf("hash length = %d, want 64 hex chars", len(first))
		}
	})

	t.Run("depends on the email", func(t *testing.T) {
		a, _ := ComputeUserHash("widget-secret", "ada@example.com")
		b, _ := ComputeUserHash("widget-secret", "grace@example.com")
		if a == b {
			t.Error("different emails should hash differently")
		}
	})

	t.Run("depends on the secret", func(t *testing.T) {
		a, _ := ComputeUserHash("secret-one", "ada@example.com")
		b, _ := ComputeUserHash("secret-two", "ada@example.com")
		if a == b {
			t.Error("different secrets should hash differently")
		}
	})

	t.Run("empty email is rejected", func(t *testing.T) {
		_, err := ComputeUserHash("widget-secret", "")
		if !errors.Is(err, ErrEmailRequired) {
			t.Errorf("error = %v, want ErrEmailRequired", err)
		}
	})
}

func TestVerifyUserHash(t *testing.T) {
	secret := "widget-secret"
	email := "ada@example.com"

	hash, err := ComputeUserHash(secret, email)
	if err != nil {
		t.Fatalf("ComputeUserHash() error = %v", err)
	}

	t.Run("valid hash passes", func(t *testing.T) {
		if err := VerifyUserHash(secret, email, hash); err != nil {
			t.Errorf("VerifyUserHash() = %v, want nil", err)
		}
	})

	t.Run("wrong email fails", func(t *testing.T) {
		err := VerifyUserHash(secret, "grace@example.com", hash)
		if !errors.Is(err, ErrHashMismatch) {
			t.Errorf("VerifyUserHash() = %v, want ErrHashMismatch", err)
		}
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		err := VerifyUserHash("other-secret", email, hash)
		if !errors.Is(err, ErrHashMismatch) {
			t.Errorf("VerifyUserHash() = %v, want ErrHashMismatch", err)
		}
	})

	t.Run("truncated hash fails", func(t *testing.T) {
		err := VerifyUserHash(secret, email, hash[:32])
		if !errors.Is(err, ErrHashMismatch) {
			t.Errorf("VerifyUserHash() = %v, want ErrHashMismatch", err)
		}
	})
}
