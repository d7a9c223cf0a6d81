package password_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/svpay/svpay-api/internal/pkg/password"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("hunter22")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals plaintext")
	}

	if !password.Verify("hunter22", hash) {
		t.Fatal("correct password rejected")
	}
	if password.Verify("hunter23", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestHashLengthBound(t *testing.T) {
	if _, err := password.Hash(strings.Repeat("a", 73)); !errors.Is(err, password.ErrTooLong) {
		t.Fatalf("expected ErrTooLong for 73 bytes, got %v", err)
	}

	hash, err := password.Hash(strings.Repeat("a", 72))
	if err != nil {
		t.Fatalf("72-byte password rejected: %v", err)
	}
	if !password.Verify(strings.Repeat("a", 72), hash) {
		t.Fatal("72-byte password does not verify")
	}
}
