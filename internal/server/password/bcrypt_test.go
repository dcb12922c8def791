package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck_Roundtrip(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "Secret123" || hash == "" {
		t.Fatalf("hash must not be empty or equal to the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected self-describing bcrypt hash, got %q", hash)
	}

	if !h.Check("Secret123", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if h.Check("wrong", hash) {
		t.Fatalf("expected mismatching password to fail")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same plaintext must differ (random salt)")
	}
}

func TestCheck_GarbageHash(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	if h.Check("anything", "not-a-bcrypt-hash") {
		t.Fatalf("garbage hash must never verify")
	}
}

func TestNewHasher_CostOutOfRange(t *testing.T) {
	t.Parallel()

	h := NewHasher(99)
	if h.cost != DefaultCost {
		t.Fatalf("expected fallback to DefaultCost, got %d", h.cost)
	}
}
