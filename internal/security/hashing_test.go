package security

import (
	"errors"
	"testing"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(4)
	password := []byte("s3cret!pw")
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	ok, err := h.Verify(password, hash)
	if err != nil || !ok {
		t.Fatalf("Verify: ok=%v err=%v", ok, err)
	}
}

func TestHasher_VerifyWrongPassword(t *testing.T) {
	h := NewHasher(4)
	hash, _ := h.Hash([]byte("s3cret!pw"))
	ok, err := h.Verify([]byte("wrong!pw1"), hash)
	if ok {
		t.Fatal("Verify with wrong password should return false")
	}
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("want ErrPasswordMismatch, got %v", err)
	}
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(4)
	ok, err := h.Verify([]byte("whatever1!"), "not-a-bcrypt-hash")
	if ok {
		t.Fatal("Verify with malformed hash should return false")
	}
	if err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("malformed hash should fail with a non-mismatch error, got %v", err)
	}
}

func TestHasher_Cost(t *testing.T) {
	h := NewHasher(12)
	if h.Cost != 12 {
		t.Errorf("Cost want 12, got %d", h.Cost)
	}
	h0 := NewHasher(0)
	if h0.Cost < 4 {
		t.Errorf("zero cost should be clamped to at least MinCost, got %d", h0.Cost)
	}
	h99 := NewHasher(99)
	if h99.Cost > 31 {
		t.Errorf("cost should be clamped to MaxCost, got %d", h99.Cost)
	}
}

func TestIsStrongPassword(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"abc1!efg", true},
		{"A1!aaaaa", true},
		{"short1!", false},        // 7 chars
		{"lettersonly", false},    // no digit, no symbol
		{"12345678!", false},      // no letter
		{"abcdefg1", false},       // no symbol
		{"passw0rd#long", true},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsStrongPassword(tc.password); got != tc.want {
			t.Errorf("IsStrongPassword(%q) want %v, got %v", tc.password, tc.want, got)
		}
	}
}
