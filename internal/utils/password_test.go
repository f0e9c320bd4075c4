package utils

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "correct horse") {
		t.Error("expected the right password to verify")
	}
	if VerifyPassword(hash, "wrong horse") {
		t.Error("expected a wrong password to fail")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, _ := HashPassword("same", bcrypt.MinCost)
	b, _ := HashPassword("same", bcrypt.MinCost)
	if a == b {
		t.Fatal("two hashes of the same password should differ")
	}
}

func TestHashPasswordOutOfRangeCost(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatal(err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("not-a-hash", "pw") {
		t.Fatal("malformed hash must not verify")
	}
}

func TestHashPasswordRejectsLongMultibyte(t *testing.T) {
	// 40 runes, 80 bytes
	plain := strings.Repeat("é", 40)
	if _, err := HashPassword(plain, bcrypt.MinCost); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("err = %v, want ErrPasswordTooLong", err)
	}
	if _, err := HashPassword(strings.Repeat("é", 36), bcrypt.MinCost); err != nil {
		t.Fatalf("72 bytes should hash: %v", err)
	}
}
