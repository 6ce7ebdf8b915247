package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not be the plaintext")
	}
	if !VerifyPassword(hash, "correct horse battery") {
		t.Fatal("verify must accept the original password")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Fatal("verify must reject a different password")
	}
	if VerifyPassword("not-a-bcrypt-hash", "correct horse battery") {
		t.Fatal("verify must reject a malformed hash")
	}
}
