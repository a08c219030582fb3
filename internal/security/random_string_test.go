package security

import (
	"strings"
	"testing"
)

func TestRandomString(t *testing.T) {
	const alphabet = "abc123"

	value, err := RandomString(32, alphabet)
	if err != nil {
		t.Fatalf("RandomString() error = %v", err)
	}
	if len(value) != 32 {
		t.Fatalf("length = %d, want 32", len(value))
	}
	for _, r := range value {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("character %q outside the alphabet", r)
		}
	}
}

func TestRandomStringEdgeCases(t *testing.T) {
	if value, err := RandomString(0, "abc"); err != nil || value != "" {
		t.Fatalf("zero length = %q, %v; want empty, nil", value, err)
	}
	if _, err := RandomString(-1, "abc"); err == nil {
		t.Fatal("negative length should error")
	}
	if _, err := RandomString(4, ""); err == nil {
		t.Fatal("empty alphabet should error")
	}
	if _, err := RandomString(4, strings.Repeat("a", 300)); err == nil {
		t.Fatal("alphabet wider than a byte should error")
	}
}
