package auth

import (
	"strings"
	"testing"
)

func TestTokenGeneration(t *testing.T) {
	token, prefix, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if !IsValidTokenFormat(token) {
		t.Errorf("Generated token has invalid format: %s", token)
	}
	if !strings.HasPrefix(token, TokenPrefix) {
		t.Errorf("Expected %q prefix, got %s", TokenPrefix, token)
	}
	if got := ExtractTokenPrefix(token); got != prefix {
		t.Errorf("ExtractTokenPrefix() = %s, want %s", got, prefix)
	}

	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken() error = %v", err)
	}

	if !VerifyToken(token, hash) {
		t.Error("VerifyToken() returned false for correct token")
	}
	if VerifyToken("wrong_token", hash) {
		t.Error("VerifyToken() returned true for wrong token")
	}
}

func TestTokenUniqueness(t *testing.T) {
	first, _, err := GenerateToken()
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := GenerateToken()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("GenerateToken() returned duplicate tokens")
	}
}

func TestIsValidTokenFormat(t *testing.T) {
	tests := []struct {
		name  string
		token string
		valid bool
	}{
		{"missing prefix", strings.Repeat("ab", 32), false},
		{"too short", TokenPrefix + "abcd", false},
		{"not hex", TokenPrefix + strings.Repeat("zz", 32), false},
		{"valid", TokenPrefix + strings.Repeat("ab", 32), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTokenFormat(tt.token); got != tt.valid {
				t.Errorf("IsValidTokenFormat(%q) = %v, want %v", tt.token, got, tt.valid)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	token, prefix, err := GenerateToken()
	if err != nil {
		t.Fatal(err)
	}

	masked := MaskToken(token)
	if !strings.HasPrefix(masked, TokenPrefix+prefix) {
		t.Errorf("Expected mask to keep the display prefix, got %s", masked)
	}
	if strings.Contains(masked, token[len(TokenPrefix)+TokenPrefixLength:]) {
		t.Error("Mask leaked the token secret")
	}

	if MaskToken("short") != "****" {
		t.Errorf("Expected full mask for malformed token, got %s", MaskToken("short"))
	}
}
