// Package auth implements the single-token authentication scheme for the
// local annotation server. Only the bcrypt hash and a short lookup prefix
// are persisted; the raw token is shown once at generation time.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenPrefix is the prefix for API tokens (secret keys)
	TokenPrefix = "lens_sk_" // #nosec G101 //nolint:gosec // Not a credential, just a prefix pattern

	// TokenPrefixLength is the number of characters stored alongside the
	// hash for display and lookup
	TokenPrefixLength = 8

	// TokenLength is the length of the random part of tokens (in bytes,
	// hex encoded on the wire)
	TokenLength = 32

	// bcryptCost is the cost factor for bcrypt hashing
	bcryptCost = 12
)

// GenerateToken generates a new API token.
// Returns: raw token, display prefix, error.
func GenerateToken() (string, string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}

	hexToken := hex.EncodeToString(bytes)
	return TokenPrefix + hexToken, hexToken[:TokenPrefixLength], nil
}

// HashToken creates a bcrypt hash of a token. The prefix is stripped first
// so only the secret part is hashed.
func HashToken(token string) (string, error) {
	secret := strings.TrimPrefix(token, TokenPrefix)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken checks if a token matches a hash
func VerifyToken(token, hash string) bool {
	secret := strings.TrimPrefix(token, TokenPrefix)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}

// ExtractTokenPrefix extracts the display prefix from a full token
func ExtractTokenPrefix(token string) string {
	secret := strings.TrimPrefix(token, TokenPrefix)
	if len(secret) < TokenPrefixLength {
		return secret
	}
	return secret[:TokenPrefixLength]
}

// IsValidTokenFormat checks if a token has the correct format
func IsValidTokenFormat(token string) bool {
	if !strings.HasPrefix(token, TokenPrefix) {
		return false
	}
	secret := strings.TrimPrefix(token, TokenPrefix)
	if len(secret) != TokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(secret)
	return err == nil
}

// MaskToken returns a masked version of a token for display.
// Example: lens_sk_a1b2c3d4****...****
func MaskToken(token string) string {
	if len(token) < len(TokenPrefix)+TokenPrefixLength {
		return "****"
	}
	return token[:len(TokenPrefix)+TokenPrefixLength] + "****...****"
}
