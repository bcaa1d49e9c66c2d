// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

// adminScope prefixes the chamber in the HMAC input.
const adminScope = "datasets:"

// GenerateAdminKey creates the HMAC-based key that authorizes dataset
// imports for one chamber. This is deterministic and verifiable
func GenerateAdminKey(chamber, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(adminScope + chamber))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the chamber
func ValidateAdminKey(chamber, adminKey, salt string) error {
	if salt == "" || adminKey == "" {
		return ErrInvalidAdminKey
	}
	expected := GenerateAdminKey(chamber, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough to tell importers apart
	return hex.EncodeToString(sum[:8])
}
