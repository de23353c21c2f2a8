// Package fingerprint derives stable identifiers for claims and verdict documents.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"truthbot/pkg/utils"
)

// CachePrefix namespaces verdict cache keys.
const CachePrefix = "truthbot:verdict:"

// NormalizeClaim folds case, collapses whitespace and drops trailing
// punctuation so trivially different phrasings share a fingerprint.
func NormalizeClaim(claim string) string {
	normalized := strings.ToLower(utils.NewStringHelper().NormalizeWhitespace(claim))

	return strings.TrimRightFunc(normalized, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

// ClaimHash computes the SHA-256 hash of the normalized claim.
func ClaimHash(claim string) string {
	return ContentHash(NormalizeClaim(claim))
}

// ContentHash computes the SHA-256 hash of content as-is.
func ContentHash(content string) string {
	hash := sha256.Sum256([]byte(content))

	return hex.EncodeToString(hash[:])
}

// CacheKey returns the cache key for a claim.
func CacheKey(claim string) string {
	return CachePrefix + ClaimHash(claim)
}
