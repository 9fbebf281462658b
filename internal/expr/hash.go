package expr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainExpression = "termite/expression/v1"
	DomainPartition  = "termite/partition/v1"
)

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content hash of e's canonical form.
// Two expressions that canonicalize to the same tree hash identically.
func Hash(e Expression) (string, error) {
	data, err := MarshalCanonical(Canonicalize(e))
	if err != nil {
		return "", fmt.Errorf("Hash: failed to marshal: %w", err)
	}
	return HashWithDomain(DomainExpression, data), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustHash(e Expression) string {
	h, err := Hash(e)
	if err != nil {
		panic(err)
	}
	return h
}
