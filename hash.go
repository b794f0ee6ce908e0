package stencil

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// sha256Digest commits the hex-encoded SHA-256 of strings and byte slices.
// Deterministic, so mapped values can be compared or used as lookup keys.
func sha256Digest(raw any) (any, bool) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return raw, false
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), true
}

// Bcrypt returns a factory that replaces a plaintext secret with its bcrypt
// hash. Cost values outside bcrypt's range fall back to bcrypt.DefaultCost.
// Empty strings, non-strings and secrets longer than 72 bytes are rejected.
func Bcrypt(cost int) ValidatorFactory {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Normalizer(func(raw any) (any, bool) {
		secret, ok := raw.(string)
		if !ok || secret == "" {
			return raw, false
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
		if err != nil {
			return raw, false
		}
		return string(hash), true
	})
}
