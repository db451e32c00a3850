package internal

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// APIKey is the stored state of one client key. An empty Drivers list grants
// every rates driver.
type APIKey struct {
	Active  bool
	Drivers []string
}

// AllowsDriver reports whether the key may read rates from the named driver.
func (k *APIKey) AllowsDriver(name string) bool {
	if len(k.Drivers) == 0 {
		return true
	}
	name = strings.ToLower(strings.TrimSpace(name))
	return slices.ContainsFunc(k.Drivers, func(d string) bool {
		return strings.EqualFold(strings.TrimSpace(d), name)
	})
}

// APIKeyRepository looks keys up by hash; unknown hashes return nil, nil.
type APIKeyRepository interface {
	FindByHash(ctx context.Context, keyHash string) (*APIKey, error)
}

// HMACKeyValidator stores only HMAC-SHA256(rawKey, encodingKey) hex digests.
type HMACKeyValidator struct {
	repo        APIKeyRepository
	encodingKey string
}

func NewAPIKeyValidator(repo APIKeyRepository, encodingKey string) *HMACKeyValidator {
	return &HMACKeyValidator{
		repo:        repo,
		encodingKey: strings.TrimSpace(encodingKey),
	}
}

// Validate returns nil for an empty or unknown key.
func (v *HMACKeyValidator) Validate(ctx context.Context, rawKey string) (*APIKey, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, nil
	}
	return v.repo.FindByHash(ctx, v.Hash(rawKey))
}

// Hash is the digest api_keys.key_hash holds for rawKey.
func (v *HMACKeyValidator) Hash(rawKey string) string {
	mac := hmac.New(sha256.New, []byte(v.encodingKey))
	_, _ = mac.Write([]byte(strings.TrimSpace(rawKey)))
	return hex.EncodeToString(mac.Sum(nil))
}
