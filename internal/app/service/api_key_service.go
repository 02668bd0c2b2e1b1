package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/repository"
)

// apiKeyRandomBytes yields a 32-character base64url secret after the
// "sk_" prefix.
const apiKeyRandomBytes = 24

// APIKeyService issues and revokes per-user API keys.
type APIKeyService struct {
	keys repository.APIKeyRepository
}

// NewAPIKeyService creates an API key service.
func NewAPIKeyService(keys repository.APIKeyRepository) *APIKeyService {
	return &APIKeyService{keys: keys}
}

// Generate mints a new key for the user and returns the plaintext.
// Only its digest is persisted; the caller must surface the plaintext
// now or lose it.
func (s *APIKeyService) Generate(ctx context.Context, userID uint) (string, error) {
	buf := make([]byte, apiKeyRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	plain := "sk_" + base64.RawURLEncoding.EncodeToString(buf)

	key := &model.APIKey{
		UserID: userID,
		Digest: digestAPIKey(plain),
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return "", fmt.Errorf("store api key: %w", err)
	}
	return plain, nil
}

// Revoke marks the user's key matching the plaintext as revoked.
// Returns ErrNotFound when the user owns no such key.
func (s *APIKeyService) Revoke(ctx context.Context, userID uint, plain string) error {
	err := s.keys.Revoke(ctx, userID, digestAPIKey(plain))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func digestAPIKey(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
