package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingSecret = errors.New("redirect secret is not configured")
)

// TokenSigner issues and validates the compact HMAC tokens embedded
// in interstitial continue URLs. The token binds a short code to a
// TTL so the continue hop cannot be replayed to record extra clicks
// long after the interstitial was served.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner returns a signer for the given secret and TTL.
func NewTokenSigner(secret []byte, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: secret, ttl: ttl}
}

// Issue mints a token for the provided short code.
func (s *TokenSigner) Issue(code string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	// 4 bytes expiry + 8 random bytes.
	payload := make([]byte, 12)
	binary.BigEndian.PutUint32(payload[:4], uint32(time.Now().Add(s.ttl).Unix()))
	if _, err := rand.Read(payload[4:]); err != nil {
		return "", err
	}

	signature := s.sign(code, payload)
	return fmt.Sprintf("%s.%s",
		base64.RawURLEncoding.EncodeToString(payload),
		base64.RawURLEncoding.EncodeToString(signature[:16])), nil
}

// Validate checks signature integrity and TTL of the token.
func (s *TokenSigner) Validate(code, token string) error {
	if len(s.secret) == 0 {
		return ErrMissingSecret
	}

	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(payload) < 4 {
		return ErrInvalidToken
	}
	sigProvided, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(sigProvided) != 16 {
		return ErrInvalidToken
	}

	expected := s.sign(code, payload)
	if !hmac.Equal(sigProvided, expected[:16]) {
		return ErrInvalidToken
	}

	expires := binary.BigEndian.Uint32(payload[:4])
	if time.Now().Unix() > int64(expires) {
		return ErrInvalidToken
	}
	return nil
}

func (s *TokenSigner) sign(code string, payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(code))
	mac.Write([]byte("|"))
	mac.Write(payload)
	return mac.Sum(nil)
}
