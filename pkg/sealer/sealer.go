// Package sealer issues opaque cancellation tokens that embed the tenant
// and appointment identifiers without exposing them to the caller.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// DefaultKey is the development fallback. Production deployments override
// it with SEALER_KEY.
const DefaultKey = "lfQVRuulcL2iOhOJ2r8BYTweoSKwVAJnIF9U+AL+M60="

type Sealer struct {
	aead cipher.AEAD
}

func New(base64Key string) (*Sealer, error) {
	if base64Key == "" {
		base64Key = DefaultKey
	}

	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decode sealer key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init sealer cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init sealer gcm: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// CancelToken seals a tenant and appointment ID into an opaque URL-safe token.
func (s *Sealer) CancelToken(tenantID string, appointmentID string) (string, error) {
	plaintext := []byte(tenantID + ":" + appointmentID)

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// ParseCancelToken opens a token and returns the tenant and appointment IDs.
func (s *Sealer) ParseCancelToken(token string) (string, string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", err
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", "", fmt.Errorf("token too short")
	}
	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	pt, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", "", err
	}

	parts := strings.SplitN(string(pt), ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid token format")
	}

	return parts[0], parts[1], nil
}
