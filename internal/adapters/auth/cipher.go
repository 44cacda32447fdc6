package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"meetpoll/internal/domain"
)

const (
	cipherKeySize   = 32
	cipherNonceSize = 24
)

type secretboxCipher struct {
	key [cipherKeySize]byte
}

// NewTokenCipher returns a TokenCipher that seals access tokens with NaCl
// secretbox. The key is hex encoded and must decode to exactly 32 bytes.
func NewTokenCipher(hexKey string) (domain.TokenCipher, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("token cipher key is not valid hex: %v", err)
	}
	if len(raw) != cipherKeySize {
		return nil, fmt.Errorf("token cipher key must be %d bytes, got %d", cipherKeySize, len(raw))
	}
	c := &secretboxCipher{}
	copy(c.key[:], raw)
	return c, nil
}

// Encrypt seals the plaintext with a fresh random nonce and returns
// base64(nonce || ciphertext).
func (c *secretboxCipher) Encrypt(plaintext string) (string, error) {
	var nonce [cipherNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *secretboxCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(raw) < cipherNonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	var nonce [cipherNonceSize]byte
	copy(nonce[:], raw[:cipherNonceSize])
	opened, ok := secretbox.Open(nil, raw[cipherNonceSize:], &nonce, &c.key)
	if !ok {
		return "", fmt.Errorf("ciphertext authentication failed")
	}
	return string(opened), nil
}
