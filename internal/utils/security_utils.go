package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const encryptedPrefix = "enc:v1:"

func GetSecret(conf string, file string) string {
	if conf == "" && file == "" {
		return ""
	}

	if conf != "" {
		return conf
	}

	contents, err := ReadFile(file)
	if err != nil {
		return ""
	}

	return ParseSecretFile(contents)
}

func ParseSecretFile(contents string) string {
	for line := range strings.SplitSeq(contents, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return strings.TrimSpace(line)
	}

	return ""
}

// GetRandomString returns a crypto random string of the given length using the
// base64url alphabet, which is also the PKCE unreserved character set.
func GetRandomString(length int) (string, error) {
	if length < 1 {
		return "", errors.New("length must be greater than 0")
	}
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	str := base64.RawURLEncoding.EncodeToString(b)
	return str[:length], nil
}

// RedactSecret keeps enough of a secret to correlate log lines without leaking it
func RedactSecret(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	prefix := secret
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return fmt.Sprintf("%s...(%d chars)", prefix, len(secret))
}

type TokenCipher struct {
	key []byte
}

// NewTokenCipher expects a base64 (std or url) encoded 32 byte key. An empty
// key returns a nil cipher which stores tokens as plain text.
func NewTokenCipher(encodedKey string) (*TokenCipher, error) {
	if encodedKey == "" {
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		key, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(encodedKey, "="))
		if err != nil {
			return nil, fmt.Errorf("failed to decode token encryption key: %w", err)
		}
	}

	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("token encryption key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	return &TokenCipher{key: key}, nil
}

func (c *TokenCipher) Encrypt(plain string) (string, error) {
	if c == nil || plain == "" {
		return plain, nil
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	_, err = rand.Read(nonce)
	if err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return encryptedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt passes through values that were stored before encryption was enabled
func (c *TokenCipher) Decrypt(stored string) (string, error) {
	if !strings.HasPrefix(stored, encryptedPrefix) {
		return stored, nil
	}

	if c == nil {
		return "", errors.New("token is encrypted but no encryption key is configured")
	}

	sealed, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(stored, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode encrypted token: %w", err)
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	if len(sealed) < aead.NonceSize() {
		return "", errors.New("encrypted token is too short")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}

	return string(plain), nil
}
