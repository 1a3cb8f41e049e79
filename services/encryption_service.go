package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// EncryptionKeyEnv names the base64 AES-256 key used for secrets at rest
const EncryptionKeyEnv = "DATA_ENCRYPTION_KEY"

// sealedPrefix marks values written by SealSecret
const sealedPrefix = "enc:v1:"

var (
	ErrEncryptionKeyNotSet = errors.New(EncryptionKeyEnv + " environment variable is not set")
	ErrInvalidCiphertext   = errors.New("invalid ciphertext")
)

// encryptionKey reads and checks the 32 byte key
func encryptionKey() ([]byte, error) {
	keyStr := os.Getenv(EncryptionKeyEnv)
	if keyStr == "" {
		return nil, ErrEncryptionKeyNotSet
	}
	key, err := base64.StdEncoding.DecodeString(keyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes (got %d bytes)", len(key))
	}
	return key, nil
}

func newGCM() (cipher.AEAD, error) {
	key, err := encryptionKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// EncryptSensitiveData encrypts plaintext with AES-256-GCM and returns base64(nonce|ciphertext)
func EncryptSensitiveData(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := newGCM()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptSensitiveData reverses EncryptSensitiveData
func DecryptSensitiveData(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	gcm, err := newGCM()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(data) < gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, body := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// SealSecret encrypts a stored credential when a key is configured and keeps it
// as plaintext otherwise
func SealSecret(secret string) (string, error) {
	if secret == "" {
		return "", nil
	}
	encrypted, err := EncryptSensitiveData(secret)
	if errors.Is(err, ErrEncryptionKeyNotSet) {
		log.Printf("[WARNING] %s not set, storing SMTP password unencrypted", EncryptionKeyEnv)
		return secret, nil
	}
	if err != nil {
		return "", err
	}
	return sealedPrefix + encrypted, nil
}

// OpenSecret returns the plaintext of a value written by SealSecret
func OpenSecret(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	return DecryptSensitiveData(strings.TrimPrefix(stored, sealedPrefix))
}

// GenerateEncryptionKey returns a random base64 key for DATA_ENCRYPTION_KEY
func GenerateEncryptionKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
