package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// AES-256-GCM, stored as URL-safe Base64 of [nonce(12) || ciphertext || tag(16)].
// Used for PII columns (Thai ID card numbers) that must be recoverable.

var ErrEncryptionKeySize = errors.New("encryption key must be 32 bytes for AES-256")

// Encrypt encrypts the provided plaintext with AES-256-GCM.
func Encrypt(encryptionKey []byte, text string) (string, error) {
	gcm, err := newGCM(encryptionKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	data := gcm.Seal(nonce, nonce, []byte(text), nil)
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decrypt reverses Encrypt.
func Decrypt(encryptionKey []byte, encoded string) (string, error) {
	gcm, err := newGCM(encryptionKey)
	if err != nil {
		return "", err
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.New("malformed ciphertext (too short for nonce)")
	}

	plaintext, err := gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptOptional leaves empty values empty so nullable columns stay NULL-like.
func EncryptOptional(encryptionKey []byte, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	return Encrypt(encryptionKey, text)
}

func DecryptOptional(encryptionKey []byte, encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	return Decrypt(encryptionKey, encoded)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, ErrEncryptionKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
