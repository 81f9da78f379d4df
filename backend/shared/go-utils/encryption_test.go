package utils

import (
	"encoding/base64"
	"errors"
	"testing"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCMEncryptionDecryption(t *testing.T) {
	plaintext := "1-1037-02071-81-1"

	ciphertext, err := Encrypt(testKey(), plaintext)
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	if ciphertext == plaintext {
		t.Fatal("ciphertext must differ from plaintext")
	}

	decrypted, err := Decrypt(testKey(), ciphertext)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("Expected decrypted text '%s', got '%s'", plaintext, decrypted)
	}
}

func TestAESGCMNonceIsRandom(t *testing.T) {
	a, _ := Encrypt(testKey(), "same")
	b, _ := Encrypt(testKey(), "same")
	if a == b {
		t.Fatal("two encryptions of the same text must not be identical")
	}
}

func TestAESGCMInvalidKey(t *testing.T) {
	shortKey := []byte("not-32-bytes")
	if _, err := Encrypt(shortKey, "some text"); !errors.Is(err, ErrEncryptionKeySize) {
		t.Fatalf("Expected ErrEncryptionKeySize, got %v", err)
	}
	if _, err := Decrypt(shortKey, "some ciphertext"); !errors.Is(err, ErrEncryptionKeySize) {
		t.Fatalf("Expected ErrEncryptionKeySize, got %v", err)
	}
}

func TestAESGCMCorruption(t *testing.T) {
	ciphertext, err := Encrypt(testKey(), "Hello")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	raw, _ := base64.URLEncoding.DecodeString(ciphertext)
	raw[len(raw)-1] ^= 0xFF
	if _, err := Decrypt(testKey(), base64.URLEncoding.EncodeToString(raw)); err == nil {
		t.Fatal("Expected authentication failure on tampered ciphertext")
	}
}

func TestAESGCMShortCipher(t *testing.T) {
	short := base64.URLEncoding.EncodeToString([]byte("abc"))
	if _, err := Decrypt(testKey(), short); err == nil {
		t.Fatal("Expected error for ciphertext shorter than nonce")
	}
}

func TestAESGCMInvalidBase64(t *testing.T) {
	if _, err := Decrypt(testKey(), "%%%not-base64%%%"); err == nil {
		t.Fatal("Expected base64 decode error")
	}
}

func TestAESGCMKeyMismatch(t *testing.T) {
	ciphertext, _ := Encrypt(testKey(), "secret")
	other := make([]byte, 32)
	if _, err := Decrypt(other, ciphertext); err == nil {
		t.Fatal("Expected failure when decrypting with another key")
	}
}

func TestOptionalEncryptionKeepsEmpty(t *testing.T) {
	enc, err := EncryptOptional(testKey(), "")
	if err != nil || enc != "" {
		t.Fatalf("expected empty passthrough, got %q (%v)", enc, err)
	}
	dec, err := DecryptOptional(testKey(), "")
	if err != nil || dec != "" {
		t.Fatalf("expected empty passthrough, got %q (%v)", dec, err)
	}
}
