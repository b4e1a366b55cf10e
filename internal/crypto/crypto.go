// Package crypto provides symmetric AEAD encryption for credentials at
// rest, keyed by a single process-level key (FERNET_KEY in the
// environment). Grounded on the source project's Fernet wrapper in
// common/encryption.py; no Go Fernet implementation exists in the example
// pack, so chacha20poly1305 — already pulled in transitively across the
// pack's crypto-adjacent repos — stands in for it.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrDecryptionFailed = errors.New("crypto: decryption failed")

// Box encrypts and decrypts password material with a single AEAD key.
type Box struct {
	aead cipher.AEAD
}

// New builds a Box from a base64-encoded 32-byte key, as read from the
// FERNET_KEY environment variable.
func New(base64Key string) (*Box, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, errors.New("crypto: FERNET_KEY is not valid base64")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("crypto: FERNET_KEY must decode to 32 bytes")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Box{aead: aead}, nil
}

// Encrypt returns a base64url token of nonce‖ciphertext, analogous to
// Fernet's version‖timestamp‖iv‖ciphertext‖hmac envelope.
func (b *Box) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := b.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt, returning ErrDecryptionFailed on any tampering
// or wrong-key condition rather than the underlying cipher error.
func (b *Box) Decrypt(token string) ([]byte, error) {
	sealed, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	ns := b.aead.NonceSize()
	if len(sealed) < ns {
		return nil, ErrDecryptionFailed
	}
	nonce, ciphertext := sealed[:ns], sealed[ns:]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptString/DecryptString are convenience wrappers for password text.
func (b *Box) EncryptString(s string) (string, error) { return b.Encrypt([]byte(s)) }
func (b *Box) DecryptString(token string) (string, error) {
	plaintext, err := b.Decrypt(token)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
