package repository

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// MinSealSecretLength is the shortest secret Seal accepts.
const MinSealSecretLength = 16

const sealInfo = "litelist credential store v1"

// ErrUnsealFailed means a stored value was not produced by this secret.
var ErrUnsealFailed = errors.New("failed to unseal credential: wrong secret or corrupted value")

// SealedStore encrypts values with ChaCha20-Poly1305 before handing them to
// the wrapped Store. The key name is bound as additional data, so a value
// copied to another key does not open.
type SealedStore struct {
	next Store
	aead cipher.AEAD
}

// Seal wraps next. The cipher key is derived from secret with HKDF-SHA256.
func Seal(next Store, secret []byte) (*SealedStore, error) {
	if len(secret) < MinSealSecretLength {
		return nil, fmt.Errorf("seal secret must be at least %d bytes", MinSealSecretLength)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive seal key: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &SealedStore{next: next, aead: aead}, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	encoded, err := s.next.Get(ctx, key)
	if err != nil {
		return "", err
	}

	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < s.aead.NonceSize() {
		return "", ErrUnsealFailed
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", ErrUnsealFailed
	}

	return string(plaintext), nil
}

func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.next.Set(ctx, key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *SealedStore) Remove(ctx context.Context, key string) error {
	return s.next.Remove(ctx, key)
}

func (s *SealedStore) Close() error {
	return s.next.Close()
}
