// Package notes implements the optional transform applied to free-text
// expense notes at the repository boundary. When enabled, notes are
// stored as AES-256-GCM ciphertext; when disabled, both directions are
// the identity.
package notes

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// DecodeFailed is the fixed sentinel returned when a stored note
// cannot be decoded. Callers treat it as an opaque, non-matching
// value; decoding never fails with an error.
const DecodeFailed = "[decryption failed]"

// Cipher is the encode/decode pair the repository calls at its
// boundary. Encode maps empty input to empty output. Decode is total:
// on an unrecognized or corrupted token it returns DecodeFailed.
type Cipher interface {
	Encode(plain string) (string, error)
	Decode(stored string) string

	// Enabled reports whether notes are stored in encoded form, which
	// disables substring search over them.
	Enabled() bool
}

// Identity stores notes verbatim.
type Identity struct{}

func (Identity) Encode(plain string) (string, error) { return plain, nil }
func (Identity) Decode(stored string) string         { return stored }
func (Identity) Enabled() bool                       { return false }

// AESCipher encrypts notes with AES-256-GCM. The key is derived from
// the configured passphrase with SHA-256; tokens are
// base64(nonce || ciphertext).
type AESCipher struct {
	gcm cipher.AEAD
}

func NewAESCipher(key string) (*AESCipher, error) {
	if key == "" {
		return nil, fmt.Errorf("encryption key is empty")
	}

	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	return &AESCipher{gcm: gcm}, nil
}

func (c *AESCipher) Encode(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := c.gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *AESCipher) Decode(stored string) string {
	if stored == "" {
		return ""
	}

	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return DecodeFailed
	}

	ns := c.gcm.NonceSize()
	if len(data) < ns {
		return DecodeFailed
	}

	plain, err := c.gcm.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return DecodeFailed
	}
	return string(plain)
}

func (c *AESCipher) Enabled() bool { return true }
