// Package cryptox protects sensitive profile fields (address, phone) with
// AES-256-GCM before they are persisted locally or sent to the remote store.
//
// Ciphertext is carried as a single string: base64(nonce || ciphertext || tag)
// with a fresh 96-bit nonce per call and a 128-bit tag.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	nonceSize = 12
	tagSize   = 16
)

// randReader is a seam for tests that need nonce generation to fail.
var randReader io.Reader = rand.Reader

// Guard encrypts and decrypts individual string fields.
// It is safe for concurrent use.
type Guard struct {
	aead cipher.AEAD
}

// NewGuard builds a Guard for a 32-byte key.
func NewGuard(key []byte) (*Guard, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrCrypto, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, err)
	}

	return &Guard{aead: aead}, nil
}

// Encrypt seals plaintext and returns its text encoding. The empty string
// stays empty so that an absent field never turns into ciphertext.
func (g *Guard) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, nonceSize, nonceSize+len(plaintext)+tagSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return "", fmt.Errorf("%w: nonce: %w", common.ErrCrypto, err)
	}

	sealed := g.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Malformed input, a foreign key
// or tampering yield an error matching common.ErrDecryption.
func (g *Guard) Decrypt(encoded string) (string, error) {
	// Encoders that wrap lines (e.g. MIME style) insert whitespace.
	encoded = strings.Join(strings.Fields(encoded), "")
	if encoded == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrDecryption, err)
	}
	if len(raw) < nonceSize+tagSize {
		return "", fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	plaintext, err := g.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrDecryption, err)
	}
	return string(plaintext), nil
}
