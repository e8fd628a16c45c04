// Package cryptox implements the payload encryption used by the storage
// gateway: AES-128-GCM with a random 12-byte nonce per call and no
// associated data. Objects at rest are stored as nonce || ciphertext+tag.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/secureboxed/secureboxed/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the AES key length in bytes (128-bit key).
	KeySize = 16
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
)

// NewKey generates a random 128-bit encryption key. A key produced this way
// lives only for the current process: anything encrypted under it becomes
// unreadable after a restart.
func NewKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// DeriveKey derives a stable 128-bit key from a configured secret using
// argon2id. Same secret and salt always yield the same key, so objects
// encrypted under a derived key survive process restarts.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// Encrypt seals plaintext with AES-GCM under key. A fresh random 12-byte
// nonce is generated for each call and returned alongside the ciphertext;
// the ciphertext includes the GCM authentication tag.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext produced by Encrypt. Any modification of the
// ciphertext, the tag or the nonce makes tag verification fail; no partial
// plaintext is ever returned.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
