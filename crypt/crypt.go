// Package crypt implements the symmetric document codec for the Fathom
// pipeline: AES-256-CBC with PKCS#7 padding, fresh random key material per
// document, and SHA-256 content fingerprinting.
//
// Key material is hex-encoded end to end because it crosses component
// boundaries as strings (local key index, user-facing export). The key is
// never derived from a user secret; every document draws a fresh key from
// crypto/rand.
package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// IVSize is the CBC initialization vector length in bytes (one AES block).
	IVSize = 16

	// KeyHexLen and IVHexLen are the hex-encoded lengths callers see.
	KeyHexLen = 2 * KeySize
	IVHexLen  = 2 * IVSize
)

// KeyMaterial holds the hex-encoded key and IV required to decrypt one
// document's ciphertext. Generated fresh per document and persisted only in
// the caller's local key index, never sent to storage or the ledger.
type KeyMaterial struct {
	Key string `json:"key"` // 64 hex chars (256-bit key)
	IV  string `json:"iv"`  // 32 hex chars (128-bit IV)
}

// GenerateKeyMaterial draws a fresh 256-bit key and 128-bit IV from the
// system's cryptographically secure random source. Failure of that source is
// unrecoverable for the operation.
func GenerateKeyMaterial() (*KeyMaterial, error) {
	raw := make([]byte, KeySize+IVSize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("crypt: random source failed: %w", err)
	}
	return &KeyMaterial{
		Key: hex.EncodeToString(raw[:KeySize]),
		IV:  hex.EncodeToString(raw[KeySize:]),
	}, nil
}

// decode validates the hex shapes and returns raw key and IV bytes.
func (km KeyMaterial) decode() (key, iv []byte, err error) {
	key, err = hex.DecodeString(km.Key)
	if err != nil || len(key) != KeySize {
		return nil, nil, fmt.Errorf("%w: key must be %d hex chars", ErrInvalidKeyMaterial, KeyHexLen)
	}
	iv, err = hex.DecodeString(km.IV)
	if err != nil || len(iv) != IVSize {
		return nil, nil, fmt.Errorf("%w: iv must be %d hex chars", ErrInvalidKeyMaterial, IVHexLen)
	}
	return key, iv, nil
}

// Encrypt encrypts plaintext with AES-256-CBC and PKCS#7 padding.
//
// If km is nil, fresh key material is generated and returned alongside the
// ciphertext; otherwise the supplied material is used and echoed back.
// Output is deterministic for a given key, IV, and plaintext. The plaintext
// slice is not modified. Empty plaintext is valid and produces exactly one
// padding block.
func Encrypt(plaintext []byte, km *KeyMaterial) ([]byte, *KeyMaterial, error) {
	if km == nil {
		generated, err := GenerateKeyMaterial()
		if err != nil {
			return nil, nil, err
		}
		km = generated
	}

	key, iv, err := km.decode()
	if err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("crypt: AES cipher creation failed: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return ciphertext, km, nil
}

// Decrypt decrypts AES-256-CBC ciphertext and strips the PKCS#7 padding.
//
// It fails with ErrInvalidKeyMaterial on malformed key/iv hex, with
// ErrInvalidCiphertext when the ciphertext length is not a positive multiple
// of the block size, and with ErrDecryptionFailed when the padding is invalid
// after decryption (wrong key, wrong IV, or tampered ciphertext). On any
// failure no partial plaintext is returned.
func Decrypt(ciphertext []byte, km KeyMaterial) ([]byte, error) {
	key, iv, err := km.decode()
	if err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: AES cipher creation failed: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, ok := pkcs7Unpad(padded, aes.BlockSize)
	if !ok {
		return nil, ErrDecryptionFailed
	}

	// Normalize nil to empty slice for consistency.
	if plaintext == nil {
		plaintext = []byte{}
	}

	return plaintext, nil
}

// Fingerprint returns the SHA-256 digest of data as a hex string.
// Used for integrity display only; uniqueness rests on the digest itself.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// pkcs7Pad appends PKCS#7 padding up to the next blockSize boundary.
// Input that is already block-aligned (including empty input) gets a full
// padding block so the pad length is always recoverable.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad validates and strips PKCS#7 padding. Returns ok=false when the
// padding is malformed; the caller must not use the data in that case.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, false
	}
	pad := data[len(data)-padLen:]
	if !bytes.Equal(pad, bytes.Repeat([]byte{byte(padLen)}, padLen)) {
		return nil, false
	}
	return data[:len(data)-padLen], true
}
