package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/fathom0x/libfathom-go/crypt"
)

// Sealed export of key material for backup or transfer between machines.
// The live index never stores material this way; sealing exists because a
// plaintext key file on disk is the one copy of the key that decides whether
// a document is ever readable again.

const (
	// Argon2id parameters for the passphrase KDF.
	argon2Time        = 3
	argon2Memory      = 64 * 1024 // 64 MB
	argon2Parallelism = 4
	argon2KeyLen      = 32

	// Sealed format sizes.
	sealSaltLen     = 16
	sealNonceLen    = 12
	sealChecksumLen = 4
)

// SealKeyMaterial encrypts km under a passphrase.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(argon2id(passphrase,salt), nonce, payload||checksum)
//
// The checksum is SHA256(payload)[:4] for verifying correct decryption.
func SealKeyMaterial(km crypt.KeyMaterial, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("keystore: passphrase is required")
	}

	payload, err := json.Marshal(km)
	if err != nil {
		return nil, fmt.Errorf("keystore: encode key material: %w", err)
	}

	salt := make([]byte, sealSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate salt: %w", err)
	}

	derivedKey := argon2.IDKey([]byte(passphrase), salt,
		argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen)

	sum := sha256.Sum256(payload)
	plaintext := make([]byte, len(payload)+sealChecksumLen)
	copy(plaintext, payload)
	copy(plaintext[len(payload):], sum[:sealChecksumLen])

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("keystore: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: GCM creation failed: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	sealed := make([]byte, 0, sealSaltLen+sealNonceLen+len(ciphertext))
	sealed = append(sealed, salt...)
	sealed = append(sealed, nonce...)
	sealed = append(sealed, ciphertext...)
	return sealed, nil
}

// OpenKeyMaterial decrypts a sealed blob produced by SealKeyMaterial.
// Any failure — truncated input, wrong passphrase, corrupted ciphertext,
// checksum mismatch — collapses to ErrSealFailed.
func OpenKeyMaterial(sealed []byte, passphrase string) (*crypt.KeyMaterial, error) {
	if len(sealed) < sealSaltLen+sealNonceLen+sealChecksumLen {
		return nil, ErrSealFailed
	}

	salt := sealed[:sealSaltLen]
	nonce := sealed[sealSaltLen : sealSaltLen+sealNonceLen]
	ciphertext := sealed[sealSaltLen+sealNonceLen:]

	derivedKey := argon2.IDKey([]byte(passphrase), salt,
		argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, ErrSealFailed
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrSealFailed
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealFailed
	}
	if len(plaintext) < sealChecksumLen {
		return nil, ErrSealFailed
	}

	payload := plaintext[:len(plaintext)-sealChecksumLen]
	storedChecksum := plaintext[len(plaintext)-sealChecksumLen:]

	sum := sha256.Sum256(payload)
	for i := 0; i < sealChecksumLen; i++ {
		if storedChecksum[i] != sum[i] {
			return nil, ErrSealFailed
		}
	}

	var km crypt.KeyMaterial
	if err := json.Unmarshal(payload, &km); err != nil {
		return nil, ErrSealFailed
	}
	return &km, nil
}
