package crypt

import "errors"

var (
	// ErrInvalidKeyMaterial indicates the key or IV hex is malformed or the
	// wrong length.
	ErrInvalidKeyMaterial = errors.New("crypt: invalid key material")

	// ErrInvalidCiphertext indicates the ciphertext length is not a positive
	// multiple of the cipher block size.
	ErrInvalidCiphertext = errors.New("crypt: invalid ciphertext length")

	// ErrDecryptionFailed indicates the padding check failed after decryption:
	// wrong key, wrong IV, or tampered ciphertext. Deliberately opaque — no
	// partial plaintext accompanies it.
	ErrDecryptionFailed = errors.New("crypt: decryption failed")
)
