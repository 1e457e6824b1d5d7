package crypt

import (
	"bytes"
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyMaterialShape(t *testing.T) {
	km, err := GenerateKeyMaterial()
	require.NoError(t, err)
	assert.Len(t, km.Key, KeyHexLen)
	assert.Len(t, km.IV, IVHexLen)

	// Two generations must not collide.
	km2, err := GenerateKeyMaterial()
	require.NoError(t, err)
	assert.NotEqual(t, km.Key, km2.Key)
	assert.NotEqual(t, km.IV, km2.IV)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"empty":         {},
		"one byte":      {0x42},
		"block aligned": bytes.Repeat([]byte{0xab}, aes.BlockSize*4),
		"unaligned":     []byte("the quick brown fox jumps over the lazy dog"),
		"binary":        {0x00, 0xff, 0x00, 0xff, 0x10},
	}

	for name, plaintext := range cases {
		t.Run(name, func(t *testing.T) {
			ciphertext, km, err := Encrypt(plaintext, nil)
			require.NoError(t, err)
			require.NotNil(t, km)

			// CBC output is always block aligned and never empty.
			assert.NotEmpty(t, ciphertext)
			assert.Zero(t, len(ciphertext)%aes.BlockSize)

			got, err := Decrypt(ciphertext, *km)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)
		})
	}
}

func TestEncryptDeterministicWithFixedMaterial(t *testing.T) {
	km, err := GenerateKeyMaterial()
	require.NoError(t, err)

	plaintext := []byte("deterministic given key+iv+plaintext")
	c1, _, err := Encrypt(plaintext, km)
	require.NoError(t, err)
	c2, _, err := Encrypt(plaintext, km)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestEncryptDoesNotMutatePlaintext(t *testing.T) {
	plaintext := []byte("do not touch")
	original := append([]byte(nil), plaintext...)

	_, _, err := Encrypt(plaintext, nil)
	require.NoError(t, err)
	assert.Equal(t, original, plaintext)
}

func TestDecryptRejectsUnalignedCiphertext(t *testing.T) {
	km, err := GenerateKeyMaterial()
	require.NoError(t, err)

	for _, n := range []int{1, aes.BlockSize - 1, aes.BlockSize + 1} {
		_, err := Decrypt(make([]byte, n), *km)
		assert.ErrorIs(t, err, ErrInvalidCiphertext, "length %d", n)
	}

	_, err = Decrypt(nil, *km)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecryptRejectsMalformedKeyMaterial(t *testing.T) {
	ciphertext := make([]byte, aes.BlockSize)

	cases := []KeyMaterial{
		{Key: "short", IV: "00112233445566778899aabbccddeeff"},
		{Key: "zz" + hexZeros(31), IV: "00112233445566778899aabbccddeeff"},
		{Key: hexZeros(32), IV: "short"},
		{Key: hexZeros(32), IV: ""},
	}

	for _, km := range cases {
		_, err := Decrypt(ciphertext, km)
		assert.ErrorIs(t, err, ErrInvalidKeyMaterial)
	}
}

func TestDecryptWrongKeyNeverReturnsOriginal(t *testing.T) {
	plaintext := []byte("secret contents of the document")
	ciphertext, _, err := Encrypt(plaintext, nil)
	require.NoError(t, err)

	wrong, err := GenerateKeyMaterial()
	require.NoError(t, err)

	got, err := Decrypt(ciphertext, *wrong)
	if err == nil {
		// Padding happened to validate; the plaintext must still differ.
		assert.NotEqual(t, plaintext, got)
	} else {
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	}
}

func TestTamperDetection(t *testing.T) {
	plaintext := []byte("flipping any byte must never silently round-trip")
	ciphertext, km, err := Encrypt(plaintext, nil)
	require.NoError(t, err)

	for i := range ciphertext {
		tampered := append([]byte(nil), ciphertext...)
		tampered[i] ^= 0x01

		got, err := Decrypt(tampered, *km)
		if err == nil {
			assert.NotEqual(t, plaintext, got, "byte %d", i)
		} else {
			assert.ErrorIs(t, err, ErrDecryptionFailed, "byte %d", i)
		}
	}
}

func TestFingerprint(t *testing.T) {
	// SHA-256 of the empty input is a fixed vector.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Fingerprint(nil))

	a := Fingerprint([]byte("doc a"))
	b := Fingerprint([]byte("doc b"))
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Fingerprint([]byte("doc a")))
}

func TestPKCS7PadUnpad(t *testing.T) {
	for n := 0; n <= 3*aes.BlockSize; n++ {
		data := bytes.Repeat([]byte{0x5a}, n)
		padded := pkcs7Pad(data, aes.BlockSize)
		assert.Zero(t, len(padded)%aes.BlockSize)
		assert.Greater(t, len(padded), len(data))

		got, ok := pkcs7Unpad(padded, aes.BlockSize)
		require.True(t, ok, "length %d", n)
		assert.Equal(t, data, got)
	}

	// Invalid padding values.
	bad := bytes.Repeat([]byte{0x00}, aes.BlockSize)
	_, ok := pkcs7Unpad(bad, aes.BlockSize)
	assert.False(t, ok)

	bad[aes.BlockSize-1] = byte(aes.BlockSize + 1)
	_, ok = pkcs7Unpad(bad, aes.BlockSize)
	assert.False(t, ok)
}

// hexZeros returns n repetitions of "00" (valid hex bytes).
func hexZeros(n int) string {
	return string(bytes.Repeat([]byte("00"), n))
}
