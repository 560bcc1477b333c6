package cipher

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	svc, err := NewService(hex.EncodeToString(key), 16, nil)
	require.NoError(t, err)
	return svc
}

func TestNewService_KeyLengthGuard(t *testing.T) {
	t.Run("not hex", func(t *testing.T) {
		_, err := NewService("not-valid-hex", 16, nil)
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := NewService(hex.EncodeToString(make([]byte, 16)), 16, nil)
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := NewService(hex.EncodeToString(make([]byte, 48)), 16, nil)
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
	})

	t.Run("bad IV length", func(t *testing.T) {
		_, err := NewService(hex.EncodeToString(make([]byte, 32)), 12, nil)
		assert.ErrorIs(t, err, ErrInvalidIVLength)
	})
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	cases := []string{
		"Dupont",
		"Jean-Pierre",
		"1990-04-23",
		"",
		"unicode: héllo wörld 你好 🎉",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		strings.Repeat("a", 1000),
		"exactly sixteen!",
	}

	for _, plaintext := range cases {
		combined, err := svc.Encrypt(plaintext)
		require.NoError(t, err)
		require.Contains(t, combined, ":")

		decrypted, err := svc.Decrypt(combined)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := svc.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecrypt_MalformedInput(t *testing.T) {
	svc := newTestService(t)

	cases := map[string]string{
		"no separator":         "deadbeefdeadbeef",
		"empty":                "",
		"iv not hex":           "zzzz:deadbeefdeadbeefdeadbeefdeadbeef",
		"ciphertext not hex":   "00112233445566778899aabbccddeeff:zzzz",
		"iv wrong length":      "0011:deadbeefdeadbeefdeadbeefdeadbeef",
		"ciphertext not block": "00112233445566778899aabbccddeeff:deadbeef",
		"empty ciphertext":     "00112233445566778899aabbccddeeff:",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Decrypt(input)
			assert.ErrorIs(t, err, ErrMalformedCiphertext)
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	svc := newTestService(t)
	other := newTestService(t)

	combined, err := svc.Encrypt("secret value")
	require.NoError(t, err)

	_, err = other.Decrypt(combined)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestDecryptFieldOr(t *testing.T) {
	svc := newTestService(t)

	t.Run("valid field", func(t *testing.T) {
		combined, err := svc.Encrypt("Dupont")
		require.NoError(t, err)

		assert.Equal(t, "Dupont", svc.DecryptFieldOr("name", combined))
	})

	t.Run("empty field passes through", func(t *testing.T) {
		assert.Equal(t, "", svc.DecryptFieldOr("name", ""))
	})

	t.Run("placeholder on failure", func(t *testing.T) {
		assert.Equal(t, "[Encrypted name]", svc.DecryptFieldOr("name", "garbage"))
	})

	t.Run("placeholder on wrong key", func(t *testing.T) {
		other := newTestService(t)
		combined, err := other.Encrypt("Dupont")
		require.NoError(t, err)

		assert.Equal(t, "[Encrypted birthDate]", svc.DecryptFieldOr("birthDate", combined))
	})
}
