package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cesizen/cesizen/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidKeyLength    = errors.New("cipher key must be exactly 32 bytes")
	ErrInvalidIVLength     = errors.New("cipher IV length must equal the AES block size")
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// Service provides reversible encryption for sensitive fields stored at
// rest (user PII, device metadata on refresh tokens). It is distinct from
// password hashing: everything encrypted here must decrypt back to the
// original plaintext.
//
// Output format is hex(iv) + ":" + hex(ciphertext), AES-256-CBC with a
// fresh random IV per call, so encrypting the same plaintext twice never
// yields the same output.
type Service struct {
	key    []byte
	ivLen  int
	logger *logging.Service
}

func NewService(keyHex string, ivLen int, logger *logging.Service) (*Service, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("cipher key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrInvalidKeyLength
	}
	if ivLen != aes.BlockSize {
		return nil, ErrInvalidIVLength
	}

	return &Service{
		key:    key,
		ivLen:  ivLen,
		logger: logger,
	}, nil
}

func (s *Service) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher block: %w", err)
	}

	iv := make([]byte, s.ivLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

func (s *Service) Decrypt(combined string) (string, error) {
	ivHex, ctHex, found := strings.Cut(combined, ":")
	if !found {
		return "", ErrMalformedCiphertext
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != s.ivLen {
		return "", ErrMalformedCiphertext
	}

	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrMalformedCiphertext
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher block: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		// Wrong key/IV pairing surfaces here as invalid padding.
		return "", ErrMalformedCiphertext
	}

	return string(unpadded), nil
}

// DecryptFieldOr decrypts a single named field for display. A field that
// fails to decrypt never aborts the caller: the failure is logged and a
// placeholder is substituted so the rest of the record stays usable.
func (s *Service) DecryptFieldOr(field, value string) string {
	if value == "" {
		return ""
	}

	plaintext, err := s.Decrypt(value)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to decrypt field, substituting placeholder",
				zap.String("field", field),
				zap.Error(err))
		}
		return "[Encrypted " + field + "]"
	}

	return plaintext
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrMalformedCiphertext
	}

	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, ErrMalformedCiphertext
	}

	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrMalformedCiphertext
		}
	}

	return data[:len(data)-padding], nil
}
