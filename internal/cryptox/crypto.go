package cryptox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tackernao0522/demochat-client/internal/logging"
)

// DevelopmentFallbackKey is substituted when no secret is configured. It is
// public knowledge and only fit for local development.
const DevelopmentFallbackKey = "development_fallback_key"

// Scheme names accepted by New.
const (
	SchemePassphrase = "cryptojs"
	SchemeGCM        = "gcm"
	SchemeOff        = "off"
)

var (
	// ErrMalformed is returned when a ciphertext cannot be parsed at all.
	ErrMalformed = errors.New("malformed ciphertext")
	// ErrDecrypt is returned when a ciphertext parses but does not open with
	// the configured key.
	ErrDecrypt = errors.New("decryption failed")
)

// FieldCipher encrypts and decrypts single string values. Implementations
// guarantee Decrypt(Encrypt(x)) == x for every x.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// New returns the cipher for scheme keyed by secret. SchemeOff yields a nil
// cipher, meaning values are stored in plaintext. An empty secret falls back
// to DevelopmentFallbackKey and logs a warning.
func New(scheme, secret string, log logging.Logger) (FieldCipher, error) {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if scheme == SchemeOff {
		return nil, nil
	}

	switch scheme {
	case "", SchemePassphrase, SchemeGCM:
	default:
		return nil, fmt.Errorf("unknown encryption scheme %q", scheme)
	}

	if secret == "" {
		log.Warn(context.Background(), "encryption key is not set, using fallback key for development",
			"scheme", scheme)
		secret = DevelopmentFallbackKey
	}

	if scheme == SchemeGCM {
		return NewGCMCipher(secret)
	}
	return NewPassphraseCipher(secret), nil
}
