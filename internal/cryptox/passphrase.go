package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/tackernao0522/demochat-client/internal/common"
)

const (
	saltedPrefix = "Salted__"
	saltSize     = 8
	keySize      = 32
)

// PassphraseCipher implements the OpenSSL-compatible passphrase format.
type PassphraseCipher struct {
	passphrase []byte
}

func NewPassphraseCipher(passphrase string) *PassphraseCipher {
	return &PassphraseCipher{passphrase: []byte(passphrase)}
}

// Encrypt returns base64("Salted__" || salt || AES-256-CBC(pkcs7(plaintext))).
func (c *PassphraseCipher) Encrypt(plaintext string) (string, error) {
	return c.encryptWithSalt(plaintext, common.GenerateRandByteArray(saltSize))
}

func (c *PassphraseCipher) encryptWithSalt(plaintext string, salt []byte) (string, error) {
	key, iv := evpBytesToKey(c.passphrase, salt, keySize, aes.BlockSize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	head := len(saltedPrefix) + saltSize
	out := make([]byte, head+len(padded))
	copy(out, saltedPrefix)
	copy(out[len(saltedPrefix):], salt)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[head:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. A wrong passphrase surfaces as ErrDecrypt, a
// value that is not in the envelope format as ErrMalformed.
func (c *PassphraseCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	head := len(saltedPrefix) + saltSize
	if len(raw) < head+aes.BlockSize || !bytes.HasPrefix(raw, []byte(saltedPrefix)) {
		return "", ErrMalformed
	}
	body := raw[head:]
	if len(body)%aes.BlockSize != 0 {
		return "", ErrMalformed
	}

	key, iv := evpBytesToKey(c.passphrase, raw[len(saltedPrefix):head], keySize, aes.BlockSize)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and a single round.
func evpBytesToKey(pass, salt []byte, keyLen, ivLen int) ([]byte, []byte) {
	var out, prev []byte
	for len(out) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(pass)
		h.Write(salt)
		prev = h.Sum(nil)
		out = append(out, prev...)
	}
	return out[:keyLen], out[keyLen : keyLen+ivLen]
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, ErrDecrypt
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, ErrDecrypt
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, ErrDecrypt
		}
	}
	return b[:len(b)-n], nil
}
