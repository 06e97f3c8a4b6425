package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Layout of an encrypted string, hex encoded: salt | iv | tag | ciphertext.
// The key for every message is derived from the secret and that message's salt,
// so two encryptions of the same value never share a key.
const (
	cipherSaltLen   = 64
	cipherIVLen     = 16
	cipherTagLen    = 16
	cipherKeyLen    = 32
	cipherIterCount = 100000
)

// ErrCipherText is returned when a value cannot be decrypted with the configured secret.
var ErrCipherText = errors.New("invalid cipher text")

// Cipher is a reversible AES-256-GCM string cipher keyed by a process-wide secret.
// It protects operator secrets at rest and is not a substitute for password hashing.
type Cipher struct {
	secret []byte
}

// NewCipher returns a Cipher for secret. An empty secret is rejected.
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("cipher secret must not be empty")
	}
	return &Cipher{secret: []byte(secret)}, nil
}

// Encrypt seals plain and returns the hex encoded envelope.
func (c *Cipher) Encrypt(plain string) (string, error) {
	salt := make([]byte, cipherSaltLen)
	iv := make([]byte, cipherIVLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	gcm, err := c.gcm(salt)
	if err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, iv, []byte(plain), nil)
	body, tag := sealed[:len(sealed)-cipherTagLen], sealed[len(sealed)-cipherTagLen:]

	out := make([]byte, 0, cipherSaltLen+cipherIVLen+cipherTagLen+len(body))
	out = append(out, salt...)
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, body...)
	return hex.EncodeToString(out), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipherText, err)
	}
	if len(raw) < cipherSaltLen+cipherIVLen+cipherTagLen {
		return "", ErrCipherText
	}
	salt := raw[:cipherSaltLen]
	iv := raw[cipherSaltLen : cipherSaltLen+cipherIVLen]
	tag := raw[cipherSaltLen+cipherIVLen : cipherSaltLen+cipherIVLen+cipherTagLen]
	body := raw[cipherSaltLen+cipherIVLen+cipherTagLen:]

	gcm, err := c.gcm(salt)
	if err != nil {
		return "", err
	}
	sealed := make([]byte, 0, len(body)+len(tag))
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)
	plain, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipherText, err)
	}
	return string(plain), nil
}

func (c *Cipher) gcm(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(c.secret, salt, cipherIterCount, cipherKeyLen, sha512.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, cipherIVLen)
}
