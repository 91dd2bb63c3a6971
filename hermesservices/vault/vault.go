package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	ErrKeySize = errors.New("vault key must be 16, 24 or 32 bytes")
	ErrSealed  = errors.New("sealed payload is corrupt or was sealed with another key")
)

// New returns a vault for the AES key. The key length picks AES-128, 192 or
// 256.
func New(key []byte) (Vault, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return Vault{}, fmt.Errorf("%w: got %d", ErrKeySize, len(key))
	}

	return Vault{
		key: key,
	}, nil
}

// Vault seals small secrets, such as site session cookies, for storage on
// disk. Sealed payloads are URL safe base64 text.
type Vault struct {
	key []byte
}

func (v Vault) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

func (v Vault) Seal(plainText []byte) ([]byte, error) {
	aead, err := v.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := aead.Seal(nonce, nonce, plainText, nil)

	return []byte(base64.URLEncoding.EncodeToString(sealed)), nil
}

func (v Vault) Open(raw []byte) ([]byte, error) {
	sealed, err := base64.URLEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSealed, err)
	}

	aead, err := v.aead()
	if err != nil {
		return nil, err
	}

	if len(sealed) < aead.NonceSize() {
		return nil, ErrSealed
	}

	nonce, cipherText := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plainText, err := aead.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSealed, err)
	}

	return plainText, nil
}
