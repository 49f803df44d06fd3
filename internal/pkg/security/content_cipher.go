package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/chacha20poly1305"
)

// ContentCipher 正文的内容寻址哈希与本地对称加密
type ContentCipher struct {
	key []byte
}

func NewContentCipher(hexKey string) (*ContentCipher, error) {
	key, err := hex.DecodeString(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode content key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("content key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &ContentCipher{key: key}, nil
}

// Hash keccak256，同一明文总是得到同一哈希
func (c *ContentCipher) Hash(plaintext string) string {
	return crypto.Keccak256Hash([]byte(plaintext)).Hex()
}

// Encrypt XChaCha20-Poly1305，输出 hex(nonce || ciphertext)
func (c *ContentCipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err = rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(c.Hash(plaintext)))
	return hex.EncodeToString(sealed), nil
}

// Decrypt 解密并校验内容哈希作为附加数据
func (c *ContentCipher) Decrypt(encoded string, contentHash string) (string, error) {
	sealed, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, body, []byte(contentHash))
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}
	return string(plain), nil
}
