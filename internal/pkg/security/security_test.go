package security

import (
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestContentHashIsContentAddressed(t *testing.T) {
	c, err := NewContentCipher(testKey)
	require.NoError(t, err)

	assert.Equal(t, c.Hash("hello"), c.Hash("hello"))
	assert.NotEqual(t, c.Hash("hello"), c.Hash("hello!"))
	assert.Len(t, c.Hash("hello"), 66)
}

func TestContentEncryptRoundTrip(t *testing.T) {
	c, err := NewContentCipher(testKey)
	require.NoError(t, err)

	enc1, err := c.Encrypt("secret words")
	require.NoError(t, err)
	enc2, err := c.Encrypt("secret words")
	require.NoError(t, err)
	assert.NotEqual(t, enc1, enc2)

	plain, err := c.Decrypt(enc1, c.Hash("secret words"))
	require.NoError(t, err)
	assert.Equal(t, "secret words", plain)

	_, err = c.Decrypt(enc1, c.Hash("other"))
	assert.Error(t, err)
}

func TestContentCipherRejectsShortKey(t *testing.T) {
	_, err := NewContentCipher("0011")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.GenerateToken("0xABCDEF")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef", claims.Address)
	assert.NotEmpty(t, claims.SessionID)

	_, err = NewTokenIssuer("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(token, sig))
}

func TestVerifyPersonalSign(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	msg := LoginMessage(address, "n-1")

	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	assert.NoError(t, VerifyPersonalSign(address, msg, hexutil.Encode(sig)))
	assert.ErrorIs(t, VerifyPersonalSign(address, LoginMessage(address, "n-2"), hexutil.Encode(sig)), ErrSignatureMismatch)
	assert.Error(t, VerifyPersonalSign(address, msg, "0x1234"))
}
