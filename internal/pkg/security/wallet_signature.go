package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrSignatureMismatch = errors.New("signature does not match address")

// LoginMessage 钱包需要签名的登录文本
func LoginMessage(address, nonce string) string {
	return fmt.Sprintf("Sign in to Tipwall\naddress: %s\nnonce: %s", strings.ToLower(address), nonce)
}

// VerifyPersonalSign 校验 personal_sign 签名出自 address
func VerifyPersonalSign(address, message, signature string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address %q", address)
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return fmt.Errorf("recover public key: %w", err)
	}
	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(address) {
		return ErrSignatureMismatch
	}
	return nil
}
