package signing

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// TypedDataSigner produces EIP-712 signatures.
type TypedDataSigner interface {
	// SignTypedData returns the 0x-prefixed hex of a 65 byte [R || S || V]
	// signature over typedData.
	SignTypedData(typedData apitypes.TypedData) (string, error)
	// Address is the account the signatures recover to.
	Address() common.Address
}

// PrivateKeySigner signs with an in-memory secp256k1 key.
type PrivateKeySigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

var _ TypedDataSigner = (*PrivateKeySigner)(nil)

// NewPrivateKeySigner wraps privateKey. A nil key is a missing credential.
func NewPrivateKeySigner(privateKey *ecdsa.PrivateKey) (*PrivateKeySigner, error) {
	if privateKey == nil {
		return nil, ErrMissingCredential
	}

	return &PrivateKeySigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// NewPrivateKeySignerFromHex parses a hex private key, with or without 0x.
func NewPrivateKeySignerFromHex(hexKey string) (*PrivateKeySigner, error) {
	if hexKey == "" {
		return nil, ErrMissingCredential
	}

	key, err := crypto.HexToECDSA(trimHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return NewPrivateKeySigner(key)
}

func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

// SignTypedData hashes typedData per EIP-712 and signs the digest.
// V is returned as 27 or 28.
func (s *PrivateKeySigner) SignTypedData(typedData apitypes.TypedData) (string, error) {
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", fmt.Errorf(
			"failed generating hash for typed data: %w",
			err,
		)
	}

	sig, err := crypto.Sign(hash, s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}

	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("invalid signature length: %d", len(sig))
	}

	// Ethereum canonical V = 27 or 28
	if sig[64] < 27 {
		sig[64] += 27
	}

	return hexutil.Encode(sig), nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
