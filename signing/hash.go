package signing

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/mo"
	"github.com/vmihailenco/msgpack/v5"
)

// HashOption tweaks the bytes appended after the vault section.
type HashOption func(*hashConfig)

type hashConfig struct {
	expiresAfter mo.Option[uint64]
}

// WithExpiresAfter appends an expiry timestamp (ms) to the hashed buffer.
// The exchange rejects this on user-signed actions.
func WithExpiresAfter(ms uint64) HashOption {
	return func(cfg *hashConfig) {
		cfg.expiresAfter = mo.Some(ms)
	}
}

func withExpiresAfter(ms mo.Option[uint64]) HashOption {
	return func(cfg *hashConfig) {
		cfg.expiresAfter = ms
	}
}

// ParseAddress decodes 40 hex characters, optionally prefixed with 0x, into
// an address. Hex digits are case-insensitive.
func ParseAddress(text string) (common.Address, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")

	if len(raw)%2 != 0 {
		return common.Address{}, fmt.Errorf("%w: odd hex length %d in %q", ErrMalformedAddress, len(raw), text)
	}

	b, err := hex.DecodeString(raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %q: %v", ErrMalformedAddress, text, err)
	}

	if len(b) != common.AddressLength {
		return common.Address{}, fmt.Errorf(
			"%w: got %d bytes, want %d",
			ErrMalformedAddress,
			len(b),
			common.AddressLength,
		)
	}

	return common.BytesToAddress(b), nil
}

// ParseVaultAddress is ParseAddress for optional input: empty text means the
// signer acts on its own account.
func ParseVaultAddress(text string) (mo.Option[common.Address], error) {
	if strings.TrimSpace(text) == "" {
		return mo.None[common.Address](), nil
	}

	addr, err := ParseAddress(strings.TrimSpace(text))
	if err != nil {
		return mo.None[common.Address](), err
	}
	return mo.Some(addr), nil
}

// EncodeAction serializes an action with msgpack the way the exchange's
// verifier does: integers in their smallest form, floats as float64, and
// types.Action maps in insertion order.
func EncodeAction(action any) ([]byte, error) {
	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	enc.SetSortMapKeys(true)

	if err := enc.Encode(action); err != nil {
		return nil, fmt.Errorf("failed to marshal action: %w", err)
	}

	return buf.Bytes(), nil
}

// ActionBuffer lays out the bytes that are hashed into a connection id:
//
//	msgpack(action) || nonce (8 bytes BE) || 0x00
//	msgpack(action) || nonce (8 bytes BE) || 0x01 || vault (20 bytes)
//
// followed by 0x00 || expiresAfter (8 bytes BE) when WithExpiresAfter is set.
func ActionBuffer(
	action any,
	nonce uint64,
	vaultAddress mo.Option[common.Address],
	opts ...HashOption,
) ([]byte, error) {
	var cfg hashConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	encoded, err := EncodeAction(action)
	if err != nil {
		return nil, err
	}

	size := len(encoded) + 9
	if vaultAddress.IsPresent() {
		size += common.AddressLength
	}
	if cfg.expiresAfter.IsPresent() {
		size += 9
	}

	data := make([]byte, 0, size)
	data = append(data, encoded...)
	data = binary.BigEndian.AppendUint64(data, nonce)

	if v, ok := vaultAddress.Get(); ok {
		data = append(data, 0x01)
		data = append(data, v.Bytes()...)
	} else {
		data = append(data, 0x00)
	}

	if e, ok := cfg.expiresAfter.Get(); ok {
		data = append(data, 0x00)
		data = binary.BigEndian.AppendUint64(data, e)
	}

	return data, nil
}

// HashAction returns the Keccak-256 connection id binding an action, a
// nonce and an optional vault address.
func HashAction(
	action any,
	nonce uint64,
	vaultAddress mo.Option[common.Address],
	opts ...HashOption,
) (common.Hash, error) {
	data, err := ActionBuffer(action, nonce, vaultAddress, opts...)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(data), nil
}
