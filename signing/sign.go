package signing

import (
	"encoding/json"
	"fmt"

	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"
)

// SignedAction is an action ready to be posted to the exchange.
type SignedAction struct {
	Action       types.Action
	Nonce        uint64
	Signature    Signature
	VaultAddress mo.Option[common.Address]
	ExpiresAfter mo.Option[uint64]
	// L1 reports whether the action went through the agent envelope. Only
	// L1 payloads carry a vaultAddress field.
	L1 bool
}

// Sign runs the full pipeline: envelope, typed-data signature, split.
//
// For L1 actions the vault address and expiry are bound into the connection
// id and echoed in the payload. User-signed actions ignore both.
func Sign(
	signer TypedDataSigner,
	action Action,
	network types.Network,
	nonce uint64,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (SignedAction, error) {
	if signer == nil {
		return SignedAction{}, ErrMissingCredential
	}

	_, isL1 := action.(L1Action)
	if !isL1 {
		vaultAddress = mo.None[common.Address]()
		expiresAfter = mo.None[uint64]()
	}

	envelope, err := BuildEnvelope(
		action,
		network,
		nonce,
		vaultAddress,
		withExpiresAfter(expiresAfter),
	)
	if err != nil {
		return SignedAction{}, err
	}

	raw, err := signer.SignTypedData(envelope.TypedData)
	if err != nil {
		return SignedAction{}, err
	}

	sig, err := SplitSignature(raw)
	if err != nil {
		return SignedAction{}, err
	}

	return SignedAction{
		Action:       envelope.Action,
		Nonce:        nonce,
		Signature:    sig,
		VaultAddress: vaultAddress,
		ExpiresAfter: expiresAfter,
		L1:           isL1,
	}, nil
}

// MarshalJSON encodes the /exchange request body.
func (s SignedAction) MarshalJSON() ([]byte, error) {
	if s.Action == nil {
		return nil, fmt.Errorf("signed action has no body")
	}

	payload := map[string]any{
		"action":    s.Action,
		"nonce":     s.Nonce,
		"signature": s.Signature,
	}

	if s.L1 {
		if v, ok := s.VaultAddress.Get(); ok {
			payload["vaultAddress"] = v
		} else {
			payload["vaultAddress"] = nil
		}
	}

	if e, ok := s.ExpiresAfter.Get(); ok {
		payload["expiresAfter"] = e
	}

	return json.Marshal(payload)
}
