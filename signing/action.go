package signing

import (
	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Action is a signable exchange action. It is either an L1Action or a
// UserSignedAction; the two are signed over different EIP-712 envelopes.
type Action interface {
	// Payload is the action body as built by the caller.
	Payload() types.Action
	isAction()
}

// L1Action is signed through the phantom "Agent" envelope whose connection id
// is the hash of the msgpack-encoded body, the nonce and the vault address.
type L1Action struct {
	Body types.Action
}

func (a L1Action) Payload() types.Action { return a.Body }
func (L1Action) isAction()               {}

// UserSignedAction is signed directly as typed data. Types lists the message
// fields in schema order and PrimaryType names the struct.
type UserSignedAction struct {
	Body        types.Action
	PrimaryType string
	Types       []apitypes.Type
}

func (a UserSignedAction) Payload() types.Action { return a.Body }
func (UserSignedAction) isAction()               {}

// Primary types of the user-signed actions this package knows about.
const (
	UsdSendPrimaryType  = "HyperliquidTransaction:UsdSend"
	SpotSendPrimaryType = "HyperliquidTransaction:SpotSend"
	WithdrawPrimaryType = "HyperliquidTransaction:Withdraw"

	UsdClassTransferPrimaryType = "HyperliquidTransaction:UsdClassTransfer"
)

// UsdSendTypes returns the schema of a "usdSend" transfer.
func UsdSendTypes() []apitypes.Type {
	return []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "destination", Type: "string"},
		{Name: "amount", Type: "string"},
		{Name: "time", Type: "uint64"},
	}
}

// SpotSendTypes returns the schema of a "spotSend" transfer.
func SpotSendTypes() []apitypes.Type {
	return []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "destination", Type: "string"},
		{Name: "token", Type: "string"},
		{Name: "amount", Type: "string"},
		{Name: "time", Type: "uint64"},
	}
}

// WithdrawTypes returns the schema of a "withdraw3" bridge withdrawal.
func WithdrawTypes() []apitypes.Type {
	return []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "destination", Type: "string"},
		{Name: "amount", Type: "string"},
		{Name: "time", Type: "uint64"},
	}
}

// UsdClassTransferTypes returns the schema of a spot/perp "usdClassTransfer".
// Unlike the sends it is keyed by nonce rather than time.
func UsdClassTransferTypes() []apitypes.Type {
	return []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "amount", Type: "string"},
		{Name: "toPerp", Type: "bool"},
		{Name: "nonce", Type: "uint64"},
	}
}

// UsdSendAction wraps a usdSend body with its schema.
func UsdSendAction(body types.Action) UserSignedAction {
	return UserSignedAction{Body: body, PrimaryType: UsdSendPrimaryType, Types: UsdSendTypes()}
}

// SpotSendAction wraps a spotSend body with its schema.
func SpotSendAction(body types.Action) UserSignedAction {
	return UserSignedAction{Body: body, PrimaryType: SpotSendPrimaryType, Types: SpotSendTypes()}
}

// WithdrawAction wraps a withdraw3 body with its schema.
func WithdrawAction(body types.Action) UserSignedAction {
	return UserSignedAction{Body: body, PrimaryType: WithdrawPrimaryType, Types: WithdrawTypes()}
}

// UsdClassTransferAction wraps a usdClassTransfer body with its schema.
func UsdClassTransferAction(body types.Action) UserSignedAction {
	return UserSignedAction{
		Body:        body,
		PrimaryType: UsdClassTransferPrimaryType,
		Types:       UsdClassTransferTypes(),
	}
}
