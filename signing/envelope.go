package signing

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/alinkon0207/hlsign/constants"
	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/samber/mo"
)

// Envelope is typed data ready for signing together with the action body
// that must be transmitted alongside the signature.
type Envelope struct {
	TypedData apitypes.TypedData
	Action    types.Action
}

func eip712DomainType() []apitypes.Type {
	return []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}
}

// L1Domain returns the domain L1 actions are signed under.
func L1Domain() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              constants.L1_DOMAIN_NAME,
		Version:           constants.L1_DOMAIN_VERSION,
		ChainId:           math.NewHexOrDecimal256(constants.L1_CHAIN_ID),
		VerifyingContract: constants.ZERO_ADDRESS.Hex(),
	}
}

// UserSignedDomain returns the domain user-signed actions are signed under.
func UserSignedDomain() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              constants.USER_SIGNED_DOMAIN_NAME,
		Version:           constants.USER_SIGNED_DOMAIN_VERSION,
		ChainId:           math.NewHexOrDecimal256(constants.SIGNATURE_CHAIN_ID),
		VerifyingContract: constants.ZERO_ADDRESS.Hex(),
	}
}

// AgentTypes returns the schema of the phantom agent message.
func AgentTypes() []apitypes.Type {
	return []apitypes.Type{
		{Name: "source", Type: "string"},
		{Name: "connectionId", Type: "bytes32"},
	}
}

// BuildEnvelope constructs the typed data for action.
//
// The nonce, vault address and hash options only affect L1 actions, where
// they are bound into the connection id. User-signed actions carry their own
// time field instead.
func BuildEnvelope(
	action Action,
	network types.Network,
	nonce uint64,
	vaultAddress mo.Option[common.Address],
	opts ...HashOption,
) (Envelope, error) {
	switch a := action.(type) {
	case L1Action:
		connectionID, err := HashAction(a.Body, nonce, vaultAddress, opts...)
		if err != nil {
			return Envelope{}, fmt.Errorf("failed to create action hash: %w", err)
		}

		return Envelope{
			TypedData: l1Payload(constructPhantomAgent(connectionID, network)),
			Action:    a.Body,
		}, nil

	case UserSignedAction:
		return userSignedPayload(a, network)

	case nil:
		return Envelope{}, fmt.Errorf("nil action")

	default:
		return Envelope{}, fmt.Errorf("unsupported action type %T", action)
	}
}

func constructPhantomAgent(
	hash common.Hash,
	network types.Network,
) apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"source":       network.Source(),
		"connectionId": hash,
	}
}

func l1Payload(
	phantomAgent apitypes.TypedDataMessage,
) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain":                eip712DomainType(),
			constants.AGENT_PRIMARY_TYPE: AgentTypes(),
		},
		PrimaryType: constants.AGENT_PRIMARY_TYPE,
		Domain:      L1Domain(),
		Message:     phantomAgent,
	}
}

// WithChainFields returns a copy of body carrying the signatureChainId and
// hyperliquidChain fields the exchange expects on user-signed actions.
func WithChainFields(body types.Action, network types.Network) types.Action {
	return body.
		With("signatureChainId", constants.SIGNATURE_CHAIN_ID_HEX).
		With("hyperliquidChain", network.ChainName())
}

func userSignedPayload(a UserSignedAction, network types.Network) (Envelope, error) {
	if a.PrimaryType == "" {
		return Envelope{}, fmt.Errorf("user-signed action has no primary type")
	}
	if len(a.Types) == 0 {
		return Envelope{}, fmt.Errorf("user-signed action %s has no field types", a.PrimaryType)
	}

	body := WithChainFields(a.Body, network)

	message := make(apitypes.TypedDataMessage, len(a.Types))
	for _, field := range a.Types {
		v, ok := body.Get(field.Name)
		if !ok {
			return Envelope{}, fmt.Errorf(
				"action is missing field %q required by %s",
				field.Name,
				a.PrimaryType,
			)
		}

		tv, err := typedValue(field.Type, v)
		if err != nil {
			return Envelope{}, fmt.Errorf("field %q: %w", field.Name, err)
		}
		message[field.Name] = tv
	}

	schema := make([]apitypes.Type, len(a.Types))
	copy(schema, a.Types)

	return Envelope{
		TypedData: apitypes.TypedData{
			Types: apitypes.Types{
				"EIP712Domain": eip712DomainType(),
				a.PrimaryType:  schema,
			},
			PrimaryType: a.PrimaryType,
			Domain:      UserSignedDomain(),
			Message:     message,
		},
		Action: body,
	}, nil
}

// typedValue converts Go values into the shapes apitypes accepts for the
// given solidity type. Integers must be *big.Int, addresses hex strings.
func typedValue(solType string, v any) (any, error) {
	switch {
	case strings.HasPrefix(solType, "uint"), strings.HasPrefix(solType, "int"):
		switch n := v.(type) {
		case int:
			return big.NewInt(int64(n)), nil
		case int8:
			return big.NewInt(int64(n)), nil
		case int16:
			return big.NewInt(int64(n)), nil
		case int32:
			return big.NewInt(int64(n)), nil
		case int64:
			return big.NewInt(n), nil
		case uint:
			return new(big.Int).SetUint64(uint64(n)), nil
		case uint8:
			return new(big.Int).SetUint64(uint64(n)), nil
		case uint16:
			return new(big.Int).SetUint64(uint64(n)), nil
		case uint32:
			return new(big.Int).SetUint64(uint64(n)), nil
		case uint64:
			return new(big.Int).SetUint64(n), nil
		case *big.Int, string, float64:
			return n, nil
		default:
			return nil, fmt.Errorf("cannot use %T as %s", v, solType)
		}

	case solType == "address":
		if addr, ok := v.(common.Address); ok {
			return addr.Hex(), nil
		}
		return v, nil
	}

	return v, nil
}
