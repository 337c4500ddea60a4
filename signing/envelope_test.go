package signing

import (
	"math/big"
	"testing"

	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/maxatome/go-testdeep/td"
	"github.com/samber/mo"
)

func TestBuildEnvelopeL1(t *testing.T) {
	action := L1Action{Body: testAction()}

	envelope, err := BuildEnvelope(action, types.Mainnet, 1700000000000, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)

	hash, err := HashAction(action.Body, 1700000000000, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)

	td.Cmp(t, envelope.TypedData.PrimaryType, "Agent")
	td.Cmp(t, envelope.TypedData.Domain.Name, "Exchange")
	td.Cmp(t, envelope.TypedData.Domain.Version, "1")
	td.Cmp(t, (*big.Int)(envelope.TypedData.Domain.ChainId).Int64(), int64(1337))
	td.Cmp(t, envelope.TypedData.Domain.VerifyingContract, "0x0000000000000000000000000000000000000000")
	td.Cmp(t, envelope.TypedData.Types["Agent"], []apitypes.Type{
		{Name: "source", Type: "string"},
		{Name: "connectionId", Type: "bytes32"},
	})
	td.Cmp(t, envelope.TypedData.Message, apitypes.TypedDataMessage{
		"source":       "a",
		"connectionId": hash,
	})
	td.Cmp(t, envelope.Action, action.Body)

	testnet, err := BuildEnvelope(action, types.Testnet, 1700000000000, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)
	td.Cmp(t, testnet.TypedData.Message["source"], "b")
}

func TestBuildEnvelopeL1VaultChangesConnectionID(t *testing.T) {
	action := L1Action{Body: testAction()}
	vault := common.HexToAddress("0x1719884eb866cb12b2287399b15f7db5e7d775ea")

	own, err := BuildEnvelope(action, types.Mainnet, 0, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)
	vaulted, err := BuildEnvelope(action, types.Mainnet, 0, mo.Some(vault))
	td.Require(t).CmpNoError(err)

	td.CmpNot(t, vaulted.TypedData.Message["connectionId"], own.TypedData.Message["connectionId"])
}

func spotSendBody() types.Action {
	return types.NewAction(
		"type", "spotSend",
		"destination", "0xd36e4a5805f6b14c2f4fa0a2ff7b8d5b35e10971",
		"token", "USDC:0x6d1e7cde53ba9467b783cb7c530ce054",
		"amount", "1.0",
		"time", uint64(1700000000000),
	)
}

func TestBuildEnvelopeUserSigned(t *testing.T) {
	body := spotSendBody()

	envelope, err := BuildEnvelope(SpotSendAction(body), types.Mainnet, 0, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)

	td.Cmp(t, envelope.TypedData.PrimaryType, SpotSendPrimaryType)
	td.Cmp(t, envelope.TypedData.Domain.Name, "HyperliquidSignTransaction")
	td.Cmp(t, (*big.Int)(envelope.TypedData.Domain.ChainId).Int64(), int64(0x66eee))
	td.Cmp(t, envelope.TypedData.Domain.VerifyingContract, "0x0000000000000000000000000000000000000000")
	td.Cmp(t, envelope.TypedData.Types[SpotSendPrimaryType], SpotSendTypes())

	td.Cmp(t, envelope.TypedData.Message, apitypes.TypedDataMessage{
		"hyperliquidChain": "Mainnet",
		"destination":      "0xd36e4a5805f6b14c2f4fa0a2ff7b8d5b35e10971",
		"token":            "USDC:0x6d1e7cde53ba9467b783cb7c530ce054",
		"amount":           "1.0",
		"time":             big.NewInt(1700000000000),
	})

	td.Cmp(t, envelope.Action.Keys(), []string{
		"type", "destination", "token", "amount", "time", "signatureChainId", "hyperliquidChain",
	})
	chainID, _ := envelope.Action.Get("signatureChainId")
	td.Cmp(t, chainID, "0x66eee")
}

func TestBuildEnvelopeUserSignedDoesNotMutateInput(t *testing.T) {
	body := spotSendBody()
	before := body.Keys()

	first, err := BuildEnvelope(SpotSendAction(body), types.Testnet, 0, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)
	second, err := BuildEnvelope(SpotSendAction(body), types.Testnet, 0, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)

	td.Cmp(t, body.Keys(), before)

	for _, env := range []Envelope{first, second} {
		count := 0
		for _, k := range env.Action.Keys() {
			if k == "signatureChainId" || k == "hyperliquidChain" {
				count++
			}
		}
		td.Cmp(t, count, 2)
		td.Cmp(t, env.TypedData.Message["hyperliquidChain"], "Testnet")
	}

	// Signing an already merged body keeps a single copy of each field.
	again, err := BuildEnvelope(SpotSendAction(first.Action), types.Mainnet, 0, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)
	td.Cmp(t, len(again.Action), len(first.Action))
	chain, _ := again.Action.Get("hyperliquidChain")
	td.Cmp(t, chain, "Mainnet")
}

func TestBuildEnvelopeUserSignedKeepsExistingFieldPosition(t *testing.T) {
	body := types.NewAction(
		"type", "spotSend",
		"signatureChainId", "0xa4b1",
		"hyperliquidChain", "Testnet",
		"destination", "0xd36e4a5805f6b14c2f4fa0a2ff7b8d5b35e10971",
		"token", "USDC:0x6d1e7cde53ba9467b783cb7c530ce054",
		"amount", "1.0",
		"time", int64(1),
	)

	envelope, err := BuildEnvelope(SpotSendAction(body), types.Mainnet, 0, mo.None[common.Address]())
	td.Require(t).CmpNoError(err)

	td.Cmp(t, envelope.Action.Keys(), body.Keys())
	chainID, _ := envelope.Action.Get("signatureChainId")
	td.Cmp(t, chainID, "0x66eee")
}

func TestBuildEnvelopeUserSignedMissingField(t *testing.T) {
	body := types.NewAction("type", "usdSend", "destination", "0x00", "amount", "1")

	_, err := BuildEnvelope(UsdSendAction(body), types.Mainnet, 0, mo.None[common.Address]())
	td.Cmp(t, err, td.Contains(`"time"`))
}

func TestBuildEnvelopeRejectsBadInputs(t *testing.T) {
	_, err := BuildEnvelope(nil, types.Mainnet, 0, mo.None[common.Address]())
	td.CmpError(t, err)

	_, err = BuildEnvelope(UserSignedAction{Body: testAction()}, types.Mainnet, 0, mo.None[common.Address]())
	td.CmpError(t, err)

	_, err = BuildEnvelope(
		UserSignedAction{
			Body:        types.NewAction("time", true),
			PrimaryType: "X",
			Types:       []apitypes.Type{{Name: "time", Type: "uint64"}},
		},
		types.Mainnet,
		0,
		mo.None[common.Address](),
	)
	td.CmpError(t, err)
}

func TestTypedValue(t *testing.T) {
	tests := []struct {
		solType string
		in      any
		want    any
	}{
		{"uint64", int(5), big.NewInt(5)},
		{"uint64", uint64(7), big.NewInt(7)},
		{"uint256", int64(9), big.NewInt(9)},
		{"uint64", "11", "11"},
		{"string", "x", "x"},
		{"address", common.HexToAddress("0x01"), common.HexToAddress("0x01").Hex()},
	}

	for _, tt := range tests {
		got, err := typedValue(tt.solType, tt.in)
		td.Require(t).CmpNoError(err)
		td.Cmp(t, got, tt.want)
	}
}
