package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/alinkon0207/hlsign/internal/utils"
	"github.com/alinkon0207/hlsign/signing"
	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/common"
)

// UsdSend transfers USDC between perp accounts.
func (e *Exchange) UsdSend(
	ctx context.Context,
	destination common.Address,
	amount float64,
) (Response, error) {
	strAmount, err := utils.FloatToWire(amount)
	if err != nil {
		return Response{}, fmt.Errorf("failed to convert amount to wire format: %w", err)
	}

	nonce := e.nonce()
	body := types.NewAction(
		"type", "usdSend",
		"destination", addressWire(destination),
		"amount", strAmount,
		"time", nonce,
	)

	return e.post(ctx, signing.UsdSendAction(body), nonce)
}

// SpotSend transfers a spot token, named as "NAME:0xtokenid".
func (e *Exchange) SpotSend(
	ctx context.Context,
	destination common.Address,
	token string,
	amount float64,
) (Response, error) {
	if token == "" {
		return Response{}, fmt.Errorf("token is required")
	}

	strAmount, err := utils.FloatToWire(amount)
	if err != nil {
		return Response{}, fmt.Errorf("failed to convert amount to wire format: %w", err)
	}

	nonce := e.nonce()
	body := types.NewAction(
		"type", "spotSend",
		"destination", addressWire(destination),
		"token", token,
		"amount", strAmount,
		"time", nonce,
	)

	return e.post(ctx, signing.SpotSendAction(body), nonce)
}

// Withdraw moves USDC from the exchange to destination on the bridge chain.
func (e *Exchange) Withdraw(
	ctx context.Context,
	destination common.Address,
	amount float64,
) (Response, error) {
	strAmount, err := utils.FloatToWire(amount)
	if err != nil {
		return Response{}, fmt.Errorf("failed to convert amount to wire format: %w", err)
	}

	nonce := e.nonce()
	body := types.NewAction(
		"type", "withdraw3",
		"destination", addressWire(destination),
		"amount", strAmount,
		"time", nonce,
	)

	return e.post(ctx, signing.WithdrawAction(body), nonce)
}

// UsdClassTransfer moves USDC between the spot and perp balances.
// With a vault configured the amount names the subaccount.
func (e *Exchange) UsdClassTransfer(
	ctx context.Context,
	amount float64,
	toPerp bool,
) (Response, error) {
	strAmount, err := utils.FloatToWire(amount)
	if err != nil {
		return Response{}, fmt.Errorf("failed to convert amount to wire format: %w", err)
	}

	if v, ok := e.vaultAddress.Get(); ok {
		strAmount += fmt.Sprintf(" subaccount:%s", v.Hex())
	}

	nonce := e.nonce()
	body := types.NewAction(
		"type", "usdClassTransfer",
		"amount", strAmount,
		"toPerp", toPerp,
		"nonce", nonce,
	)

	return e.post(ctx, signing.UsdClassTransferAction(body), nonce)
}

// SpotUserClassTransfer is the L1 form of a spot/perp transfer. usdc is in
// raw units (6 decimals).
func (e *Exchange) SpotUserClassTransfer(
	ctx context.Context,
	usdc uint64,
	toPerp bool,
) (Response, error) {
	body := types.NewAction(
		"type", "spotUser",
		"classTransfer", types.NewAction(
			"usdc", usdc,
			"toPerp", toPerp,
		),
	)

	return e.post(ctx, signing.L1Action{Body: body}, e.nonce())
}

func addressWire(a common.Address) string {
	return strings.ToLower(a.Hex())
}
