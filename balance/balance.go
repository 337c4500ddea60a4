// Package balance reads native token balances from an EVM node and formats
// them for display.
package balance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

const etherDecimals = 18

// DisplayPlaces is the number of decimals Formatted rounds to.
const DisplayPlaces = 2

// BalanceReader is the part of ethclient.Client balance lookups need.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

var _ BalanceReader = (*ethclient.Client)(nil)

// Client looks up balances at the latest block.
type Client struct {
	reader BalanceReader
	close  func()
}

// New wraps an existing reader.
func New(reader BalanceReader) *Client {
	return &Client{reader: reader}
}

// Dial connects to the JSON-RPC endpoint at rpcURL.
func Dial(ctx context.Context, rpcURL string) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	return &Client{reader: ec, close: ec.Close}, nil
}

// Close releases the RPC connection opened by Dial.
func (c *Client) Close() {
	if c.close != nil {
		c.close()
	}
}

// Balance returns the balance of address in wei.
func (c *Client) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	wei, err := c.reader.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", address.Hex(), err)
	}
	return wei, nil
}

// Formatted returns the balance of address in ether with DisplayPlaces
// decimals.
func (c *Client) Formatted(ctx context.Context, address common.Address) (string, error) {
	wei, err := c.Balance(ctx, address)
	if err != nil {
		return "", err
	}
	return FormatEther(wei, DisplayPlaces), nil
}

// FormatEther renders wei as ether rounded to places decimals, halves away
// from zero. A nil amount is zero.
func FormatEther(wei *big.Int, places int32) string {
	if wei == nil {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).StringFixed(places)
}
