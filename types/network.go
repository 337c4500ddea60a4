package types

import (
	"fmt"
	"strings"

	"github.com/alinkon0207/hlsign/constants"
)

// Network selects which Hyperliquid deployment an action is signed for.
type Network int

const (
	Mainnet Network = iota
	Testnet
)

// ParseNetwork accepts "mainnet" or "testnet" in any case.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	default:
		return 0, fmt.Errorf("unknown network %q", s)
	}
}

func (n Network) IsMainnet() bool {
	return n == Mainnet
}

// Source is the phantom agent source label: "a" on mainnet, "b" on testnet.
func (n Network) Source() string {
	if n.IsMainnet() {
		return "a"
	}
	return "b"
}

// ChainName is the hyperliquidChain label carried by user-signed actions.
func (n Network) ChainName() string {
	if n.IsMainnet() {
		return "Mainnet"
	}
	return "Testnet"
}

// APIURL is the default REST endpoint for the network.
func (n Network) APIURL() string {
	if n.IsMainnet() {
		return constants.MAINNET_API_URL
	}
	return constants.TESTNET_API_URL
}

func (n Network) String() string {
	return strings.ToLower(n.ChainName())
}
