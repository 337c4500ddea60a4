package constants

import "github.com/ethereum/go-ethereum/common"

const MAINNET_API_URL = "https://api.hyperliquid.xyz"
const TESTNET_API_URL = "https://api.hyperliquid-testnet.xyz"
const LOCAL_API_URL = "http://localhost:3001"

// EIP-712 domain used for L1 actions (orders, cancels, class transfers...)
const (
	L1_DOMAIN_NAME    = "Exchange"
	L1_DOMAIN_VERSION = "1"
	L1_CHAIN_ID       = 1337
)

// EIP-712 domain used for user-signed actions (transfers, withdrawals)
const (
	USER_SIGNED_DOMAIN_NAME    = "HyperliquidSignTransaction"
	USER_SIGNED_DOMAIN_VERSION = "1"
	SIGNATURE_CHAIN_ID         = 0x66eee
	SIGNATURE_CHAIN_ID_HEX     = "0x66eee"
)

const AGENT_PRIMARY_TYPE = "Agent"

const EXCHANGE_PATH = "/exchange"
const INFO_PATH = "/info"

var ZERO_ADDRESS = common.Address{}
