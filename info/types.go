package info

import "github.com/alinkon0207/hlsign/types"

// ===== Spot Types =====

// SpotTokenInfo contains spot token metadata
type SpotTokenInfo struct {
	Name        string `json:"name"`
	SzDecimals  int    `json:"szDecimals"`
	WeiDecimals int    `json:"weiDecimals"`
	Index       int    `json:"index"`
	TokenId     string `json:"tokenId"`
	IsCanonical bool   `json:"isCanonical"`
}

// Wire is the "NAME:tokenId" form spotSend expects.
func (t SpotTokenInfo) Wire() string {
	return t.Name + ":" + t.TokenId
}

// SpotMeta contains the spot token list
type SpotMeta struct {
	Tokens []SpotTokenInfo `json:"tokens"`
}

// SpotBalance is one token holding of a user
type SpotBalance struct {
	Coin     string            `json:"coin"`
	Token    int               `json:"token"`
	Total    types.FloatString `json:"total"`
	Hold     types.FloatString `json:"hold"`
	EntryNtl types.FloatString `json:"entryNtl"`
}

// Available is the part of Total not held by open orders
func (b SpotBalance) Available() float64 {
	return b.Total.Raw() - b.Hold.Raw()
}

// SpotUserState is the reply of spotClearinghouseState
type SpotUserState struct {
	Balances []SpotBalance `json:"balances"`
}

// ===== Perp Types =====

// MarginSummary contains margin information
type MarginSummary struct {
	AccountValue    types.FloatString `json:"accountValue"`
	TotalMarginUsed types.FloatString `json:"totalMarginUsed"`
	TotalNtlPos     types.FloatString `json:"totalNtlPos"`
	TotalRawUsd     types.FloatString `json:"totalRawUsd"`
}

// UserState is the part of clearinghouseState transfers care about
type UserState struct {
	MarginSummary      MarginSummary     `json:"marginSummary"`
	CrossMarginSummary MarginSummary     `json:"crossMarginSummary"`
	Withdrawable       types.FloatString `json:"withdrawable"`
}
