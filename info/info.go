// Package info queries the /info endpoint for the balances transfers draw on.
package info

import (
	"context"
	"fmt"
	"strings"

	"github.com/alinkon0207/hlsign/constants"
	"github.com/alinkon0207/hlsign/rest"
	"github.com/ethereum/go-ethereum/common"
)

// Info provides access to user account information via the REST API
type Info struct {
	rest rest.ClientInterface
}

// Config for initializing the Info client
type Config struct {
	BaseURL string
	Timeout uint
}

// New creates a new Info client
func New(cfg Config) *Info {
	return NewWithClient(rest.New(rest.Config{
		BaseUrl: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}))
}

// NewWithClient creates an Info client over an existing REST client
func NewWithClient(client rest.ClientInterface) *Info {
	return &Info{rest: client}
}

// SpotUserState retrieves the spot token balances of a user.
func (i *Info) SpotUserState(ctx context.Context, user common.Address) (*SpotUserState, error) {
	var result SpotUserState
	err := i.rest.Post(
		ctx,
		constants.INFO_PATH,
		map[string]any{
			"type": "spotClearinghouseState",
			"user": strings.ToLower(user.Hex()),
		},
		&result,
	)
	if err != nil {
		return nil, fmt.Errorf("spot user state: %w", err)
	}

	return &result, nil
}

// SpotBalances returns the user's spot holdings keyed by coin.
func (i *Info) SpotBalances(ctx context.Context, user common.Address) (map[string]SpotBalance, error) {
	state, err := i.SpotUserState(ctx, user)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]SpotBalance, len(state.Balances))
	for _, b := range state.Balances {
		balances[b.Coin] = b
	}
	return balances, nil
}

// UserState retrieves perp account state of a user.
func (i *Info) UserState(ctx context.Context, user common.Address) (*UserState, error) {
	var result UserState
	err := i.rest.Post(
		ctx,
		constants.INFO_PATH,
		map[string]any{
			"type": "clearinghouseState",
			"user": strings.ToLower(user.Hex()),
		},
		&result,
	)
	if err != nil {
		return nil, fmt.Errorf("user state: %w", err)
	}

	return &result, nil
}

// Withdrawable returns how much USDC the user can withdraw or send.
func (i *Info) Withdrawable(ctx context.Context, user common.Address) (float64, error) {
	state, err := i.UserState(ctx, user)
	if err != nil {
		return 0, err
	}
	return state.Withdrawable.Raw(), nil
}

// SpotMeta retrieves the spot token list.
func (i *Info) SpotMeta(ctx context.Context) (*SpotMeta, error) {
	var result SpotMeta
	err := i.rest.Post(
		ctx,
		constants.INFO_PATH,
		map[string]any{"type": "spotMeta"},
		&result,
	)
	if err != nil {
		return nil, fmt.Errorf("spot meta: %w", err)
	}

	return &result, nil
}

// SpotToken resolves a token name such as "PURR" to its spotSend form.
// A name that already carries a token id is returned as is.
func (i *Info) SpotToken(ctx context.Context, name string) (string, error) {
	if strings.Contains(name, ":") {
		return name, nil
	}

	meta, err := i.SpotMeta(ctx)
	if err != nil {
		return "", err
	}

	for _, t := range meta.Tokens {
		if strings.EqualFold(t.Name, name) {
			return t.Wire(), nil
		}
	}
	return "", fmt.Errorf("unknown spot token: %s", name)
}
