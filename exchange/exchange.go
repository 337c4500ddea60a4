// Package exchange signs actions and submits them to the /exchange
// endpoint.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alinkon0207/hlsign/constants"
	"github.com/alinkon0207/hlsign/rest"
	"github.com/alinkon0207/hlsign/signing"
	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/samber/mo"
)

// Config for initializing the Exchange client
type Config struct {
	Network types.Network
	// BaseURL defaults to the network's API URL
	BaseURL string
	// Timeout for REST requests in seconds, 0 disables it
	Timeout      uint
	Signer       signing.TypedDataSigner
	VaultAddress common.Address
}

// Exchange signs and submits actions
type Exchange struct {
	transport    Transport
	signer       signing.TypedDataSigner
	network      types.Network
	vaultAddress mo.Option[common.Address]
	expiresAfter mo.Option[uint64]
	now          func() time.Time
	log          zerolog.Logger
}

// New creates a new Exchange client
func New(cfg Config, opts ...Option) (*Exchange, error) {
	if cfg.Signer == nil {
		return nil, fmt.Errorf("signer is required: %w", signing.ErrMissingCredential)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cfg.Network.APIURL()
	}

	var vaultAddress mo.Option[common.Address]
	if cfg.VaultAddress != constants.ZERO_ADDRESS {
		vaultAddress = mo.Some(cfg.VaultAddress)
	}

	e := &Exchange{
		signer:       cfg.Signer,
		network:      cfg.Network,
		vaultAddress: vaultAddress,
		expiresAfter: mo.None[uint64](),
		now:          time.Now,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.transport == nil {
		e.transport = NewRestTransport(rest.New(rest.Config{
			BaseUrl: baseURL,
			Timeout: cfg.Timeout,
		}))
	}

	return e, nil
}

// Address is the account the signer signs for
func (e *Exchange) Address() common.Address {
	return e.signer.Address()
}

func (e *Exchange) Network() types.Network {
	return e.network
}

// SetExpiresAfter makes L1 actions invalid after the given time.
// User-signed actions ignore it.
func (e *Exchange) SetExpiresAfter(t time.Time) {
	e.expiresAfter = mo.Some(uint64(t.UnixMilli()))
}

// ClearExpiresAfter clears the expiration time
func (e *Exchange) ClearExpiresAfter() {
	e.expiresAfter = mo.None[uint64]()
}

// PostAction signs any action with a fresh nonce and submits it.
func (e *Exchange) PostAction(ctx context.Context, action signing.Action) (Response, error) {
	return e.post(ctx, action, e.nonce())
}

func (e *Exchange) nonce() uint64 {
	return uint64(e.now().UnixMilli())
}

// these L1 actions are always sent without a vault address
var vaultlessActions = map[string]bool{
	"usdClassTransfer": true,
	"sendAsset":        true,
}

func (e *Exchange) post(
	ctx context.Context,
	action signing.Action,
	nonce uint64,
) (Response, error) {
	if action == nil {
		return Response{}, fmt.Errorf("action is required")
	}
	actionType := action.Payload().Type()

	vault := e.vaultAddress
	if vaultlessActions[actionType] {
		vault = mo.None[common.Address]()
	}

	signed, err := signing.Sign(e.signer, action, e.network, nonce, vault, e.expiresAfter)
	if err != nil {
		return Response{}, fmt.Errorf("failed to sign %s action: %w", actionType, err)
	}

	raw, err := e.transport.PostAction(ctx, signed)
	if err != nil {
		e.log.Error().
			Err(err).
			Str("type", actionType).
			Uint64("nonce", nonce).
			Msg("action post failed")
		return Response{}, fmt.Errorf("failed to post to /exchange. Type: %s: %w", actionType, err)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("decode %s response: %w", actionType, err)
	}

	e.log.Info().
		Str("type", actionType).
		Uint64("nonce", nonce).
		Str("status", resp.Status).
		Msg("action submitted")

	if resp.IsErr() {
		return resp, &ActionError{ActionType: actionType, Nonce: nonce, Message: resp.ErrorMessage}
	}
	if errs := resp.StatusErrors(); len(errs) > 0 {
		return resp, &ActionError{ActionType: actionType, Nonce: nonce, Message: strings.Join(errs, "; ")}
	}

	return resp, nil
}
