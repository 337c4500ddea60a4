package exchange

import (
	"context"
	"encoding/json"

	"github.com/alinkon0207/hlsign/constants"
	"github.com/alinkon0207/hlsign/rest"
	"github.com/alinkon0207/hlsign/signing"
)

// Transport delivers a signed action and returns the raw reply body.
// *ws.Manager satisfies it as well as RestTransport.
type Transport interface {
	PostAction(ctx context.Context, signed signing.SignedAction) (json.RawMessage, error)
}

// RestTransport posts signed actions to the /exchange HTTP endpoint.
type RestTransport struct {
	rest rest.ClientInterface
}

var _ Transport = (*RestTransport)(nil)

func NewRestTransport(client rest.ClientInterface) *RestTransport {
	return &RestTransport{rest: client}
}

func (t *RestTransport) PostAction(
	ctx context.Context,
	signed signing.SignedAction,
) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := t.rest.Post(ctx, constants.EXCHANGE_PATH, signed, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
