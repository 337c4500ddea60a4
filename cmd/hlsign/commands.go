package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alinkon0207/hlsign/balance"
	"github.com/alinkon0207/hlsign/exchange"
	"github.com/alinkon0207/hlsign/info"
	"github.com/alinkon0207/hlsign/signing"
	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"
	"github.com/spf13/pflag"
)

// actionKinds maps the --kind flag of "sign" to the envelope an action body
// is signed under.
var actionKinds = map[string]func(types.Action) signing.Action{
	"l1":                 func(body types.Action) signing.Action { return signing.L1Action{Body: body} },
	"usd-send":           func(body types.Action) signing.Action { return signing.UsdSendAction(body) },
	"spot-send":          func(body types.Action) signing.Action { return signing.SpotSendAction(body) },
	"withdraw":           func(body types.Action) signing.Action { return signing.WithdrawAction(body) },
	"usd-class-transfer": func(body types.Action) signing.Action { return signing.UsdClassTransferAction(body) },
}

func kindNames() string {
	names := make([]string, 0, len(actionKinds))
	for name := range actionKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (a *app) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func expectArgs(fs *pflag.FlagSet, n int) ([]string, error) {
	args := fs.Args()
	if len(args) != n {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", fs.Name(), n, len(args))
	}
	return args, nil
}

func parseAmount(text string) (float64, error) {
	amount, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %s", text)
	}
	return amount, nil
}

// runSign signs an action body read from the argument, or stdin when the
// argument is "-" or missing, and prints the request body.
func runSign(ctx context.Context, a *app, args []string) error {
	fs := a.flags("sign")
	kind := fs.String("kind", "l1", "envelope to sign under: "+kindNames())
	nonce := fs.Uint64("nonce", 0, "nonce in ms (default now)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wrap, ok := actionKinds[*kind]
	if !ok {
		return fmt.Errorf("unknown action kind %q (want one of %s)", *kind, kindNames())
	}

	var raw []byte
	switch rest := fs.Args(); {
	case len(rest) == 0 || rest[0] == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read action: %w", err)
		}
		raw = b
	case len(rest) == 1:
		raw = []byte(rest[0])
	default:
		return fmt.Errorf("sign: expected at most 1 argument, got %d", len(rest))
	}

	var body types.Action
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}
	if body == nil {
		return fmt.Errorf("decode action: empty body")
	}

	signer, err := a.signer(ctx)
	if err != nil {
		return err
	}

	vault, err := signing.ParseVaultAddress(a.cfg.VaultAddress)
	if err != nil {
		return err
	}

	n := *nonce
	if n == 0 {
		n = uint64(a.now().UnixMilli())
	}

	expires := mo.None[uint64]()
	if d := a.cfg.ExpiresAfter; d > 0 {
		expires = mo.Some(uint64(a.now().Add(d).UnixMilli()))
	}

	signed, err := signing.Sign(signer, wrap(body), a.cfg.ChainNetwork(), n, vault, expires)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(signed, "", "  ")
	if err != nil {
		return err
	}

	a.log.Debug().
		Str("type", body.Type()).
		Uint64("nonce", n).
		Str("network", a.cfg.ChainNetwork().String()).
		Msg("action signed")

	_, err = fmt.Fprintln(a.out, string(out))
	return err
}

func runUsdSend(ctx context.Context, a *app, args []string) error {
	fs := a.flags("usd-send")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest, err := expectArgs(fs, 2)
	if err != nil {
		return err
	}

	destination, err := signing.ParseAddress(rest[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(rest[1])
	if err != nil {
		return err
	}

	return a.submit(ctx, func(e *exchange.Exchange) (exchange.Response, error) {
		return e.UsdSend(ctx, destination, amount)
	})
}

func runSpotSend(ctx context.Context, a *app, args []string) error {
	fs := a.flags("spot-send")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest, err := expectArgs(fs, 3)
	if err != nil {
		return err
	}

	destination, err := signing.ParseAddress(rest[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(rest[2])
	if err != nil {
		return err
	}

	token, err := a.info().SpotToken(ctx, rest[1])
	if err != nil {
		return fmt.Errorf("resolve token: %w", err)
	}

	return a.submit(ctx, func(e *exchange.Exchange) (exchange.Response, error) {
		return e.SpotSend(ctx, destination, token, amount)
	})
}

func runWithdraw(ctx context.Context, a *app, args []string) error {
	fs := a.flags("withdraw")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest, err := expectArgs(fs, 2)
	if err != nil {
		return err
	}

	destination, err := signing.ParseAddress(rest[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(rest[1])
	if err != nil {
		return err
	}

	return a.submit(ctx, func(e *exchange.Exchange) (exchange.Response, error) {
		return e.Withdraw(ctx, destination, amount)
	})
}

func runClassTransfer(ctx context.Context, a *app, args []string) error {
	fs := a.flags("class-transfer")
	toPerp := fs.Bool("to-perp", false, "move from spot to perp instead of perp to spot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest, err := expectArgs(fs, 1)
	if err != nil {
		return err
	}

	amount, err := parseAmount(rest[0])
	if err != nil {
		return err
	}

	return a.submit(ctx, func(e *exchange.Exchange) (exchange.Response, error) {
		return e.UsdClassTransfer(ctx, amount, *toPerp)
	})
}

// runBalance prints the on-chain balance (when an RPC endpoint is set), the
// withdrawable perp balance and the spot balances of an address.
func runBalance(ctx context.Context, a *app, args []string) error {
	fs := a.flags("balance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var address common.Address
	switch rest := fs.Args(); len(rest) {
	case 0:
		signer, err := a.signer(ctx)
		if err != nil {
			return err
		}
		address = signer.Address()
	case 1:
		parsed, err := signing.ParseAddress(rest[0])
		if err != nil {
			return err
		}
		address = parsed
	default:
		return fmt.Errorf("balance: expected at most 1 argument, got %d", len(rest))
	}

	fmt.Fprintf(a.out, "%s %s\n", a.au.Bold("address"), address.Hex())

	if a.cfg.RPCURL != "" {
		client, err := balance.Dial(ctx, a.cfg.RPCURL)
		if err != nil {
			return err
		}
		defer client.Close()

		eth, err := client.Formatted(ctx, address)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s ETH\n", a.au.Bold("wallet"), a.au.Yellow(eth))
	}

	i := a.info()

	withdrawable, err := i.Withdrawable(ctx, address)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s USDC\n", a.au.Bold("withdrawable"), a.au.Yellow(strconv.FormatFloat(withdrawable, 'f', -1, 64)))

	balances, err := i.SpotBalances(ctx, address)
	if err != nil {
		return err
	}

	coins := make([]string, 0, len(balances))
	for coin := range balances {
		coins = append(coins, coin)
	}
	sort.Strings(coins)

	for _, coin := range coins {
		b := balances[coin]
		fmt.Fprintf(
			a.out,
			"%s %s (hold %s)\n",
			a.au.Bold(coin),
			a.au.Yellow(b.Total.Decimal().Sub(b.Hold.Decimal()).String()),
			b.Hold,
		)
	}
	return nil
}

func (a *app) info() *info.Info {
	return info.New(info.Config{BaseURL: a.cfg.BaseURL(), Timeout: a.cfg.Timeout})
}

func (a *app) submit(ctx context.Context, fn func(*exchange.Exchange) (exchange.Response, error)) error {
	e, cleanup, err := a.exchange(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := fn(e)
	if err != nil {
		fmt.Fprintf(a.out, "%s %v\n", a.au.Bold(a.au.Red("error")), err)
		return err
	}

	a.printResponse(resp)
	return nil
}
