package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/alinkon0207/hlsign/exchange"
	"github.com/alinkon0207/hlsign/internal/config"
	"github.com/alinkon0207/hlsign/internal/keys"
	"github.com/alinkon0207/hlsign/signing"
	"github.com/alinkon0207/hlsign/ws"
	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// app carries what every subcommand needs.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	out    io.Writer
	errOut io.Writer
	au     aurora.Aurora
	now    func() time.Time
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"sign":           {usage: "sign [--kind KIND] [--nonce N] ACTION_JSON", run: runSign},
	"usd-send":       {usage: "usd-send DESTINATION AMOUNT", run: runUsdSend},
	"spot-send":      {usage: "spot-send DESTINATION TOKEN AMOUNT", run: runSpotSend},
	"withdraw":       {usage: "withdraw DESTINATION AMOUNT", run: runWithdraw},
	"class-transfer": {usage: "class-transfer [--to-perp] AMOUNT", run: runClassTransfer},
	"balance":        {usage: "balance [ADDRESS]", run: runBalance},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := pflag.NewFlagSet("hlsign", pflag.ContinueOnError)
	root.SetOutput(stderr)
	root.SetInterspersed(false)
	config.RegisterFlags(root)
	noColor := root.Bool("no-color", false, "disable colored output")
	root.Usage = func() { usage(stderr, root) }

	if err := root.Parse(args); err != nil {
		return err
	}

	rest := root.Args()
	if len(rest) == 0 {
		usage(stderr, root)
		return fmt.Errorf("no command given")
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", rest[0])
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	a := &app{
		cfg:    cfg,
		log:    logger,
		out:    stdout,
		errOut: stderr,
		au:     aurora.NewAurora(!*noColor),
		now:    time.Now,
	}

	return cmd.run(ctx, a, rest[1:])
}

func usage(w io.Writer, root *pflag.FlagSet) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: hlsign [flags] COMMAND [args]")
	fmt.Fprintln(w, "\ncommands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "\nflags:")
	fmt.Fprint(w, root.FlagUsages())
}

func newLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
	}

	if !cfg.JSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// signer loads the configured key.
func (a *app) signer(ctx context.Context) (*signing.PrivateKeySigner, error) {
	s, source, err := keys.Load(ctx, a.cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}

	a.log.Debug().
		Str("source", string(source)).
		Str("address", s.Address().Hex()).
		Msg("signing key loaded")
	return s, nil
}

// exchange builds a client on the configured transport. The returned
// function releases the transport.
func (a *app) exchange(ctx context.Context) (*exchange.Exchange, func(), error) {
	s, err := a.signer(ctx)
	if err != nil {
		return nil, nil, err
	}

	vault, err := signing.ParseVaultAddress(a.cfg.VaultAddress)
	if err != nil {
		return nil, nil, err
	}

	opts := []exchange.Option{
		exchange.WithLogger(a.log),
		exchange.WithClock(a.now),
	}
	cleanup := func() {}

	if a.cfg.Transport == config.TransportWS {
		m := ws.New(a.cfg.BaseURL(), ws.WithLogger(a.log))
		if err := m.Start(ctx); err != nil {
			return nil, nil, err
		}
		opts = append(opts, exchange.WithTransport(m))
		cleanup = m.Stop
	}

	e, err := exchange.New(exchange.Config{
		Network:      a.cfg.ChainNetwork(),
		BaseURL:      a.cfg.BaseURL(),
		Timeout:      a.cfg.Timeout,
		Signer:       s,
		VaultAddress: vault.OrEmpty(),
	}, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if d := a.cfg.ExpiresAfter; d > 0 {
		e.SetExpiresAfter(a.now().Add(d))
	}

	return e, cleanup, nil
}

func (a *app) printResponse(resp exchange.Response) {
	if resp.Type != "" {
		fmt.Fprintf(a.out, "%s %s\n", a.au.Bold(a.au.Green("ok")), resp.Type)
		return
	}
	fmt.Fprintf(a.out, "%s\n", a.au.Bold(a.au.Green("ok")))
}
