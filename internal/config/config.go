// Package config loads hlsign settings from hlsign.yaml, HLSIGN_* environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alinkon0207/hlsign/types"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Network      string        `mapstructure:"network"`
	APIURL       string        `mapstructure:"api_url"`
	Timeout      uint          `mapstructure:"timeout"`
	Transport    string        `mapstructure:"transport"` // "rest" or "ws"
	VaultAddress string        `mapstructure:"vault_address"`
	ExpiresAfter time.Duration `mapstructure:"expires_after"`
	RPCURL       string        `mapstructure:"rpc_url"`
	Log          LogConfig     `mapstructure:"log"`
	Key          KeyConfig     `mapstructure:"key"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// KeyConfig says where the signing key comes from. Sources are tried in
// the order Vault, keystore, environment.
type KeyConfig struct {
	Env      string      `mapstructure:"env"`
	Keystore string      `mapstructure:"keystore"`
	Password string      `mapstructure:"password"`
	Vault    VaultConfig `mapstructure:"vault"`
}

// VaultConfig points at a KV secret holding the hex private key.
type VaultConfig struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
	Path    string `mapstructure:"path"`
	Field   string `mapstructure:"field"`
}

const (
	TransportREST = "rest"
	TransportWS   = "ws"
)

var defaults = map[string]any{
	"network":           "mainnet",
	"api_url":           "",
	"timeout":           uint(10),
	"transport":         TransportREST,
	"vault_address":     "",
	"expires_after":     time.Duration(0),
	"rpc_url":           "",
	"log.level":         "info",
	"log.json":          false,
	"key.env":           "PRIVATE_KEY",
	"key.keystore":      "",
	"key.password":      "",
	"key.vault.address": "",
	"key.vault.token":   "",
	"key.vault.path":    "",
	"key.vault.field":   "private_key",
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"network":       "network",
	"api-url":       "api_url",
	"timeout":       "timeout",
	"transport":     "transport",
	"vault-address": "vault_address",
	"expires-after": "expires_after",
	"rpc-url":       "rpc_url",
	"log-level":     "log.level",
	"log-json":      "log.json",
	"key-env":       "key.env",
	"keystore":      "key.keystore",
}

// RegisterFlags defines the global flags Load knows how to bind.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./hlsign.yaml)")
	fs.String("network", "mainnet", "mainnet or testnet")
	fs.String("api-url", "", "API base URL (defaults to the network's)")
	fs.Uint("timeout", 10, "request timeout in seconds, 0 disables it")
	fs.String("transport", TransportREST, "rest or ws")
	fs.String("vault-address", "", "vault or subaccount to act for")
	fs.Duration("expires-after", 0, "reject L1 actions not executed within this duration")
	fs.String("rpc-url", "", "EVM JSON-RPC endpoint for on-chain balances")
	fs.String("log-level", "info", "trace, debug, info, warn or error")
	fs.Bool("log-json", false, "log JSON instead of console output")
	fs.String("key-env", "PRIVATE_KEY", "environment variable holding the private key")
	fs.String("keystore", "", "encrypted keystore file")
}

// Load reads configuration from file, environment and flags. flags may be
// nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetConfigName("hlsign")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("HLSIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot type-check.
func (c Config) Validate() error {
	if _, err := types.ParseNetwork(c.Network); err != nil {
		return err
	}

	switch c.Transport {
	case TransportREST, TransportWS:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}

	if c.ExpiresAfter < 0 {
		return fmt.Errorf("expires_after must not be negative")
	}

	return nil
}

// ChainNetwork is the parsed network. Load has already validated it.
func (c Config) ChainNetwork() types.Network {
	n, _ := types.ParseNetwork(c.Network)
	return n
}

// BaseURL is api_url when set, otherwise the network's default.
func (c Config) BaseURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	return c.ChainNetwork().APIURL()
}
