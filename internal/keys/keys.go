// Package keys loads the signing key from Vault, an encrypted keystore file
// or the environment.
package keys

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alinkon0207/hlsign/internal/config"
	"github.com/alinkon0207/hlsign/signing"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/hashicorp/vault/api"
	"github.com/joho/godotenv"
)

// Source names where a key was found.
type Source string

const (
	SourceVault    Source = "vault"
	SourceKeystore Source = "keystore"
	SourceEnv      Source = "env"
)

// SecretReader is the part of the Vault logical API keys reads through.
type SecretReader interface {
	ReadWithContext(ctx context.Context, path string) (*api.Secret, error)
}

// Load returns a signer for the first configured source: Vault when a secret
// path is set, then a keystore file, then the environment (after .env).
// Nothing found is signing.ErrMissingCredential.
func Load(ctx context.Context, cfg config.KeyConfig) (*signing.PrivateKeySigner, Source, error) {
	switch {
	case cfg.Vault.Path != "":
		client, err := newVaultClient(cfg.Vault)
		if err != nil {
			return nil, "", err
		}
		s, err := FromVault(ctx, client.Logical(), cfg.Vault.Path, cfg.Vault.Field)
		return s, SourceVault, err

	case cfg.Keystore != "":
		s, err := FromKeystore(cfg.Keystore, cfg.Password)
		return s, SourceKeystore, err

	default:
		_ = godotenv.Load()
		s, err := FromEnv(cfg.Env)
		return s, SourceEnv, err
	}
}

func newVaultClient(cfg config.VaultConfig) (*api.Client, error) {
	vaultConfig := api.DefaultConfig()
	if err := vaultConfig.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("read vault environment: %w", err)
	}
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	return client, nil
}

// FromVault reads a hex key from a KV secret. Both KV v1 and v2 layouts
// are accepted.
func FromVault(ctx context.Context, r SecretReader, path, field string) (*signing.PrivateKeySigner, error) {
	if field == "" {
		field = "private_key"
	}

	secret, err := r.ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from vault: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secret at %s: %w", path, signing.ErrMissingCredential)
	}

	data := secret.Data
	// KV v2 nests the payload under "data"
	if inner, ok := data["data"].(map[string]any); ok {
		data = inner
	}

	raw, ok := data[field].(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("secret %s has no %q field: %w", path, field, signing.ErrMissingCredential)
	}

	return signing.NewPrivateKeySignerFromHex(strings.TrimSpace(raw))
}

// FromKeystore decrypts a geth keystore file.
func FromKeystore(path, password string) (*signing.PrivateKeySigner, error) {
	keyJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	key, err := keystore.DecryptKey(keyJSON, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore %s: %w", path, err)
	}

	return signing.NewPrivateKeySigner(key.PrivateKey)
}

// FromEnv reads a hex key from the named environment variable.
func FromEnv(name string) (*signing.PrivateKeySigner, error) {
	if name == "" {
		name = "PRIVATE_KEY"
	}

	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil, fmt.Errorf("%s is not set: %w", name, signing.ErrMissingCredential)
	}

	return signing.NewPrivateKeySignerFromHex(raw)
}
