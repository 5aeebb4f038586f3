package protected

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/vault-client-go"
)

// Vault is a client instance to Hashicorp Vault secure storage for storing secrets
type Vault struct {
	Client *vault.Client
}

// ObjectStoreCredentials hold the access pair for the object storage backend.
type ObjectStoreCredentials struct {
	AccessKey string
	SecretKey string
}

// NewVaultClient creates new instance of Vault client authenticated with the
// token from VAULT_TOKEN.
func NewVaultClient() (*Vault, error) {
	vaultAddr := os.Getenv("VAULT_ADDR")
	if vaultAddr == "" {
		vaultAddr = "http://vault:8200"
	}
	client, err := vault.New(
		vault.WithAddress(vaultAddr),
		vault.WithRequestTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating new vault client instance: %w", err)
	}
	if err = client.SetToken(os.Getenv("VAULT_TOKEN")); err != nil {
		return nil, fmt.Errorf("error while setting token: %w", err)
	}
	return &Vault{Client: client}, nil
}

// ObjectStoreCredentials reads the object-store access pair from the KV v2
// secret at path. Expected fields: access_key, secret_key.
func (v *Vault) ObjectStoreCredentials(ctx context.Context, path string) (ObjectStoreCredentials, error) {
	secret, err := v.Client.Read(ctx, path)
	if err != nil {
		return ObjectStoreCredentials{}, fmt.Errorf("failed to read object store credentials: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return ObjectStoreCredentials{}, fmt.Errorf("empty response from vault")
	}

	// KV v2 nests the payload under "data"
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		data = secret.Data
	}

	accessKey, ok := data["access_key"].(string)
	if !ok {
		return ObjectStoreCredentials{}, fmt.Errorf("access_key field missing")
	}
	secretKey, ok := data["secret_key"].(string)
	if !ok {
		return ObjectStoreCredentials{}, fmt.Errorf("secret_key field missing")
	}

	return ObjectStoreCredentials{AccessKey: accessKey, SecretKey: secretKey}, nil
}
