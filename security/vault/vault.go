// Package vault keeps the manager account's signing key
// in the remote hashicorp vault.
//
// The key never touches the environment variables nor the database.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blocklords/market/app/configuration"
	"github.com/blocklords/market/app/log"
	"github.com/blocklords/market/common/data_type/key_value"

	hashicorp "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
)

// Vault is the wrapper around hashicorp vault client along with
// the secret key paths specific for the marketplace backoffice.
type Vault struct {
	logger *log.Logger
	client *hashicorp.Client
	path   string // Key-Value secrets mount

	// connection parameters
	approle_role_id    string
	approle_secret_id  string
	approle_mount_path string

	timeout time.Duration

	// the app role auth token, renewed periodically
	auth_token *hashicorp.Secret
}

// VaultConfigurations are setting the default configuration parameters.
//
// The values are the default values if it wasn't provided by the user
// Set the default value to nil, if the parameter is required from the user
var VaultConfigurations = configuration.DefaultConfig{
	Title: "Vault",
	Parameters: key_value.New(map[string]interface{}{
		"MARKET_VAULT_HOST":               "localhost",
		"MARKET_VAULT_PORT":               8200,
		"MARKET_VAULT_HTTPS":              false,
		"MARKET_VAULT_APPROLE_MOUNT_PATH": "market-approle",
		"MARKET_VAULT_PATH":               "market-auth-kv",
		"MARKET_VAULT_TIMEOUT":            uint64(10),
		"MARKET_VAULT_APPROLE_ROLE_ID":    nil,
		"MARKET_VAULT_APPROLE_SECRET_ID":  nil,
	}),
}

// New vault that's connected to the remote Hashicorp Vault.
func New(app_config *configuration.Config, logger *log.Logger) (*Vault, error) {
	if app_config == nil {
		return nil, errors.New("missing configuration")
	}
	// AppRole RoleID to log in to Vault
	if !app_config.Exist("MARKET_VAULT_APPROLE_ROLE_ID") {
		return nil, fmt.Errorf("missing 'MARKET_VAULT_APPROLE_ROLE_ID' environment variable")
	}
	// AppRole SecretID to log in to Vault
	if !app_config.Exist("MARKET_VAULT_APPROLE_SECRET_ID") {
		return nil, fmt.Errorf("missing 'MARKET_VAULT_APPROLE_SECRET_ID' environment variable")
	}
	if !app_config.Exist("MARKET_VAULT_APPROLE_MOUNT_PATH") {
		return nil, fmt.Errorf("missing 'MARKET_VAULT_APPROLE_MOUNT_PATH' environment variable")
	}

	vault_logger := logger.Child("vault")

	secure := app_config.GetBool("MARKET_VAULT_HTTPS")
	host := app_config.GetString("MARKET_VAULT_HOST")
	port := app_config.GetString("MARKET_VAULT_PORT")

	config := hashicorp.DefaultConfig()
	if secure {
		config.Address = fmt.Sprintf("https://%s:%s", host, port)
	} else {
		config.Address = fmt.Sprintf("http://%s:%s", host, port)
	}

	client, err := hashicorp.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("hashicorp.NewClient: %w", err)
	}

	vault := Vault{
		client:             client,
		logger:             vault_logger,
		path:               app_config.GetString("MARKET_VAULT_PATH"),
		approle_mount_path: app_config.GetString("MARKET_VAULT_APPROLE_MOUNT_PATH"),
		approle_role_id:    app_config.GetString("MARKET_VAULT_APPROLE_ROLE_ID"),
		approle_secret_id:  app_config.GetString("MARKET_VAULT_APPROLE_SECRET_ID"),
		timeout:            time.Duration(app_config.GetUint64("MARKET_VAULT_TIMEOUT")) * time.Second,
	}

	ctx, cancel_func := context.WithTimeout(context.Background(), vault.timeout)
	token, err := vault.login(ctx)
	cancel_func()
	if err != nil {
		return nil, fmt.Errorf("vault login error: %w", err)
	}

	vault.auth_token = token

	return &vault, nil
}

// A combination of a RoleID and a SecretID is required to log into Vault
// with AppRole authentication method.
//
// ref: https://www.vaultproject.io/docs/concepts/response-wrapping
// ref: https://learn.hashicorp.com/tutorials/vault/approle-best-practices?in=vault/auth-methods#secretid-delivery-best-practices
func (v *Vault) login(ctx context.Context) (*hashicorp.Secret, error) {
	v.logger.Info("Vault login: begin")

	approleSecretID := &approle.SecretID{
		FromString: v.approle_secret_id,
	}

	appRoleAuth, err := approle.NewAppRoleAuth(
		v.approle_role_id,
		approleSecretID,
		approle.WithMountPath(v.approle_mount_path),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize approle authentication method: %w", err)
	}

	authInfo, err := v.client.Auth().Login(ctx, appRoleAuth)
	if err != nil {
		return nil, fmt.Errorf("unable to login using approle auth method: %w", err)
	}
	if authInfo == nil {
		return nil, fmt.Errorf("no approle info was returned after login")
	}

	v.logger.Info("Vault login: success!")

	return authInfo, nil
}

// Returns the String in the secret, by key
func (v *Vault) get_string(secret_name string, key string) (string, error) {
	ctx, cancel_func := context.WithTimeout(context.Background(), v.timeout)
	defer cancel_func()

	secret, err := v.client.KVv2(v.path).Get(ctx, secret_name)
	if err != nil {
		return "", fmt.Errorf("vault.client.Get: %w", err)
	}

	value, ok := secret.Data[key].(string)
	if !ok {
		return "", fmt.Errorf("the '%s' key at the '%s' secret is not a string", key, secret_name)
	}

	return value, nil
}

// GetSignerKey returns the manager account's hex encoded private key.
// The key is read freshly on every call, it is not cached in this process.
func (v *Vault) GetSignerKey() (string, error) {
	return v.get_string("manager", "private_key")
}

// PeriodicallyRenewLeases renews the vault auth token before it expires.
// Run it on its own goroutine.
func (v *Vault) PeriodicallyRenewLeases() {
	for {
		renewed, err := v.manage_token_lifecycle(v.auth_token)
		if err != nil {
			v.logger.Fatal("unable to start managing token lifecycle", "error", err)
		}

		ctx, cancel_func := context.WithTimeout(context.Background(), v.timeout)
		token, err := v.login(ctx)
		cancel_func()
		if err != nil {
			v.logger.Fatal("unable to authenticate to vault", "error", err)
		}

		v.auth_token = token
		_ = renewed
	}
}

// Starts token lifecycle management. Returns only fatal errors as errors,
// otherwise returns nil, so we can attempt login again.
func (v *Vault) manage_token_lifecycle(token *hashicorp.Secret) (bool, error) {
	renew := token.Auth.Renewable
	if !renew {
		v.logger.Warn("Token is not configured to be renewable. Re-attempting login.")
		return false, nil
	}

	watcher, err := v.client.NewLifetimeWatcher(&hashicorp.LifetimeWatcherInput{
		Secret:    token,
		Increment: 3600,
	})
	if err != nil {
		return false, fmt.Errorf("unable to initialize new lifetime watcher for renewing auth token: %w", err)
	}

	go watcher.Start()
	defer watcher.Stop()

	for {
		select {
		// `DoneCh` will return if renewal fails, or if the remaining lease
		// duration is under a built-in threshold and either renewing is not
		// extending it duration, or renewing is disabled.
		case err := <-watcher.DoneCh():
			if err != nil {
				v.logger.Warn("Failed to renew token. Re-attempting login.", "error", err)
				return false, nil
			}
			v.logger.Warn("Token can no longer be renewed. Re-attempting login.")
			return false, nil

		// Successfully completed renewal
		case renewal := <-watcher.RenewCh():
			v.logger.Info("Successfully renewed", "renewed_at", renewal.RenewedAt)
		}
	}
}
