// Package glclient provides the main entry point for connecting to a GitLab v3 API
package glclient

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/gitlab3/internal/auth"
	"github.com/fivetwenty-io/gitlab3/internal/client"
	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
)

type (
	// Connection is the root of a bound resource graph.
	Connection = client.Connection
	// Resource is one instance of a bound resource type.
	Resource = client.Resource
	// ResourceType is a resource definition bound to a connection.
	ResourceType = client.ResourceType
	// Operation is one entry of a type's operation table.
	Operation = client.Operation
	// OperationKind names the executor serving an operation.
	OperationKind = client.OperationKind
	// TokenManager owns the private token of a connection.
	TokenManager = auth.TokenManager
	// ConfigPersister stores a token obtained by Login.
	ConfigPersister = auth.ConfigPersister
)

// New normalizes config and binds the GitLab resource tree (or
// config.Definition) to a new connection.
func New(ctx context.Context, config *gitlab3.Config) (*Connection, error) {
	return NewWithTokenManager(ctx, config, nil)
}

// NewWithTokenManager is New with a caller-owned token manager. A nil
// manager holds config.Token in memory.
func NewWithTokenManager(ctx context.Context, config *gitlab3.Config, tokenManager TokenManager) (*Connection, error) {
	err := normalize(config)
	if err != nil {
		return nil, err
	}

	if tokenManager == nil {
		tokenManager = auth.NewStaticTokenManager(config.Token)
	}

	conn, err := client.NewWithTokenManager(ctx, config, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create new connection: %w", err)
	}

	return conn, nil
}

// NewWithPersister creates a connection whose token, once obtained by Login,
// is handed to persister under host.
func NewWithPersister(ctx context.Context, config *gitlab3.Config, persister ConfigPersister, host string) (*Connection, error) {
	if config == nil {
		return nil, gitlab3.ErrConfigRequired
	}

	return NewWithTokenManager(ctx, config, auth.NewConfigTokenManager(persister, host, config.Token))
}

// NewWithToken creates a connection authenticated by a private token.
func NewWithToken(ctx context.Context, url, token string) (*Connection, error) {
	return New(ctx, &gitlab3.Config{
		URL:   url,
		Token: token,
	})
}

// NewWithPassword creates a connection and logs in through /session.
// Username may be an e-mail address.
func NewWithPassword(ctx context.Context, url, username, password string) (*Connection, error) {
	return New(ctx, &gitlab3.Config{
		URL:      url,
		Username: username,
		Password: password,
	})
}

func normalize(config *gitlab3.Config) error {
	if config == nil {
		return gitlab3.ErrConfigRequired
	}

	if config.URL == "" {
		return gitlab3.ErrURLRequired
	}

	url := strings.TrimSuffix(config.URL, "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	config.URL = url

	if config.SkipTLSVerify && !isDevelopmentEnvironment() {
		return fmt.Errorf("%w (set %s=true)", gitlab3.ErrSkipTLSOnlyInDev, constants.DevModeEnv)
	}

	return nil
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv(constants.DevModeEnv)

	return devMode == constants.BooleanTrue || devMode == constants.BooleanOne
}
