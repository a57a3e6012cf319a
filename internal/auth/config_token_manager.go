package auth

import (
	"context"
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister defines the interface for persisting config changes.
type ConfigPersister interface {
	UpdateHostToken(host, token string) error
}

// ConfigTokenManager keeps the private token in memory and writes every new
// token through to the CLI config, so a login survives the process.
type ConfigTokenManager struct {
	static          *StaticTokenManager
	configPersister ConfigPersister
	host            string
}

// NewConfigTokenManager creates a new config-persisting token manager.
func NewConfigTokenManager(configPersister ConfigPersister, host, initialToken string) *ConfigTokenManager {
	return &ConfigTokenManager{
		static:          NewStaticTokenManager(initialToken),
		configPersister: configPersister,
		host:            host,
	}
}

// GetToken returns the current token.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.static.GetToken(ctx)
}

// SetToken stores the token and persists it. The in-memory token is kept
// even when persisting fails.
func (m *ConfigTokenManager) SetToken(token string) error {
	_ = m.static.SetToken(token)

	return m.persistToken(token)
}

// persistToken saves the token to config.
func (m *ConfigTokenManager) persistToken(token string) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateHostToken(m.host, token)
	if err != nil {
		return fmt.Errorf("failed to update host token: %w", err)
	}

	return nil
}
