package commands

import (
	"fmt"
	"sync"

	"github.com/fivetwenty-io/gitlab3/internal/constants"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateHostToken stores the private token of a configured host.
func (p *ConfigPersister) UpdateHostToken(host, token string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	hostConfig, exists := config.Hosts[host]
	if !exists {
		return fmt.Errorf("host '%s': %w", host, constants.ErrHostNotFound)
	}

	hostConfig.Token = token

	return saveConfigStruct(config)
}
