package auth

import (
	"context"
	"sync"
)

// TokenManager hands out the private token sent with every request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(token string) error
}

// StaticTokenManager holds a single private token in memory. An empty token
// is valid: requests are then sent without the PRIVATE-TOKEN header.
type StaticTokenManager struct {
	mutex sync.RWMutex
	token string
}

// NewStaticTokenManager creates a token manager holding token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the current token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.token, nil
}

// SetToken replaces the current token.
func (m *StaticTokenManager) SetToken(token string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.token = token

	return nil
}

// HasToken reports whether a non-empty token is set.
func (m *StaticTokenManager) HasToken() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.token != ""
}
