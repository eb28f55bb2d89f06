// Package credentials provides credential stores for the host.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dukex/operion-octagon/pkg/models"
)

var ErrCredentialNotFound = errors.New("credential not found")

// Store keeps credentials in memory, keyed by credential type name.
type Store struct {
	mu          sync.RWMutex
	credentials map[string]models.CredentialData
}

func NewStore() *Store {
	return &Store{credentials: map[string]models.CredentialData{}}
}

// Set replaces the credential stored under name.
func (s *Store) Set(name string, data models.CredentialData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials[name] = maps.Clone(data)
}

func (s *Store) Get(_ context.Context, name string) (models.CredentialData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.credentials[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCredentialNotFound, name)
	}

	return maps.Clone(data), nil
}

// Names lists the configured credential types in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.credentials))
}
