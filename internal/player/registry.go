package player

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerAlreadyExists = errors.New("player already registered")
)

// Registry manages the available player backends
type Registry struct {
	mu      sync.RWMutex
	players map[string]Player
}

// NewRegistry creates a new player registry
func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]Player),
	}
}

// Register adds a player to the registry
func (r *Registry) Register(p Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.players[name]; exists {
		return fmt.Errorf("%w: %s", ErrPlayerAlreadyExists, name)
	}

	r.players[name] = p
	return nil
}

// Get retrieves a player by name
func (r *Registry) Get(name string) (Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.players[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}

	return p, nil
}

// List returns all registered player names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.players))
	for name := range r.players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a player from the registry
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[name]; !exists {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}

	delete(r.players, name)
	return nil
}
