package feature

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
)

// MemoryFetcher is an in-memory implementation of the Fetcher interface.
// It's useful for testing, local development and offline evaluation.
type MemoryFetcher struct {
	flags map[string]Definition
	mu    sync.RWMutex
}

// NewMemoryFetcher creates a fetcher seeded with the given definitions.
func NewMemoryFetcher(initial ...Definition) (*MemoryFetcher, error) {
	f := &MemoryFetcher{
		flags: make(map[string]Definition, len(initial)),
	}
	for _, def := range initial {
		if err := f.Set(def); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Fetch returns a copy of the stored definition or ErrFlagNotFound.
func (m *MemoryFetcher) Fetch(ctx context.Context, flagKey string) (Definition, error) {
	if err := ctx.Err(); err != nil {
		return Definition{}, errors.Join(ErrNetwork, err)
	}

	m.mu.RLock()
	def, exists := m.flags[flagKey]
	m.mu.RUnlock()

	if !exists {
		return Definition{}, ErrFlagNotFound
	}
	return cloneDefinition(def), nil
}

// Set creates or replaces a definition.
func (m *MemoryFetcher) Set(def Definition) error {
	if def.Key == "" {
		return errors.Join(ErrInvalidFlag, errors.New("flag key cannot be empty"))
	}
	if err := def.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[def.Key] = cloneDefinition(def)
	return nil
}

// Delete removes a definition. Deleting an unknown key returns ErrFlagNotFound.
func (m *MemoryFetcher) Delete(flagKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.flags[flagKey]; !exists {
		return ErrFlagNotFound
	}
	delete(m.flags, flagKey)
	return nil
}

// List returns copies of all definitions sorted by key.
func (m *MemoryFetcher) List() []Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(m.flags))
	result := make([]Definition, 0, len(keys))
	for _, k := range keys {
		result = append(result, cloneDefinition(m.flags[k]))
	}
	return result
}

// Close releases nothing; it exists so MemoryFetcher can stand in for network fetchers.
func (m *MemoryFetcher) Close() error {
	return nil
}

// cloneDefinition copies the rollout pointer so callers cannot mutate stored state.
func cloneDefinition(def Definition) Definition {
	if def.RolloutPercentage != nil {
		def.RolloutPercentage = Percentage(*def.RolloutPercentage)
	}
	return def
}
