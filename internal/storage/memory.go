package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"neurograph/internal/model"
)

type MemoryStore struct {
	mu       sync.RWMutex
	networks map[string]model.NetworkSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.networks = make(map[string]model.NetworkSnapshot)
	return nil
}

func (s *MemoryStore) SaveNetwork(_ context.Context, snapshot model.NetworkSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.networks == nil {
		return fmt.Errorf("store is not initialized")
	}
	s.networks[snapshot.Name] = copySnapshot(snapshot)
	return nil
}

func (s *MemoryStore) GetNetwork(_ context.Context, name string) (model.NetworkSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.networks[name]
	if !ok {
		return model.NetworkSnapshot{}, false, nil
	}
	return copySnapshot(snapshot), true, nil
}

func (s *MemoryStore) ListNetworks(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.networks))
	for name := range s.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) DeleteNetwork(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.networks, name)
	return nil
}

func copySnapshot(snapshot model.NetworkSnapshot) model.NetworkSnapshot {
	copied := snapshot
	copied.Neurons = make([]model.Neuron, len(snapshot.Neurons))
	for i, n := range snapshot.Neurons {
		copied.Neurons[i] = n
		copied.Neurons[i].OutgoingTargets = append([]uint32(nil), n.OutgoingTargets...)
	}
	copied.Synapses = append([]model.Synapse(nil), snapshot.Synapses...)
	return copied
}
