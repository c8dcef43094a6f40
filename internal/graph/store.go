package graph

import (
	"fmt"

	"neurograph/internal/model"
)

// Store is the owning entity store: hash-indexed lookup with stable
// insertion order. IDs are unique among live entities; a deleted ID never
// resolves to another live entity's record because lookup is by map, not by
// position.
type Store struct {
	neurons      map[uint32]*model.Neuron
	synapses     map[uint32]*model.Synapse
	neuronOrder  []uint32
	synapseOrder []uint32

	index *Index
}

func NewStore() *Store {
	return &Store{
		neurons:  make(map[uint32]*model.Neuron),
		synapses: make(map[uint32]*model.Synapse),
		index:    NewIndex(),
	}
}

// Index exposes the connectivity index maintained by this store.
func (s *Store) Index() *Index {
	return s.index
}

// CreateNeuron inserts a neuron with default parameters.
func (s *Store) CreateNeuron(id uint32, kind model.NeuronKind, activation string) (*model.Neuron, error) {
	if _, exists := s.neurons[id]; exists {
		return nil, fmt.Errorf("create neuron %d: %w", id, ErrDuplicateID)
	}
	n := model.NewNeuron(id, kind, activation)
	s.neurons[id] = n
	s.neuronOrder = append(s.neuronOrder, id)
	return n, nil
}

// CreateSynapse inserts a synapse. Endpoints are not required to resolve:
// propagation treats a dangling endpoint as inert.
func (s *Store) CreateSynapse(id, preID, postID uint32, kind model.SynapseKind) (*model.Synapse, error) {
	if _, exists := s.synapses[id]; exists {
		return nil, fmt.Errorf("create synapse %d: %w", id, ErrDuplicateID)
	}
	syn := model.NewSynapse(id, preID, postID, kind)
	s.synapses[id] = syn
	s.synapseOrder = append(s.synapseOrder, id)
	s.index.Add(syn)
	return syn, nil
}

// DeleteNeuron removes a neuron and compacts the insertion order. Synapses
// referencing it are left in place and become inert.
func (s *Store) DeleteNeuron(id uint32) error {
	if _, exists := s.neurons[id]; !exists {
		return fmt.Errorf("delete neuron %d: %w", id, ErrNotFound)
	}
	delete(s.neurons, id)
	s.neuronOrder = removeID(s.neuronOrder, id)
	return nil
}

// DeleteSynapse removes a synapse and its index entries.
func (s *Store) DeleteSynapse(id uint32) error {
	syn, exists := s.synapses[id]
	if !exists {
		return fmt.Errorf("delete synapse %d: %w", id, ErrNotFound)
	}
	delete(s.synapses, id)
	s.synapseOrder = removeID(s.synapseOrder, id)
	s.index.Remove(syn)
	return nil
}

// Neuron returns the live neuron for id, if any. O(1).
func (s *Store) Neuron(id uint32) (*model.Neuron, bool) {
	n, ok := s.neurons[id]
	return n, ok
}

// Synapse returns the live synapse for id, if any. O(1).
func (s *Store) Synapse(id uint32) (*model.Synapse, bool) {
	syn, ok := s.synapses[id]
	return syn, ok
}

// NeuronIDs returns the live neuron IDs in insertion order. The slice is a
// copy, so callers may mutate the store while iterating it.
func (s *Store) NeuronIDs() []uint32 {
	return append([]uint32(nil), s.neuronOrder...)
}

// SynapseIDs returns the live synapse IDs in insertion order, copied.
func (s *Store) SynapseIDs() []uint32 {
	return append([]uint32(nil), s.synapseOrder...)
}

func (s *Store) NeuronCount() int {
	return len(s.neurons)
}

func (s *Store) SynapseCount() int {
	return len(s.synapses)
}

func removeID(order []uint32, id uint32) []uint32 {
	for i, existing := range order {
		if existing == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
