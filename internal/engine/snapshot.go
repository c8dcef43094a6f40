package engine

import (
	"fmt"

	"neurograph/internal/graph"
	"neurograph/internal/model"
	"neurograph/internal/storage"
)

// Snapshot captures the whole simulation instance, entities in insertion
// order so a restored engine replays identically.
func (e *Engine) Snapshot(name string) model.NetworkSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := model.NetworkSnapshot{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		Name:  name,
		Clock: e.clock,
	}
	for _, id := range e.store.NeuronIDs() {
		n, ok := e.store.Neuron(id)
		if !ok {
			continue
		}
		copied := *n
		copied.OutgoingTargets = append([]uint32(nil), n.OutgoingTargets...)
		snapshot.Neurons = append(snapshot.Neurons, copied)
	}
	for _, id := range e.store.SynapseIDs() {
		if syn, ok := e.store.Synapse(id); ok {
			snapshot.Synapses = append(snapshot.Synapses, *syn)
		}
	}
	return snapshot
}

// Restore replaces the engine's graph and clock with a snapshot's contents.
// The snapshot is materialized into a fresh store first, so a malformed
// snapshot (duplicate IDs) returns an error with the engine untouched.
func (e *Engine) Restore(snapshot model.NetworkSnapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return err
	}

	store := graph.NewStore()
	for i := range snapshot.Neurons {
		rec := snapshot.Neurons[i]
		n, err := store.CreateNeuron(rec.ID, rec.Kind, rec.Activation)
		if err != nil {
			return fmt.Errorf("restore neuron %d: %w", rec.ID, err)
		}
		*n = rec
		n.OutgoingTargets = append([]uint32(nil), rec.OutgoingTargets...)
	}
	for i := range snapshot.Synapses {
		rec := snapshot.Synapses[i]
		syn, err := store.CreateSynapse(rec.ID, rec.PreID, rec.PostID, rec.Kind)
		if err != nil {
			return fmt.Errorf("restore synapse %d: %w", rec.ID, err)
		}
		*syn = rec
	}
	e.store = store
	e.clock = snapshot.Clock
	e.log.Info("restored network", "name", snapshot.Name,
		"neurons", len(snapshot.Neurons), "synapses", len(snapshot.Synapses))
	return nil
}
