package engine

import "runtime"

// MemoryStats is an informational view of host allocation plus live entity
// counts. The runtime owns allocation; this is instrumentation only.
type MemoryStats struct {
	BytesInUse   uint64 `json:"bytes_in_use"`
	BlockCount   uint64 `json:"block_count"`
	NeuronCount  int    `json:"neuron_count"`
	SynapseCount int    `json:"synapse_count"`
}

// MemoryStats reports current heap usage and live entity counts. Available
// in any lifecycle state.
func (e *Engine) MemoryStats() MemoryStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return MemoryStats{
		BytesInUse:   ms.HeapAlloc,
		BlockCount:   ms.HeapObjects,
		NeuronCount:  e.store.NeuronCount(),
		SynapseCount: e.store.SynapseCount(),
	}
}
