package engine

import (
	"errors"
	"testing"

	"neurograph/internal/graph"
	"neurograph/internal/model"
)

// twoNeuronEngine builds an initialized engine with neuron 1 connected to
// neuron 2 through an excitatory synapse.
func twoNeuronEngine(t *testing.T) *Engine {
	t.Helper()

	e := New(Config{})
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := e.CreateNeuron(1, model.NeuronExcitatory, "linear", nil); err != nil {
		t.Fatalf("create neuron 1: %v", err)
	}
	if _, err := e.CreateNeuron(2, model.NeuronExcitatory, "linear", nil); err != nil {
		t.Fatalf("create neuron 2: %v", err)
	}
	if _, err := e.CreateSynapse(1, 1, 2, model.SynapseExcitatory, nil); err != nil {
		t.Fatalf("create synapse: %v", err)
	}
	if err := e.Connect(1, 2); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return e
}

func TestLifecycleGating(t *testing.T) {
	e := New(Config{})

	if _, err := e.Step(nil, 1.0); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := e.CreateNeuron(1, model.NeuronExcitatory, "linear", nil); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}

	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !e.Running() {
		t.Fatal("expected running engine after init")
	}
	if err := e.Init(); err != nil {
		t.Fatalf("second init should be a no-op: %v", err)
	}

	e.Shutdown()
	if e.Running() {
		t.Fatal("expected stopped engine after shutdown")
	}
	if _, err := e.Step(nil, 1.0); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestCreateNeuronValidation(t *testing.T) {
	e := New(Config{})
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := e.CreateNeuron(1, model.NeuronKind("bogus"), "linear", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for kind, got %v", err)
	}
	if _, err := e.CreateNeuron(1, model.NeuronExcitatory, "bogus", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for activation, got %v", err)
	}

	if _, err := e.CreateNeuron(1, model.NeuronExcitatory, "linear", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.CreateNeuron(1, model.NeuronExcitatory, "linear", nil); !errors.Is(err, graph.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestCreateNeuronOverridesHonorZero(t *testing.T) {
	e := New(Config{})
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	zero := 0.0
	if _, err := e.CreateNeuron(1, model.NeuronExcitatory, "linear", &NeuronOverrides{RestPotential: &zero, RefractoryPeriod: &zero}); err != nil {
		t.Fatalf("create: %v", err)
	}
	state, err := e.NeuronState(1)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Potential != 0 {
		t.Fatalf("rest potential override should set potential, got %f", state.Potential)
	}
}

func TestConnectRequiresBothEndpoints(t *testing.T) {
	e := New(Config{})
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := e.CreateNeuron(1, model.NeuronExcitatory, "linear", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := e.Connect(1, 9); !errors.Is(err, graph.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing target, got %v", err)
	}
	if err := e.Connect(9, 1); !errors.Is(err, graph.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing source, got %v", err)
	}
}

func TestConnectDuplicateIsNonError(t *testing.T) {
	e := twoNeuronEngine(t)

	if err := e.Connect(1, 2); err != nil {
		t.Fatalf("duplicate connect should report success: %v", err)
	}
	if err := e.Disconnect(1, 2); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := e.Disconnect(1, 2); err != nil {
		t.Fatalf("absent disconnect should report success: %v", err)
	}
}

func TestStepTwoNeuronScenario(t *testing.T) {
	e := twoNeuronEngine(t)

	outputs, err := e.Step(map[uint32]float64{1: 20.0}, 1.0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	// Neuron 1: -70 + 20 = -50, leak to -52, fires and resets.
	// Neuron 2: leaks in place at -70, then receives 1.0 * 0.5 = 0.5.
	if len(outputs) != 2 || outputs[0] != -52.0 || outputs[1] != -70.0 {
		t.Fatalf("unexpected outputs: %+v", outputs)
	}

	first, err := e.NeuronState(1)
	if err != nil {
		t.Fatalf("state 1: %v", err)
	}
	if first.LastFiredTime != 1.0 {
		t.Fatalf("unexpected last fired time: %f", first.LastFiredTime)
	}
	if first.Potential != model.DefaultRestPotential {
		t.Fatalf("firing neuron should reset to rest: %f", first.Potential)
	}

	second, err := e.NeuronState(2)
	if err != nil {
		t.Fatalf("state 2: %v", err)
	}
	if second.Potential != -69.5 {
		t.Fatalf("unexpected downstream potential: %f", second.Potential)
	}
	if e.Clock() != 1.0 {
		t.Fatalf("unexpected clock: %f", e.Clock())
	}
}

func TestStepRefractoryBlocksSecondSpike(t *testing.T) {
	e := twoNeuronEngine(t)

	if _, err := e.Step(map[uint32]float64{1: 20.0}, 1.0); err != nil {
		t.Fatalf("first step: %v", err)
	}
	if _, err := e.Step(map[uint32]float64{1: 20.0}, 1.0); err != nil {
		t.Fatalf("second step: %v", err)
	}

	state, err := e.NeuronState(1)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	// Clock 2.0 is inside the refractory window that opened at 1.0.
	if state.LastFiredTime != 1.0 {
		t.Fatalf("refractory neuron fired again: %f", state.LastFiredTime)
	}
	if state.Potential != -52.0 {
		t.Fatalf("blocked neuron should keep its potential: %f", state.Potential)
	}
}

func TestStepIgnoresUnknownInputIDs(t *testing.T) {
	e := twoNeuronEngine(t)

	outputs, err := e.Step(map[uint32]float64{99: 50.0}, 1.0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(outputs) != 2 || outputs[0] != -70.0 || outputs[1] != -70.0 {
		t.Fatalf("unexpected outputs: %+v", outputs)
	}
}

func TestStepSkipsDanglingPropagation(t *testing.T) {
	e := twoNeuronEngine(t)

	if err := e.DeleteSynapse(1); err != nil {
		t.Fatalf("delete synapse: %v", err)
	}

	if _, err := e.Step(map[uint32]float64{1: 20.0}, 1.0); err != nil {
		t.Fatalf("step: %v", err)
	}
	state, err := e.NeuronState(2)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Potential != -70.0 {
		t.Fatalf("target of missing synapse should be untouched: %f", state.Potential)
	}
}

func TestStepIsDeterministic(t *testing.T) {
	run := func() []float64 {
		e := twoNeuronEngine(t)
		var trace []float64
		for i := 0; i < 10; i++ {
			outputs, err := e.Step(map[uint32]float64{1: 20.0}, 1.0)
			if err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
			trace = append(trace, outputs...)
		}
		return trace
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("trace lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("traces diverge at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRunDefaultsAndReturnsLastOutputs(t *testing.T) {
	e := twoNeuronEngine(t)

	outputs, err := e.Run(0, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("unexpected outputs: %+v", outputs)
	}
	if e.Clock() != 1.0 {
		t.Fatalf("run with defaulted arguments should advance once: %f", e.Clock())
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	e := twoNeuronEngine(t)

	if _, err := e.Step(map[uint32]float64{1: 20.0}, 1.0); err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := e.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if e.Clock() != 0 {
		t.Fatalf("reset should zero the clock: %f", e.Clock())
	}
	for _, id := range []uint32{1, 2} {
		state, err := e.NeuronState(id)
		if err != nil {
			t.Fatalf("state %d: %v", id, err)
		}
		if state.Potential != model.DefaultRestPotential || state.LastFiredTime != model.FarPast {
			t.Fatalf("neuron %d not reset: %+v", id, state)
		}
	}

	outputs, err := e.Step(map[uint32]float64{1: 20.0}, 1.0)
	if err != nil {
		t.Fatalf("post-reset step: %v", err)
	}
	if outputs[0] != -52.0 {
		t.Fatalf("post-reset step should replay the first step: %+v", outputs)
	}
}

func TestSetNeuronParam(t *testing.T) {
	e := twoNeuronEngine(t)

	if err := e.SetNeuronParam(1, ParamPotential, -40.0); err != nil {
		t.Fatalf("set potential: %v", err)
	}
	state, err := e.NeuronState(1)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Potential != -40.0 {
		t.Fatalf("unexpected potential: %f", state.Potential)
	}

	if err := e.SetNeuronParam(1, Param("bogus"), 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := e.SetNeuronParam(99, ParamThreshold, 0); !errors.Is(err, graph.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplySTDPAdjustsIncomingWeights(t *testing.T) {
	e := New(Config{ApplySTDP: true})
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := e.CreateNeuron(1, model.NeuronExcitatory, "linear", nil); err != nil {
		t.Fatalf("create neuron 1: %v", err)
	}
	if _, err := e.CreateNeuron(2, model.NeuronExcitatory, "linear", nil); err != nil {
		t.Fatalf("create neuron 2: %v", err)
	}
	plastic := model.PlasticitySTDP
	if _, err := e.CreateSynapse(1, 1, 2, model.SynapseExcitatory, &SynapseOverrides{Plasticity: &plastic}); err != nil {
		t.Fatalf("create synapse: %v", err)
	}
	if err := e.Connect(1, 2); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// Fire neuron 1 first, then neuron 2 one step later: pre-before-post
	// should potentiate the synapse above its starting weight.
	if _, err := e.Step(map[uint32]float64{1: 20.0}, 1.0); err != nil {
		t.Fatalf("first step: %v", err)
	}
	if _, err := e.Step(map[uint32]float64{2: 20.0}, 1.0); err != nil {
		t.Fatalf("second step: %v", err)
	}

	snap := e.Snapshot("stdp")
	if snap.Synapses[0].Weight <= model.SynapseExcitatory.DefaultWeight() {
		t.Fatalf("expected potentiated weight, got %f", snap.Synapses[0].Weight)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e := twoNeuronEngine(t)
	if _, err := e.Step(map[uint32]float64{1: 20.0}, 1.0); err != nil {
		t.Fatalf("step: %v", err)
	}

	snap := e.Snapshot("round-trip")

	restored := New(Config{})
	if err := restored.Init(); err != nil {
		t.Fatalf("init restored: %v", err)
	}
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if restored.Clock() != e.Clock() {
		t.Fatalf("clock mismatch: %f vs %f", restored.Clock(), e.Clock())
	}
	for _, id := range []uint32{1, 2} {
		want, err := e.NeuronState(id)
		if err != nil {
			t.Fatalf("source state %d: %v", id, err)
		}
		got, err := restored.NeuronState(id)
		if err != nil {
			t.Fatalf("restored state %d: %v", id, err)
		}
		if got != want {
			t.Fatalf("neuron %d state mismatch: %+v vs %+v", id, got, want)
		}
	}

	// The restored engine must continue bit-identically.
	wantOut, err := e.Step(map[uint32]float64{1: 20.0}, 1.0)
	if err != nil {
		t.Fatalf("source step: %v", err)
	}
	gotOut, err := restored.Step(map[uint32]float64{1: 20.0}, 1.0)
	if err != nil {
		t.Fatalf("restored step: %v", err)
	}
	for i := range wantOut {
		if gotOut[i] != wantOut[i] {
			t.Fatalf("post-restore outputs diverge at %d: %v vs %v", i, gotOut[i], wantOut[i])
		}
	}
}

func TestRestoreMalformedSnapshotLeavesEngineIntact(t *testing.T) {
	e := twoNeuronEngine(t)
	if _, err := e.Step(map[uint32]float64{1: 20.0}, 1.0); err != nil {
		t.Fatalf("step: %v", err)
	}

	bad := e.Snapshot("bad")
	bad.Neurons = append(bad.Neurons, bad.Neurons[0])

	if err := e.Restore(bad); !errors.Is(err, graph.ErrDuplicateID) {
		t.Fatalf("expected duplicate ID error, got %v", err)
	}

	// The failed restore must not have touched the running state.
	if e.Clock() != 1.0 {
		t.Fatalf("clock changed by failed restore: %f", e.Clock())
	}
	state, err := e.NeuronState(1)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.LastFiredTime != 1.0 {
		t.Fatalf("neuron state changed by failed restore: %+v", state)
	}
	if _, err := e.Step(map[uint32]float64{1: 20.0}, 1.0); err != nil {
		t.Fatalf("step after failed restore: %v", err)
	}
}

func TestMemoryStatsCounts(t *testing.T) {
	e := twoNeuronEngine(t)

	stats := e.MemoryStats()
	if stats.NeuronCount != 2 || stats.SynapseCount != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.BytesInUse == 0 {
		t.Fatal("expected nonzero bytes in use")
	}

	e.Shutdown()
	stats = e.MemoryStats()
	if stats.NeuronCount != 2 {
		t.Fatal("memory stats should survive shutdown")
	}
}
