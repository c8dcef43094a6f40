// Package engine drives the simulation: it owns the entity store, the
// connectivity index, and the clock, and advances them step by step. One
// mutex guards the whole instance; a step or query holds it end to end, so
// hosts may share an Engine across goroutines without further locking.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"neurograph/internal/graph"
	"neurograph/internal/model"
	"neurograph/internal/nn"
)

// Param selects a neuron parameter for SetNeuronParam.
type Param string

const (
	ParamThreshold        Param = "threshold"
	ParamRestPotential    Param = "rest_potential"
	ParamRefractoryPeriod Param = "refractory_period"
	ParamPotential        Param = "potential"
)

// NeuronOverrides optionally replaces neuron defaults at creation time.
// Nil fields keep the default, so an explicit zero is honored.
type NeuronOverrides struct {
	Threshold        *float64
	RestPotential    *float64
	RefractoryPeriod *float64
}

// SynapseOverrides optionally replaces synapse defaults at creation time.
type SynapseOverrides struct {
	Weight     *float64
	Delay      *float64
	Plasticity *model.Plasticity
}

// NeuronState is the queryable view of one neuron.
type NeuronState struct {
	Potential     float64 `json:"potential"`
	LastFiredTime float64 `json:"last_fired_time"`
}

// Config configures a new Engine. ApplySTDP enables applying the STDP rule
// to a firing neuron's incoming plastic synapses during stepping; by default
// weight updates happen only when the host calls UpdateSynapseWeight.
type Config struct {
	Logger    *slog.Logger
	ApplySTDP bool
}

type Engine struct {
	mu sync.Mutex

	store *graph.Store
	clock float64

	initialized bool
	running     bool

	applySTDP bool
	log       *slog.Logger
}

func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:     graph.NewStore(),
		applySTDP: cfg.ApplySTDP,
		log:       logger,
	}
}

// Init makes the engine ready to accept commands. Initializing twice is a
// no-op.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		e.log.Warn("engine already initialized")
		return nil
	}
	e.initialized = true
	e.running = true
	e.clock = 0
	e.log.Info("engine initialized")
	return nil
}

// Shutdown declines further commands without tearing down state. The graph
// and clock survive, so a host can still snapshot after shutdown through
// Restore-side tooling; only command execution stops.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	e.log.Info("engine shut down")
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.initialized && e.running
}

func (e *Engine) checkLifecycle() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if !e.running {
		return ErrNotRunning
	}
	return nil
}

// CreateNeuron adds a neuron with optional parameter overrides.
func (e *Engine) CreateNeuron(id uint32, kind model.NeuronKind, activation string, overrides *NeuronOverrides) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return 0, err
	}
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: neuron kind %q", ErrInvalidArgument, kind)
	}
	if _, err := nn.GetActivation(activation); err != nil {
		return 0, fmt.Errorf("%w: activation %q", ErrInvalidArgument, activation)
	}

	n, err := e.store.CreateNeuron(id, kind, activation)
	if err != nil {
		return 0, err
	}
	if overrides != nil {
		if overrides.Threshold != nil {
			n.Threshold = *overrides.Threshold
		}
		if overrides.RestPotential != nil {
			n.RestPotential = *overrides.RestPotential
			n.Potential = *overrides.RestPotential
		}
		if overrides.RefractoryPeriod != nil {
			n.RefractoryPeriod = *overrides.RefractoryPeriod
		}
	}
	e.log.Debug("created neuron", "id", id, "kind", kind, "activation", activation)
	return id, nil
}

func (e *Engine) DeleteNeuron(id uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return err
	}
	if err := e.store.DeleteNeuron(id); err != nil {
		return err
	}
	e.log.Debug("deleted neuron", "id", id)
	return nil
}

// Connect records targetID as an outgoing target of sourceID. A duplicate
// connection is reported as a non-error.
func (e *Engine) Connect(sourceID, targetID uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return err
	}
	source, ok := e.store.Neuron(sourceID)
	if !ok {
		return fmt.Errorf("connect source %d: %w", sourceID, graph.ErrNotFound)
	}
	if _, ok := e.store.Neuron(targetID); !ok {
		return fmt.Errorf("connect target %d: %w", targetID, graph.ErrNotFound)
	}
	if !nn.Connect(source, targetID) {
		e.log.Warn("connection already exists", "source", sourceID, "target", targetID)
		return nil
	}
	e.log.Debug("connected neurons", "source", sourceID, "target", targetID)
	return nil
}

// Disconnect removes targetID from sourceID's outgoing targets; absence is a
// non-error.
func (e *Engine) Disconnect(sourceID, targetID uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return err
	}
	source, ok := e.store.Neuron(sourceID)
	if !ok {
		return fmt.Errorf("disconnect source %d: %w", sourceID, graph.ErrNotFound)
	}
	if !nn.Disconnect(source, targetID) {
		e.log.Warn("no connection to remove", "source", sourceID, "target", targetID)
	}
	return nil
}

// CreateSynapse adds a synapse with optional overrides. Endpoints are not
// validated: a synapse whose endpoint is missing at propagation time is
// inert.
func (e *Engine) CreateSynapse(id, preID, postID uint32, kind model.SynapseKind, overrides *SynapseOverrides) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return 0, err
	}
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: synapse kind %q", ErrInvalidArgument, kind)
	}
	if overrides != nil && overrides.Plasticity != nil {
		if err := nn.ValidatePlasticityRule(*overrides.Plasticity); err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidArgument, *overrides.Plasticity)
		}
	}

	syn, err := e.store.CreateSynapse(id, preID, postID, kind)
	if err != nil {
		return 0, err
	}
	if overrides != nil {
		if overrides.Weight != nil {
			syn.Weight = clamp(*overrides.Weight, syn.MinWeight, syn.MaxWeight)
		}
		if overrides.Delay != nil {
			syn.Delay = *overrides.Delay
		}
		if overrides.Plasticity != nil {
			syn.Plasticity = *overrides.Plasticity
		}
	}
	e.log.Debug("created synapse", "id", id, "pre", preID, "post", postID, "kind", kind)
	return id, nil
}

func (e *Engine) DeleteSynapse(id uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return err
	}
	if err := e.store.DeleteSynapse(id); err != nil {
		return err
	}
	e.log.Debug("deleted synapse", "id", id)
	return nil
}

// Step advances the simulation by dt. External inputs raise matching live
// neurons' potentials; inputs for unknown IDs are ignored. Every live neuron
// then computes and fires in insertion order, and afterwards each firing
// neuron's signal propagates through its outgoing targets via the
// connectivity index. Per-entity resolution failures are skipped, never
// escalated: a step always succeeds on a running engine. Outputs are the
// per-neuron activation values in insertion order.
func (e *Engine) Step(inputs map[uint32]float64, dt float64) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return nil, err
	}

	order := e.store.NeuronIDs()

	for _, id := range order {
		value, ok := inputs[id]
		if !ok {
			continue
		}
		if n, ok := e.store.Neuron(id); ok {
			n.Potential += value
		}
	}

	e.clock += dt

	outputs := make([]float64, 0, len(order))
	var fired []uint32
	for _, id := range order {
		n, ok := e.store.Neuron(id)
		if !ok {
			continue
		}
		outputs = append(outputs, nn.Compute(n, 0, dt))
		if nn.Fire(n, e.clock) {
			fired = append(fired, id)
			e.log.Debug("neuron fired", "id", id, "time", e.clock)
		}
	}

	for _, id := range fired {
		e.propagate(id)
	}
	if e.applySTDP {
		for _, id := range fired {
			e.applyPlasticity(id)
		}
	}

	return outputs, nil
}

// propagate delivers one firing neuron's signal to its outgoing targets.
// Missing synapses or targets are skipped silently.
func (e *Engine) propagate(id uint32) {
	n, ok := e.store.Neuron(id)
	if !ok {
		return
	}
	for _, targetID := range n.OutgoingTargets {
		synID, ok := e.store.Index().Resolve(id, targetID)
		if !ok {
			continue
		}
		syn, ok := e.store.Synapse(synID)
		if !ok {
			continue
		}
		signal := nn.Activate(syn, 1.0, e.clock)
		target, ok := e.store.Neuron(targetID)
		if !ok {
			continue
		}
		target.Potential += signal
	}
}

// applyPlasticity runs the STDP rule over a firing neuron's incoming
// plastic synapses, using each presynaptic neuron's last spike time against
// the current clock.
func (e *Engine) applyPlasticity(postID uint32) {
	for _, synID := range e.store.Index().Incoming(postID) {
		syn, ok := e.store.Synapse(synID)
		if !ok || syn.Plasticity != model.PlasticitySTDP {
			continue
		}
		pre, ok := e.store.Neuron(syn.PreID)
		if !ok || pre.LastFiredTime == model.FarPast {
			continue
		}
		nn.UpdateWeight(syn, pre.LastFiredTime, e.clock)
	}
}

// Run advances the simulation by steps equal time steps with no external
// input, returning the outputs of the final step.
func (e *Engine) Run(steps int, dt float64) ([]float64, error) {
	if steps <= 0 {
		steps = 1
	}
	if dt <= 0 {
		dt = 1.0
	}
	var outputs []float64
	for i := 0; i < steps; i++ {
		out, err := e.Step(nil, dt)
		if err != nil {
			return nil, err
		}
		outputs = out
	}
	return outputs, nil
}

// Reset restores every neuron and synapse to its initial state and zeroes
// the clock. The graph structure is kept.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return err
	}
	for _, id := range e.store.NeuronIDs() {
		if n, ok := e.store.Neuron(id); ok {
			nn.Reset(n)
		}
	}
	for _, id := range e.store.SynapseIDs() {
		if syn, ok := e.store.Synapse(id); ok {
			nn.ResetSynapse(syn)
		}
	}
	e.clock = 0
	e.log.Info("simulation reset")
	return nil
}

// NeuronState returns the queryable state of one neuron.
func (e *Engine) NeuronState(id uint32) (NeuronState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return NeuronState{}, err
	}
	n, ok := e.store.Neuron(id)
	if !ok {
		return NeuronState{}, fmt.Errorf("neuron %d: %w", id, graph.ErrNotFound)
	}
	return NeuronState{Potential: n.Potential, LastFiredTime: n.LastFiredTime}, nil
}

// SetNeuronParam sets one neuron parameter by selector.
func (e *Engine) SetNeuronParam(id uint32, param Param, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return err
	}
	n, ok := e.store.Neuron(id)
	if !ok {
		return fmt.Errorf("neuron %d: %w", id, graph.ErrNotFound)
	}
	switch param {
	case ParamThreshold:
		n.Threshold = value
	case ParamRestPotential:
		n.RestPotential = value
	case ParamRefractoryPeriod:
		n.RefractoryPeriod = value
	case ParamPotential:
		n.Potential = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidArgument, param)
	}
	e.log.Debug("set neuron parameter", "id", id, "param", param, "value", value)
	return nil
}

// UpdateSynapseWeight applies the synapse's plasticity rule for a given
// pre/post spike timing pair. Non-STDP synapses are untouched.
func (e *Engine) UpdateSynapseWeight(id uint32, preSpikeTime, postSpikeTime float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLifecycle(); err != nil {
		return err
	}
	syn, ok := e.store.Synapse(id)
	if !ok {
		return fmt.Errorf("synapse %d: %w", id, graph.ErrNotFound)
	}
	nn.UpdateWeight(syn, preSpikeTime, postSpikeTime)
	return nil
}

// Clock returns the current simulation time.
func (e *Engine) Clock() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.clock
}

func clamp(value, min, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}
