// Package command exposes the engine over a self-describing JSON envelope.
// Each request names an operation and carries only the fields that operation
// reads; responses report a status code plus an operation-specific payload.
package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"neurograph/internal/engine"
	"neurograph/internal/graph"
	"neurograph/internal/model"
)

// Op names one engine operation.
type Op string

const (
	OpNoop           Op = "noop"
	OpCreateNeuron   Op = "create_neuron"
	OpDeleteNeuron   Op = "delete_neuron"
	OpConnect        Op = "connect"
	OpDisconnect     Op = "disconnect"
	OpCreateSynapse  Op = "create_synapse"
	OpDeleteSynapse  Op = "delete_synapse"
	OpStep           Op = "step"
	OpRun            Op = "run"
	OpReset          Op = "reset"
	OpGetNeuronState Op = "get_neuron_state"
	OpSetNeuronParam Op = "set_neuron_param"
	OpMemoryStats    Op = "memory_stats"
	OpShutdown       Op = "shutdown"
)

// Status classifies a response.
type Status string

const (
	StatusOK              Status = "ok"
	StatusUnknownCommand  Status = "unknown_command"
	StatusInvalidArgument Status = "invalid_argument"
	StatusDuplicateID     Status = "duplicate_id"
	StatusNotFound        Status = "not_found"
	StatusNotInitialized  Status = "not_initialized"
	StatusNotRunning      Status = "not_running"
	// StatusAllocationFailure is reserved for hosts that surface allocation
	// errors; the in-process engine never produces it.
	StatusAllocationFailure Status = "allocation_failure"
	StatusInternalError     Status = "internal_error"
)

// NeuronOverridesPayload mirrors engine.NeuronOverrides on the wire.
type NeuronOverridesPayload struct {
	Threshold        *float64 `json:"threshold,omitempty"`
	RestPotential    *float64 `json:"rest_potential,omitempty"`
	RefractoryPeriod *float64 `json:"refractory_period,omitempty"`
}

// SynapseOverridesPayload mirrors engine.SynapseOverrides on the wire.
type SynapseOverridesPayload struct {
	Weight     *float64 `json:"weight,omitempty"`
	Delay      *float64 `json:"delay,omitempty"`
	Plasticity *string  `json:"plasticity,omitempty"`
}

// Request is one command envelope. Fields irrelevant to the named op are
// ignored.
type Request struct {
	Op         Op                       `json:"op"`
	ID         uint32                   `json:"id,omitempty"`
	Kind       string                   `json:"kind,omitempty"`
	Activation string                   `json:"activation,omitempty"`
	Pre        uint32                   `json:"pre,omitempty"`
	Post       uint32                   `json:"post,omitempty"`
	Source     uint32                   `json:"source,omitempty"`
	Target     uint32                   `json:"target,omitempty"`
	Param      string                   `json:"param,omitempty"`
	Value      float64                  `json:"value,omitempty"`
	Inputs     map[uint32]float64       `json:"inputs,omitempty"`
	DT         float64                  `json:"dt,omitempty"`
	Steps      int                      `json:"steps,omitempty"`
	Neuron     *NeuronOverridesPayload  `json:"neuron_overrides,omitempty"`
	Synapse    *SynapseOverridesPayload `json:"synapse_overrides,omitempty"`
}

// Response is the result of one executed request.
type Response struct {
	Op      Op                  `json:"op"`
	Status  Status              `json:"status"`
	Error   string              `json:"error,omitempty"`
	ID      uint32              `json:"id,omitempty"`
	Outputs []float64           `json:"outputs,omitempty"`
	State   *engine.NeuronState `json:"state,omitempty"`
	Stats   *engine.MemoryStats `json:"stats,omitempty"`
}

var knownOps = map[Op]struct{}{
	OpNoop: {}, OpCreateNeuron: {}, OpDeleteNeuron: {}, OpConnect: {},
	OpDisconnect: {}, OpCreateSynapse: {}, OpDeleteSynapse: {}, OpStep: {},
	OpRun: {}, OpReset: {}, OpGetNeuronState: {}, OpSetNeuronParam: {},
	OpMemoryStats: {}, OpShutdown: {},
}

// Decode parses one request envelope. Unknown operations are rejected here so
// Execute only ever sees ops it can dispatch.
func Decode(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decode command: %w", err)
	}
	if _, ok := knownOps[req.Op]; !ok {
		return Request{}, fmt.Errorf("decode command: unknown op %q", req.Op)
	}
	return req, nil
}

// Execute runs one request against the engine. Errors never escape as Go
// errors: they are classified into the response status.
func Execute(e *engine.Engine, req Request) Response {
	resp := Response{Op: req.Op, Status: StatusOK}

	switch req.Op {
	case OpNoop:

	case OpCreateNeuron:
		id, err := e.CreateNeuron(req.ID, model.NeuronKind(req.Kind), req.Activation, neuronOverrides(req.Neuron))
		if err != nil {
			return fail(resp, err)
		}
		resp.ID = id

	case OpDeleteNeuron:
		if err := e.DeleteNeuron(req.ID); err != nil {
			return fail(resp, err)
		}

	case OpConnect:
		if err := e.Connect(req.Source, req.Target); err != nil {
			return fail(resp, err)
		}

	case OpDisconnect:
		if err := e.Disconnect(req.Source, req.Target); err != nil {
			return fail(resp, err)
		}

	case OpCreateSynapse:
		id, err := e.CreateSynapse(req.ID, req.Pre, req.Post, model.SynapseKind(req.Kind), synapseOverrides(req.Synapse))
		if err != nil {
			return fail(resp, err)
		}
		resp.ID = id

	case OpDeleteSynapse:
		if err := e.DeleteSynapse(req.ID); err != nil {
			return fail(resp, err)
		}

	case OpStep:
		outputs, err := e.Step(req.Inputs, defaultDT(req.DT))
		if err != nil {
			return fail(resp, err)
		}
		resp.Outputs = outputs

	case OpRun:
		outputs, err := e.Run(req.Steps, req.DT)
		if err != nil {
			return fail(resp, err)
		}
		resp.Outputs = outputs

	case OpReset:
		if err := e.Reset(); err != nil {
			return fail(resp, err)
		}

	case OpGetNeuronState:
		state, err := e.NeuronState(req.ID)
		if err != nil {
			return fail(resp, err)
		}
		resp.State = &state

	case OpSetNeuronParam:
		if err := e.SetNeuronParam(req.ID, engine.Param(req.Param), req.Value); err != nil {
			return fail(resp, err)
		}

	case OpMemoryStats:
		stats := e.MemoryStats()
		resp.Stats = &stats

	case OpShutdown:
		e.Shutdown()

	default:
		resp.Status = StatusUnknownCommand
		resp.Error = fmt.Sprintf("unknown op %q", req.Op)
	}

	return resp
}

func fail(resp Response, err error) Response {
	resp.Status = classify(err)
	resp.Error = err.Error()
	return resp
}

func classify(err error) Status {
	switch {
	case errors.Is(err, graph.ErrDuplicateID):
		return StatusDuplicateID
	case errors.Is(err, graph.ErrNotFound):
		return StatusNotFound
	case errors.Is(err, engine.ErrInvalidArgument):
		return StatusInvalidArgument
	case errors.Is(err, engine.ErrNotInitialized):
		return StatusNotInitialized
	case errors.Is(err, engine.ErrNotRunning):
		return StatusNotRunning
	default:
		return StatusInternalError
	}
}

func neuronOverrides(payload *NeuronOverridesPayload) *engine.NeuronOverrides {
	if payload == nil {
		return nil
	}
	return &engine.NeuronOverrides{
		Threshold:        payload.Threshold,
		RestPotential:    payload.RestPotential,
		RefractoryPeriod: payload.RefractoryPeriod,
	}
}

func synapseOverrides(payload *SynapseOverridesPayload) *engine.SynapseOverrides {
	if payload == nil {
		return nil
	}
	overrides := &engine.SynapseOverrides{
		Weight: payload.Weight,
		Delay:  payload.Delay,
	}
	if payload.Plasticity != nil {
		rule := model.Plasticity(*payload.Plasticity)
		overrides.Plasticity = &rule
	}
	return overrides
}

func defaultDT(dt float64) float64 {
	if dt <= 0 {
		return 1.0
	}
	return dt
}
