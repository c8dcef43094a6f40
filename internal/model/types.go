package model

// FarPast is the sentinel timestamp meaning "never fired" / "ready to fire
// immediately". Any plausible simulation clock is far above it.
const FarPast = -1000.0

// Neuron defaults (mV / ms).
const (
	DefaultRestPotential    = -70.0
	DefaultThreshold        = -55.0
	DefaultRefractoryPeriod = 2.0
)

// Synapse defaults.
const (
	DefaultExcitatoryWeight = 0.5
	DefaultInhibitoryWeight = -0.5
	DefaultModulatoryWeight = 0.1
	DefaultDelay            = 1.0
	DefaultMaxWeight        = 1.0
	DefaultMinWeight        = -1.0
)

type NeuronKind string

const (
	NeuronExcitatory NeuronKind = "excitatory"
	NeuronInhibitory NeuronKind = "inhibitory"
)

func (k NeuronKind) Valid() bool {
	return k == NeuronExcitatory || k == NeuronInhibitory
}

type SynapseKind string

const (
	SynapseExcitatory SynapseKind = "excitatory"
	SynapseInhibitory SynapseKind = "inhibitory"
	SynapseModulatory SynapseKind = "modulatory"
)

func (k SynapseKind) Valid() bool {
	return k == SynapseExcitatory || k == SynapseInhibitory || k == SynapseModulatory
}

// DefaultWeight returns the initial weight implied by the synapse kind.
func (k SynapseKind) DefaultWeight() float64 {
	switch k {
	case SynapseInhibitory:
		return DefaultInhibitoryWeight
	case SynapseModulatory:
		return DefaultModulatoryWeight
	default:
		return DefaultExcitatoryWeight
	}
}

type Plasticity string

const (
	PlasticityStatic      Plasticity = "static"
	PlasticitySTDP        Plasticity = "stdp"
	PlasticityHebbian     Plasticity = "hebbian"
	PlasticityHomeostatic Plasticity = "homeostatic"
)

func (p Plasticity) Valid() bool {
	switch p {
	case PlasticityStatic, PlasticitySTDP, PlasticityHebbian, PlasticityHomeostatic:
		return true
	default:
		return false
	}
}

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Neuron is the per-neuron state record. OutgoingTargets preserves
// connection order; duplicates are rejected at connect time.
type Neuron struct {
	ID               uint32     `json:"id"`
	Kind             NeuronKind `json:"kind"`
	Activation       string     `json:"activation"`
	Potential        float64    `json:"potential"`
	Threshold        float64    `json:"threshold"`
	RestPotential    float64    `json:"rest_potential"`
	RefractoryPeriod float64    `json:"refractory_period"`
	LastFiredTime    float64    `json:"last_fired_time"`
	OutgoingTargets  []uint32   `json:"outgoing_targets,omitempty"`
}

// NewNeuron returns a neuron at rest with default parameters.
func NewNeuron(id uint32, kind NeuronKind, activation string) *Neuron {
	return &Neuron{
		ID:               id,
		Kind:             kind,
		Activation:       activation,
		Potential:        DefaultRestPotential,
		Threshold:        DefaultThreshold,
		RestPotential:    DefaultRestPotential,
		RefractoryPeriod: DefaultRefractoryPeriod,
		LastFiredTime:    FarPast,
	}
}

// Synapse is the per-synapse state record. PreID/PostID may dangle after
// neuron deletion; a dangling synapse is inert, never fatal.
type Synapse struct {
	ID             uint32      `json:"id"`
	PreID          uint32      `json:"pre_id"`
	PostID         uint32      `json:"post_id"`
	Kind           SynapseKind `json:"kind"`
	Plasticity     Plasticity  `json:"plasticity"`
	Weight         float64     `json:"weight"`
	Delay          float64     `json:"delay"`
	LastActiveTime float64     `json:"last_active_time"`
	MaxWeight      float64     `json:"max_weight"`
	MinWeight      float64     `json:"min_weight"`
}

// NewSynapse returns a synapse with kind-derived weight and default
// parameters. Plasticity defaults to static.
func NewSynapse(id, preID, postID uint32, kind SynapseKind) *Synapse {
	return &Synapse{
		ID:             id,
		PreID:          preID,
		PostID:         postID,
		Kind:           kind,
		Plasticity:     PlasticityStatic,
		Weight:         kind.DefaultWeight(),
		Delay:          DefaultDelay,
		LastActiveTime: FarPast,
		MaxWeight:      DefaultMaxWeight,
		MinWeight:      DefaultMinWeight,
	}
}

// NetworkSnapshot is the persistent form of a whole simulation instance.
// Neuron and synapse order is insertion order, which the scheduler's
// deterministic iteration depends on.
type NetworkSnapshot struct {
	VersionedRecord
	Name     string    `json:"name"`
	Neurons  []Neuron  `json:"neurons"`
	Synapses []Synapse `json:"synapses"`
	Clock    float64   `json:"clock"`
}
