package nn

import (
	"math"

	"neurograph/internal/model"
)

// STDP learning parameters.
const (
	stdpLearningRate = 0.01
	stdpTimeConstant = 20.0
)

// Activate delivers input through the synapse at time now. A signal still in
// flight (now inside the delay window) yields 0 without touching state.
// Delay gating tracks only LastActiveTime: a second spike arriving within
// the window is dropped, not queued or merged.
func Activate(s *model.Synapse, input, now float64) float64 {
	if now < s.LastActiveTime+s.Delay {
		return 0
	}
	s.LastActiveTime = now
	return input * s.Weight
}

// UpdateWeight applies spike-timing-dependent plasticity. Synapses whose
// plasticity rule is not STDP are left untouched. Post firing after pre
// potentiates; post firing before (or with) pre depresses. The weight is
// clamped to [MinWeight, MaxWeight] after every update.
func UpdateWeight(s *model.Synapse, preSpikeTime, postSpikeTime float64) {
	if s.Plasticity != model.PlasticitySTDP {
		return
	}

	dt := postSpikeTime - preSpikeTime
	var delta float64
	if dt > 0 {
		delta = stdpLearningRate * math.Exp(-dt/stdpTimeConstant)
	} else {
		delta = -stdpLearningRate * math.Exp(dt/stdpTimeConstant)
	}

	s.Weight += delta
	if s.Weight > s.MaxWeight {
		s.Weight = s.MaxWeight
	} else if s.Weight < s.MinWeight {
		s.Weight = s.MinWeight
	}
}

// ResetSynapse clears the activation timestamp so the synapse can fire
// immediately.
func ResetSynapse(s *model.Synapse) {
	s.LastActiveTime = model.FarPast
}
