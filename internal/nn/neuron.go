package nn

import (
	"neurograph/internal/model"
)

// leakFraction is the per-step exponential decay toward rest potential.
const leakFraction = 0.1

// Compute advances a neuron's potential by one time step and returns the
// activation output. The potential first integrates external input, then
// leaks toward the resting potential.
func Compute(n *model.Neuron, input, dt float64) float64 {
	n.Potential += input * dt
	n.Potential = n.Potential*(1-leakFraction) + n.RestPotential*leakFraction

	fn, err := GetActivation(n.Activation)
	if err != nil {
		// Unknown activation degrades to identity rather than aborting a step.
		return n.Potential
	}
	return fn(n.Potential)
}

// Fire reports whether the neuron fires at time now. A neuron inside its
// refractory window never fires. On firing, LastFiredTime is stamped and the
// potential resets to rest; otherwise the neuron is left untouched.
func Fire(n *model.Neuron, now float64) bool {
	if now-n.LastFiredTime < n.RefractoryPeriod {
		return false
	}
	if n.Potential >= n.Threshold {
		n.LastFiredTime = now
		n.Potential = n.RestPotential
		return true
	}
	return false
}

// Reset restores the neuron to its initial state.
func Reset(n *model.Neuron) {
	n.Potential = n.RestPotential
	n.LastFiredTime = model.FarPast
}

// Connect appends targetID to the neuron's outgoing targets. Connecting an
// existing target is idempotent; the return reports whether the connection
// was newly added.
func Connect(source *model.Neuron, targetID uint32) bool {
	for _, existing := range source.OutgoingTargets {
		if existing == targetID {
			return false
		}
	}
	source.OutgoingTargets = append(source.OutgoingTargets, targetID)
	return true
}

// Disconnect removes the first occurrence of targetID, compacting the
// sequence. Removing an absent target is a no-op; the return reports whether
// anything was removed.
func Disconnect(source *model.Neuron, targetID uint32) bool {
	for i, existing := range source.OutgoingTargets {
		if existing == targetID {
			source.OutgoingTargets = append(source.OutgoingTargets[:i], source.OutgoingTargets[i+1:]...)
			return true
		}
	}
	return false
}
