package main

import (
	"encoding/json"
	"fmt"
	"os"

	"neurograph/internal/model"
	"neurograph/pkg/neurograph"
)

// NetworkFile describes a network to build: neurons, synapses, and the
// outgoing-target connections between neurons.
type NetworkFile struct {
	Neurons     []NeuronSpec     `json:"neurons"`
	Synapses    []SynapseSpec    `json:"synapses"`
	Connections []ConnectionSpec `json:"connections"`
}

type NeuronSpec struct {
	ID         uint32                      `json:"id"`
	Kind       string                      `json:"kind"`
	Activation string                      `json:"activation"`
	Overrides  *neurograph.NeuronOverrides `json:"overrides,omitempty"`
}

type SynapseSpec struct {
	ID        uint32                `json:"id"`
	Pre       uint32                `json:"pre"`
	Post      uint32                `json:"post"`
	Kind      string                `json:"kind"`
	Overrides *synapseOverridesSpec `json:"overrides,omitempty"`
}

type synapseOverridesSpec struct {
	Weight     *float64 `json:"weight,omitempty"`
	Delay      *float64 `json:"delay,omitempty"`
	Plasticity *string  `json:"plasticity,omitempty"`
}

type ConnectionSpec struct {
	Source uint32 `json:"source"`
	Target uint32 `json:"target"`
}

// LoadNetworkFile reads and parses a network description file.
func LoadNetworkFile(path string) (NetworkFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NetworkFile{}, fmt.Errorf("reading network file: %w", err)
	}
	var nf NetworkFile
	if err := json.Unmarshal(data, &nf); err != nil {
		return NetworkFile{}, fmt.Errorf("parsing network file: %w", err)
	}
	return nf, nil
}

// Build creates the described network on the client. Neurons first, then
// synapses, then connections, so references resolve in file order.
func (nf NetworkFile) Build(client *neurograph.Client) error {
	for _, n := range nf.Neurons {
		if _, err := client.CreateNeuron(n.ID, model.NeuronKind(n.Kind), n.Activation, n.Overrides); err != nil {
			return fmt.Errorf("neuron %d: %w", n.ID, err)
		}
	}
	for _, s := range nf.Synapses {
		var overrides *neurograph.SynapseOverrides
		if s.Overrides != nil {
			overrides = &neurograph.SynapseOverrides{
				Weight: s.Overrides.Weight,
				Delay:  s.Overrides.Delay,
			}
			if s.Overrides.Plasticity != nil {
				rule := model.Plasticity(*s.Overrides.Plasticity)
				overrides.Plasticity = &rule
			}
		}
		if _, err := client.CreateSynapse(s.ID, s.Pre, s.Post, model.SynapseKind(s.Kind), overrides); err != nil {
			return fmt.Errorf("synapse %d: %w", s.ID, err)
		}
	}
	for _, c := range nf.Connections {
		if err := client.Connect(c.Source, c.Target); err != nil {
			return fmt.Errorf("connection %d->%d: %w", c.Source, c.Target, err)
		}
	}
	return nil
}
