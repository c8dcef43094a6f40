package nn

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var (
	ErrActivationExists   = errors.New("activation already registered")
	ErrActivationNotFound = errors.New("activation not found")
)

// ActivationFunc maps a membrane potential to a neuron's output value.
type ActivationFunc func(x float64) float64

var (
	activationsMu sync.RWMutex
	activations   = builtinActivations()
)

// builtinActivations is the activation set every engine starts with.
func builtinActivations() map[string]ActivationFunc {
	return map[string]ActivationFunc{
		"linear": func(x float64) float64 { return x },
		"relu": func(x float64) float64 {
			if x < 0 {
				return 0
			}
			return x
		},
		"tanh": math.Tanh,
		"sigmoid": func(x float64) float64 {
			return 1.0 / (1.0 + math.Exp(-x))
		},
	}
}

// RegisterActivation adds a named activation for neurons to reference.
// Registered names cannot be replaced.
func RegisterActivation(name string, fn ActivationFunc) error {
	if name == "" {
		return errors.New("activation name is required")
	}
	if fn == nil {
		return errors.New("activation function is required")
	}

	activationsMu.Lock()
	defer activationsMu.Unlock()

	if _, exists := activations[name]; exists {
		return fmt.Errorf("%w: %s", ErrActivationExists, name)
	}
	activations[name] = fn
	return nil
}

// GetActivation resolves a registered activation by name.
func GetActivation(name string) (ActivationFunc, error) {
	activationsMu.RLock()
	fn, ok := activations[name]
	activationsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActivationNotFound, name)
	}
	return fn, nil
}

// ListActivations reports the registered activation names, sorted.
func ListActivations() []string {
	activationsMu.RLock()
	defer activationsMu.RUnlock()

	names := make([]string, 0, len(activations))
	for name := range activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetActivationRegistryForTests() {
	activationsMu.Lock()
	activations = builtinActivations()
	activationsMu.Unlock()
}
