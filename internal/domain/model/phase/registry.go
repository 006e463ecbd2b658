package phase

import (
	"errors"
	"fmt"
)

// Registry is the ordered, immutable table of lifecycle phases.
// It is safe for concurrent use because nothing mutates it after construction.
type Registry struct {
	phases []Phase
	index  map[Key]int
}

var defaultRegistry = mustNewRegistry(defaultPhases)

// DefaultRegistry returns the process-wide lifecycle table
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry from an ordered phase list.
// Keys must be unique and non-empty, weights positive and summing to TotalWeight.
func NewRegistry(phases []Phase) (*Registry, error) {
	if len(phases) == 0 {
		return nil, errors.New("phase registry: at least one phase is required")
	}

	r := &Registry{
		phases: make([]Phase, len(phases)),
		index:  make(map[Key]int, len(phases)),
	}
	copy(r.phases, phases)

	total := 0
	for i, p := range r.phases {
		if p.Key == "" {
			return nil, fmt.Errorf("phase registry: phases[%d]: key is required", i)
		}
		if _, exists := r.index[p.Key]; exists {
			return nil, fmt.Errorf("phase registry: phases[%d]: duplicate key %q", i, p.Key)
		}
		if p.Weight < 1 || p.Weight > TotalWeight {
			return nil, fmt.Errorf("phase registry: phases[%d]: weight %d out of range 1..%d", i, p.Weight, TotalWeight)
		}
		r.index[p.Key] = i
		total += p.Weight
	}
	if total != TotalWeight {
		return nil, fmt.Errorf("phase registry: weights sum to %d, want %d", total, TotalWeight)
	}

	return r, nil
}

func mustNewRegistry(phases []Phase) *Registry {
	r, err := NewRegistry(phases)
	if err != nil {
		panic(err)
	}
	return r
}

// Phases returns the lifecycle in order. The returned slice is a copy.
func (r *Registry) Phases() []Phase {
	out := make([]Phase, len(r.phases))
	copy(out, r.phases)
	return out
}

// Len returns the number of phases
func (r *Registry) Len() int {
	return len(r.phases)
}

// First returns the lifecycle start
func (r *Registry) First() Phase {
	return r.phases[0]
}

// Last returns the lifecycle end
func (r *Registry) Last() Phase {
	return r.phases[len(r.phases)-1]
}

// Contains reports whether key is registered
func (r *Registry) Contains(key Key) bool {
	_, ok := r.index[key]
	return ok
}

// Lookup returns the phase for key
func (r *Registry) Lookup(key Key) (Phase, error) {
	i, err := r.IndexOf(key)
	if err != nil {
		return Phase{}, err
	}
	return r.phases[i], nil
}

// IndexOf returns the lifecycle position of key
func (r *Registry) IndexOf(key Key) (int, error) {
	i, ok := r.index[key]
	if !ok {
		return 0, &UnknownPhaseError{Key: key}
	}
	return i, nil
}

// WeightOf returns the relative weight of key
func (r *Registry) WeightOf(key Key) (int, error) {
	i, err := r.IndexOf(key)
	if err != nil {
		return 0, err
	}
	return r.phases[i].Weight, nil
}

// DisplayName returns the human readable name of key.
// Unregistered keys are echoed back so rendering code never shows an empty badge.
func (r *Registry) DisplayName(key Key) string {
	if i, ok := r.index[key]; ok {
		return r.phases[i].DisplayName
	}
	return string(key)
}

// Color returns the badge color of key
func (r *Registry) Color(key Key) string {
	if i, ok := r.index[key]; ok {
		return r.phases[i].Color
	}
	return fallbackColor
}
