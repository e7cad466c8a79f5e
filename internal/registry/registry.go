// Package registry holds the declared verification steps and their dependency
// graph, and exposes the scheduling primitives the executor polls.
package registry

import (
	"github.com/mrz1836/veritas/internal/domain"
	"github.com/mrz1836/veritas/internal/errors"
)

// Registry is the set of declared steps with their dependency edges.
// Declaration order is preserved: reports iterate steps in the order they
// were registered, never in completion order.
//
// Registry is not safe for concurrent mutation; register all steps up front,
// call Validate, then hand it to the executor read-only.
type Registry struct {
	steps []domain.Step
	index map[string]int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Register adds a step. It fails with ErrDuplicateStepID if the id is already
// present and ErrUnknownDependency if the step depends on an id that has not
// been registered yet. Dependencies must therefore be registered before their
// dependents, which also rules out self-edges.
func (r *Registry) Register(step domain.Step) error {
	if step.ID == "" {
		return errors.Wrap(errors.ErrEmptyValue, "step id")
	}
	if _, exists := r.index[step.ID]; exists {
		return errors.Wrapf(errors.ErrDuplicateStepID, "step %q", step.ID)
	}
	for _, dep := range step.DependsOn {
		if _, known := r.index[dep]; !known {
			return errors.Wrapf(errors.ErrUnknownDependency, "step %q depends on %q", step.ID, dep)
		}
	}
	r.index[step.ID] = len(r.steps)
	r.steps = append(r.steps, step)
	return nil
}

// Validate checks the dependency graph for cycles using depth-first search
// with coloring. It must be called before any run starts; a registry with a
// cycle must never execute a step.
//
// Register already rejects forward references, which makes a cycle impossible
// to build through the public API, but Validate guards registries constructed
// from decoded config snapshots as well.
func (r *Registry) Validate() error {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
	colors := make(map[string]int, len(r.steps))

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1
		idx, ok := r.index[id]
		if !ok {
			return false
		}
		for _, dep := range r.steps[idx].DependsOn {
			switch colors[dep] {
			case 1:
				// Back edge: cycle.
				return true
			case 0:
				if visit(dep) {
					return true
				}
			}
		}
		colors[id] = 2
		return false
	}

	for _, s := range r.steps {
		if colors[s.ID] == 0 && visit(s.ID) {
			return errors.Wrapf(errors.ErrCyclicDependency, "involving step %q", s.ID)
		}
	}

	// Also reject dangling edges, which can appear in decoded snapshots.
	for _, s := range r.steps {
		for _, dep := range s.DependsOn {
			if _, known := r.index[dep]; !known {
				return errors.Wrapf(errors.ErrUnknownDependency, "step %q depends on %q", s.ID, dep)
			}
		}
	}

	return nil
}

// Steps returns the registered steps in declaration order.
// The returned slice is a copy; mutating it does not affect the registry.
func (r *Registry) Steps() []domain.Step {
	out := make([]domain.Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Step returns the declared step for an id.
func (r *Registry) Step(id string) (domain.Step, bool) {
	idx, ok := r.index[id]
	if !ok {
		return domain.Step{}, false
	}
	return r.steps[idx], true
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// Ready returns every step, in declaration order, whose dependencies are all
// in the completed set and which is not itself in the done set. This is the
// scheduling primitive the executor polls after each step completion.
//
// completed holds steps that reached PASSED; done holds every step that has
// reached any terminal state (so blocked or failed steps are not re-offered).
func (r *Registry) Ready(completed, done map[string]bool) []domain.Step {
	var ready []domain.Step
	for _, s := range r.steps {
		if done[s.ID] {
			continue
		}
		satisfied := true
		for _, dep := range s.DependsOn {
			if !completed[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, s)
		}
	}
	return ready
}

// TransitiveDependents returns the ids of every step that directly or
// transitively depends on the given step id. The executor uses this to record
// BLOCKED results when a critical step fails.
func (r *Registry) TransitiveDependents(id string) []string {
	// Build a reverse adjacency walk over declaration order.
	blocked := map[string]bool{id: true}
	var out []string
	// Declaration order guarantees dependencies precede dependents, so a
	// single forward pass finds every transitive dependent.
	for _, s := range r.steps {
		if blocked[s.ID] {
			continue
		}
		for _, dep := range s.DependsOn {
			if blocked[dep] {
				blocked[s.ID] = true
				out = append(out, s.ID)
				break
			}
		}
	}
	return out
}
