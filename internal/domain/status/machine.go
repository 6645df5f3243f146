// Package status holds the declarative transition tables of every
// lifecycle in the system. A transition absent from a table is rejected.
package status

import (
	"fmt"
	"slices"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
)

// Machine is a directed graph of allowed status changes.
type Machine[S ~string] struct {
	name  string
	edges map[S][]S
}

func newMachine[S ~string](name string, edges map[S][]S) Machine[S] {
	return Machine[S]{name: name, edges: edges}
}

func (m Machine[S]) Name() string { return m.name }

// Valid reports whether s is a state of the machine.
func (m Machine[S]) Valid(s S) bool {
	_, ok := m.edges[s]
	return ok
}

func (m Machine[S]) Can(from, to S) bool {
	return slices.Contains(m.edges[from], to)
}

// Transition returns to when the edge exists, otherwise an
// ErrInvalidTransition naming both ends.
func (m Machine[S]) Transition(from, to S) (S, error) {
	if !m.Can(from, to) {
		return from, fmt.Errorf("%w: %s %s -> %s", domainerr.ErrInvalidTransition, m.name, from, to)
	}
	return to, nil
}

func (m Machine[S]) IsTerminal(s S) bool {
	return m.Valid(s) && len(m.edges[s]) == 0
}

// States returns every state, sorted.
func (m Machine[S]) States() []S {
	states := make([]S, 0, len(m.edges))
	for s := range m.edges {
		states = append(states, s)
	}
	slices.Sort(states)
	return states
}

// Targets returns the states reachable in one step from s.
func (m Machine[S]) Targets(s S) []S {
	return slices.Clone(m.edges[s])
}
