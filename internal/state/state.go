// Package state manages the recurrent state threaded through a generation
// run: allocation of zero-filled tensors of the right shape for the model's
// topology, and the strict hand-off of updated state between steps.
package state

import (
	"fmt"

	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/scrawlml/scrawl/internal/model"
)

// State is the recurrent state for one generation run. Hidden is always
// present; Cell is non-nil only for the paired topology. A State is owned
// exclusively by the run that created it.
type State struct {
	Hidden *tensors.Tensor
	Cell   *tensors.Tensor
}

// New allocates zero-filled state for the given topology. Each tensor has
// shape [layers, 1, hiddenSize] with a batch dimension fixed at 1.
func New(top model.Topology, layers, hiddenSize int) (State, error) {
	if layers <= 0 {
		return State{}, fmt.Errorf("state: layers must be positive, got %d", layers)
	}
	if hiddenSize <= 0 {
		return State{}, fmt.Errorf("state: hidden size must be positive, got %d", hiddenSize)
	}
	shape := shapes.Make(dtypes.Float32, layers, 1, hiddenSize)
	s := State{Hidden: tensors.FromShape(shape)}
	switch top {
	case model.Single:
	case model.Paired:
		s.Cell = tensors.FromShape(shape)
	default:
		return State{}, fmt.Errorf("state: unknown topology %v", top)
	}
	return s, nil
}

// Paired reports whether the state carries a cell component.
func (s State) Paired() bool { return s.Cell != nil }

// Advance replaces the state wholesale with the tensors returned by the
// oracle for this step. There is no merging: the old tensors are discarded.
// The replacement must match the current topology and shapes exactly.
func (s State) Advance(hidden, cell *tensors.Tensor) (State, error) {
	if hidden == nil {
		return State{}, fmt.Errorf("state: oracle returned no hidden tensor")
	}
	if !hidden.Shape().Equal(s.Hidden.Shape()) {
		return State{}, fmt.Errorf("state: hidden shape changed from %s to %s",
			s.Hidden.Shape(), hidden.Shape())
	}
	next := State{Hidden: hidden}
	if s.Paired() {
		if cell == nil {
			return State{}, fmt.Errorf("state: oracle returned no cell tensor for paired topology")
		}
		if !cell.Shape().Equal(s.Cell.Shape()) {
			return State{}, fmt.Errorf("state: cell shape changed from %s to %s",
				s.Cell.Shape(), cell.Shape())
		}
		next.Cell = cell
	} else if cell != nil {
		return State{}, fmt.Errorf("state: oracle returned a cell tensor for single topology")
	}
	return next, nil
}
