// Package oracle defines the contract the generation loop holds against an
// inference backend. The backend is opaque: one step in, scores and updated
// state out. How it computes them, and where its weights come from, is
// its own business.
package oracle

import (
	"context"

	"github.com/gomlx/gomlx/types/tensors"
)

// Feeds is the named input of one inference step: a single int64 index
// tensor shaped [1,1], and the recurrent state from the previous step. Cell
// is nil for single-topology models.
type Feeds struct {
	Input  *tensors.Tensor
	Hidden *tensors.Tensor
	Cell   *tensors.Tensor
}

// Fetches is the named output of one inference step. Scores is a float32
// tensor whose trailing entries are one raw score per vocabulary character;
// Hidden and Cell are the updated state, shaped like their inputs.
type Fetches struct {
	Scores *tensors.Tensor
	Hidden *tensors.Tensor
	Cell   *tensors.Tensor
}

// Oracle runs one recurrent step. Implementations may block on I/O or
// compute; they should honor ctx cancellation on their own terms. Infer
// must be safe for sequential reuse but is never called concurrently for
// the same run.
type Oracle interface {
	Infer(ctx context.Context, feeds Feeds) (Fetches, error)
}

// InputTensor builds the [1,1] int64 step-input tensor for an index.
func InputTensor(index int) *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions([]int64{int64(index)}, 1, 1)
}
