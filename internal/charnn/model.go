// Package charnn is a small pure-Go recurrent character model implementing
// the oracle contract. It exists so the CLI and the tests have an honest,
// deterministic backend to generate against; it makes no claim of being a
// trained model. Weights are filled from a seeded RNG at construction.
package charnn

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/gomlx/gomlx/types/tensors"

	"github.com/scrawlml/scrawl/internal/model"
	"github.com/scrawlml/scrawl/internal/oracle"
)

// gate counts per variant: rnn has a single candidate, gru has update/reset/
// candidate, lstm has input/forget/candidate/output.
func gateCount(v model.Variant) int {
	switch v {
	case model.GRU:
		return 3
	case model.LSTM:
		return 4
	default:
		return 1
	}
}

type layerWeights struct {
	wx [][]float32 // [gates*hidden][in] input projection
	wh [][]float32 // [gates*hidden][hidden] recurrent projection
	b  []float32   // [gates*hidden]
}

// Model is a multi-layer recurrent step model over a character vocabulary.
// Layer 0 consumes the one-hot input character; upper layers consume the
// hidden output of the layer below. A final projection maps the top hidden
// vector to one raw score per vocabulary character.
type Model struct {
	desc  model.Descriptor
	vocab int

	layers []layerWeights
	wOut   [][]float32 // [vocab][hidden]
	bOut   []float32   // [vocab]
}

// New builds a model with deterministically seeded weights.
func New(desc model.Descriptor, vocabSize int, seed int64) (*Model, error) {
	if vocabSize <= 0 {
		return nil, fmt.Errorf("charnn: vocab size must be positive, got %d", vocabSize)
	}
	if desc.Layers <= 0 || desc.HiddenSize <= 0 {
		return nil, fmt.Errorf("charnn: bad descriptor layers=%d hidden=%d", desc.Layers, desc.HiddenSize)
	}
	rng := rand.New(rand.NewSource(seed))
	h := desc.HiddenSize
	gates := gateCount(desc.Variant)

	m := &Model{
		desc:   desc,
		vocab:  vocabSize,
		layers: make([]layerWeights, desc.Layers),
		wOut:   randMat(rng, vocabSize, h),
		bOut:   make([]float32, vocabSize),
	}
	for l := range m.layers {
		in := vocabSize
		if l > 0 {
			in = h
		}
		m.layers[l] = layerWeights{
			wx: randMat(rng, gates*h, in),
			wh: randMat(rng, gates*h, h),
			b:  make([]float32, gates*h),
		}
	}
	return m, nil
}

const initScale = 0.08

func randMat(rng *rand.Rand, rows, cols int) [][]float32 {
	w := make([][]float32, rows)
	for i := range w {
		row := make([]float32, cols)
		for j := range row {
			row[j] = float32((rng.Float64()*2 - 1) * initScale)
		}
		w[i] = row
	}
	return w
}

// Descriptor returns the descriptor the model was built from.
func (m *Model) Descriptor() model.Descriptor { return m.desc }

// Infer runs one recurrent step.
func (m *Model) Infer(ctx context.Context, feeds oracle.Feeds) (oracle.Fetches, error) {
	if err := ctx.Err(); err != nil {
		return oracle.Fetches{}, err
	}
	idx, err := m.inputIndex(feeds.Input)
	if err != nil {
		return oracle.Fetches{}, err
	}
	hidden, cell, err := m.stateVectors(feeds)
	if err != nil {
		return oracle.Fetches{}, err
	}

	h := m.desc.HiddenSize
	x := make([]float32, 0, h) // layer input; empty for layer 0 (one-hot via idx)
	for l := range m.layers {
		hi := hidden[l*h : (l+1)*h]
		var ci []float32
		if cell != nil {
			ci = cell[l*h : (l+1)*h]
		}
		x = m.stepLayer(l, idx, x, hi, ci)
		idx = -1 // only layer 0 sees the one-hot input
	}

	scores := make([]float32, m.vocab)
	for i := range scores {
		scores[i] = m.bOut[i] + dot(m.wOut[i], x)
	}

	out := oracle.Fetches{
		Scores: tensors.FromFlatDataAndDimensions(scores, 1, m.vocab),
		Hidden: tensors.FromFlatDataAndDimensions(hidden, m.desc.Layers, 1, h),
	}
	if cell != nil {
		out.Cell = tensors.FromFlatDataAndDimensions(cell, m.desc.Layers, 1, h)
	}
	return out, nil
}

// stepLayer advances layer l in place (hi, ci are the layer's slices of the
// working state) and returns the layer's output vector.
func (m *Model) stepLayer(l, idx int, x, hi, ci []float32) []float32 {
	lw := &m.layers[l]
	h := m.desc.HiddenSize

	// pre[g*h+i] = b + Wx·x + Wh·h, with the one-hot input reducing the
	// Wx product to a column lookup on layer 0.
	pre := make([]float32, len(lw.b))
	for r := range pre {
		v := lw.b[r]
		if idx >= 0 {
			v += lw.wx[r][idx]
		} else {
			v += dot(lw.wx[r], x)
		}
		pre[r] = v
	}
	hh := make([]float32, len(lw.b))
	for r := range hh {
		hh[r] = dot(lw.wh[r], hi)
	}

	out := make([]float32, h)
	switch m.desc.Variant {
	case model.LSTM:
		for i := 0; i < h; i++ {
			in := sigmoid(pre[i] + hh[i])
			forget := sigmoid(pre[h+i] + hh[h+i])
			cand := tanh(pre[2*h+i] + hh[2*h+i])
			og := sigmoid(pre[3*h+i] + hh[3*h+i])
			ci[i] = forget*ci[i] + in*cand
			hi[i] = og * tanh(ci[i])
			out[i] = hi[i]
		}
	case model.GRU:
		for i := 0; i < h; i++ {
			z := sigmoid(pre[i] + hh[i])
			r := sigmoid(pre[h+i] + hh[h+i])
			n := tanh(pre[2*h+i] + r*hh[2*h+i])
			hi[i] = (1-z)*n + z*hi[i]
			out[i] = hi[i]
		}
	default: // plain tanh RNN
		for i := 0; i < h; i++ {
			hi[i] = tanh(pre[i] + hh[i])
			out[i] = hi[i]
		}
	}
	return out
}

func (m *Model) inputIndex(t *tensors.Tensor) (int, error) {
	if t == nil {
		return 0, fmt.Errorf("charnn: missing input tensor")
	}
	flat := tensors.CopyFlatData[int64](t)
	if len(flat) != 1 {
		return 0, fmt.Errorf("charnn: input tensor must hold one index, got %d", len(flat))
	}
	idx := int(flat[0])
	if idx < 0 || idx >= m.vocab {
		return 0, fmt.Errorf("charnn: input index %d outside vocabulary [0,%d)", idx, m.vocab)
	}
	return idx, nil
}

// stateVectors copies the feed state into working buffers of the expected
// size. The copies become the updated state returned to the caller.
func (m *Model) stateVectors(feeds oracle.Feeds) (hidden, cell []float32, err error) {
	want := m.desc.Layers * m.desc.HiddenSize
	if feeds.Hidden == nil {
		return nil, nil, fmt.Errorf("charnn: missing hidden state tensor")
	}
	hidden = tensors.CopyFlatData[float32](feeds.Hidden)
	if len(hidden) != want {
		return nil, nil, fmt.Errorf("charnn: hidden state has %d values, want %d", len(hidden), want)
	}
	if m.desc.Variant.Topology() == model.Paired {
		if feeds.Cell == nil {
			return nil, nil, fmt.Errorf("charnn: missing cell state tensor")
		}
		cell = tensors.CopyFlatData[float32](feeds.Cell)
		if len(cell) != want {
			return nil, nil, fmt.Errorf("charnn: cell state has %d values, want %d", len(cell), want)
		}
	} else if feeds.Cell != nil {
		return nil, nil, fmt.Errorf("charnn: unexpected cell state tensor for %s", m.desc.Variant)
	}
	return hidden, cell, nil
}

func dot(w, x []float32) float32 {
	var sum float32
	for j, v := range x {
		sum += w[j] * v
	}
	return sum
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

func tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
