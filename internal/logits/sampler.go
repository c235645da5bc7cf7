// Package logits converts raw model scores into a temperature-scaled
// probability distribution and draws character indices from it.
package logits

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gomlx/gomlx/types/tensors"
)

// SamplerConfig configures a Sampler for one generation run.
type SamplerConfig struct {
	// Seed for the RNG. Negative means time-derived.
	Seed int64
	// Temperature controls sampling sharpness: values near 0 approach
	// greedy argmax, large values flatten toward uniform. Non-positive
	// values fall back to greedy.
	Temperature float64
}

type Sampler struct {
	rng    *rand.Rand
	temp   float64
	greedy bool
	prob   []float64
}

// NewSampler returns a sampler with the provided configuration.
func NewSampler(cfg SamplerConfig) *Sampler {
	seed := cfg.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	greedy := cfg.Temperature <= 0
	if greedy {
		cfg.Temperature = 1
	}
	return &Sampler{
		rng:    rand.New(rand.NewSource(seed)),
		temp:   cfg.Temperature,
		greedy: greedy,
	}
}

// Tail extracts the final n entries of a float32 score tensor. The oracle's
// score output is guaranteed to end with exactly one score per vocabulary
// character; anything in front of them is ignored.
func Tail(t *tensors.Tensor, n int) ([]float32, error) {
	if t == nil {
		return nil, fmt.Errorf("logits: nil score tensor")
	}
	flat := tensors.CopyFlatData[float32](t)
	if len(flat) < n {
		return nil, fmt.Errorf("logits: score tensor has %d entries, need at least %d", len(flat), n)
	}
	return flat[len(flat)-n:], nil
}

// Sample draws a single index from the score vector:
//
//  1. Every score is divided by the temperature.
//  2. A numerically-stable softmax (max subtraction before exponentiating)
//     turns the scaled scores into probabilities.
//  3. A uniform value in [0,1) is drawn and the probabilities are walked in
//     index order; the first index whose cumulative sum reaches the value
//     wins. Ties therefore resolve by index order. If rounding keeps the
//     cumulative sum below the value, the last index is returned.
func (s *Sampler) Sample(scores []float32) int {
	if len(scores) == 0 {
		return 0
	}
	if s.greedy {
		return argmax(scores)
	}
	prob := s.softmax(scores)

	r := s.rng.Float64()
	var c float64
	for i, p := range prob {
		c += p
		if c >= r {
			return i
		}
	}
	return len(prob) - 1
}

// Probabilities returns the temperature-scaled probability distribution over
// the score vector as a fresh slice. Exposed for inspection and tests.
func (s *Sampler) Probabilities(scores []float32) []float64 {
	if len(scores) == 0 {
		return nil
	}
	return append([]float64(nil), s.softmax(scores)...)
}

func (s *Sampler) softmax(scores []float32) []float64 {
	if cap(s.prob) < len(scores) {
		s.prob = make([]float64, len(scores))
	}
	prob := s.prob[:len(scores)]

	maxv := float64(scores[0]) / s.temp
	for _, v := range scores[1:] {
		if scaled := float64(v) / s.temp; scaled > maxv {
			maxv = scaled
		}
	}
	var sum float64
	for i, v := range scores {
		e := math.Exp(float64(v)/s.temp - maxv)
		prob[i] = e
		sum += e
	}
	inv := 1.0 / sum
	for i := range prob {
		prob[i] *= inv
	}
	return prob
}

// argmax returns the index of the maximum score, lowest index winning ties.
func argmax(x []float32) int {
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}
