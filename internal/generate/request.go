package generate

import "time"

// DefaultSeed replaces an empty seed text before encoding.
const DefaultSeed = "The "

// StreamFunc receives each generated character as it is produced.
type StreamFunc func(ch string)

// Request describes one generation run.
type Request struct {
	// Seed is the text the generation continues from. Empty means
	// DefaultSeed.
	Seed string
	// Length is the number of characters to generate beyond the seed.
	Length int
	// Temperature controls sampling sharpness and must be positive;
	// non-positive values degrade to greedy sampling.
	Temperature float64
	// RNGSeed seeds the sampler. Negative means time-derived.
	RNGSeed int64
	// Strict makes encoding fail when the seed contains characters
	// outside the vocabulary instead of dropping them silently.
	Strict bool
}

type Stats struct {
	CharsGenerated int
	Duration       time.Duration
	CPS            float64
}

type Result struct {
	Text  string
	Stats Stats
}
