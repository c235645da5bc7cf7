// Package vocab implements the character codec: a bidirectional mapping
// between characters and the integer indices the model operates on.
package vocab

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/scrawlml/scrawl/internal/metadata"
)

// ErrUnknownChar marks strict-mode encode failures for seed text containing
// characters outside the vocabulary.
var ErrUnknownChar = errors.New("character not in vocabulary")

// Codec maps characters to indices and back. It is immutable once built and
// safe for concurrent use.
type Codec struct {
	toIndex map[string]int
	toChar  map[int]string
}

// FromManifest builds a codec from a loaded metadata manifest. The manifest
// has already been validated, so the inverse mapping is guaranteed to be
// exact.
func FromManifest(m *metadata.Manifest) *Codec {
	c := &Codec{
		toIndex: make(map[string]int, len(m.CharToIndex)),
		toChar:  make(map[int]string, len(m.CharToIndex)),
	}
	for ch, idx := range m.CharToIndex {
		c.toIndex[ch] = idx
		c.toChar[idx] = ch
	}
	return c
}

// Size returns the number of characters in the vocabulary.
func (c *Codec) Size() int { return len(c.toIndex) }

// Encode converts text to an index sequence. Characters absent from the
// vocabulary are dropped silently; the result may be shorter than the input
// or empty.
func (c *Codec) Encode(text string) []int {
	ids := make([]int, 0, len(text))
	for _, r := range text {
		if idx, ok := c.toIndex[string(r)]; ok {
			ids = append(ids, idx)
		}
	}
	return ids
}

// EncodeStrict converts text to an index sequence, failing if any character
// is absent from the vocabulary. The error lists the distinct characters
// that would have been dropped.
func (c *Codec) EncodeStrict(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	var dropped map[string]struct{}
	for _, r := range text {
		idx, ok := c.toIndex[string(r)]
		if !ok {
			if dropped == nil {
				dropped = make(map[string]struct{})
			}
			dropped[string(r)] = struct{}{}
			continue
		}
		ids = append(ids, idx)
	}
	if len(dropped) > 0 {
		chars := make([]string, 0, len(dropped))
		for ch := range dropped {
			chars = append(chars, fmt.Sprintf("%q", ch))
		}
		sort.Strings(chars)
		return nil, fmt.Errorf("vocab: %w: %s", ErrUnknownChar, strings.Join(chars, ", "))
	}
	return ids, nil
}

// Decode returns the character for a single index. Indices outside the
// vocabulary fail; the sampler only emits indices in [0, Size), so a failure
// here indicates an internal inconsistency.
func (c *Codec) Decode(idx int) (string, error) {
	ch, ok := c.toChar[idx]
	if !ok {
		return "", fmt.Errorf("vocab: no character for index %d (vocab size %d)", idx, len(c.toChar))
	}
	return ch, nil
}

// DecodeAll decodes an index sequence to text.
func (c *Codec) DecodeAll(ids []int) (string, error) {
	var sb strings.Builder
	for _, idx := range ids {
		ch, err := c.Decode(idx)
		if err != nil {
			return "", err
		}
		sb.WriteString(ch)
	}
	return sb.String(), nil
}
