// Package metadata loads the model metadata artifact that accompanies a
// trained checkpoint: the character vocabulary, tensor widths, and optional
// per-variant layer overrides. The artifact is read once when a model is
// selected and is immutable afterwards.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ManifestFilename is the conventional name of the artifact inside a model
// directory.
const ManifestFilename = "metadata.json"

// Manifest is the parsed metadata artifact.
type Manifest struct {
	CharToIndex map[string]int `json:"char_to_index"`
	VocabSize   int            `json:"vocab_size"`
	HiddenSize  int            `json:"hidden_size"`

	// Layers holds optional per-variant layer-count overrides, keyed by
	// the lowercase variant name ("rnn", "gru", "lstm"). Absent entries
	// fall back to the variant default.
	Layers map[string]int `json:"layers,omitempty"`
}

// Load reads and validates a manifest. Path may be the metadata file itself
// or a model directory containing one.
func Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	if info.IsDir() {
		path = filepath.Join(path, ManifestFilename)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a raw manifest document.
func Parse(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("metadata: parse: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.CharToIndex) == 0 {
		return fmt.Errorf("metadata: missing char_to_index mapping")
	}
	if m.VocabSize <= 0 {
		return fmt.Errorf("metadata: missing or non-positive vocab_size")
	}
	if m.HiddenSize <= 0 {
		return fmt.Errorf("metadata: missing or non-positive hidden_size")
	}
	if len(m.CharToIndex) != m.VocabSize {
		return fmt.Errorf("metadata: vocab_size %d does not match %d mapped characters",
			m.VocabSize, len(m.CharToIndex))
	}
	seen := make(map[int]string, len(m.CharToIndex))
	for ch, idx := range m.CharToIndex {
		if idx < 0 || idx >= m.VocabSize {
			return fmt.Errorf("metadata: index %d for %q outside [0,%d)", idx, ch, m.VocabSize)
		}
		if prev, dup := seen[idx]; dup {
			return fmt.Errorf("metadata: index %d mapped by both %q and %q", idx, prev, ch)
		}
		seen[idx] = ch
	}
	for name, n := range m.Layers {
		if n <= 0 {
			return fmt.Errorf("metadata: layer override for %q must be positive, got %d", name, n)
		}
		if strings.ToLower(name) != name {
			return fmt.Errorf("metadata: layer override key %q must be lowercase", name)
		}
	}
	return nil
}

// LayerOverride reports the layer-count override for the named variant, if
// one is present.
func (m *Manifest) LayerOverride(variant string) (int, bool) {
	n, ok := m.Layers[strings.ToLower(variant)]
	return n, ok
}
