package model

import (
	"fmt"

	"github.com/scrawlml/scrawl/internal/metadata"
)

// Descriptor identifies the model a generation run talks to: its variant,
// hidden-state width, and layer count. It is built once when a model is
// selected and reused for every run against that model.
type Descriptor struct {
	Variant    Variant
	HiddenSize int
	Layers     int
}

// NewDescriptor builds a descriptor from a manifest. An explicit per-variant
// layer override in the manifest takes precedence over the variant default.
func NewDescriptor(v Variant, m *metadata.Manifest) (Descriptor, error) {
	if !v.valid() {
		return Descriptor{}, fmt.Errorf("model: invalid variant %d", int(v))
	}
	layers := v.DefaultLayers()
	if n, ok := m.LayerOverride(v.String()); ok {
		layers = n
	}
	return Descriptor{
		Variant:    v,
		HiddenSize: m.HiddenSize,
		Layers:     layers,
	}, nil
}
