// Package model describes the supported recurrent model variants and the
// descriptor a generation run is configured from.
package model

import (
	"fmt"
	"strings"
)

// Topology is the recurrent-state layout of a variant: a single hidden
// tensor, or a hidden/cell pair.
type Topology int

const (
	Single Topology = iota
	Paired
)

func (t Topology) String() string {
	switch t {
	case Single:
		return "single"
	case Paired:
		return "paired"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// Variant is one of the known recurrent cell types. The set is closed: new
// variants are added by extending variantTable.
type Variant int

const (
	RNN Variant = iota
	GRU
	LSTM
)

type variantInfo struct {
	name          string
	topology      Topology
	defaultLayers int
}

var variantTable = [...]variantInfo{
	RNN:  {name: "rnn", topology: Single, defaultLayers: 1},
	GRU:  {name: "gru", topology: Single, defaultLayers: 1},
	LSTM: {name: "lstm", topology: Paired, defaultLayers: 2},
}

// Variants returns the known variants in declaration order.
func Variants() []Variant {
	out := make([]Variant, len(variantTable))
	for i := range variantTable {
		out[i] = Variant(i)
	}
	return out
}

// ParseVariant resolves a variant name, case-insensitively.
func ParseVariant(name string) (Variant, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, info := range variantTable {
		if info.name == lower {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("model: unknown variant %q (known: %s)", name, strings.Join(variantNames(), ", "))
}

func variantNames() []string {
	names := make([]string, len(variantTable))
	for i, info := range variantTable {
		names[i] = info.name
	}
	return names
}

func (v Variant) valid() bool { return v >= 0 && int(v) < len(variantTable) }

func (v Variant) String() string {
	if !v.valid() {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantTable[v].name
}

// Topology returns the state layout of the variant.
func (v Variant) Topology() Topology {
	return variantTable[v].topology
}

// DefaultLayers returns the layer count used when the metadata artifact
// carries no override for the variant.
func (v Variant) DefaultLayers() int {
	return variantTable[v].defaultLayers
}
