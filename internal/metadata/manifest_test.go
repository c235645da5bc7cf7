package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validManifest = `{
	"char_to_index": {"a": 0, "b": 1, "c": 2},
	"vocab_size": 3,
	"hidden_size": 128,
	"layers": {"lstm": 3}
}`

func TestParseValid(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VocabSize != 3 || m.HiddenSize != 128 {
		t.Fatalf("unexpected sizes: vocab=%d hidden=%d", m.VocabSize, m.HiddenSize)
	}
	if n, ok := m.LayerOverride("LSTM"); !ok || n != 3 {
		t.Fatalf("expected lstm override 3, got %d (present=%v)", n, ok)
	}
	if _, ok := m.LayerOverride("gru"); ok {
		t.Fatal("unexpected gru override")
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"missing mapping", `{"vocab_size": 3, "hidden_size": 128}`, "char_to_index"},
		{"missing vocab_size", `{"char_to_index": {"a": 0}, "hidden_size": 128}`, "vocab_size"},
		{"missing hidden_size", `{"char_to_index": {"a": 0}, "vocab_size": 1}`, "hidden_size"},
		{"size mismatch", `{"char_to_index": {"a": 0}, "vocab_size": 2, "hidden_size": 8}`, "does not match"},
		{"index out of range", `{"char_to_index": {"a": 0, "b": 7}, "vocab_size": 2, "hidden_size": 8}`, "outside"},
		{"duplicate index", `{"char_to_index": {"a": 0, "b": 0}, "vocab_size": 2, "hidden_size": 8}`, "mapped by both"},
		{"bad override", `{"char_to_index": {"a": 0}, "vocab_size": 1, "hidden_size": 8, "layers": {"gru": 0}}`, "must be positive"},
		{"not json", `{`, "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestFilename), []byte(validManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VocabSize != 3 {
		t.Fatalf("vocab_size = %d, want 3", m.VocabSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
