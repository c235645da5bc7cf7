package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gomlx/gomlx/types/tensors"

	"github.com/scrawlml/scrawl/internal/metadata"
	"github.com/scrawlml/scrawl/internal/model"
	"github.com/scrawlml/scrawl/internal/oracle"
)

// fakeOracle returns a fixed score vector every step and hands the state
// tensors back unchanged.
type fakeOracle struct {
	scores []float32
	calls  int
	failAt int // fail on this 1-based call; 0 = never
	err    error
}

func (f *fakeOracle) Infer(_ context.Context, feeds oracle.Feeds) (oracle.Fetches, error) {
	f.calls++
	if f.failAt > 0 && f.calls >= f.failAt {
		return oracle.Fetches{}, f.err
	}
	return oracle.Fetches{
		Scores: tensors.FromFlatDataAndDimensions(append([]float32(nil), f.scores...), 1, len(f.scores)),
		Hidden: feeds.Hidden,
		Cell:   feeds.Cell,
	}, nil
}

func testManifest(t *testing.T) *metadata.Manifest {
	t.Helper()
	m, err := metadata.Parse([]byte(`{
		"char_to_index": {"a": 0, "b": 1, "c": 2, "T": 3, "h": 4, "e": 5, " ": 6},
		"vocab_size": 7,
		"hidden_size": 4
	}`))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newTestSession(t *testing.T, o oracle.Oracle) *Session {
	t.Helper()
	s, err := NewSession(o, testManifest(t), model.GRU, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGenerateNotReady(t *testing.T) {
	var s *Session
	_, err := s.Generate(context.Background(), &Request{Length: 1, Temperature: 1}, nil)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}

	if _, err := NewSession(nil, testManifest(t), model.RNN, nil); !errors.Is(err, ErrNotReady) {
		t.Fatalf("NewSession(nil oracle) err = %v, want ErrNotReady", err)
	}
}

func TestGenerateNearGreedy(t *testing.T) {
	// The first vocabulary character dominates the distribution at a tiny
	// temperature, so the run appends it every step.
	fake := &fakeOracle{scores: []float32{10, 0, 0, 0, 0, 0, 0}}
	s := newTestSession(t, fake)

	res, err := s.Generate(context.Background(), &Request{
		Seed: "b", Length: 3, Temperature: 0.01, RNGSeed: 1,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "baaa" {
		t.Fatalf("text = %q, want %q", res.Text, "baaa")
	}
	if fake.calls != 3 {
		t.Fatalf("oracle calls = %d, want 3", fake.calls)
	}
	if res.Stats.CharsGenerated != 3 {
		t.Fatalf("chars generated = %d, want 3", res.Stats.CharsGenerated)
	}
}

func TestGenerateZeroLength(t *testing.T) {
	fake := &fakeOracle{scores: make([]float32, 7)}
	s := newTestSession(t, fake)

	res, err := s.Generate(context.Background(), &Request{Seed: "abc", Temperature: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "abc" {
		t.Fatalf("text = %q, want unchanged seed", res.Text)
	}
	if fake.calls != 0 {
		t.Fatalf("oracle calls = %d, want 0", fake.calls)
	}
}

func TestGenerateEmptySeedSubstitution(t *testing.T) {
	fake1 := &fakeOracle{scores: []float32{0, 1, 2, 3, 2, 1, 0}}
	fake2 := &fakeOracle{scores: []float32{0, 1, 2, 3, 2, 1, 0}}
	req := Request{Length: 5, Temperature: 0.8, RNGSeed: 42}

	reqEmpty := req
	resEmpty, err := newTestSession(t, fake1).Generate(context.Background(), &reqEmpty, nil)
	if err != nil {
		t.Fatal(err)
	}
	reqDefault := req
	reqDefault.Seed = DefaultSeed
	resDefault, err := newTestSession(t, fake2).Generate(context.Background(), &reqDefault, nil)
	if err != nil {
		t.Fatal(err)
	}

	if resEmpty.Text != resDefault.Text {
		t.Fatalf("empty seed produced %q, explicit %q produced %q",
			resEmpty.Text, DefaultSeed, resDefault.Text)
	}
	if !strings.HasPrefix(resEmpty.Text, DefaultSeed) {
		t.Fatalf("text %q does not start with the substituted seed", resEmpty.Text)
	}
}

func TestGenerateStreamsEachCharacter(t *testing.T) {
	fake := &fakeOracle{scores: []float32{10, 0, 0, 0, 0, 0, 0}}
	s := newTestSession(t, fake)

	var streamed []string
	res, err := s.Generate(context.Background(), &Request{
		Seed: "c", Length: 4, Temperature: 0.01, RNGSeed: 1,
	}, func(ch string) { streamed = append(streamed, ch) })
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(streamed, ""); got != "aaaa" {
		t.Fatalf("streamed %q, want %q", got, "aaaa")
	}
	if res.Text != "c"+strings.Join(streamed, "") {
		t.Fatalf("result %q does not match seed + streamed output", res.Text)
	}
}

func TestGenerateOracleFailureDiscardsRun(t *testing.T) {
	fake := &fakeOracle{
		scores: []float32{10, 0, 0, 0, 0, 0, 0},
		failAt: 3,
		err:    fmt.Errorf("backend exhausted"),
	}
	s := newTestSession(t, fake)

	res, err := s.Generate(context.Background(), &Request{
		Seed: "a", Length: 10, Temperature: 0.5, RNGSeed: 1,
	}, nil)
	if res != nil {
		t.Fatalf("partial result %q returned, want discard", res.Text)
	}
	var oerr *OracleError
	if !errors.As(err, &oerr) {
		t.Fatalf("err = %v, want *OracleError", err)
	}
	if oerr.Step != 2 {
		t.Fatalf("failed step = %d, want 2", oerr.Step)
	}
	if !strings.Contains(err.Error(), "backend exhausted") {
		t.Fatalf("err %q does not carry the cause", err)
	}
}

func TestGenerateShortScoresIsOracleError(t *testing.T) {
	fake := &fakeOracle{scores: []float32{1, 2}} // fewer than vocab size
	s := newTestSession(t, fake)

	_, err := s.Generate(context.Background(), &Request{Seed: "a", Length: 1, Temperature: 1}, nil)
	var oerr *OracleError
	if !errors.As(err, &oerr) {
		t.Fatalf("err = %v, want *OracleError", err)
	}
}

func TestGenerateStrictSeed(t *testing.T) {
	fake := &fakeOracle{scores: make([]float32, 7)}
	s := newTestSession(t, fake)

	_, err := s.Generate(context.Background(), &Request{
		Seed: "aZb", Length: 1, Temperature: 1, Strict: true,
	}, nil)
	if err == nil {
		t.Fatal("expected strict-mode error for unknown seed character")
	}
	if fake.calls != 0 {
		t.Fatalf("oracle called %d times before encode failure", fake.calls)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	fake := &fakeOracle{scores: make([]float32, 7)}
	s := newTestSession(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Generate(ctx, &Request{Seed: "a", Length: 5, Temperature: 1}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if fake.calls != 0 {
		t.Fatalf("oracle calls = %d, want 0 after pre-cancelled context", fake.calls)
	}
}

func TestGenerateNegativeLength(t *testing.T) {
	s := newTestSession(t, &fakeOracle{scores: make([]float32, 7)})
	if _, err := s.Generate(context.Background(), &Request{Length: -1, Temperature: 1}, nil); err == nil {
		t.Fatal("expected error for negative length")
	}
}

func TestSessionDescriptor(t *testing.T) {
	s := newTestSession(t, &fakeOracle{scores: make([]float32, 7)})
	d := s.Descriptor()
	if d.Variant != model.GRU || d.HiddenSize != 4 || d.Layers != 1 {
		t.Fatalf("descriptor = %+v", d)
	}
	if s.VocabSize() != 7 {
		t.Fatalf("vocab size = %d, want 7", s.VocabSize())
	}
}
