// Package generate drives the character generation loop: encode the seed,
// initialize recurrent state, then repeatedly invoke the oracle, hand off
// its state, sample the next character, and feed it back in.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scrawlml/scrawl/internal/logger"
	"github.com/scrawlml/scrawl/internal/logits"
	"github.com/scrawlml/scrawl/internal/metadata"
	"github.com/scrawlml/scrawl/internal/model"
	"github.com/scrawlml/scrawl/internal/oracle"
	"github.com/scrawlml/scrawl/internal/state"
	"github.com/scrawlml/scrawl/internal/vocab"
)

// Session pairs a loaded oracle with its vocabulary and descriptor. It is
// built once when a model is selected and reused across runs; it holds no
// per-run state, so concurrent Generate calls are safe; each run owns its
// recurrent state and output exclusively.
type Session struct {
	oracle oracle.Oracle
	codec  *vocab.Codec
	desc   model.Descriptor
	log    logger.Logger
}

// NewSession builds a session from a loaded oracle and manifest.
func NewSession(o oracle.Oracle, man *metadata.Manifest, v model.Variant, log logger.Logger) (*Session, error) {
	if o == nil || man == nil {
		return nil, ErrNotReady
	}
	desc, err := model.NewDescriptor(v, man)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	return &Session{
		oracle: o,
		codec:  vocab.FromManifest(man),
		desc:   desc,
		log:    log.With("variant", v.String()),
	}, nil
}

// Descriptor returns the descriptor of the loaded model.
func (s *Session) Descriptor() model.Descriptor { return s.desc }

// VocabSize returns the size of the loaded vocabulary.
func (s *Session) VocabSize() int { return s.codec.Size() }

// Generate runs one generation and returns the seed text with the requested
// number of characters appended. A step failure discards the whole run.
// Cancellation is honored between steps; an in-flight oracle call is left
// to the oracle's own cancellation contract.
func (s *Session) Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error) {
	if s == nil || s.oracle == nil || s.codec == nil {
		return nil, ErrNotReady
	}
	if req == nil {
		return nil, fmt.Errorf("generate: request is required")
	}
	if req.Length < 0 {
		return nil, fmt.Errorf("generate: length must be non-negative, got %d", req.Length)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := req.Seed
	if seed == "" {
		seed = DefaultSeed
	}

	var (
		ids []int
		err error
	)
	if req.Strict {
		ids, err = s.codec.EncodeStrict(seed)
		if err != nil {
			return nil, err
		}
	} else {
		ids = s.codec.Encode(seed)
	}
	// A non-empty seed can still encode to nothing when every character
	// is unknown; index 0 stands in as the first step input.
	last := 0
	if len(ids) > 0 {
		last = ids[len(ids)-1]
	}

	st, err := state.New(s.desc.Variant.Topology(), s.desc.Layers, s.desc.HiddenSize)
	if err != nil {
		return nil, err
	}
	sampler := logits.NewSampler(logits.SamplerConfig{
		Seed:        req.RNGSeed,
		Temperature: req.Temperature,
	})

	var sb strings.Builder
	sb.WriteString(seed)

	var stats Stats
	start := time.Now()
	for i := 0; i < req.Length; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := s.oracle.Infer(ctx, oracle.Feeds{
			Input:  oracle.InputTensor(last),
			Hidden: st.Hidden,
			Cell:   st.Cell,
		})
		if err != nil {
			return nil, &OracleError{Step: i, Err: err}
		}
		st, err = st.Advance(out.Hidden, out.Cell)
		if err != nil {
			return nil, &OracleError{Step: i, Err: err}
		}
		scores, err := logits.Tail(out.Scores, s.codec.Size())
		if err != nil {
			return nil, &OracleError{Step: i, Err: err}
		}
		next := sampler.Sample(scores)
		ch, err := s.codec.Decode(next)
		if err != nil {
			return nil, &DecodeError{Index: next, Err: err}
		}
		sb.WriteString(ch)
		if stream != nil {
			stream(ch)
		}
		last = next
		stats.CharsGenerated++
	}
	stats.Duration = time.Since(start)
	if stats.Duration.Seconds() > 0 {
		stats.CPS = float64(stats.CharsGenerated) / stats.Duration.Seconds()
	}
	s.log.Debug("generation finished", "chars", stats.CharsGenerated, "duration", stats.Duration)

	return &Result{Text: sb.String(), Stats: stats}, nil
}
