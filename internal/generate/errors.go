package generate

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when generation is requested before a model and
// vocabulary have been loaded.
var ErrNotReady = errors.New("no model loaded")

// OracleError reports a failed inference step. The run it interrupted is
// discarded; nothing generated before the failure is returned.
type OracleError struct {
	Step int
	Err  error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle step %d: %v", e.Step, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// DecodeError reports a sampled index with no corresponding character. The
// sampler only emits indices inside the vocabulary, so this indicates an
// internal inconsistency between sampler and codec.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode index %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
