package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/scrawlml/scrawl/internal/generate"
)

// SessionProvider resolves a model name to a loaded generation session.
type SessionProvider interface {
	WithSession(ctx context.Context, model string, fn func(*generate.Session) error) error
	ListModels() []string
}

// Registry is a SessionProvider over sessions registered up front, keyed by
// variant name. Sessions are immutable, so no per-session locking is
// needed; runs against the same session may proceed concurrently.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]*generate.Session
	defaultModel string
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*generate.Session)}
}

// Register adds a session under the given name. The first registered
// session becomes the default.
func (r *Registry) Register(name string, s *generate.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defaultModel == "" {
		r.defaultModel = name
	}
	r.sessions[name] = s
}

func (r *Registry) WithSession(ctx context.Context, model string, fn func(*generate.Session) error) error {
	r.mu.RLock()
	if model == "" {
		model = r.defaultModel
	}
	s, ok := r.sessions[model]
	r.mu.RUnlock()

	if model == "" {
		return generate.ErrNotReady
	}
	if !ok {
		return fmt.Errorf("model %q: %w", model, errModelNotFound)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

func (r *Registry) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var errModelNotFound = errors.New("model not found")
