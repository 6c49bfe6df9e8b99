// Package testsupport provides deterministic fixtures for pipeline tests:
// a stub engine session with scriptable failure modes, in-memory model
// catalogs, and ready-made configurations.
package testsupport

import (
	"context"
	"sync"

	"goki.dev/mat32/v2"

	"github.com/goliatone/go-synthgen/pkg/engine"
)

// StubOption customises the stub session.
type StubOption func(*StubSession)

// WithTransientFailures makes the first n Execute calls fail with a
// transient error before the session starts succeeding. Used to exercise
// the retry policy.
func WithTransientFailures(n int) StubOption {
	return func(s *StubSession) {
		s.transientLeft = n
	}
}

// WithFatalError makes every Execute call fail with the given error.
func WithFatalError(err error) StubOption {
	return func(s *StubSession) {
		s.fatal = err
	}
}

// WithUnstablePoses makes Execute report every object far outside the floor
// bounds, which the placement settle check rejects.
func WithUnstablePoses() StubOption {
	return func(s *StubSession) {
		s.unstable = true
	}
}

// StubSession wraps the deterministic synthetic engine with scriptable
// failure modes and call counters for assertions.
type StubSession struct {
	synthetic *engine.Synthetic

	mu            sync.Mutex
	transientLeft int
	fatal         error
	unstable      bool

	executes int
	resets   int
	closed   bool
}

// NewStubSession builds a stub session.
func NewStubSession(options ...StubOption) *StubSession {
	s := &StubSession{synthetic: engine.NewSynthetic()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// StubFactory wraps a fixed session in an engine.SessionFactory. Every
// worker receives the same session, which is fine for single-worker tests.
func StubFactory(session engine.Session) engine.SessionFactory {
	return func(ctx context.Context) (engine.Session, error) {
		return session, nil
	}
}

// NewStubFactory opens a fresh stub session per call, mirroring how real
// factories give each worker its own engine instance.
func NewStubFactory(options ...StubOption) engine.SessionFactory {
	return func(ctx context.Context) (engine.Session, error) {
		return NewStubSession(options...), nil
	}
}

// Execute implements engine.Session. The success path delegates to the
// synthetic engine; scripted failures take precedence.
func (s *StubSession) Execute(ctx context.Context, req engine.SceneRequest) (engine.PlacementResult, error) {
	if err := ctx.Err(); err != nil {
		return engine.PlacementResult{}, err
	}

	s.mu.Lock()
	s.executes++
	if s.fatal != nil {
		err := s.fatal
		s.mu.Unlock()
		return engine.PlacementResult{}, err
	}
	if s.transientLeft > 0 {
		s.transientLeft--
		s.mu.Unlock()
		return engine.PlacementResult{}, &engine.TransientError{Reason: "scripted failure"}
	}
	unstable := s.unstable
	s.mu.Unlock()

	result, err := s.synthetic.Execute(ctx, req)
	if err != nil {
		return engine.PlacementResult{}, err
	}
	if unstable {
		for i := range result.Poses {
			result.Poses[i].Position = mat32.V3(1e6, 1e6, -1e6)
		}
	}
	return result, nil
}

// Reset implements engine.Session.
func (s *StubSession) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return nil
}

// Close implements engine.Session.
func (s *StubSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Executes reports how many Execute calls the session has served.
func (s *StubSession) Executes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executes
}

// Resets reports how many Reset calls the session has served.
func (s *StubSession) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

// Closed reports whether Close was called.
func (s *StubSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
