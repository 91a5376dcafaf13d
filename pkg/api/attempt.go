package api

import (
	"context"
	"sync/atomic"
)

// Attempt records whether one engine call got past a step that must not be
// repeated: a Finish handler that was invoked, an Action handler that
// failed, or a message that was already stored. Callers that retry engine
// calls attach an Attempt with WithAttempt and consult Irreversible once the
// call returns.
type Attempt struct {
	irreversible atomic.Bool
}

type attemptKey struct{}

// WithAttempt returns a child context carrying a fresh Attempt.
func WithAttempt(ctx context.Context) (context.Context, *Attempt) {
	a := &Attempt{}
	return context.WithValue(ctx, attemptKey{}, a), a
}

// MarkIrreversible flags the Attempt carried by ctx, if any.
func MarkIrreversible(ctx context.Context) {
	if a, ok := ctx.Value(attemptKey{}).(*Attempt); ok {
		a.irreversible.Store(true)
	}
}

// Irreversible reports whether repeating the call could duplicate side
// effects.
func (a *Attempt) Irreversible() bool {
	return a.irreversible.Load()
}
