package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/fitchallenge/challenge-backend/internal/metrics"
)

// SideEffect is one post-transition step. Steps must be independent of each other.
type SideEffect interface {
	Name() string
	Handle(ctx context.Context, t Transition) error
}

// SideEffectFunc adapts a function to a named SideEffect.
type SideEffectFunc struct {
	StepName string
	Fn       func(ctx context.Context, t Transition) error
}

func (f SideEffectFunc) Name() string { return f.StepName }

func (f SideEffectFunc) Handle(ctx context.Context, t Transition) error { return f.Fn(ctx, t) }

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable. A step returns it once the outside world
// may already have seen the effect, such as a send that timed out.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// StepResult reports how one step ended.
type StepResult struct {
	Step     string
	Attempts int
	Err      error
}

// Pipeline runs side effects in registration order. A failing step is retried up
// to Attempts times unless the error is Permanent, then logged, counted and
// reported; later steps still run.
type Pipeline struct {
	steps    []SideEffect
	attempts int
	backoff  time.Duration
}

func NewPipeline(steps ...SideEffect) *Pipeline {
	return &Pipeline{steps: steps, attempts: 1}
}

// WithRetry sets per-step attempts (minimum 1) and the pause between them.
func (p *Pipeline) WithRetry(attempts int, backoff time.Duration) *Pipeline {
	if attempts < 1 {
		attempts = 1
	}
	p.attempts = attempts
	p.backoff = backoff
	return p
}

func (p *Pipeline) Use(step SideEffect) {
	p.steps = append(p.steps, step)
}

func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

func (p *Pipeline) Run(ctx context.Context, t Transition) []StepResult {
	results := make([]StepResult, 0, len(p.steps))
	for _, step := range p.steps {
		res := p.runStep(ctx, step, t)
		if res.Err != nil {
			p.report(res, t)
		}
		results = append(results, res)
	}
	return results
}

func (p *Pipeline) runStep(ctx context.Context, step SideEffect, t Transition) StepResult {
	res := StepResult{Step: step.Name()}
	for attempt := 1; attempt <= p.attempts; attempt++ {
		res.Attempts = attempt
		res.Err = step.Handle(ctx, t)
		if res.Err == nil || IsPermanent(res.Err) {
			return res
		}
		if attempt < p.attempts && p.backoff > 0 {
			select {
			case <-ctx.Done():
				return res
			case <-time.After(p.backoff):
			}
		}
	}
	return res
}

func (p *Pipeline) report(res StepResult, t Transition) {
	metrics.SideEffectFailures.WithLabelValues(res.Step).Inc()
	slog.Error("verification side effect failed",
		"step", res.Step,
		"attempts", res.Attempts,
		"log_id", t.Log.ID.String(),
		"user_id", t.Log.UserID.String(),
		"action", string(t.Action),
		"error", res.Err.Error(),
	)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("step", res.Step)
		scope.SetTag("log_category", string(t.Log.Category))
		scope.SetExtra("log_id", t.Log.ID.String())
		sentry.CaptureException(res.Err)
	})
}
