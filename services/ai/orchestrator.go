package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxAttempts is the number of tries per model before moving on
	MaxAttempts = 3
	// MinContentLength is the shortest accepted completion, after trimming
	MinContentLength = 100
)

// rateLimitSignatures are lowercase substrings identifying rate-limit or quota failures
var rateLimitSignatures = []string{"429", "rate limit", "rate_limit", "too many requests", "quota", "capacity"}

var errContentTooShort = errors.New("generated content too short")

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the production Sleeper
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Result is the outcome of an orchestrated generation
type Result struct {
	Content  string
	Provider string
	Model    string
	Fallback bool
	Attempts int
}

// Orchestrator walks providers and models in priority order until one yields usable text
type Orchestrator struct {
	adapters  []Adapter
	baseDelay time.Duration
	sleep     Sleeper
}

// NewOrchestrator creates an orchestrator over adapters already in default priority order
func NewOrchestrator(adapters []Adapter, baseDelay time.Duration, sleep Sleeper) *Orchestrator {
	if sleep == nil {
		sleep = ContextSleep
	}
	return &Orchestrator{adapters: adapters, baseDelay: baseDelay, sleep: sleep}
}

// IsRateLimited reports whether err looks like a rate-limit or quota failure
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range rateLimitSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// Backoff returns the delay after the given zero-based failed attempt:
// base·3^attempt for rate limits, base·2^attempt otherwise
func Backoff(base time.Duration, attempt int, rateLimited bool) time.Duration {
	factor := 2.0
	if rateLimited {
		factor = 3.0
	}
	return time.Duration(float64(base) * math.Pow(factor, float64(attempt)))
}

// Generate tries each provider's models in order. When every attempt fails, or ctx is done,
// the result carries the fallback text instead of an error.
func (o *Orchestrator) Generate(ctx context.Context, prompt Prompt, preferred string, fallback func() string) Result {
	attempts := 0
	for _, adapter := range OrderAdapters(o.adapters, preferred) {
		for _, model := range adapter.Models() {
			content, n, err := o.tryModel(ctx, adapter, prompt, model)
			attempts += n
			if err == nil {
				zap.L().Info("letter generated",
					zap.String("provider", adapter.Name()),
					zap.String("model", model),
					zap.Int("attempts", attempts))
				return Result{Content: content, Provider: adapter.Name(), Model: model, Attempts: attempts}
			}
			if ctx.Err() != nil {
				zap.L().Warn("generation interrupted, using static letter", zap.Error(ctx.Err()))
				return Result{Content: fallback(), Fallback: true, Attempts: attempts}
			}
			zap.L().Warn("model exhausted",
				zap.String("provider", adapter.Name()),
				zap.String("model", model),
				zap.Error(err))
		}
	}

	zap.L().Warn("all providers exhausted, using static letter", zap.Int("attempts", attempts))
	return Result{Content: fallback(), Fallback: true, Attempts: attempts}
}

// tryModel runs up to MaxAttempts calls against one model, sleeping between failures
func (o *Orchestrator) tryModel(ctx context.Context, adapter Adapter, prompt Prompt, model string) (string, int, error) {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		content, err := adapter.Generate(ctx, prompt, model)
		if err == nil {
			content = strings.TrimSpace(content)
			if len([]rune(content)) >= MinContentLength {
				return content, attempt + 1, nil
			}
			err = fmt.Errorf("%w (%d characters)", errContentTooShort, len([]rune(content)))
		}
		lastErr = err

		if attempt == MaxAttempts-1 {
			break
		}
		delay := Backoff(o.baseDelay, attempt, IsRateLimited(err))
		zap.L().Debug("generation attempt failed, retrying",
			zap.String("provider", adapter.Name()),
			zap.String("model", model),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
		if sleepErr := o.sleep(ctx, delay); sleepErr != nil {
			return "", attempt + 1, sleepErr
		}
	}
	return "", MaxAttempts, lastErr
}
