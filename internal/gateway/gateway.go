// Package gateway is the single call boundary to the external analysis
// engine. Every action funnels through it, so deadline enforcement and
// error normalization live in exactly one place.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sevigo/pr-warden/internal/core"
)

// Gateway wraps an Analyzer with a per-call deadline and folds every
// engine outcome into the service error taxonomy. It holds no mutable
// state and is safe to share across concurrent invocations.
type Gateway struct {
	analyzer core.Analyzer
	logger   *slog.Logger
}

// New creates a Gateway over the given analysis engine.
func New(analyzer core.Analyzer, logger *slog.Logger) *Gateway {
	return &Gateway{analyzer: analyzer, logger: logger}
}

// Invoke runs one action against one target, bounded by deadline.
// Exceeding the deadline yields a Timeout error; any other engine
// failure is returned as a classified *core.Error.
func (g *Gateway) Invoke(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet, deadline time.Duration) (*core.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	type outcome struct {
		res *core.Result
		err error
	}
	ch := make(chan outcome, 1)

	started := time.Now()
	go func() {
		res, err := g.analyzer.Analyze(ctx, action, target, question, opts)
		select {
		case ch <- outcome{res, err}:
		case <-ctx.Done():
			// Parent gave up; do not block the goroutine.
		}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, g.normalize(action, target, out.err)
		}
		g.logger.Debug("analysis call finished",
			"action", action,
			"target", target,
			"elapsed", time.Since(started),
		)
		return out.res, nil
	case <-ctx.Done():
		return nil, g.normalize(action, target, ctx.Err())
	}
}

// normalize maps an engine error onto the gateway taxonomy so callers
// never need engine-specific handling.
func (g *Gateway) normalize(action core.ActionKind, target string, err error) *core.Error {
	var norm *core.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		norm = core.Errf(core.ErrTimeout, "analysis of %s exceeded its deadline", target)
	case errors.Is(err, context.Canceled):
		norm = core.Errf(core.ErrUpstreamFailure, "analysis of %s was cancelled", target)
	default:
		norm = core.AsError(err)
	}

	g.logger.Warn("analysis call failed",
		"action", action,
		"target", target,
		"kind", norm.Kind,
		"error", norm.Message,
	)
	return norm
}
