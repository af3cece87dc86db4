// Package engine implements the analysis side of the service: it fetches
// the pull request material from the source-control host, renders the
// action prompt, runs the language model, and parses the structured
// answer.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/sevigo/goframe/llms"
	"golang.org/x/sync/errgroup"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/github"
)

const maxDiffChars = 120_000

// Engine is a core.Analyzer backed by a goframe language model. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	model   llms.Model
	gh      github.Client
	prompts *PromptManager
	logger  *slog.Logger
}

// New creates the analyzer.
func New(model llms.Model, gh github.Client, prompts *PromptManager, logger *slog.Logger) *Engine {
	return &Engine{model: model, gh: gh, prompts: prompts, logger: logger}
}

// Analyze runs one action against one pull request target.
func (e *Engine) Analyze(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
	ref, err := github.ParsePRRef(target)
	if err != nil {
		return nil, core.Errf(core.ErrInvalidTarget, "%v", err)
	}

	title, body, diff, err := e.fetchMaterial(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(diff) > maxDiffChars {
		// Keep the head of the diff; the model cannot use more anyway.
		diff = diff[:maxDiffChars]
	}

	prompt, err := e.prompts.Render(action, PromptData{
		Title:             title,
		Body:              body,
		Diff:              diff,
		Question:          question,
		ExtraInstructions: opts.ExtraInstructions,
		Severity:          opts.Severity,
	})
	if err != nil {
		return nil, core.Errf(core.ErrUpstreamFailure, "%v", err)
	}

	var callOpts []llms.CallOption
	if opts.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*opts.Temperature))
	}

	started := time.Now()
	raw, err := llms.GenerateFromSinglePrompt(ctx, e.model, prompt, callOpts...)
	if err != nil {
		return nil, core.Errf(core.ErrUpstreamFailure, "model call failed: %v", err)
	}
	e.logger.Debug("model call finished", "action", action, "target", target, "elapsed", time.Since(started))

	answer, err := parseAnswer(raw)
	if err != nil {
		return nil, core.Errf(core.ErrUpstreamFailure, "unusable model output for %s: %v", target, err)
	}

	findings := answer.Findings
	if action == core.ActionDetectIssues {
		findings = filterBySeverity(findings, opts.Severity)
	}

	return &core.Result{
		Action:      action,
		Target:      target,
		Summary:     answer.Summary,
		Findings:    findings,
		Raw:         raw,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// fetchMaterial loads the PR metadata and its diff concurrently.
func (e *Engine) fetchMaterial(ctx context.Context, ref github.PRRef) (title, body, diff string, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pr, err := e.gh.GetPullRequest(gctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			return err
		}
		title = pr.GetTitle()
		body = pr.GetBody()
		return nil
	})
	g.Go(func() error {
		var err error
		diff, err = e.gh.GetPullRequestDiff(gctx, ref.Owner, ref.Repo, ref.Number)
		return err
	})

	if err := g.Wait(); err != nil {
		return "", "", "", core.AsError(err)
	}
	return title, body, diff, nil
}
