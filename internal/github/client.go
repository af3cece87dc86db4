package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/core"
)

// Client defines the source-control operations the service consumes:
// open-PR enumeration for batch resolution and change retrieval for the
// analysis prompts.
type Client interface {
	core.PRLister
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewFromConfig builds a client using the configured auth mode: a
// personal access token or a GitHub App installation.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Client, error) {
	switch cfg.GitHub.AuthMode {
	case "app":
		return NewInstallationClient(cfg.GitHub.AppID, cfg.GitHub.InstallationID, cfg.GitHub.PrivateKeyPath, logger)
	default:
		return NewPATClient(ctx, cfg.GitHub.Token, logger), nil
	}
}

// NewPATClient creates a GitHub client authenticated with a Personal
// Access Token.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return &gitHubClient{client: github.NewClient(tc), logger: logger}
}

// NewInstallationClient creates a client authenticated as a GitHub App
// installation.
func NewInstallationClient(appID, installationID int64, privateKeyPath string, logger *slog.Logger) (Client, error) {
	transport, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, privateKeyPath)
	if err != nil {
		return nil, core.Errf(core.ErrUnauthorized, "failed to load GitHub App key: %v", err)
	}
	client := github.NewClient(&http.Client{Transport: transport})
	return &gitHubClient{client: client, logger: logger}, nil
}

// ListOpenPRs returns the canonical references of up to maxItems open
// pull requests, in the order the GitHub API lists them.
func (g *gitHubClient) ListOpenPRs(ctx context.Context, repoRef string, maxItems int) ([]string, error) {
	ref, err := ParseRepoRef(repoRef)
	if err != nil {
		return nil, core.Errf(core.ErrInvalidTarget, "%v", err)
	}
	if maxItems <= 0 {
		return nil, nil
	}

	var refs []string
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: min(maxItems, 100)},
	}
	for {
		prs, resp, err := g.client.PullRequests.List(ctx, ref.Owner, ref.Repo, opts)
		if err != nil {
			return nil, normalizeAPIError(err)
		}
		for _, pr := range prs {
			refs = append(refs, PRRef{Host: ref.Host, Owner: ref.Owner, Repo: ref.Repo, Number: pr.GetNumber()}.String())
			if len(refs) == maxItems {
				return refs, nil
			}
		}
		if resp.NextPage == 0 {
			return refs, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetPullRequest fetches the PR metadata (title, body, head).
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, normalizeAPIError(err)
	}
	return pr, nil
}

// GetPullRequestDiff fetches the unified diff of the PR.
func (g *gitHubClient) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := g.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", normalizeAPIError(err)
	}
	return diff, nil
}

// normalizeAPIError folds go-github errors into the service taxonomy so
// nothing above this package handles host-specific failures.
func normalizeAPIError(err error) *core.Error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return core.Errf(core.ErrRateLimited, "GitHub API rate limit exceeded")
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return core.Errf(core.ErrNotFound, "GitHub resource not found: %s", ghErr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return core.Errf(core.ErrUnauthorized, "GitHub authorization failed: %s", ghErr.Message)
		}
	}
	return core.Errf(core.ErrUpstreamFailure, "GitHub API call failed: %v", err)
}
