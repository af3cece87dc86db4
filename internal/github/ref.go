// Package github provides the source-control collaborators: pull request
// listing, diff retrieval, and reference parsing.
package github

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	prURLRegex   = regexp.MustCompile(`^(?:https?://)?([^/]+)/([^/]+)/([^/]+)/pull/(\d+)$`)
	prPathRegex  = regexp.MustCompile(`^([^/]+)/([^/]+)/([^/]+)/(\d+)$`)
	repoURLRegex = regexp.MustCompile(`^(?:https?://)?([^/]+)/([^/]+)/([^/]+)$`)
)

// PRRef identifies a single pull request: host, owner, repository, number.
type PRRef struct {
	Host   string
	Owner  string
	Repo   string
	Number int
}

// String renders the canonical host/owner/repo/number form.
func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s/%s/%d", r.Host, r.Owner, r.Repo, r.Number)
}

// RepoRef identifies a repository.
type RepoRef struct {
	Host  string
	Owner string
	Repo  string
}

// String renders the canonical host/owner/repo form.
func (r RepoRef) String() string {
	return fmt.Sprintf("%s/%s/%s", r.Host, r.Owner, r.Repo)
}

// ParsePRRef parses a pull request reference. Two formats are accepted:
// the canonical host/owner/repo/number path and a full web URL such as
// https://github.com/owner/repo/pull/42.
func ParsePRRef(ref string) (PRRef, error) {
	ref = strings.TrimSuffix(strings.TrimSpace(ref), "/")

	if m := prURLRegex.FindStringSubmatch(ref); len(m) == 5 {
		return newPRRef(m[1], m[2], m[3], m[4])
	}
	if m := prPathRegex.FindStringSubmatch(ref); len(m) == 5 {
		return newPRRef(m[1], m[2], m[3], m[4])
	}
	return PRRef{}, fmt.Errorf("invalid pull request reference format: %s", ref)
}

func newPRRef(host, owner, repo, number string) (PRRef, error) {
	n, err := strconv.Atoi(number)
	if err != nil || n <= 0 {
		return PRRef{}, fmt.Errorf("invalid PR number %q", number)
	}
	return PRRef{Host: host, Owner: owner, Repo: repo, Number: n}, nil
}

// ParseRepoRef parses a repository reference in host/owner/repo form,
// with or without an https:// scheme prefix.
func ParseRepoRef(ref string) (RepoRef, error) {
	ref = strings.TrimSuffix(strings.TrimSpace(ref), "/")

	if m := repoURLRegex.FindStringSubmatch(ref); len(m) == 4 {
		return RepoRef{Host: m[1], Owner: m[2], Repo: m[3]}, nil
	}
	return RepoRef{}, fmt.Errorf("invalid repository reference format: %s", ref)
}
