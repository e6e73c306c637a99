package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Service errors
var (
	ErrNotFound    = errors.New("github resource not found")
	ErrForbidden   = errors.New("github access forbidden")
	ErrRateLimited = errors.New("github rate limit exceeded")
	ErrUpstream    = errors.New("github upstream error")
)

// UpstreamErrorKind classifies GitHub upstream failures.
type UpstreamErrorKind string

const (
	UpstreamErrorKindNotFound    UpstreamErrorKind = "not_found"
	UpstreamErrorKindForbidden   UpstreamErrorKind = "forbidden"
	UpstreamErrorKindRateLimited UpstreamErrorKind = "rate_limited"
	UpstreamErrorKindUpstream    UpstreamErrorKind = "upstream"
)

// UpstreamError is returned for every non-2xx GitHub response. Body holds the raw
// response text so callers can surface it verbatim.
type UpstreamError struct {
	Kind           UpstreamErrorKind
	Status         int
	Body           string
	RetryAfter     string
	RateLimitReset string
	cause          error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return "GitHub API error"
	}
	return fmt.Sprintf("GitHub API error: %d - %s", e.Status, e.Body)
}

// Unwrap enables errors.Is/As against sentinel service errors.
func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Repo is a repository as returned by the listing and repository endpoints.
type Repo struct {
	Name        string
	FullName    string
	Description *string
	HTMLURL     string
	Language    *string
	Stars       int
	Forks       int
	OpenIssues  int
	Watchers    int
	Size        int
	Topics      []string
	Fork        bool
	HasWiki     bool
	HasPages    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Commit is one entry of a repository's commit list. Date is the author date
// exactly as GitHub sent it.
type Commit struct {
	SHA          string
	Message      string
	AuthorName   string
	AuthorDate   string
	AuthorAvatar string
}

// Contributor summarises one repository contributor.
type Contributor struct {
	Login         string
	AvatarURL     string
	Contributions int
}

// Service defines the GitHub REST operations the analytics layer depends on.
type Service interface {
	ListRepos(ctx context.Context, owner, sort string) ([]Repo, error)
	GetRepo(ctx context.Context, owner, repo string) (*Repo, error)
	ListCommits(ctx context.Context, owner, repo string) ([]Commit, error)
	ListContributors(ctx context.Context, owner, repo string) ([]Contributor, error)
	ListLanguages(ctx context.Context, owner, repo string) (map[string]int64, error)
	GetCommitActivity(ctx context.Context, owner, repo string) (json.RawMessage, error)
}
