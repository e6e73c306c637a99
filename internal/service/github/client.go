package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	applog "github.com/janisto/crisphub/internal/platform/logging"
	"github.com/janisto/crisphub/internal/platform/timeutil"
)

const (
	DefaultBaseURL = "https://api.github.com"
	userAgent      = "crisphub"
	apiVersion     = "2022-11-28"
	acceptHeader   = "application/vnd.github+json"

	reposPerPage        = "100"
	commitsPerPage      = "30"
	contributorsPerPage = "10"

	maxErrorBodyBytes = 1 << 20
)

// Client implements Service using the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (useful for testing and GitHub Enterprise).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithToken authenticates every request with the given token. An empty token
// leaves the client unauthenticated.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new GitHub API client. The supplied http.Client is copied
// before the credential transport is installed.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.token != "" {
		authed := *c.httpClient
		authed.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token}),
			Base:   c.httpClient.Transport,
		}
		c.httpClient = &authed
	}
	return c
}

// URL joins path onto the base URL and appends the encoded query.
// Path segments must already be escaped.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// GetJSON issues one GET against rawURL and decodes the JSON body into target.
// Empty success bodies (204, some 202s) leave target untouched. Any non-2xx
// status yields an *UpstreamError carrying the status and raw body.
func (c *Client) GetJSON(ctx context.Context, rawURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(ctx, resp, target)
}

func decodeResponse(ctx context.Context, resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decoding github response: %w", err)
		}
		return nil
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return upstreamErrorFromResponse(resp, UpstreamErrorKindNotFound, ErrNotFound)
	case isGitHubRateLimitResponse(resp):
		logRateLimited(ctx, resp)
		return upstreamErrorFromResponse(resp, UpstreamErrorKindRateLimited, ErrRateLimited)
	case resp.StatusCode == http.StatusForbidden:
		applog.LogWarn(ctx, "github api access denied",
			zap.Int("status", resp.StatusCode),
			zap.String("X-RateLimit-Remaining", strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining"))),
			zap.String("X-RateLimit-Reset", strings.TrimSpace(resp.Header.Get("X-RateLimit-Reset"))),
		)
		return upstreamErrorFromResponse(resp, UpstreamErrorKindForbidden, ErrForbidden)
	default:
		return upstreamErrorFromResponse(resp, UpstreamErrorKindUpstream, ErrUpstream)
	}
}

type githubRepo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description *string  `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Language    *string  `json:"language"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	OpenIssues  int      `json:"open_issues_count"`
	Watchers    int      `json:"watchers_count"`
	Size        int      `json:"size"`
	Topics      []string `json:"topics"`
	Fork        bool     `json:"fork"`
	HasWiki     bool     `json:"has_wiki"`
	HasPages    bool     `json:"has_pages"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type githubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  *struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		AvatarURL string `json:"avatar_url"`
	} `json:"author"`
}

type githubContributor struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	Contributions int    `json:"contributions"`
}

func (c *Client) repoPath(owner, repo string) string {
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
}

// ListRepos fetches one page of up to 100 repositories for owner, sorted by sort.
// The sort key is passed through unvalidated.
func (c *Client) ListRepos(ctx context.Context, owner, sort string) ([]Repo, error) {
	q := url.Values{"sort": {sort}, "per_page": {reposPerPage}}

	var gh []githubRepo
	if err := c.GetJSON(ctx, c.URL("/users/"+url.PathEscape(owner)+"/repos", q), &gh); err != nil {
		return nil, err
	}

	repos := make([]Repo, len(gh))
	for i, r := range gh {
		repo, err := toRepo(r)
		if err != nil {
			return nil, fmt.Errorf("decoding repo %d: %w", i, err)
		}
		repos[i] = repo
	}
	return repos, nil
}

func (c *Client) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	var gh githubRepo
	if err := c.GetJSON(ctx, c.URL(c.repoPath(owner, repo), nil), &gh); err != nil {
		return nil, err
	}
	r, err := toRepo(gh)
	if err != nil {
		return nil, fmt.Errorf("decoding repo: %w", err)
	}
	return &r, nil
}

// ListCommits returns the 30 most recent commits on the default branch.
func (c *Client) ListCommits(ctx context.Context, owner, repo string) ([]Commit, error) {
	q := url.Values{"per_page": {commitsPerPage}}

	var gh []githubCommit
	if err := c.GetJSON(ctx, c.URL(c.repoPath(owner, repo)+"/commits", q), &gh); err != nil {
		return nil, err
	}

	commits := make([]Commit, len(gh))
	for i, cm := range gh {
		commit := Commit{SHA: cm.SHA, Message: cm.Commit.Message}
		if cm.Commit.Author != nil {
			commit.AuthorName = cm.Commit.Author.Name
			commit.AuthorDate = cm.Commit.Author.Date
		}
		if cm.Author != nil {
			commit.AuthorAvatar = cm.Author.AvatarURL
		}
		commits[i] = commit
	}
	return commits, nil
}

// ListContributors returns up to 10 contributors. Repositories without history
// answer 204 and yield an empty slice.
func (c *Client) ListContributors(ctx context.Context, owner, repo string) ([]Contributor, error) {
	q := url.Values{"per_page": {contributorsPerPage}}

	var gh []githubContributor
	if err := c.GetJSON(ctx, c.URL(c.repoPath(owner, repo)+"/contributors", q), &gh); err != nil {
		return nil, err
	}

	contributors := make([]Contributor, len(gh))
	for i, ct := range gh {
		contributors[i] = Contributor(ct)
	}
	return contributors, nil
}

func (c *Client) ListLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	languages := map[string]int64{}
	if err := c.GetJSON(ctx, c.URL(c.repoPath(owner, repo)+"/languages", nil), &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// GetCommitActivity returns the weekly commit activity series unmodified. While
// GitHub is still computing the statistics it answers 202 with an empty object.
func (c *Client) GetCommitActivity(ctx context.Context, owner, repo string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.GetJSON(ctx, c.URL(c.repoPath(owner, repo)+"/stats/commit_activity", nil), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	return raw, nil
}

func toRepo(r githubRepo) (Repo, error) {
	createdAt, err := timeutil.ParseOptional(r.CreatedAt)
	if err != nil {
		return Repo{}, err
	}
	updatedAt, err := timeutil.ParseOptional(r.UpdatedAt)
	if err != nil {
		return Repo{}, err
	}
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}
	return Repo{
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		HTMLURL:     r.HTMLURL,
		Language:    r.Language,
		Stars:       r.Stars,
		Forks:       r.Forks,
		OpenIssues:  r.OpenIssues,
		Watchers:    r.Watchers,
		Size:        r.Size,
		Topics:      topics,
		Fork:        r.Fork,
		HasWiki:     r.HasWiki,
		HasPages:    r.HasPages,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func upstreamErrorFromResponse(resp *http.Response, kind UpstreamErrorKind, cause error) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &UpstreamError{
		Kind:           kind,
		Status:         resp.StatusCode,
		Body:           string(body),
		RetryAfter:     strings.TrimSpace(resp.Header.Get("Retry-After")),
		RateLimitReset: strings.TrimSpace(resp.Header.Get("X-RateLimit-Reset")),
		cause:          cause,
	}
}

func isGitHubRateLimitResponse(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	if strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining")) == "0" {
		return true
	}
	return strings.TrimSpace(resp.Header.Get("Retry-After")) != ""
}

func logRateLimited(ctx context.Context, resp *http.Response) {
	fields := []zap.Field{
		zap.Int("status", resp.StatusCode),
		zap.String("X-RateLimit-Remaining", resp.Header.Get("X-RateLimit-Remaining")),
		zap.String("X-RateLimit-Reset", resp.Header.Get("X-RateLimit-Reset")),
	}
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		fields = append(fields, zap.String("Retry-After", retryAfter))
	}
	applog.LogWarn(ctx, "github api rate limit exceeded", fields...)
}

// Compile-time interface check
var _ Service = (*Client)(nil)
