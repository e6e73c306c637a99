package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/janisto/crisphub/internal/platform/logging"
	"github.com/janisto/crisphub/internal/service/github"
)

// Analytics implements Service on top of a GitHub client.
type Analytics struct {
	gh github.Service
}

// New returns an Analytics backed by gh.
func New(gh github.Service) *Analytics {
	return &Analytics{gh: gh}
}

// ListRepositories returns one page (up to 100) of the account's repositories with
// forks removed. The sort key is passed to GitHub as-is.
func (a *Analytics) ListRepositories(ctx context.Context, username, sortBy string) (*RepositoryList, error) {
	repos, err := a.listSources(ctx, username, sortBy)
	if err != nil {
		return nil, err
	}
	return &RepositoryList{Username: username, Repositories: repos}, nil
}

func (a *Analytics) listSources(ctx context.Context, username, sortBy string) ([]RepositorySummary, error) {
	if sortBy == "" {
		sortBy = DefaultSort
	}
	repos, err := a.gh.ListRepos(ctx, username, sortBy)
	if err != nil {
		return nil, err
	}

	out := make([]RepositorySummary, 0, len(repos))
	for _, r := range repos {
		if r.Fork {
			continue
		}
		out = append(out, RepositorySummary{
			Name:        r.Name,
			Description: r.Description,
			Stars:       r.Stars,
			Forks:       r.Forks,
			Language:    r.Language,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			URL:         r.HTMLURL,
			Size:        r.Size,
			OpenIssues:  r.OpenIssues,
			Topics:      nonNil(r.Topics),
			HasWiki:     r.HasWiki,
			HasPages:    r.HasPages,
			Watchers:    r.Watchers,
		})
	}
	return out, nil
}

// GetRepositoryDetail fetches repository metadata, recent commits, contributors,
// languages and weekly activity concurrently. The first failure cancels the
// remaining requests and fails the whole call.
func (a *Analytics) GetRepositoryDetail(ctx context.Context, username, repo string) (*RepositoryDetail, error) {
	var (
		meta         *github.Repo
		commits      []github.Commit
		contributors []github.Contributor
		languages    map[string]int64
		weekly       json.RawMessage
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		meta, err = a.gh.GetRepo(egCtx, username, repo)
		return err
	})
	eg.Go(func() error {
		var err error
		commits, err = a.gh.ListCommits(egCtx, username, repo)
		return err
	})
	eg.Go(func() error {
		var err error
		contributors, err = a.gh.ListContributors(egCtx, username, repo)
		return err
	})
	eg.Go(func() error {
		var err error
		languages, err = a.gh.ListLanguages(egCtx, username, repo)
		return err
	})
	eg.Go(func() error {
		var err error
		weekly, err = a.gh.GetCommitActivity(egCtx, username, repo)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("repository %s/%s: empty response", username, repo)
	}

	logging.LogDebug(ctx, "repository detail fetched",
		zap.String("repository", meta.FullName),
		zap.Int("commits", len(commits)),
		zap.Int("contributors", len(contributors)),
		zap.Int("languages", len(languages)),
	)

	detail := &RepositoryDetail{
		Name:            meta.Name,
		FullName:        meta.FullName,
		Description:     meta.Description,
		CreatedAt:       meta.CreatedAt,
		UpdatedAt:       meta.UpdatedAt,
		Stars:           meta.Stars,
		Forks:           meta.Forks,
		OpenIssues:      meta.OpenIssues,
		Language:        meta.Language,
		Languages:       SortLanguages(languages),
		Topics:          nonNil(meta.Topics),
		Contributors:    make([]ContributorSummary, len(contributors)),
		RecentCommits:   make([]CommitSummary, len(commits)),
		CommitFrequency: CommitFrequency(commits),
		WeeklyCommits:   weekly,
	}
	for i, c := range contributors {
		detail.Contributors[i] = ContributorSummary(c)
	}
	for i, c := range commits {
		detail.RecentCommits[i] = CommitSummary{
			SHA:          c.SHA,
			Message:      c.Message,
			Date:         c.AuthorDate,
			Author:       c.AuthorName,
			AuthorAvatar: c.AuthorAvatar,
		}
	}
	return detail, nil
}

// GetUserStats aggregates the account's repository listing (default sort).
func (a *Analytics) GetUserStats(ctx context.Context, username string) (*UserStats, error) {
	repos, err := a.listSources(ctx, username, DefaultSort)
	if err != nil {
		return nil, err
	}

	stars := make([]int, len(repos))
	forks := make([]int, len(repos))
	for i, r := range repos {
		stars[i] = r.Stars
		forks[i] = r.Forks
	}
	totalStars, avgStars, err := sumAndMean(stars)
	if err != nil {
		return nil, fmt.Errorf("computing star totals: %w", err)
	}
	totalForks, avgForks, err := sumAndMean(forks)
	if err != nil {
		return nil, fmt.Errorf("computing fork totals: %w", err)
	}

	result := &UserStats{
		Username:             username,
		RepoCount:            len(repos),
		TotalStars:           totalStars,
		TotalForks:           totalForks,
		AvgStars:             avgStars,
		AvgForks:             avgForks,
		LanguageDistribution: LanguageDistribution(repos),
		Timeline:             BuildTimeline(repos),
		TopTopics:            TopTopics(repos, topTopicsLimit),
		ReposByStars:         TopByStars(repos, topStarsLimit),
	}
	logging.LogDebug(ctx, "user stats computed",
		zap.String("username", username),
		zap.Int("repoCount", result.RepoCount),
	)
	return result, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Compile-time interface check
var _ Service = (*Analytics)(nil)
