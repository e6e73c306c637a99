package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/crisphub/internal/platform/logging"
	"github.com/janisto/crisphub/internal/platform/timeutil"
	analyticssvc "github.com/janisto/crisphub/internal/service/analytics"
	githubsvc "github.com/janisto/crisphub/internal/service/github"
)

// Register wires the analytics routes into the provided API router.
func Register(api huma.API, svc analyticssvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-user-repositories",
		Method:      http.MethodGet,
		Path:        "/api/user/{username}",
		Summary:     "List a user's repositories",
		Description: "Returns up to 100 non-fork public repositories for the GitHub account, in GitHub's order for the given sort key.",
		Tags:        []string{"Analytics"},
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *UserReposInput) (*UserReposOutput, error) {
		list, err := svc.ListRepositories(ctx, input.Username, input.SortBy)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &UserReposOutput{Body: UserReposData{
			Username:     list.Username,
			Repositories: toHTTPRepositories(list.Repositories),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-repository-detail",
		Method:      http.MethodGet,
		Path:        "/api/repo/{username}/{repo}",
		Summary:     "Get repository details",
		Description: "Returns repository metadata with recent commits, contributors, languages, weekly commit activity and a per-day commit histogram.",
		Tags:        []string{"Analytics"},
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *RepoDetailInput) (*RepoDetailOutput, error) {
		detail, err := svc.GetRepositoryDetail(ctx, input.Username, input.Repo)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		body, err := toHTTPRepositoryDetail(detail)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &RepoDetailOutput{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user-stats",
		Method:      http.MethodGet,
		Path:        "/api/stats/{username}",
		Summary:     "Get account statistics",
		Description: "Returns totals, averages, language and topic distributions, a creation timeline and the five most starred repositories.",
		Tags:        []string{"Analytics"},
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *UserStatsInput) (*UserStatsOutput, error) {
		stats, err := svc.GetUserStats(ctx, input.Username)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &UserStatsOutput{Body: toHTTPUserStats(stats)}, nil
	})
}

// mapServiceError reports every failure as 404 with the error text as detail.
func mapServiceError(ctx context.Context, err error) error {
	fields := []zap.Field{zap.Error(err)}
	var upstreamErr *githubsvc.UpstreamError
	if errors.As(err, &upstreamErr) {
		fields = append(fields,
			zap.String("upstreamKind", string(upstreamErr.Kind)),
			zap.Int("upstreamStatus", upstreamErr.Status),
		)
	}
	applog.LogInfo(ctx, "analytics request failed", fields...)
	return huma.Error404NotFound(err.Error())
}

func toHTTPRepository(r *analyticssvc.RepositorySummary) Repository {
	return Repository{
		Name:        r.Name,
		Description: r.Description,
		Stars:       r.Stars,
		Forks:       r.Forks,
		Language:    r.Language,
		CreatedAt:   timeutil.Format(r.CreatedAt),
		UpdatedAt:   timeutil.Format(r.UpdatedAt),
		URL:         r.URL,
		Size:        r.Size,
		OpenIssues:  r.OpenIssues,
		Topics:      nonNilStrings(r.Topics),
		HasWiki:     r.HasWiki,
		HasPages:    r.HasPages,
		Watchers:    r.Watchers,
	}
}

func toHTTPRepositories(repos []analyticssvc.RepositorySummary) []Repository {
	result := make([]Repository, len(repos))
	for i := range repos {
		result[i] = toHTTPRepository(&repos[i])
	}
	return result
}

func toHTTPRepositoryDetail(d *analyticssvc.RepositoryDetail) (RepositoryDetail, error) {
	var weekly any
	if len(d.WeeklyCommits) > 0 {
		if err := json.Unmarshal(d.WeeklyCommits, &weekly); err != nil {
			return RepositoryDetail{}, fmt.Errorf("decoding weekly commit activity: %w", err)
		}
	}

	contributors := make([]Contributor, len(d.Contributors))
	for i, c := range d.Contributors {
		contributors[i] = Contributor{Login: c.Login, AvatarURL: c.AvatarURL, Contributions: c.Contributions}
	}
	commits := make([]Commit, len(d.RecentCommits))
	for i, c := range d.RecentCommits {
		commits[i] = Commit{
			SHA:          c.SHA,
			Message:      c.Message,
			Date:         c.Date,
			Author:       c.Author,
			AuthorAvatar: c.AuthorAvatar,
		}
	}

	return RepositoryDetail{
		Name:            d.Name,
		FullName:        d.FullName,
		Description:     d.Description,
		CreatedAt:       timeutil.Format(d.CreatedAt),
		UpdatedAt:       timeutil.Format(d.UpdatedAt),
		Stars:           d.Stars,
		Forks:           d.Forks,
		OpenIssues:      d.OpenIssues,
		Language:        d.Language,
		Languages:       toOrderedCounts(d.Languages),
		Topics:          nonNilStrings(d.Topics),
		Contributors:    contributors,
		RecentCommits:   commits,
		CommitFrequency: toOrderedCounts(d.CommitFrequency),
		WeeklyCommits:   weekly,
	}, nil
}

func toHTTPUserStats(s *analyticssvc.UserStats) UserStats {
	timeline := make([]TimelinePoint, len(s.Timeline))
	for i, p := range s.Timeline {
		timeline[i] = TimelinePoint{Date: p.Date, Repos: p.Repos}
	}
	top := make([]RepoStars, len(s.ReposByStars))
	for i, r := range s.ReposByStars {
		top[i] = RepoStars{Name: r.Name, Stars: r.Stars}
	}
	return UserStats{
		Username:             s.Username,
		RepoCount:            s.RepoCount,
		TotalStars:           s.TotalStars,
		TotalForks:           s.TotalForks,
		AvgStars:             s.AvgStars,
		AvgForks:             s.AvgForks,
		LanguageDistribution: toOrderedCounts(s.LanguageDistribution),
		Timeline:             timeline,
		TopTopics:            toOrderedCounts(s.TopTopics),
		ReposByStars:         top,
	}
}

func toOrderedCounts(counts []analyticssvc.Count) OrderedCounts {
	if counts == nil {
		return OrderedCounts{}
	}
	return OrderedCounts(counts)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
