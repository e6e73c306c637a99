package analytics

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultSort is the listing order used when none is requested and by GetUserStats.
const DefaultSort = "updated"

// Count is one entry of an ordered name-to-count mapping.
type Count struct {
	Key   string
	Count int64
}

// RepositorySummary is the per-repository projection served by the listing.
type RepositorySummary struct {
	Name        string
	Description *string
	Stars       int
	Forks       int
	Language    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	URL         string
	Size        int
	OpenIssues  int
	Topics      []string
	HasWiki     bool
	HasPages    bool
	Watchers    int
}

// RepositoryList is an account's non-fork repositories in upstream order.
type RepositoryList struct {
	Username     string
	Repositories []RepositorySummary
}

// ContributorSummary is a contributor reduced to login, avatar and contribution count.
type ContributorSummary struct {
	Login         string
	AvatarURL     string
	Contributions int
}

// CommitSummary keeps the author date as the raw upstream string.
type CommitSummary struct {
	SHA          string
	Message      string
	Date         string
	Author       string
	AuthorAvatar string
}

// RepositoryDetail bundles metadata, recent history and language usage for one repository.
type RepositoryDetail struct {
	Name            string
	FullName        string
	Description     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Stars           int
	Forks           int
	OpenIssues      int
	Language        *string
	Languages       []Count
	Topics          []string
	Contributors    []ContributorSummary
	RecentCommits   []CommitSummary
	CommitFrequency []Count
	WeeklyCommits   json.RawMessage
}

// TimelinePoint counts the repositories created on or before Date. Date is empty
// for repositories without a creation timestamp.
type TimelinePoint struct {
	Date  string
	Repos int
}

// RepoStars is a repository name with its stargazer count.
type RepoStars struct {
	Name  string
	Stars int
}

// UserStats aggregates an account's non-fork repositories.
type UserStats struct {
	Username             string
	RepoCount            int
	TotalStars           int
	TotalForks           int
	AvgStars             float64
	AvgForks             float64
	LanguageDistribution []Count
	Timeline             []TimelinePoint
	TopTopics            []Count
	ReposByStars         []RepoStars
}

// Service is the analytics surface consumed by the HTTP layer.
type Service interface {
	ListRepositories(ctx context.Context, username, sortBy string) (*RepositoryList, error)
	GetRepositoryDetail(ctx context.Context, username, repo string) (*RepositoryDetail, error)
	GetUserStats(ctx context.Context, username string) (*UserStats, error)
}
