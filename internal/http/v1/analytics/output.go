package analytics

// UserReposOutput is the response wrapper for GET /api/user/{username}.
type UserReposOutput struct {
	Body UserReposData
}

// RepoDetailOutput is the response wrapper for GET /api/repo/{username}/{repo}.
type RepoDetailOutput struct {
	Body RepositoryDetail
}

// UserStatsOutput is the response wrapper for GET /api/stats/{username}.
type UserStatsOutput struct {
	Body UserStats
}
