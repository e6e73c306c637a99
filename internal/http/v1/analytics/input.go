package analytics

// UserReposInput defines the path and query parameters for listing an account's repositories.
type UserReposInput struct {
	Username string `path:"username" doc:"GitHub username" example:"octocat"`
	SortBy   string `query:"sort_by" doc:"Upstream sort key, passed to GitHub unchanged" default:"updated" example:"updated"`
}

// RepoDetailInput defines the path parameters for a repository detail request.
type RepoDetailInput struct {
	Username string `path:"username" doc:"GitHub username"  example:"octocat"`
	Repo     string `path:"repo"     doc:"Repository name" example:"hello-world"`
}

// UserStatsInput defines the path parameters for account statistics.
type UserStatsInput struct {
	Username string `path:"username" doc:"GitHub username" example:"octocat"`
}
