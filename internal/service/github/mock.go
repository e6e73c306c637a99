package github

import (
	"context"
	"encoding/json"
	"time"
)

// MockGitHubService implements Service for unit tests with pre-populated demo data.
type MockGitHubService struct {
	repos        map[string][]Repo
	commits      map[string]map[string][]Commit
	contributors map[string]map[string][]Contributor
	languages    map[string]map[string]map[string]int64
	activity     map[string]map[string]json.RawMessage
}

func strPtr(s string) *string { return &s }

// NewMockGitHubService creates a mock pre-populated with octocat demo data:
// one source repository (hello-world) and one fork (linguist).
func NewMockGitHubService() *MockGitHubService {
	created := time.Date(2011, 1, 26, 19, 1, 12, 0, time.UTC)
	updated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	return &MockGitHubService{
		repos: map[string][]Repo{
			"octocat": {
				{
					Name:        "hello-world",
					FullName:    "octocat/hello-world",
					Description: strPtr("My first repository on GitHub!"),
					HTMLURL:     "https://github.com/octocat/hello-world",
					Language:    strPtr("C"),
					Stars:       10,
					Forks:       5,
					OpenIssues:  1,
					Watchers:    10,
					Size:        108,
					Topics:      []string{"demo", "octocat"},
					HasWiki:     true,
					CreatedAt:   created,
					UpdatedAt:   updated,
				},
				{
					Name:      "linguist",
					FullName:  "octocat/linguist",
					HTMLURL:   "https://github.com/octocat/linguist",
					Language:  strPtr("Ruby"),
					Stars:     200,
					Forks:     90,
					Topics:    []string{},
					Fork:      true,
					CreatedAt: created.AddDate(3, 0, 0),
					UpdatedAt: updated,
				},
			},
		},
		commits: map[string]map[string][]Commit{
			"octocat": {
				"hello-world": {
					{
						SHA:          "7fd1a60b01f91b314f59955a4e4d4e80d8edf11d",
						Message:      "Merge pull request #6 from Spaceghost/patch-1",
						AuthorName:   "The Octocat",
						AuthorDate:   "2012-03-06T23:06:50Z",
						AuthorAvatar: "https://avatars.githubusercontent.com/u/583231",
					},
					{
						SHA:        "762941318ee16e59dabbacb1b4049eec22f0d303",
						Message:    "New line at end of file.",
						AuthorName: "Johnneylee Jack Rollins",
						AuthorDate: "2011-09-14T04:42:41Z",
					},
				},
			},
		},
		contributors: map[string]map[string][]Contributor{
			"octocat": {
				"hello-world": {
					{Login: "octocat", AvatarURL: "https://avatars.githubusercontent.com/u/583231", Contributions: 2},
				},
			},
		},
		languages: map[string]map[string]map[string]int64{
			"octocat": {
				"hello-world": {"C": 78769, "Makefile": 1024},
			},
		},
		activity: map[string]map[string]json.RawMessage{
			"octocat": {
				"hello-world": json.RawMessage(`[{"days":[0,1,0,0,0,0,0],"total":1,"week":1331424000}]`),
			},
		},
	}
}

func (m *MockGitHubService) ListRepos(_ context.Context, owner, _ string) ([]Repo, error) {
	repos, ok := m.repos[owner]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Repo, len(repos))
	copy(out, repos)
	return out, nil
}

func (m *MockGitHubService) GetRepo(_ context.Context, owner, repo string) (*Repo, error) {
	for _, r := range m.repos[owner] {
		if r.Name == repo {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockGitHubService) ListCommits(_ context.Context, owner, repo string) ([]Commit, error) {
	commits, ok := lookup(m.commits, owner, repo)
	if !ok {
		return nil, ErrNotFound
	}
	return commits, nil
}

func (m *MockGitHubService) ListContributors(_ context.Context, owner, repo string) ([]Contributor, error) {
	contributors, ok := lookup(m.contributors, owner, repo)
	if !ok {
		return nil, ErrNotFound
	}
	return contributors, nil
}

func (m *MockGitHubService) ListLanguages(_ context.Context, owner, repo string) (map[string]int64, error) {
	languages, ok := lookup(m.languages, owner, repo)
	if !ok {
		return nil, ErrNotFound
	}
	return languages, nil
}

func (m *MockGitHubService) GetCommitActivity(_ context.Context, owner, repo string) (json.RawMessage, error) {
	raw, ok := lookup(m.activity, owner, repo)
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func lookup[T any](data map[string]map[string]T, owner, repo string) (T, bool) {
	var zero T
	ownerData, ok := data[owner]
	if !ok {
		return zero, false
	}
	v, ok := ownerData[repo]
	if !ok {
		return zero, false
	}
	return v, true
}

// Compile-time interface check
var _ Service = (*MockGitHubService)(nil)
