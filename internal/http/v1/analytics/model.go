package analytics

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"

	analyticssvc "github.com/janisto/crisphub/internal/service/analytics"
)

// OrderedCounts renders as an object whose keys keep the slice order.
type OrderedCounts []analyticssvc.Count

// MarshalJSON implements json.Marshaler.
func (c OrderedCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", entry.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", entry.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalCBOR implements cbor.Marshaler as a definite-length map in slice order.
func (c OrderedCounts) MarshalCBOR() ([]byte, error) {
	out := cborMapHeader(len(c))
	for _, entry := range c {
		key, err := cbor.Marshal(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", entry.Key, err)
		}
		value, err := cbor.Marshal(entry.Count)
		if err != nil {
			return nil, fmt.Errorf("encoding count for %q: %w", entry.Key, err)
		}
		out = append(out, key...)
		out = append(out, value...)
	}
	return out, nil
}

// Schema implements huma.SchemaProvider.
func (OrderedCounts) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:                 huma.TypeObject,
		AdditionalProperties: &huma.Schema{Type: huma.TypeInteger, Format: "int64"},
	}
}

// cborMapHeader encodes the head of a CBOR map (major type 5) with n pairs.
func cborMapHeader(n int) []byte {
	const majorMap = 0xa0
	switch {
	case n < 24:
		return []byte{majorMap | byte(n)}
	case n <= 0xff:
		return []byte{majorMap | 24, byte(n)}
	case n <= 0xffff:
		return binary.BigEndian.AppendUint16([]byte{majorMap | 25}, uint16(n))
	default:
		return binary.BigEndian.AppendUint32([]byte{majorMap | 26}, uint32(n))
	}
}

// Repository is the simplified repository record served by the listing.
type Repository struct {
	Name        string        `json:"name"        doc:"Repository name"           example:"hello-world"`
	Description *string       `json:"description" doc:"Repository description"    nullable:"true"`
	Stars       int           `json:"stars"       doc:"Stargazer count"           example:"10"`
	Forks       int           `json:"forks"       doc:"Fork count"                example:"5"`
	Language    *string       `json:"language"    doc:"Primary language"          example:"C" nullable:"true"`
	CreatedAt   *string       `json:"created_at"  doc:"Creation timestamp"        example:"2011-01-26T19:01:12Z" nullable:"true"`
	UpdatedAt   *string       `json:"updated_at"  doc:"Last update timestamp"     example:"2024-06-01T00:00:00Z" nullable:"true"`
	URL         string        `json:"url"         doc:"GitHub repository URL"     example:"https://github.com/octocat/hello-world"`
	Size        int           `json:"size"        doc:"Repository size in KB"     example:"108"`
	OpenIssues  int           `json:"open_issues" doc:"Open issue count"          example:"1"`
	Topics      []string      `json:"topics"      doc:"Repository topics"`
	HasWiki     bool          `json:"has_wiki"    doc:"Whether the wiki is on"    example:"true"`
	HasPages    bool          `json:"has_pages"   doc:"Whether Pages is on"       example:"false"`
	Watchers    int           `json:"watchers"    doc:"Watcher count"             example:"10"`
}

// UserReposData is the response body for GET /api/user/{username}.
type UserReposData struct {
	Username     string       `json:"username"     doc:"GitHub username" example:"octocat"`
	Repositories []Repository `json:"repositories" doc:"Non-fork repositories in upstream order"`
}

// Contributor is one entry of a repository's top contributors.
type Contributor struct {
	Login         string `json:"login"         doc:"GitHub username"    example:"octocat"`
	AvatarURL     string `json:"avatar_url"    doc:"Avatar image URL"   example:"https://avatars.githubusercontent.com/u/583231"`
	Contributions int    `json:"contributions" doc:"Contribution count" example:"32"`
}

// Commit is one of a repository's most recent commits.
type Commit struct {
	SHA          string `json:"sha"           doc:"Commit SHA"                          example:"7fd1a60b01f91b314f59955a4e4d4e80d8edf11d"`
	Message      string `json:"message"       doc:"Commit message"`
	Date         string `json:"date"          doc:"Author date as reported by GitHub"   example:"2012-03-06T23:06:50Z"`
	Author       string `json:"author"        doc:"Author name"                         example:"The Octocat"`
	AuthorAvatar string `json:"author_avatar" doc:"Author avatar URL, empty if unknown"`
}

// RepositoryDetail is the response body for GET /api/repo/{username}/{repo}.
type RepositoryDetail struct {
	Name            string        `json:"name"             doc:"Repository name"                   example:"hello-world"`
	FullName        string        `json:"full_name"        doc:"Full repository name (owner/repo)" example:"octocat/hello-world"`
	Description     *string       `json:"description"      doc:"Repository description"            nullable:"true"`
	CreatedAt       *string       `json:"created_at"       doc:"Creation timestamp"                example:"2011-01-26T19:01:12Z" nullable:"true"`
	UpdatedAt       *string       `json:"updated_at"       doc:"Last update timestamp"             example:"2024-06-01T00:00:00Z" nullable:"true"`
	Stars           int           `json:"stars"            doc:"Stargazer count"                   example:"10"`
	Forks           int           `json:"forks"            doc:"Fork count"                        example:"5"`
	OpenIssues      int           `json:"open_issues"      doc:"Open issue count"                  example:"1"`
	Language        *string       `json:"language"         doc:"Primary language"                  example:"C" nullable:"true"`
	Languages       OrderedCounts `json:"languages"        doc:"Bytes of code per language, largest first"`
	Topics          []string      `json:"topics"           doc:"Repository topics"`
	Contributors    []Contributor `json:"contributors"     doc:"Top contributors (up to 10)"`
	RecentCommits   []Commit      `json:"recent_commits"   doc:"Most recent commits (up to 30)"`
	CommitFrequency OrderedCounts `json:"commit_frequency" doc:"Commits per calendar day within the recent commits"`
	WeeklyCommits   any           `json:"weekly_commits"   doc:"GitHub weekly commit activity, passed through unchanged"`
}

// TimelinePoint is one step of the cumulative repository creation timeline.
type TimelinePoint struct {
	Date  string `json:"date"  doc:"Creation date (UTC)"                          example:"2011-01-26"`
	Repos int    `json:"repos" doc:"Repositories created on or before this date" example:"1"`
}

// RepoStars pairs a repository with its stargazer count.
type RepoStars struct {
	Name  string `json:"name"  doc:"Repository name" example:"hello-world"`
	Stars int    `json:"stars" doc:"Stargazer count" example:"10"`
}

// UserStats is the response body for GET /api/stats/{username}.
type UserStats struct {
	Username             string          `json:"username"              doc:"GitHub username"                           example:"octocat"`
	RepoCount            int             `json:"repo_count"            doc:"Number of non-fork repositories"           example:"1"`
	TotalStars           int             `json:"total_stars"           doc:"Sum of stargazers"                         example:"10"`
	TotalForks           int             `json:"total_forks"           doc:"Sum of forks"                              example:"5"`
	AvgStars             float64         `json:"avg_stars"             doc:"Average stargazers per repository"         example:"10"`
	AvgForks             float64         `json:"avg_forks"             doc:"Average forks per repository"              example:"5"`
	LanguageDistribution OrderedCounts   `json:"language_distribution" doc:"Repositories per primary language"`
	Timeline             []TimelinePoint `json:"timeline"              doc:"Cumulative repositories by creation date"`
	TopTopics            OrderedCounts   `json:"top_topics"            doc:"Ten most frequent topics"`
	ReposByStars         []RepoStars     `json:"repos_by_stars"        doc:"Five most starred repositories"`
}
